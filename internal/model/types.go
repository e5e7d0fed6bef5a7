package model

import (
	"slices"
	"strings"
	"time"
)

// Musician is a user profile. Reviews, portfolio and follow lists nest inside
// it, so every write that touches them returns the whole musician.
type Musician struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	IsVerified      bool            `json:"isVerified,omitempty"`
	Location        string          `json:"location"`
	Instrument      Instrument      `json:"instrument"`
	Genres          []Genre         `json:"genres"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	AvatarURL       string          `json:"avatarUrl"`
	Bio             string          `json:"bio"`
	Email           string          `json:"email"`
	Expertise       []string        `json:"expertise"`
	Reviews         []Review        `json:"reviews"`
	Portfolio       []PortfolioItem `json:"portfolio"`
	Followers       []int           `json:"followers"`
	Following       []int           `json:"following"`
}

// IsFollowing reports whether m follows the musician with the given id.
func (m Musician) IsFollowing(id int) bool {
	return slices.Contains(m.Following, id)
}

// HasFollower reports whether the musician with the given id follows m.
func (m Musician) HasFollower(id int) bool {
	return slices.Contains(m.Followers, id)
}

// HasReviewFrom reports whether reviewerID already reviewed m.
func (m Musician) HasReviewFrom(reviewerID int) bool {
	return slices.ContainsFunc(m.Reviews, func(r Review) bool { return r.ReviewerID == reviewerID })
}

// PortfolioItem returns the portfolio item with the given id, if m owns it.
func (m *Musician) PortfolioItem(id int) (*PortfolioItem, bool) {
	for i := range m.Portfolio {
		if m.Portfolio[i].ID == id {
			return &m.Portfolio[i], true
		}
	}
	return nil, false
}

type Review struct {
	ID                int       `json:"id"`
	ReviewerID        int       `json:"reviewerId"`
	ReviewerName      string    `json:"reviewerName"`
	ReviewerAvatarURL string    `json:"reviewerAvatarUrl"`
	Rating            int       `json:"rating"`
	Comment           string    `json:"comment"`
	Date              time.Time `json:"date"`
}

// PortfolioItem is a media entry on a musician profile. Reactions maps an
// emoji to the ids of the musicians who reacted with it.
type PortfolioItem struct {
	ID           int               `json:"id"`
	Type         PortfolioItemType `json:"type"`
	URL          string            `json:"url"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Comments     []Comment         `json:"comments"`
	Reactions    map[string][]int  `json:"reactions"`
}

// HasReaction reports whether userID already reacted with emoji.
func (p *PortfolioItem) HasReaction(emoji string, userID int) bool {
	return slices.Contains(p.Reactions[emoji], userID)
}

type Comment struct {
	ID              int       `json:"id"`
	AuthorID        int       `json:"authorId"`
	AuthorName      string    `json:"authorName"`
	AuthorAvatarURL string    `json:"authorAvatarUrl"`
	Text            string    `json:"text"`
	Date            time.Time `json:"date"`
}

type Notification struct {
	ID      int              `json:"id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Summary string           `json:"summary"`
	Details string           `json:"details"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
}

// Message is immutable once appended to a conversation.
type Message struct {
	ID        int       `json:"id"`
	SenderID  int       `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a two-party chat identified by ConversationID.
type Conversation struct {
	ID             string    `json:"id"`
	ParticipantIDs []int     `json:"participantIds"`
	Messages       []Message `json:"messages"`
}

// LastMessage returns the most recently appended message.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// HasMessage reports whether a message with the given id is present.
func (c Conversation) HasMessage(id int) bool {
	return slices.ContainsFunc(c.Messages, func(m Message) bool { return m.ID == id })
}

// Peer returns the participant that is not self.
func (c Conversation) Peer(self int) int {
	for _, id := range c.ParticipantIDs {
		if id != self {
			return id
		}
	}
	return 0
}

type Gig struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	BandName         string     `json:"bandName"`
	Location         string     `json:"location"`
	Description      string     `json:"description"`
	InstrumentNeeded Instrument `json:"instrumentNeeded"`
	Genre            Genre      `json:"genre"`
	PostedByUserID   int        `json:"postedByUserId"`
	Status           GigStatus  `json:"status"`
	PostedDate       time.Time  `json:"postedDate"`
}

// FollowResult is the payload of follow and unfollow. NewNotification is
// only present when the backend generated one.
type FollowResult struct {
	UpdatedCurrentUser Musician      `json:"updatedCurrentUser"`
	UpdatedTargetUser  Musician      `json:"updatedTargetUser"`
	NewNotification    *Notification `json:"newNotification,omitempty"`
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
