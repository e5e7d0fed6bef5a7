package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidInput is wrapped by every draft validation failure.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ProfileDraft is the input to registration.
type ProfileDraft struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Location   string     `json:"location"`
	Instrument Instrument `json:"instrument"`
}

func (d ProfileDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name is required")
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return invalid("email %q is not valid", d.Email)
	}
	if strings.TrimSpace(d.Location) == "" {
		return invalid("location is required")
	}
	if _, ok := ParseInstrument(string(d.Instrument)); !ok {
		return invalid("unknown instrument %q", d.Instrument)
	}
	return nil
}

// ReviewDraft is a review before the backend assigns it an id and date.
type ReviewDraft struct {
	ReviewerID        int    `json:"reviewerId"`
	ReviewerName      string `json:"reviewerName"`
	ReviewerAvatarURL string `json:"reviewerAvatarUrl"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
}

func (d ReviewDraft) Validate() error {
	if d.ReviewerID <= 0 {
		return invalid("reviewer is required")
	}
	if d.Rating < 1 || d.Rating > 5 {
		return invalid("rating must be between 1 and 5, got %d", d.Rating)
	}
	if strings.TrimSpace(d.Comment) == "" {
		return invalid("review comment is empty")
	}
	return nil
}

type CommentDraft struct {
	AuthorID        int       `json:"authorId"`
	AuthorName      string    `json:"authorName"`
	AuthorAvatarURL string    `json:"authorAvatarUrl"`
	Text            string    `json:"text"`
	Date            time.Time `json:"date"`
}

func (d CommentDraft) Validate() error {
	if d.AuthorID <= 0 {
		return invalid("comment author is required")
	}
	if strings.TrimSpace(d.Text) == "" {
		return invalid("comment text is empty")
	}
	return nil
}

type PortfolioDraft struct {
	Type         PortfolioItemType `json:"type"`
	URL          string            `json:"url"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
}

func (d PortfolioDraft) Validate() error {
	switch d.Type {
	case Image, Video, Audio:
	default:
		return invalid("unknown portfolio item type %q", d.Type)
	}
	if strings.TrimSpace(d.URL) == "" {
		return invalid("portfolio url is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return invalid("portfolio title is required")
	}
	return nil
}

type GigDraft struct {
	Title            string     `json:"title"`
	BandName         string     `json:"bandName"`
	Location         string     `json:"location"`
	Description      string     `json:"description"`
	InstrumentNeeded Instrument `json:"instrumentNeeded"`
	Genre            Genre      `json:"genre"`
	PostedByUserID   int        `json:"postedByUserId"`
}

func (d GigDraft) Validate() error {
	if d.PostedByUserID <= 0 {
		return invalid("gig owner is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return invalid("gig title is required")
	}
	if strings.TrimSpace(d.BandName) == "" {
		return invalid("band name is required")
	}
	if strings.TrimSpace(d.Location) == "" {
		return invalid("gig location is required")
	}
	return nil
}

// MessageDraft is an outgoing chat message. The backend assigns id and
// timestamp when it broadcasts the message back.
type MessageDraft struct {
	SenderID int    `json:"senderId"`
	Text     string `json:"text"`
}

func (d MessageDraft) Validate() error {
	if d.SenderID <= 0 {
		return invalid("sender is required")
	}
	if strings.TrimSpace(d.Text) == "" {
		return invalid("message text is empty")
	}
	return nil
}

// Normalized returns the draft with surrounding whitespace trimmed from Text.
func (d MessageDraft) Normalized() MessageDraft {
	d.Text = strings.TrimSpace(d.Text)
	return d
}
