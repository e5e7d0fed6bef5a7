package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gigtune/gigtune/internal/model"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Login resolves the musician owning email. The backend performs no password check.
func (c *Client) Login(ctx context.Context, email string) (*model.Musician, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email is required")
	}
	var m model.Musician
	return decoded(&m)(c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email}, &m))
}

func (c *Client) Register(ctx context.Context, draft model.ProfileDraft) (*model.Musician, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var m model.Musician
	return decoded(&m)(c.mutate(ctx, http.MethodPost, "/register", draft, &m))
}

func (c *Client) ListMusicians(ctx context.Context) ([]model.Musician, error) {
	var out []model.Musician
	_, err := c.do(ctx, http.MethodGet, "/musicians", nil, &out)
	return out, err
}

func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	_, err := c.do(ctx, http.MethodGet, "/notifications", nil, &out)
	return out, err
}

func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	_, err := c.do(ctx, http.MethodGet, "/conversations", nil, &out)
	return out, err
}

func (c *Client) ListGigs(ctx context.Context) ([]model.Gig, error) {
	var out []model.Gig
	_, err := c.do(ctx, http.MethodGet, "/gigs", nil, &out)
	return out, err
}

// UpdateMusician replaces the profile and returns the stored copy.
func (c *Client) UpdateMusician(ctx context.Context, m model.Musician) (*model.Musician, error) {
	if m.ID <= 0 {
		return nil, invalid("musician id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, invalid("name is required")
	}
	var out model.Musician
	return decoded(&out)(c.mutate(ctx, http.MethodPut, fmt.Sprintf("/musicians/%d", m.ID), m, &out))
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int) (*model.Notification, error) {
	var out model.Notification
	return decoded(&out)(c.do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, &out))
}

// MarkAllNotificationsRead returns the full, updated notification list.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	_, err := c.do(ctx, http.MethodPost, "/notifications/read-all", nil, &out)
	return out, err
}

// StartConversation returns the conversation between a and b, creating it if needed.
func (c *Client) StartConversation(ctx context.Context, a, b int) (*model.Conversation, error) {
	if a <= 0 || b <= 0 || a == b {
		return nil, invalid("conversation needs two distinct participants, got %d and %d", a, b)
	}
	body := map[string][]int{"participantIds": {a, b}}
	var out model.Conversation
	return decoded(&out)(c.mutate(ctx, http.MethodPost, "/conversations", body, &out))
}

type portfolioBody struct {
	model.PortfolioDraft
	Comments  []model.Comment  `json:"comments"`
	Reactions map[string][]int `json:"reactions"`
}

func (c *Client) AddPortfolioItem(ctx context.Context, musicianID int, draft model.PortfolioDraft) (*model.Musician, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	body := portfolioBody{PortfolioDraft: draft, Comments: []model.Comment{}, Reactions: map[string][]int{}}
	var out model.Musician
	return decoded(&out)(c.mutate(ctx, http.MethodPost, fmt.Sprintf("/musicians/%d/portfolio", musicianID), body, &out))
}

func (c *Client) AddReview(ctx context.Context, musicianID int, draft model.ReviewDraft) (*model.Musician, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if draft.ReviewerID == musicianID {
		return nil, invalid("musician %d cannot review themselves", musicianID)
	}
	var out model.Musician
	return decoded(&out)(c.mutate(ctx, http.MethodPost, fmt.Sprintf("/musicians/%d/reviews", musicianID), draft, &out))
}

func (c *Client) Follow(ctx context.Context, currentUserID, targetID int) (*model.FollowResult, error) {
	return c.followOp(ctx, "follow", currentUserID, targetID)
}

func (c *Client) Unfollow(ctx context.Context, currentUserID, targetID int) (*model.FollowResult, error) {
	return c.followOp(ctx, "unfollow", currentUserID, targetID)
}

func (c *Client) followOp(ctx context.Context, op string, currentUserID, targetID int) (*model.FollowResult, error) {
	if currentUserID == targetID {
		return nil, invalid("musician %d cannot %s themselves", currentUserID, op)
	}
	body := map[string]int{"currentUserId": currentUserID}
	var out model.FollowResult
	return decoded(&out)(c.mutate(ctx, http.MethodPost, fmt.Sprintf("/musicians/%d/%s", targetID, op), body, &out))
}

// AddComment returns the musician owning the portfolio item.
func (c *Client) AddComment(ctx context.Context, itemID int, draft model.CommentDraft) (*model.Musician, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var out model.Musician
	return decoded(&out)(c.mutate(ctx, http.MethodPost, fmt.Sprintf("/portfolio/%d/comments", itemID), draft, &out))
}

// AddReaction returns the musician owning the portfolio item.
func (c *Client) AddReaction(ctx context.Context, itemID int, emoji string, userID int) (*model.Musician, error) {
	if strings.TrimSpace(emoji) == "" {
		return nil, invalid("emoji is required")
	}
	if userID <= 0 {
		return nil, invalid("reacting user is required")
	}
	body := struct {
		UserID int    `json:"userId"`
		Emoji  string `json:"emoji"`
	}{userID, emoji}
	var out model.Musician
	return decoded(&out)(c.mutate(ctx, http.MethodPost, fmt.Sprintf("/portfolio/%d/reactions", itemID), body, &out))
}

func (c *Client) CreateGig(ctx context.Context, draft model.GigDraft) (*model.Gig, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var out model.Gig
	return decoded(&out)(c.mutate(ctx, http.MethodPost, "/gigs", draft, &out))
}
