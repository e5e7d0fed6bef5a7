package syncstore

import (
	"context"

	"github.com/gigtune/gigtune/internal/model"
)

// Remote is the subset of the REST client the store drives.
type Remote interface {
	ListMusicians(ctx context.Context) ([]model.Musician, error)
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	ListGigs(ctx context.Context) ([]model.Gig, error)

	UpdateMusician(ctx context.Context, m model.Musician) (*model.Musician, error)
	MarkNotificationRead(ctx context.Context, id int) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) ([]model.Notification, error)
	StartConversation(ctx context.Context, a, b int) (*model.Conversation, error)
	AddPortfolioItem(ctx context.Context, musicianID int, draft model.PortfolioDraft) (*model.Musician, error)
	AddReview(ctx context.Context, musicianID int, draft model.ReviewDraft) (*model.Musician, error)
	Follow(ctx context.Context, currentUserID, targetID int) (*model.FollowResult, error)
	Unfollow(ctx context.Context, currentUserID, targetID int) (*model.FollowResult, error)
	AddComment(ctx context.Context, itemID int, draft model.CommentDraft) (*model.Musician, error)
	AddReaction(ctx context.Context, itemID int, emoji string, userID int) (*model.Musician, error)
	CreateGig(ctx context.Context, draft model.GigDraft) (*model.Gig, error)
}

// Channel is the subset of the realtime channel the store drives.
type Channel interface {
	JoinConversations(ids []string)
	SendMessage(conversationID string, draft model.MessageDraft) error
}
