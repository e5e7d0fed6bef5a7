package syncstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/gigtune/gigtune/internal/model"
	"go.uber.org/zap"
)

// UpdateProfile saves the logged-in musician's profile.
func (s *Store) UpdateProfile(ctx context.Context, m model.Musician) (*model.Musician, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if m.ID != s.userID {
		return nil, ErrNotOwner
	}
	saved, err := s.remote.UpdateMusician(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := s.mergeMusicians(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// AddReview reviews another musician. Self reviews and second reviews are
// rejected locally.
func (s *Store) AddReview(ctx context.Context, musicianID, rating int, comment string) (*model.Musician, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if musicianID == s.userID {
		return nil, ErrSelfReview
	}
	s.mu.RLock()
	target, ok := s.findMusician(musicianID)
	me := s.currentUserLocked()
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMusician, musicianID)
	}
	if target.HasReviewFrom(me.ID) {
		return nil, ErrDuplicateReview
	}

	draft := model.ReviewDraft{
		ReviewerID:        me.ID,
		ReviewerName:      me.Name,
		ReviewerAvatarURL: me.AvatarURL,
		Rating:            rating,
		Comment:           comment,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.remote.AddReview(ctx, musicianID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.mergeMusicians(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleFollow follows target if the logged-in musician does not follow it
// yet, and unfollows it otherwise.
func (s *Store) ToggleFollow(ctx context.Context, targetID int) (*model.FollowResult, error) {
	me := s.CurrentUser()
	if me.IsFollowing(targetID) {
		return s.Unfollow(ctx, targetID)
	}
	return s.Follow(ctx, targetID)
}

func (s *Store) Follow(ctx context.Context, targetID int) (*model.FollowResult, error) {
	return s.follow(ctx, targetID, s.remote.Follow)
}

func (s *Store) Unfollow(ctx context.Context, targetID int) (*model.FollowResult, error) {
	return s.follow(ctx, targetID, s.remote.Unfollow)
}

type followFunc func(ctx context.Context, currentUserID, targetID int) (*model.FollowResult, error)

// follow applies both returned musicians and the optional notification in
// one critical section, so no view observes one side of the edge without
// the other.
func (s *Store) follow(ctx context.Context, targetID int, call followFunc) (*model.FollowResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if targetID == s.userID {
		return nil, ErrSelfFollow
	}
	res, err := call(ctx, s.userID, targetID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	cols := []Collection{Musicians}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.musicians = upsert(s.musicians, res.UpdatedCurrentUser, musicianID, false)
	s.musicians = upsert(s.musicians, res.UpdatedTargetUser, musicianID, false)
	if res.UpdatedCurrentUser.ID == s.userID {
		s.self = res.UpdatedCurrentUser
	}
	if n := res.NewNotification; n != nil && n.ID != 0 {
		s.notifications = upsert(s.notifications, *n, notificationID, true)
		cols = append(cols, Notifications)
	}
	s.mu.Unlock()

	s.changed(cols...)
	return res, nil
}

func (s *Store) AddPortfolioItem(ctx context.Context, draft model.PortfolioDraft) (*model.Musician, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.remote.AddPortfolioItem(ctx, s.userID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.mergeMusicians(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// AddComment comments on a portfolio item as the logged-in musician.
func (s *Store) AddComment(ctx context.Context, itemID int, text string) (*model.Musician, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	me := s.CurrentUser()
	draft := model.CommentDraft{
		AuthorID:        me.ID,
		AuthorName:      me.Name,
		AuthorAvatarURL: me.AvatarURL,
		Text:            text,
		Date:            s.now().UTC(),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.remote.AddComment(ctx, itemID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.mergeMusicians(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// AddReaction reacts to a portfolio item. Reactions are additive: reacting
// again with an emoji already recorded for the user changes nothing and
// issues no request, in which case the returned musician is nil.
func (s *Store) AddReaction(ctx context.Context, itemID int, emoji string) (*model.Musician, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.hasReaction(itemID, emoji) {
		s.logger.Debug("reaction already recorded", zap.Int("item_id", itemID), zap.String("emoji", emoji))
		return nil, nil
	}
	updated, err := s.remote.AddReaction(ctx, itemID, emoji, s.userID)
	if err != nil {
		return nil, err
	}
	if err := s.mergeMusicians(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) hasReaction(itemID int, emoji string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.musicians {
		if item, ok := s.musicians[i].PortfolioItem(itemID); ok {
			return item.HasReaction(emoji, s.userID)
		}
	}
	return false
}

// CreateGig posts a gig owned by the logged-in musician. New gigs go to the
// front of the collection.
func (s *Store) CreateGig(ctx context.Context, draft model.GigDraft) (*model.Gig, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	draft.PostedByUserID = s.userID
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	gig, err := s.remote.CreateGig(ctx, draft)
	if err != nil {
		return nil, err
	}
	if gig == nil {
		return nil, nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.gigs = upsert(s.gigs, *gig, gigID, true)
	s.mu.Unlock()
	s.changed(Gigs)
	return gig, nil
}

// StartConversation opens (or reuses) the conversation with other and joins
// its room.
func (s *Store) StartConversation(ctx context.Context, other int) (*model.Conversation, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	conv, err := s.remote.StartConversation(ctx, s.userID, other)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	i := slices.IndexFunc(s.conversations, func(c model.Conversation) bool { return c.ID == conv.ID })
	merged := *conv
	if i >= 0 {
		merged = unionMessages(s.conversations[i], merged)
	}
	s.conversations = upsert(s.conversations, merged, conversationID, false)
	s.adoptOrphansLocked()
	ids := conversationIDs(s.conversations)
	s.mu.Unlock()

	s.channel.JoinConversations(ids)
	s.changed(Conversations)
	return &merged, nil
}

// OpenConversation is StartConversation for callers that need the
// conversation itself. A confirmation without a body is resolved by
// reloading and looking the conversation up by its id.
func (s *Store) OpenConversation(ctx context.Context, other int) (model.Conversation, error) {
	conv, err := s.StartConversation(ctx, other)
	if err != nil {
		return model.Conversation{}, err
	}
	if conv != nil {
		return *conv, nil
	}
	if err := s.Load(ctx); err != nil {
		return model.Conversation{}, err
	}
	if c, ok := s.ConversationWith(other); ok {
		return c, nil
	}
	return model.Conversation{}, fmt.Errorf("%w: %s", ErrUnknownConversation, model.ConversationID(s.userID, other))
}

// MarkNotificationRead marks one notification read. Already-read
// notifications are left alone without a request.
func (s *Store) MarkNotificationRead(ctx context.Context, id int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.mu.RLock()
	i := slices.IndexFunc(s.notifications, func(n model.Notification) bool { return n.ID == id })
	alreadyRead := i >= 0 && s.notifications[i].Read
	s.mu.RUnlock()
	if alreadyRead {
		return nil
	}

	updated, err := s.remote.MarkNotificationRead(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if updated != nil {
		n := *updated
		n.Read = true
		s.notifications = upsert(s.notifications, n, notificationID, false)
	} else if i := slices.IndexFunc(s.notifications, func(n model.Notification) bool { return n.ID == id }); i >= 0 {
		n := s.notifications[i]
		n.Read = true
		s.notifications = upsert(s.notifications, n, notificationID, false)
	}
	s.mu.Unlock()
	s.changed(Notifications)
	return nil
}

// MarkAllNotificationsRead replaces the collection with the backend's
// updated list, never turning a read notification back to unread.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	updated, err := s.remote.MarkAllNotificationsRead(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if updated == nil {
		updated = slices.Clone(s.notifications)
		for i := range updated {
			updated[i].Read = true
		}
	}
	s.notifications = keepRead(s.notifications, updated)
	s.mu.Unlock()
	s.changed(Notifications)
	return nil
}

// mergeMusicians substitutes the authoritative copies by id. Confirmations
// that arrive after Close are dropped.
func (s *Store) mergeMusicians(ms ...*model.Musician) error {
	applied := false
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	for _, m := range ms {
		if m == nil {
			continue
		}
		s.musicians = upsert(s.musicians, *m, musicianID, false)
		if m.ID == s.userID {
			s.self = *m
		}
		applied = true
	}
	s.mu.Unlock()
	if applied {
		s.changed(Musicians)
	}
	return nil
}
