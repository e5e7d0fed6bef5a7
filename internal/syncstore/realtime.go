package syncstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gigtune/gigtune/internal/model"
	"go.uber.org/zap"
)

// HandleIncomingMessage applies a receive_message event. Delivery is
// idempotent by message id. A message for an unknown conversation is held
// and the conversation list is refetched; the message is appended once its
// conversation shows up, unless the fetch already carried it.
func (s *Store) HandleIncomingMessage(conversationID string, msg model.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	convs, known, changed := appendMessage(s.conversations, conversationID, msg)
	if known {
		s.conversations = convs
		s.mu.Unlock()
		if changed {
			s.changed(Conversations)
		}
		return
	}
	s.holdOrphanLocked(conversationID, msg)
	s.mu.Unlock()

	s.logger.Info("message for unknown conversation, refetching conversations",
		zap.String("conversation_id", conversationID))
	s.refetchConversations()
}

// HandleDataUpdated applies the coarse "data changed elsewhere" signal by
// re-running the bulk load in the background.
func (s *Store) HandleDataUpdated() {
	s.spawn(func(ctx context.Context) {
		if err := s.Load(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("reload after data change failed", zap.Error(err))
		}
	})
}

// SendMessage hands text to the realtime channel. Nothing is appended
// locally: the message appears when the backend broadcasts it back.
func (s *Store) SendMessage(conversationID, text string) error {
	draft := model.MessageDraft{SenderID: s.userID, Text: text}.Normalized()
	if err := draft.Validate(); err != nil {
		return err
	}
	s.mu.RLock()
	closed := s.closed
	known := slices.ContainsFunc(s.conversations, func(c model.Conversation) bool { return c.ID == conversationID })
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownConversation, conversationID)
	}
	return s.channel.SendMessage(conversationID, draft)
}

func (s *Store) holdOrphanLocked(conversationID string, msg model.Message) {
	for _, m := range s.orphans[conversationID] {
		if m.ID == msg.ID {
			return
		}
	}
	s.orphans[conversationID] = append(s.orphans[conversationID], msg)
}

// adoptOrphansLocked appends held messages to conversations that are now
// known. It reports whether any orphan is still waiting.
func (s *Store) adoptOrphansLocked() bool {
	for id, msgs := range s.orphans {
		adopted := false
		for _, m := range msgs {
			convs, known, _ := appendMessage(s.conversations, id, m)
			if !known {
				break
			}
			s.conversations = convs
			adopted = true
		}
		if adopted {
			delete(s.orphans, id)
		}
	}
	return len(s.orphans) > 0
}

// refetchConversations replaces the conversation collection with a fresh
// fetch. Concurrent requests coalesce into at most one follow-up fetch.
func (s *Store) refetchConversations() {
	s.mu.Lock()
	if s.refetching {
		s.refetchAgain = true
		s.mu.Unlock()
		return
	}
	s.refetching = true
	s.mu.Unlock()

	started := s.spawn(func(ctx context.Context) {
		for {
			again := s.refetchOnce(ctx)
			if !again || ctx.Err() != nil {
				return
			}
		}
	})
	if !started {
		s.mu.Lock()
		s.refetching = false
		s.mu.Unlock()
	}
}

func (s *Store) refetchOnce(ctx context.Context) (again bool) {
	fetched, err := s.remote.ListConversations(ctx)

	s.mu.Lock()
	again = s.refetchAgain
	s.refetchAgain = false
	if !again {
		s.refetching = false
	}
	if err != nil || s.closed {
		s.mu.Unlock()
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("conversation refetch failed", zap.Error(err))
		}
		return again
	}
	s.conversations = reconcileConversations(s.conversations, fetched)
	waiting := s.adoptOrphansLocked()
	ids := conversationIDs(s.conversations)
	s.mu.Unlock()

	if waiting {
		s.logger.Debug("orphan messages still waiting for their conversation",
			zap.String("conversations", strings.Join(s.orphanIDs(), ",")))
	}
	s.channel.JoinConversations(ids)
	s.changed(Conversations)
	return again
}

func (s *Store) orphanIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.orphans))
	for id := range s.orphans {
		ids = append(ids, id)
	}
	return ids
}
