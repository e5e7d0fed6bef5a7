package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/realtime"
	"github.com/gigtune/gigtune/internal/remote"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// quietBackend applies every mutation but answers it with an empty 200.
type quietBackend struct {
	mu            sync.Mutex
	musicians     []model.Musician
	conversations []model.Conversation
}

func newQuietBackend(t *testing.T) *remote.Client {
	t.Helper()
	b := &quietBackend{
		musicians: []model.Musician{
			{ID: 1, Name: "Ana Souza", Email: "ana@gigtune.dev"},
			{ID: 2, Name: "Bruno Lima", Email: "bruno@gigtune.dev"},
		},
		conversations: []model.Conversation{},
	}

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	target := func(r *http.Request) (*model.Musician, bool) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			return nil, false
		}
		i := slices.IndexFunc(b.musicians, func(m model.Musician) bool { return m.ID == id })
		if i < 0 {
			return nil, false
		}
		return &b.musicians[i], true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /musicians", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.musicians)
	})
	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Notification{})
	})
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.conversations)
	})
	mux.HandleFunc("GET /gigs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Gig{})
	})
	mux.HandleFunc("POST /musicians/{id}/follow", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CurrentUserID int `json:"currentUserId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		m, ok := target(r)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		m.Followers = append(m.Followers, body.CurrentUserID)
		for i := range b.musicians {
			if b.musicians[i].ID == body.CurrentUserID {
				b.musicians[i].Following = append(b.musicians[i].Following, m.ID)
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /musicians/{id}/reviews", func(w http.ResponseWriter, r *http.Request) {
		var draft model.ReviewDraft
		_ = json.NewDecoder(r.Body).Decode(&draft)
		b.mu.Lock()
		defer b.mu.Unlock()
		m, ok := target(r)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		m.Reviews = append(m.Reviews, model.Review{
			ID: len(m.Reviews) + 1, ReviewerID: draft.ReviewerID, Rating: draft.Rating, Comment: draft.Comment,
		})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /conversations", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ParticipantIDs []int `json:"participantIds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		if len(body.ParticipantIDs) == 2 {
			id := model.ConversationID(body.ParticipantIDs[0], body.ParticipantIDs[1])
			if !slices.ContainsFunc(b.conversations, func(c model.Conversation) bool { return c.ID == id }) {
				b.conversations = append(b.conversations, model.Conversation{
					ID: id, ParticipantIDs: body.ParticipantIDs, Messages: []model.Message{},
				})
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return remote.New(srv.URL)
}

type recordingChannel struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (c *recordingChannel) OnMessage(realtime.MessageHandler) {}
func (c *recordingChannel) OnDataUpdated(realtime.DataHandler) {}
func (c *recordingChannel) Open(context.Context, int) error { return nil }
func (c *recordingChannel) Close() {}
func (c *recordingChannel) JoinConversations([]string) {}

func (c *recordingChannel) SendMessage(id string, draft model.MessageDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent == nil {
		c.sent = make(map[string][]string)
	}
	c.sent[id] = append(c.sent[id], draft.Text)
	return nil
}

func newTestCLI(t *testing.T) (*cli, *recordingChannel) {
	t.Helper()
	client := newQuietBackend(t)
	ch := &recordingChannel{}
	mgr := session.New(client, ch, bus.New(), zaptest.NewLogger(t))
	t.Cleanup(mgr.Logout)
	return &cli{mgr: mgr, email: "ana@gigtune.dev"}, ch
}

func TestCommandsSurviveEmptyConfirmations(t *testing.T) {
	ctx := context.Background()

	t.Run("follow", func(t *testing.T) {
		c, _ := newTestCLI(t)
		require.NoError(t, c.run(ctx, "follow", []string{"2"}))

		me := c.mgr.Store().CurrentUser()
		assert.True(t, me.IsFollowing(2))
	})

	t.Run("follow json", func(t *testing.T) {
		c, _ := newTestCLI(t)
		c.jsonOut = true
		require.NoError(t, c.run(ctx, "follow", []string{"2"}))
	})

	t.Run("review", func(t *testing.T) {
		c, _ := newTestCLI(t)
		require.NoError(t, c.run(ctx, "review", []string{"2", "5", "Solid", "groove"}))

		m, ok := c.mgr.Store().Musician(2)
		require.True(t, ok)
		assert.True(t, m.HasReviewFrom(1))
	})

	t.Run("send", func(t *testing.T) {
		c, ch := newTestCLI(t)
		require.NoError(t, c.run(ctx, "send", []string{"2", "hello", "there"}))

		ch.mu.Lock()
		defer ch.mu.Unlock()
		assert.Equal(t, []string{"hello there"}, ch.sent["1-2"])
	})
}

func TestRunRejectsBadArguments(t *testing.T) {
	c, _ := newTestCLI(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.run(ctx, "follow", nil), errUsage)
	assert.ErrorIs(t, c.run(ctx, "review", []string{"2", "five", "x"}), errUsage)
	assert.ErrorIs(t, c.run(ctx, "dance", nil), errUsage)

	c.email = ""
	assert.ErrorIs(t, c.run(ctx, "gigs", nil), errUsage)
}
