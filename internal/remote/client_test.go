package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gigtune/gigtune/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingSignaler struct {
	n   atomic.Int32
	err error
}

func (s *countingSignaler) Touch(context.Context) error {
	s.n.Add(1)
	return s.err
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(srv.URL+"/api/", opts...)
}

func TestListMusicians(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/musicians", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ana","instrument":"Cello","genres":["Jazz"]},{"id":2,"name":"Bo"}]`)
	})

	got, err := c.ListMusicians(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, model.Cello, got[0].Instrument)
	assert.Equal(t, []model.Genre{model.Jazz}, got[0].Genres)
}

func TestErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Email already registered"}`)
	})

	_, err := c.ListGigs(context.Background())
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusConflict, re.StatusCode)
	assert.Equal(t, "Email already registered", re.Message)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestErrorMessageFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})

	_, err := c.ListNotifications(context.Background())
	require.Error(t, err)
	assert.Equal(t, "request failed with status 500", err.Error())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL)

	_, err := c.ListConversations(context.Background())
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestEmptyBodyIsSuccessWithoutPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	n, err := c.MarkNotificationRead(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, n)

	list, err := c.MarkAllNotificationsRead(context.Background())
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestValidationFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	ctx := context.Background()

	_, err := c.AddReview(ctx, 2, model.ReviewDraft{ReviewerID: 1, Rating: 9, Comment: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = c.AddReview(ctx, 1, model.ReviewDraft{ReviewerID: 1, Rating: 4, Comment: "me"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = c.Follow(ctx, 3, 3)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = c.AddComment(ctx, 10, model.CommentDraft{AuthorID: 1, Text: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = c.StartConversation(ctx, 1, 1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = c.AddReaction(ctx, 10, "", 1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	assert.Zero(t, hits.Load(), "no request should reach the backend")
}

func TestFollowDecodesBothUsersAndNotification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/musicians/2/follow", r.URL.Path)
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body["currentUserId"])
		_, _ = io.WriteString(w, `{
			"updatedCurrentUser": {"id":1,"following":[2]},
			"updatedTargetUser": {"id":2,"followers":[1]},
			"newNotification": {"id":50,"type":"New Follower","read":false}
		}`)
	})

	res, err := c.Follow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.UpdatedCurrentUser.Following)
	assert.Equal(t, []int{1}, res.UpdatedTargetUser.Followers)
	require.NotNil(t, res.NewNotification)
	assert.Equal(t, model.NewFollower, res.NewNotification.Type)
}

func TestUnfollowWithoutNotification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/musicians/2/unfollow", r.URL.Path)
		_, _ = io.WriteString(w, `{"updatedCurrentUser":{"id":1,"following":[]},"updatedTargetUser":{"id":2,"followers":[]}}`)
	})

	res, err := c.Unfollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, res.NewNotification)
}

func TestMutatingCallsTouchSignal(t *testing.T) {
	sig := &countingSignaler{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/gigs":
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `[]`)
				return
			}
			_, _ = io.WriteString(w, `{"id":9,"title":"Bassist","status":"Open"}`)
		case "/api/portfolio/3/reactions":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "🔥", body["emoji"])
			assert.EqualValues(t, 5, body["userId"])
			_, _ = io.WriteString(w, `{"id":1}`)
		default:
			_, _ = io.WriteString(w, `{"id":1}`)
		}
	}, WithSignaler(sig))
	ctx := context.Background()

	gig, err := c.CreateGig(ctx, model.GigDraft{Title: "Bassist", BandName: "Low End", Location: "Oslo", PostedByUserID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.GigOpen, gig.Status)

	_, err = c.AddReaction(ctx, 3, "🔥", 5)
	require.NoError(t, err)

	_, err = c.MarkNotificationRead(ctx, 1)
	require.NoError(t, err)
	gigs, err := c.ListGigs(ctx)
	require.NoError(t, err)
	assert.Empty(t, gigs)

	assert.EqualValues(t, 2, sig.n.Load(), "only mutating calls signal")
}

func TestSignalFailureDoesNotFailOperation(t *testing.T) {
	sig := &countingSignaler{err: errors.New("disk full")}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"1-2","participantIds":[1,2],"messages":[]}`)
	}, WithSignaler(sig))

	conv, err := c.StartConversation(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "1-2", conv.ID)
	assert.EqualValues(t, 1, sig.n.Load())
}

func TestFailedMutationDoesNotSignal(t *testing.T) {
	sig := &countingSignaler{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, WithSignaler(sig))

	_, err := c.AddPortfolioItem(context.Background(), 1, model.PortfolioDraft{Type: model.Image, URL: "u", Title: "t"})
	require.Error(t, err)
	assert.Zero(t, sig.n.Load())
}

func TestPortfolioBodyCarriesEmptyCollections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Live at Lux", body["title"])
		assert.Equal(t, []any{}, body["comments"])
		assert.Equal(t, map[string]any{}, body["reactions"])
		_, _ = io.WriteString(w, `{"id":1,"portfolio":[{"id":4,"title":"Live at Lux"}]}`)
	})

	m, err := c.AddPortfolioItem(context.Background(), 1, model.PortfolioDraft{Type: model.Video, URL: "https://v", Title: "Live at Lux"})
	require.NoError(t, err)
	require.Len(t, m.Portfolio, 1)
}
