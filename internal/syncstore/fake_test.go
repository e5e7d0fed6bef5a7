package syncstore

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errBackend = errors.New("backend unavailable")

// fakeRemote is an in-memory backend. Follow state and reactions are
// applied to its own musician list so repeated calls behave like the real
// server.
type fakeRemote struct {
	mu            sync.Mutex
	musicians     []model.Musician
	notifications []model.Notification
	conversations []model.Conversation
	gigs          []model.Gig

	listErr      map[string]error
	gigsGate     chan struct{}
	calls        map[string]int
	notification *model.Notification
	// inFlight runs inside every call, after the request is counted.
	inFlight func(op string)
	// bodiless ops apply their change but confirm it with no body.
	bodiless map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		listErr:  make(map[string]error),
		calls:    make(map[string]int),
		bodiless: make(map[string]bool),
	}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) hit(op string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.listErr[op]
	hook := f.inFlight
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return err
}

func (f *fakeRemote) ListMusicians(context.Context) ([]model.Musician, error) {
	if err := f.hit("musicians"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneMusicians(f.musicians), nil
}

func (f *fakeRemote) ListNotifications(context.Context) ([]model.Notification, error) {
	if err := f.hit("notifications"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.notifications), nil
}

func (f *fakeRemote) ListConversations(context.Context) ([]model.Conversation, error) {
	if err := f.hit("conversations"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.conversations)
	for i := range out {
		out[i].Messages = slices.Clone(out[i].Messages)
	}
	return out, nil
}

func (f *fakeRemote) ListGigs(ctx context.Context) ([]model.Gig, error) {
	f.mu.Lock()
	gate := f.gigsGate
	f.gigsGate = nil
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.hit("gigs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.gigs), nil
}

func (f *fakeRemote) UpdateMusician(_ context.Context, m model.Musician) (*model.Musician, error) {
	if err := f.hit("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.musicians = upsert(f.musicians, m, musicianID, false)
	return &m, nil
}

func (f *fakeRemote) MarkNotificationRead(_ context.Context, id int) (*model.Notification, error) {
	if err := f.hit("mark_read"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
			n := f.notifications[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) MarkAllNotificationsRead(context.Context) ([]model.Notification, error) {
	if err := f.hit("mark_all"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		f.notifications[i].Read = true
	}
	return slices.Clone(f.notifications), nil
}

func (f *fakeRemote) StartConversation(_ context.Context, a, b int) (*model.Conversation, error) {
	if err := f.hit("start_conversation"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := model.ConversationID(a, b)
	for _, c := range f.conversations {
		if c.ID == id {
			return &c, nil
		}
	}
	c := model.Conversation{ID: id, ParticipantIDs: []int{a, b}}
	f.conversations = append(f.conversations, c)
	if f.bodiless["start_conversation"] {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeRemote) AddPortfolioItem(_ context.Context, musicianID int, d model.PortfolioDraft) (*model.Musician, error) {
	if err := f.hit("portfolio"); err != nil {
		return nil, err
	}
	return f.editMusician(musicianID, func(m *model.Musician) {
		m.Portfolio = append(m.Portfolio, model.PortfolioItem{
			ID: 1000 + len(m.Portfolio), Type: d.Type, URL: d.URL, Title: d.Title,
			Reactions: map[string][]int{},
		})
	})
}

func (f *fakeRemote) AddReview(_ context.Context, musicianID int, d model.ReviewDraft) (*model.Musician, error) {
	if err := f.hit("review"); err != nil {
		return nil, err
	}
	return f.editMusician(musicianID, func(m *model.Musician) {
		m.Reviews = append(m.Reviews, model.Review{
			ID: 500 + len(m.Reviews), ReviewerID: d.ReviewerID, Rating: d.Rating, Comment: d.Comment,
		})
	})
}

func (f *fakeRemote) Follow(_ context.Context, cur, target int) (*model.FollowResult, error) {
	if err := f.hit("follow"); err != nil {
		return nil, err
	}
	return f.setFollow(cur, target, true), nil
}

func (f *fakeRemote) Unfollow(_ context.Context, cur, target int) (*model.FollowResult, error) {
	if err := f.hit("unfollow"); err != nil {
		return nil, err
	}
	return f.setFollow(cur, target, false), nil
}

func (f *fakeRemote) setFollow(cur, target int, on bool) *model.FollowResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := &model.FollowResult{NewNotification: f.notification}
	for i := range f.musicians {
		m := &f.musicians[i]
		switch m.ID {
		case cur:
			m.Following = setMember(m.Following, target, on)
			res.UpdatedCurrentUser = cloneMusician(*m)
		case target:
			m.Followers = setMember(m.Followers, cur, on)
			res.UpdatedTargetUser = cloneMusician(*m)
		}
	}
	return res
}

func (f *fakeRemote) AddComment(_ context.Context, itemID int, d model.CommentDraft) (*model.Musician, error) {
	if err := f.hit("comment"); err != nil {
		return nil, err
	}
	return f.editItem(itemID, func(p *model.PortfolioItem) {
		p.Comments = append(p.Comments, model.Comment{ID: len(p.Comments) + 1, AuthorID: d.AuthorID, Text: d.Text, Date: d.Date})
	})
}

func (f *fakeRemote) AddReaction(_ context.Context, itemID int, emoji string, userID int) (*model.Musician, error) {
	if err := f.hit("reaction"); err != nil {
		return nil, err
	}
	return f.editItem(itemID, func(p *model.PortfolioItem) {
		if p.Reactions == nil {
			p.Reactions = map[string][]int{}
		}
		p.Reactions[emoji] = setMember(p.Reactions[emoji], userID, true)
	})
}

func (f *fakeRemote) CreateGig(_ context.Context, d model.GigDraft) (*model.Gig, error) {
	if err := f.hit("gig"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g := model.Gig{ID: 900 + len(f.gigs), Title: d.Title, BandName: d.BandName, Location: d.Location,
		PostedByUserID: d.PostedByUserID, Status: model.GigOpen}
	f.gigs = append([]model.Gig{g}, f.gigs...)
	return &g, nil
}

func (f *fakeRemote) editMusician(id int, fn func(*model.Musician)) (*model.Musician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.musicians {
		if f.musicians[i].ID == id {
			fn(&f.musicians[i])
			m := cloneMusician(f.musicians[i])
			return &m, nil
		}
	}
	return nil, errors.New("no such musician")
}

func (f *fakeRemote) editItem(itemID int, fn func(*model.PortfolioItem)) (*model.Musician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.musicians {
		if p, ok := f.musicians[i].PortfolioItem(itemID); ok {
			fn(p)
			m := cloneMusician(f.musicians[i])
			return &m, nil
		}
	}
	return nil, errors.New("no such item")
}

func setMember(ids []int, id int, on bool) []int {
	ids = slices.DeleteFunc(slices.Clone(ids), func(x int) bool { return x == id })
	if on {
		ids = append(ids, id)
	}
	return ids
}

// cloneMusician deep-copies the parts the fake mutates in place.
func cloneMusician(m model.Musician) model.Musician {
	m.Followers = slices.Clone(m.Followers)
	m.Following = slices.Clone(m.Following)
	m.Reviews = slices.Clone(m.Reviews)
	m.Portfolio = slices.Clone(m.Portfolio)
	for i := range m.Portfolio {
		p := &m.Portfolio[i]
		p.Comments = slices.Clone(p.Comments)
		reactions := make(map[string][]int, len(p.Reactions))
		for k, v := range p.Reactions {
			reactions[k] = slices.Clone(v)
		}
		p.Reactions = reactions
	}
	return m
}

func cloneMusicians(ms []model.Musician) []model.Musician {
	out := make([]model.Musician, len(ms))
	for i, m := range ms {
		out[i] = cloneMusician(m)
	}
	return out
}

// fakeChannel records what the store hands to the realtime channel.
type fakeChannel struct {
	mu    sync.Mutex
	joins [][]string
	sent  []sentMessage
	err   error
}

type sentMessage struct {
	ConversationID string
	Draft          model.MessageDraft
}

func (c *fakeChannel) JoinConversations(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins = append(c.joins, slices.Clone(ids))
}

func (c *fakeChannel) SendMessage(id string, d model.MessageDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentMessage{id, d})
	return nil
}

func (c *fakeChannel) lastJoin() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.joins) == 0 {
		return nil
	}
	return c.joins[len(c.joins)-1]
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seed fills the fake backend with a small roster: 1 Ana (me), 2 Bruno,
// 3 Carla, 5 Eve, plus conversation 1-2 and two notifications.
func seed(f *fakeRemote) {
	f.musicians = []model.Musician{
		{ID: 1, Name: "Ana Souza", Email: "ana@gigtune.test", Instrument: model.Guitar, Genres: []model.Genre{model.Rock}},
		{ID: 2, Name: "Bruno Lima", Email: "bruno@gigtune.test", Instrument: model.Drums, Genres: []model.Genre{model.Rock, model.Metal}},
		{ID: 3, Name: "Carla Dias", Email: "carla@gigtune.test", Instrument: model.Vocals, Genres: []model.Genre{model.Jazz}},
		{ID: 5, Name: "Eve Anand", Email: "eve@gigtune.test", Instrument: model.Bass, Genres: []model.Genre{model.Funk, model.Jazz},
			Portfolio: []model.PortfolioItem{{ID: 40, Type: model.Audio, Title: "Slap", Reactions: map[string][]int{"🔥": {2, 3}}}}},
	}
	f.notifications = []model.Notification{
		{ID: 10, Type: model.GigOpportunity, Title: "New gig", Date: t0},
		{ID: 11, Type: model.UpcomingEvent, Title: "Jam", Date: t0, Read: true},
	}
	f.conversations = []model.Conversation{
		{ID: "1-2", ParticipantIDs: []int{1, 2}, Messages: []model.Message{
			{ID: 1, SenderID: 2, Text: "hey", Timestamp: t0},
		}},
	}
	f.gigs = []model.Gig{{ID: 70, Title: "Drummer wanted", PostedByUserID: 2, Status: model.GigOpen}}
}

type harness struct {
	store   *Store
	remote  *fakeRemote
	channel *fakeChannel
	bus     *bus.Bus
}

// newHarness builds a store for musician meID over a seeded fake backend.
func newHarness(t *testing.T, meID int) *harness {
	t.Helper()
	r := newFakeRemote()
	seed(r)
	var me model.Musician
	for _, m := range r.musicians {
		if m.ID == meID {
			me = cloneMusician(m)
		}
	}
	ch := &fakeChannel{}
	b := bus.New()
	s := New(me, r, ch, b, zaptest.NewLogger(t))
	s.now = func() time.Time { return t0 }
	t.Cleanup(s.Close)
	return &harness{store: s, remote: r, channel: ch, bus: b}
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.Load(context.Background()))
}
