// Package session is the login boundary: it resolves the logged-in musician,
// builds the per-session store and owns the realtime channel's lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/realtime"
	"github.com/gigtune/gigtune/internal/syncstore"
	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrUnknownEmail      = errors.New("no musician registered with that email")
	ErrRosterUnavailable = errors.New("musician roster unavailable")
)

// Remote is the REST surface a session needs.
type Remote interface {
	syncstore.Remote
	Register(ctx context.Context, draft model.ProfileDraft) (*model.Musician, error)
}

// Channel is the realtime surface a session drives.
type Channel interface {
	syncstore.Channel
	OnMessage(h realtime.MessageHandler)
	OnDataUpdated(h realtime.DataHandler)
	Open(ctx context.Context, userID int) error
	Close()
}

// Manager holds at most one logged-in session at a time.
type Manager struct {
	remote  Remote
	channel Channel
	bus     *bus.Bus
	logger  *zap.Logger

	mu     sync.Mutex
	roster []model.Musician
	store  *syncstore.Store
}

func New(remote Remote, channel Channel, b *bus.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		remote:  remote,
		channel: channel,
		bus:     b,
		logger:  logger.Named("session"),
	}
}

// FetchRoster loads the musicians login matches against. Login cannot
// proceed while this fails.
func (m *Manager) FetchRoster(ctx context.Context) ([]model.Musician, error) {
	list, err := m.remote.ListMusicians(ctx)
	if err != nil {
		m.logger.Error("roster fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}
	m.mu.Lock()
	m.roster = list
	m.mu.Unlock()
	return slices.Clone(list), nil
}

// Roster returns the last fetched roster.
func (m *Manager) Roster() []model.Musician {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roster)
}

// Login matches email case-insensitively against the roster, fetching it
// first if needed. No password is involved. On success the previous session,
// if any, is ended, the channel opens for the musician and the store's bulk
// load runs. A failed bulk load does not fail the login; it leaves the store
// in the error state with a retry.
func (m *Manager) Login(ctx context.Context, email string) (*syncstore.Store, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}

	roster := m.Roster()
	if roster == nil {
		var err error
		if roster, err = m.FetchRoster(ctx); err != nil {
			return nil, err
		}
	}

	i := slices.IndexFunc(roster, func(c model.Musician) bool {
		return strings.EqualFold(strings.TrimSpace(c.Email), email)
	})
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmail, email)
	}
	return m.start(ctx, roster[i])
}

// Register creates the musician, adds it to the roster and logs it in.
func (m *Manager) Register(ctx context.Context, draft model.ProfileDraft) (*syncstore.Store, error) {
	created, err := m.remote.Register(ctx, draft)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("register %s: empty response", draft.Email)
	}

	m.mu.Lock()
	if i := slices.IndexFunc(m.roster, func(c model.Musician) bool { return c.ID == created.ID }); i >= 0 {
		m.roster = slices.Clone(m.roster)
		m.roster[i] = *created
	} else {
		m.roster = append(slices.Clip(m.roster), *created)
	}
	m.mu.Unlock()

	return m.start(ctx, *created)
}

func (m *Manager) start(ctx context.Context, me model.Musician) (*syncstore.Store, error) {
	m.Logout()

	st := syncstore.New(me, m.remote, m.channel, m.bus, m.logger)
	m.channel.OnMessage(st.HandleIncomingMessage)
	m.channel.OnDataUpdated(st.HandleDataUpdated)
	if err := m.channel.Open(ctx, me.ID); err != nil {
		m.channel.OnMessage(nil)
		m.channel.OnDataUpdated(nil)
		st.Close()
		return nil, fmt.Errorf("open realtime channel: %w", err)
	}

	m.mu.Lock()
	m.store = st
	m.mu.Unlock()

	m.logger.Info("logged in", zap.Int("user_id", me.ID), zap.String("name", me.Name))
	m.bus.Emit(bus.SessionLoggedIn, me)

	if err := st.Load(ctx); err != nil {
		m.logger.Warn("initial load failed", zap.Int("user_id", me.ID), zap.Error(err))
	}
	return st, nil
}

// Logout closes the channel, discarding pending reconnects, then discards
// the store. Nothing survives. Safe to call when logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	st := m.store
	m.store = nil
	m.mu.Unlock()
	if st == nil {
		return
	}

	m.channel.Close()
	m.channel.OnMessage(nil)
	m.channel.OnDataUpdated(nil)
	st.Close()

	m.logger.Info("logged out", zap.Int("user_id", st.UserID()))
	m.bus.Emit(bus.SessionLoggedOut, st.UserID())
}

// Store returns the active store, or nil when logged out.
func (m *Manager) Store() *syncstore.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store
}

// Active is Store with ErrNotLoggedIn in place of nil.
func (m *Manager) Active() (*syncstore.Store, error) {
	if st := m.Store(); st != nil {
		return st, nil
	}
	return nil, ErrNotLoggedIn
}

// Invalidate forwards a data-changed signal from outside the realtime
// channel to the active store.
func (m *Manager) Invalidate() {
	if st := m.Store(); st != nil {
		st.HandleDataUpdated()
	}
}
