package syncstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store is the session's single source of truth for musicians,
// notifications, conversations and gigs. It is created at login and closed at
// logout. Collections change only through bulk loads, confirmed writes and
// realtime deltas; every change replaces entities by id.
type Store struct {
	userID  int
	remote  Remote
	channel Channel
	bus     *bus.Bus
	logger  *zap.Logger
	machine *status.Machine
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.RWMutex
	closed        bool
	self          model.Musician
	musicians     []model.Musician
	notifications []model.Notification
	conversations []model.Conversation
	gigs          []model.Gig
	filters       FilterState
	loadErr       string
	generation    uint64

	// orphans holds realtime messages whose conversation is not known yet.
	orphans      map[string][]model.Message
	refetching   bool
	refetchAgain bool
}

// New creates a store for the logged-in musician me. Call Load to populate it.
func New(me model.Musician, remote Remote, channel Channel, b *bus.Bus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		userID:  me.ID,
		self:    me,
		remote:  remote,
		channel: channel,
		bus:     b,
		logger:  logger.Named("syncstore").With(zap.Int("user_id", me.ID)),
		machine: status.NewLoadMachine(b),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		orphans: make(map[string][]model.Message),
	}
}

// Status returns the load state and, in ERROR, the user-facing message.
func (s *Store) Status() (status.State, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Current(), s.loadErr
}

// UserID returns the logged-in musician's id.
func (s *Store) UserID() int {
	return s.userID
}

// Close discards every collection and filter and stops background work.
// The store cannot be reused.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.musicians, s.notifications, s.conversations, s.gigs = nil, nil, nil, nil
	s.filters = FilterState{}
	s.orphans = make(map[string][]model.Message)
	s.loadErr = ""
	if !s.machine.Is(status.Idle) {
		_ = s.machine.Transition(status.Idle)
	}
	s.mu.Unlock()
	s.changed(Musicians, Notifications, Conversations, Gigs, Filters)
}

// Load runs the bulk load: all four collections are fetched in parallel and
// replaced together, or not at all. A load superseded by a newer one is
// discarded when it completes.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.generation++
	gen := s.generation
	if !s.machine.Is(status.Loading) {
		_ = s.machine.Transition(status.Loading)
	}
	s.mu.Unlock()

	var (
		musicians     []model.Musician
		notifications []model.Notification
		conversations []model.Conversation
		gigs          []model.Gig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if musicians, err = s.remote.ListMusicians(gctx); err != nil {
			return fmt.Errorf("load musicians: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if notifications, err = s.remote.ListNotifications(gctx); err != nil {
			return fmt.Errorf("load notifications: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if conversations, err = s.remote.ListConversations(gctx); err != nil {
			return fmt.Errorf("load conversations: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if gigs, err = s.remote.ListGigs(gctx); err != nil {
			return fmt.Errorf("load gigs: %w", err)
		}
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded load", zap.Uint64("generation", gen))
		return nil
	}
	if err != nil {
		s.loadErr = LoadFailedMessage
		_ = s.machine.Transition(status.Error)
		s.mu.Unlock()
		s.logger.Error("bulk load failed", zap.Error(err))
		return err
	}

	s.musicians = musicians
	s.notifications = keepRead(s.notifications, notifications)
	s.conversations = reconcileConversations(s.conversations, conversations)
	s.gigs = gigs
	s.loadErr = ""
	if me, ok := s.findMusician(s.userID); ok {
		s.self = me
	}
	needRefetch := s.adoptOrphansLocked()
	ids := conversationIDs(s.conversations)
	_ = s.machine.Transition(status.Ready)
	s.mu.Unlock()

	s.logger.Info("bulk load complete",
		zap.Int("musicians", len(musicians)),
		zap.Int("notifications", len(notifications)),
		zap.Int("conversations", len(conversations)),
		zap.Int("gigs", len(gigs)),
	)
	s.channel.JoinConversations(ids)
	s.changed(allCollections...)
	if needRefetch {
		s.refetchConversations()
	}
	return nil
}

// Retry re-runs the full bulk load, typically from the ERROR state.
func (s *Store) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

// spawn runs f on a goroutine bound to the store's lifetime.
func (s *Store) spawn(f func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f(s.ctx)
	}()
	return true
}

func (s *Store) changed(cols ...Collection) {
	s.bus.Emit(bus.StoreChanged, Change{Collections: cols})
}

func (s *Store) findMusician(id int) (model.Musician, bool) {
	for _, m := range s.musicians {
		if m.ID == id {
			return m, true
		}
	}
	return model.Musician{}, false
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
