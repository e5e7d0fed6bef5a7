package app

import (
	"context"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/config"
	"github.com/gigtune/gigtune/internal/crosstab"
	"github.com/gigtune/gigtune/internal/lock"
	"github.com/gigtune/gigtune/internal/logging"
	"github.com/gigtune/gigtune/internal/realtime"
	"github.com/gigtune/gigtune/internal/remote"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/store"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	ConfigPath string // optional override; empty = config.Path()
	Quiet      bool   // log to file only
}

// InstanceID distinguishes this process in cross-instance signals.
type InstanceID string

const migrateLockTimeout = 10 * time.Second

// Module returns the fx module for a GigTune client, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("gigtune",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideInstanceID,
			provideSignalDB,
			provideSignaler,
			provideRemote,
			provideChannel,
			provideWatcher,
			provideSession,
		),
		fx.Invoke(registerLifecycle),
	)
}

// FxLogger sends fx's own lifecycle events to the client log instead of
// stderr, where they would tear the TUI.
func FxLogger() fx.Option {
	return fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	})
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = config.Path()
	}
	return config.LoadOrDefault(path)
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	var opts []logging.Option
	if p.Quiet {
		opts = append(opts, logging.Quiet())
	}
	return logging.New(config.LogPath(p.Profile), p.Profile, cfg.LogLevel, opts...)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideInstanceID() InstanceID {
	return InstanceID(uuid.NewString())
}

func provideSignalDB(p Params, logger *zap.Logger) (*store.DB, error) {
	if err := config.EnsureProfileDir(p.Profile); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateLockTimeout)
	defer cancel()
	lk, err := lock.AcquireWait(ctx, config.ProfileDir(p.Profile), "migrate", 0)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lk.Release(); err != nil {
			logger.Warn("error releasing migrate lock", zap.Error(err))
		}
	}()

	dbPath := config.SignalDBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("signal store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideSignaler(db *store.DB, id InstanceID) *store.Signaler {
	return store.NewSignaler(db, string(id))
}

func provideRemote(cfg *config.Config, signaler *store.Signaler, logger *zap.Logger) *remote.Client {
	return remote.New(cfg.APIBaseURL,
		remote.WithTimeout(cfg.HTTPTimeout.Duration),
		remote.WithSignaler(signaler),
		remote.WithLogger(logger),
	)
}

func provideChannel(cfg *config.Config, b *bus.Bus, logger *zap.Logger) *realtime.Channel {
	return realtime.New(realtime.Config{
		URL:            cfg.SocketURL,
		MaxReconnects:  uint64(cfg.ReconnectAttempts),
		ReconnectDelay: cfg.ReconnectDelay.Duration,
	}, b, logger)
}

func provideWatcher(cfg *config.Config, db *store.DB, id InstanceID, b *bus.Bus, logger *zap.Logger) *crosstab.Watcher {
	return crosstab.NewWatcher(db, string(id), cfg.SignalPollInterval.Duration, b, logger.Named("crosstab"))
}

func provideSession(client *remote.Client, ch *realtime.Channel, b *bus.Bus, logger *zap.Logger) *session.Manager {
	return session.New(client, ch, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, p Params, mgr *session.Manager, watcher *crosstab.Watcher, ch *realtime.Channel, db *store.DB, b *bus.Bus, logger *zap.Logger) {
	var (
		unsub func()
		done  chan struct{}
	)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Writes made by other instances of this profile invalidate our store.
			events, cancel := b.Subscribe("crosstab.", 8)
			unsub = cancel
			done = make(chan struct{})
			go routeCrossTab(events, done, mgr)

			watcher.Start(context.Background())
			logger.Info("client started", zap.String("profile", p.Profile))
			return nil
		},
		OnStop: func(_ context.Context) error {
			watcher.Stop()
			unsub()
			close(done)
			mgr.Logout()
			ch.Close()
			if err := db.Close(); err != nil {
				logger.Warn("error closing signal store", zap.Error(err))
			}
			logger.Info("client stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

func routeCrossTab(events <-chan bus.Event, done <-chan struct{}, mgr *session.Manager) {
	for {
		select {
		case evt := <-events:
			if evt.Kind == bus.CrossTabDataChanged {
				mgr.Invalidate()
			}
		case <-done:
			return
		}
	}
}
