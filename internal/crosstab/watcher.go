package crosstab

import (
	"context"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/store"
	"go.uber.org/zap"
)

// SignalReader reads the shared write log.
type SignalReader interface {
	ReadSignal(ctx context.Context) (store.Signal, bool, error)
	SignalsSince(ctx context.Context, after int64) ([]store.Signal, error)
}

// Watcher polls the shared write log and publishes crosstab.data_changed
// whenever another instance has recorded a write since the last poll.
type Watcher struct {
	signals  SignalReader
	instance string
	interval time.Duration
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}

	lastSeq int64
}

func NewWatcher(signals SignalReader, instance string, interval time.Duration, b *bus.Bus, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		signals:  signals,
		instance: instance,
		interval: interval,
		bus:      b,
		logger:   logger,
	}
}

// Start records the newest write as the baseline and begins polling.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	if sig, ok, err := w.signals.ReadSignal(ctx); err == nil && ok {
		w.lastSeq = sig.Seq
	}
	go w.loop(ctx)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// poll publishes at most one event per tick, carrying the newest foreign
// write. Own writes advance the cursor without hiding foreign ones.
func (w *Watcher) poll(ctx context.Context) {
	sigs, err := w.signals.SignalsSince(ctx, w.lastSeq)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("failed to read data signals", zap.Error(err))
		}
		return
	}
	var (
		foreign store.Signal
		found   bool
	)
	for _, sig := range sigs {
		w.lastSeq = max(w.lastSeq, sig.Seq)
		if sig.Instance != w.instance {
			foreign, found = sig, true
		}
	}
	if !found {
		return
	}
	w.logger.Debug("data changed in another instance",
		zap.String("instance", foreign.Instance),
		zap.Int64("seq", foreign.Seq),
		zap.Time("at", foreign.At),
	)
	w.bus.Emit(bus.CrossTabDataChanged, foreign)
}
