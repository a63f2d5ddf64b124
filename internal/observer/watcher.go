// Package observer keeps a local tally snapshot converging toward the true
// vote state. A push wake from the change feed and a fixed-interval poll both
// trigger the same idempotent refresh.
package observer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/showtally/api/internal/core/domain"
)

// DefaultPollInterval bounds staleness to one interval even under total push
// failure.
const DefaultPollInterval = 5 * time.Second

// Source is the read side a watcher refreshes from.
type Source interface {
	Resolve(ctx context.Context, code string) (*domain.Session, error)
	TallyForCode(ctx context.Context, code string) (domain.Tally, error)
}

// Notifier is the observer-side push channel.
type Notifier interface {
	Subscribe(ctx context.Context) (<-chan struct{}, func(), error)
}

// Snapshot is one observed state of a session, replaced wholesale on every
// refresh.
type Snapshot struct {
	Session   *domain.Session
	Tally     domain.Tally
	UpdatedAt time.Time
}

type Watcher struct {
	code     string
	source   Source
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(Snapshot)

	mu      sync.Mutex
	snap    Snapshot
	lastGen uint64
	nextGen uint64
}

type Option func(*Watcher)

func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithOnUpdate registers a callback invoked after every successful refresh.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(w *Watcher) { w.onUpdate = fn }
}

func NewWatcher(code string, source Source, notifier Notifier, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		code:     code,
		source:   source,
		notifier: notifier,
		interval: DefaultPollInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. The initial load must succeed; an unknown
// code is fatal for the observer. Later refresh failures are transient,
// superseded by the next wake or tick.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Refresh(ctx); err != nil {
		return err
	}

	var wake <-chan struct{}
	if w.notifier != nil {
		ch, release, err := w.notifier.Subscribe(ctx)
		if err != nil {
			// Push is an optimization; the poll path still converges.
			w.logger.Warn("change subscription failed, relying on polling", "error", err)
		} else {
			defer release()
			wake = ch
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
			if err := w.Refresh(ctx); err != nil {
				w.logger.Debug("push refresh failed", "error", err)
			}
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				w.logger.Debug("poll refresh failed", "error", err)
			}
		}
	}
}

// Refresh re-runs the full read path and replaces the snapshot. A result that
// finishes after a newer refresh has already stored is discarded
// (last-completed-wins), never merged.
func (w *Watcher) Refresh(ctx context.Context) error {
	w.mu.Lock()
	w.nextGen++
	gen := w.nextGen
	w.mu.Unlock()

	session, err := w.source.Resolve(ctx, w.code)
	if err != nil {
		return err
	}

	tally, err := w.source.TallyForCode(ctx, w.code)
	if err != nil {
		return err
	}

	snap := Snapshot{
		Session:   session,
		Tally:     tally,
		UpdatedAt: time.Now(),
	}

	w.mu.Lock()
	stale := gen < w.lastGen
	if !stale {
		w.lastGen = gen
		w.snap = snap
	}
	w.mu.Unlock()

	if !stale && w.onUpdate != nil {
		w.onUpdate(snap)
	}
	return nil
}

// Snapshot returns the last stored state.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}
