package postgres

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

// VoteChangeChannel is the NOTIFY channel fired by the votes table trigger.
// It is table-wide on purpose: every subscriber is woken on any vote mutation
// and re-reads its own session, rather than events being routed per session.
const VoteChangeChannel = "votes_changed"

const (
	listenerMinReconnect = 2 * time.Second
	listenerMaxReconnect = 30 * time.Second
)

// VoteListener bridges postgres LISTEN/NOTIFY to in-process subscribers. One
// listener serves the whole process; each observer takes its own subscription
// channel and releases it when done.
type VoteListener struct {
	pql    *pq.Listener
	logger *slog.Logger

	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewVoteListener(connStr string, logger *slog.Logger) (*VoteListener, error) {
	l := &VoteListener{
		logger: logger,
		subs:   make(map[chan struct{}]struct{}),
	}

	l.pql = pq.NewListener(connStr, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("vote listener connection event", "event", ev, "error", err)
			}
		})

	if err := l.pql.Listen(VoteChangeChannel); err != nil {
		l.pql.Close()
		return nil, err
	}

	return l, nil
}

// Run fans incoming notifications out to subscribers until ctx is done.
func (l *VoteListener) Run(ctx context.Context) {
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.pql.Notify:
			// n is nil after a reconnect; broadcast anyway, since
			// notifications may have been missed while disconnected.
			if n != nil {
				l.logger.Debug("vote change notification", "op", n.Extra)
			}
			l.broadcast()
		case <-ping.C:
			if err := l.pql.Ping(); err != nil {
				l.logger.Warn("vote listener ping failed", "error", err)
			}
		}
	}
}

func (l *VoteListener) broadcast() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ch := range l.subs {
		// Non-blocking: a pending wake already covers this mutation.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (l *VoteListener) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	release := func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
	}

	return ch, release
}

func (l *VoteListener) Close() error {
	return l.pql.Close()
}
