package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/showtally/api/internal/core/ports"
	"github.com/showtally/api/internal/metrics"
)

const streamKeepaliveInterval = 25 * time.Second

// StreamHandler exposes the vote change feed as server-sent events. Events
// carry no tally payload: a "change" event only tells the client to re-pull,
// so the push path and the poll path share one read code path.
type StreamHandler struct {
	notifier ports.ChangeNotifier
	metrics  *metrics.MetricService
}

func NewStreamHandler(notifier ports.ChangeNotifier, metrics *metrics.MetricService) *StreamHandler {
	return &StreamHandler{
		notifier: notifier,
		metrics:  metrics,
	}
}

func (h *StreamHandler) StreamChanges(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client the feed is live before any vote happens.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	wake, release := h.notifier.Subscribe()
	defer release()

	h.metrics.IncStreamSubscribers()
	defer h.metrics.DecStreamSubscribers()

	keepalive := time.NewTicker(streamKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-wake:
			if _, err := fmt.Fprint(w, "event: change\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
			h.metrics.IncChangeEventsSent()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
