package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// eventBufferSize is the per-subscriber channel depth. A subscriber that
// falls this far behind is dropped rather than allowed to block Emit.
const eventBufferSize = 64

// EventBroadcaster implements steer.EventSink and fans every DecisionEvent
// out to each active /v1/events subscriber. It never blocks the caller
// that emits: a slow subscriber is disconnected instead.
type EventBroadcaster struct {
	mu   sync.Mutex
	subs map[chan steer.DecisionEvent]struct{}
}

// NewEventBroadcaster returns a broadcaster with no subscribers.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{subs: make(map[chan steer.DecisionEvent]struct{})}
}

var _ steer.EventSink = (*EventBroadcaster)(nil)

// Emit fans ev out to every current subscriber. Matches steer.EventSink.
func (b *EventBroadcaster) Emit(ev steer.DecisionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind; drop it rather than block the core.
			delete(b.subs, ch)
			close(ch)
		}
	}
}

func (b *EventBroadcaster) subscribe() chan steer.DecisionEvent {
	ch := make(chan steer.DecisionEvent, eventBufferSize)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *EventBroadcaster) unsubscribe(ch chan steer.DecisionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// handleWatchEvents streams newline-delimited JSON DecisionEvents to the
// client for as long as the connection stays open.
func (s *Server) handleWatchEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	enc := json.NewEncoder(w)
	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
