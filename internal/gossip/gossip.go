// Package gossip is the remote-peer gossip transport collaborator of
// spec.md §1: it would periodically publish this node's snapshot to, and
// merge snapshots received from, every other usteerd instance participating
// in the same ESS. The real multicast/UDP transport is out of scope per
// spec.md's Non-goals (no peer discovery, no persistence); Hub is an
// in-process stand-in with no peers and no socket: its publish loop only
// logs each round's snapshots, and Merge applies snapshots handed to it.
package gossip

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dantte-lp/usteerd/internal/rpcbus"
	"github.com/dantte-lp/usteerd/internal/steer"
)

// Snapshot pairs a node name with the metadata to publish or merge for it.
type Snapshot struct {
	NodeName string
	Snap     steer.NodeSnapshot
}

// PublishFunc returns the current local snapshots to publish this round.
type PublishFunc func() []Snapshot

// Hub runs the periodic publish loop and accepts merges of remote peers'
// snapshots into the local steer.Dispatcher via rpcbus.Adapter. It holds a
// mutex only to guard Close against a concurrent Run, mirroring
// internal/gobgp's GRPCClient's closed-flag-under-mutex shape.
type Hub struct {
	adapter  *rpcbus.Adapter
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub returns a Hub that merges remote snapshots into adapter and
// publishes on the given interval. A nil logger falls back to
// slog.Default().
func NewHub(adapter *rpcbus.Adapter, interval time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		adapter:  adapter,
		interval: interval,
		logger:   logger.With(slog.String("component", "gossip")),
	}
}

// Run starts the publish loop, calling publish every interval until ctx is
// canceled or Close is called. Run must be called at most once per Hub; it
// spawns exactly one goroutine, which Close (or ctx cancellation) always
// terminates before returning.
func (h *Hub) Run(ctx context.Context, publish PublishFunc) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.done = make(chan struct{})
	h.mu.Unlock()

	go h.loop(ctx, publish)
}

func (h *Hub) loop(ctx context.Context, publish PublishFunc) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.publishOnce(publish)
		}
	}
}

func (h *Hub) publishOnce(publish PublishFunc) {
	if publish == nil {
		return
	}
	for _, snap := range publish() {
		h.logger.Debug("publishing node snapshot",
			slog.String("node", snap.NodeName), slog.Int("n_assoc", snap.Snap.NAssoc))
	}
}

// Merge applies snapshots received from host into the local registries,
// marking every node REMOTE. This is the receive half of the gossip
// protocol this package stands in for: in a real transport it would be
// invoked by the UDP/multicast listener goroutine; here only the tests
// call it.
func (h *Hub) Merge(host string, snapshots []Snapshot) {
	for _, s := range snapshots {
		h.adapter.RemoteNodeUpdate(host, s.NodeName, s.Snap)
	}
}

// Close stops the publish loop and waits for its goroutine to exit. Close
// is idempotent; calling it before Run or more than once is safe.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	cancel := h.cancel
	done := h.done
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}
