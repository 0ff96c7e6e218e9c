// Package rpcbus is the RPC bus adapter collaborator of spec.md §1/§6: it
// turns inbound station events into calls into internal/steer, and turns
// internal/steer's emitted actions into outbound calls on a Radio. The real
// ubus/driver RPC boundary this stands in for is explicitly out of scope
// (spec.md Non-goals); LoggingRadio is a logging-only placeholder.
package rpcbus

import (
	"errors"
	"log/slog"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// Adapter wraps a steer.StationEventSource, logging a structured warning
// and dropping the input on every invariant violation (§7) instead of
// letting it propagate. It holds no state of its own beyond the source and
// logger; all mutable state lives in internal/steer's registries.
type Adapter struct {
	source steer.StationEventSource
	logger *slog.Logger
}

// New wraps source, logging dropped events through logger. A nil logger
// falls back to slog.Default().
func New(source steer.StationEventSource, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{source: source, logger: logger.With(slog.String("component", "rpcbus"))}
}

// StationEvent forwards a PROBE/AUTH/ASSOC request. A report naming an
// unknown node is logged and treated as rejected, never as an error the
// caller (the driver RPC boundary) needs to handle specially.
func (a *Adapter) StationEvent(nodeName string, mac steer.MAC, reqType steer.RequestType, freqMHz, signalDBm int) bool {
	accept, err := a.source.OnStationEvent(nodeName, mac, reqType, freqMHz, signalDBm)
	if err != nil {
		a.logWarn("station event dropped", err, nodeName, mac)
		return false
	}
	return accept
}

// StationUpdate forwards a signal/connection-state/last-seen report.
func (a *Adapter) StationUpdate(nodeName string, mac steer.MAC, signalDBm int, connected steer.ConnState, seenMillis int64) {
	if err := a.source.OnStationUpdate(nodeName, mac, signalDBm, connected, seenMillis); err != nil {
		a.logWarn("station update dropped", err, nodeName, mac)
	}
}

// NodeUpdate forwards a local node's current metadata, as reported by the
// driver.
func (a *Adapter) NodeUpdate(nodeName string, snap steer.NodeSnapshot) {
	if err := a.source.OnNodeUpdate(nodeName, snap); err != nil {
		a.logger.Warn("node update dropped", slog.String("node", nodeName), slog.String("error", err.Error()))
	}
}

// RemoteNodeUpdate forwards a remote node's snapshot, as reported by
// internal/gossip.
func (a *Adapter) RemoteNodeUpdate(host, nodeName string, snap steer.NodeSnapshot) {
	if err := a.source.OnRemoteNodeUpdate(host, nodeName, snap); err != nil {
		a.logger.Warn("remote node update dropped",
			slog.String("host", host), slog.String("node", nodeName), slog.String("error", err.Error()))
	}
}

// Tick runs the per-local-node kick controller pass for nodeName.
func (a *Adapter) Tick(nodeName string) {
	if err := a.source.TickLocalNode(nodeName); err != nil {
		if errors.Is(err, steer.ErrUnknownNode) {
			a.logger.Warn("tick on unknown node", slog.String("node", nodeName))
			return
		}
		a.logger.Warn("tick failed", slog.String("node", nodeName), slog.String("error", err.Error()))
	}
}

func (a *Adapter) logWarn(msg string, err error, nodeName string, mac steer.MAC) {
	a.logger.Warn(msg,
		slog.String("node", nodeName),
		slog.String("station", mac.String()),
		slog.String("error", err.Error()),
	)
}
