// Package metrics exposes the steer decision core as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "usteerd"
	subsystem = "steer"
)

// Label names.
const (
	labelNode        = "node"
	labelRequestType = "request_type"
	labelReason      = "reason"
	labelEventType   = "event_type"
)

// -------------------------------------------------------------------------
// Collector — Prometheus steer core metrics
// -------------------------------------------------------------------------

// Collector holds every Prometheus metric the steer core drives, and
// implements steer.EventSink so it can be registered directly on a
// steer.Filter / steer.KickController call site.
//
//   - Stations tracks currently associated stations per node.
//   - Accepts/Rejects count admission decisions per request type.
//   - RoamEvents and KickEvents count state-machine and kick-controller
//     activity, labeled by event type for precise alerting.
type Collector struct {
	// Stations tracks the number of currently associated stations per
	// node, set only through SetStations. Nothing in this module outside
	// its tests calls SetStations, so the daemon leaves this gauge unset.
	Stations *prometheus.GaugeVec

	// Accepts counts CheckRequest acceptances per node and request type.
	Accepts *prometheus.CounterVec

	// Rejects counts CheckRequest rejections per node, request type, and
	// AdmitReason.
	Rejects *prometheus.CounterVec

	// RoamEvents counts roam trigger state-machine activity
	// (ROAM_TRIGGER) per node.
	RoamEvents *prometheus.CounterVec

	// KickEvents counts every kick-controller action (SIGNAL_KICK,
	// LOAD_KICK_*) per node and event type.
	KickEvents *prometheus.CounterVec
}

// NewCollector creates a Collector with every metric registered against
// reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.Stations,
		c.Accepts,
		c.Rejects,
		c.RoamEvents,
		c.KickEvents,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	nodeLabels := []string{labelNode}
	requestLabels := []string{labelNode, labelRequestType}
	rejectLabels := []string{labelNode, labelRequestType, labelReason}
	eventLabels := []string{labelNode, labelEventType}

	return &Collector{
		Stations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stations",
			Help:      "Number of currently associated stations per node.",
		}, nodeLabels),

		Accepts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "accepts_total",
			Help:      "Total admission requests accepted, per node and request type.",
		}, requestLabels),

		Rejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rejects_total",
			Help:      "Total admission requests rejected, per node, request type, and reason.",
		}, rejectLabels),

		RoamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roam_events_total",
			Help:      "Total roam trigger state machine transitions, per node.",
		}, nodeLabels),

		KickEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "kick_events_total",
			Help:      "Total kick-controller events, per node and event type.",
		}, eventLabels),
	}
}

// -------------------------------------------------------------------------
// steer.EventSink
// -------------------------------------------------------------------------

// Emit records one DecisionEvent. Unknown/future event types simply fall
// outside the accept/reject/roam/kick buckets and are dropped, matching
// the core's own "never fail on an unrecognized input" posture.
func (c *Collector) Emit(ev steer.DecisionEvent) {
	node := ev.NodeCur
	if node == "" {
		node = ev.NodeTarget
	}

	switch ev.Type {
	case steer.EventProbeAccept:
		c.Accepts.WithLabelValues(node, steer.RequestProbe.String()).Inc()
	case steer.EventAssocAccept:
		c.Accepts.WithLabelValues(node, steer.RequestAssoc.String()).Inc()
	case steer.EventAuthAccept:
		c.Accepts.WithLabelValues(node, steer.RequestAuth.String()).Inc()

	case steer.EventProbeReject:
		c.Rejects.WithLabelValues(node, steer.RequestProbe.String(), ev.Reason.String()).Inc()
	case steer.EventAssocReject:
		c.Rejects.WithLabelValues(node, steer.RequestAssoc.String(), ev.Reason.String()).Inc()
	case steer.EventAuthReject:
		c.Rejects.WithLabelValues(node, steer.RequestAuth.String(), ev.Reason.String()).Inc()

	case steer.EventRoamTrigger:
		c.RoamEvents.WithLabelValues(node).Inc()

	case steer.EventSignalKick,
		steer.EventLoadKickTrigger,
		steer.EventLoadKickReset,
		steer.EventLoadKickMinClients,
		steer.EventLoadKickNoClient,
		steer.EventLoadKickClient:
		c.KickEvents.WithLabelValues(node, ev.Type.String()).Inc()
	}
}

// -------------------------------------------------------------------------
// Station gauge
// -------------------------------------------------------------------------

// SetStations sets the associated-station gauge for node. Only the tests
// call it; neither internal/rpcbus nor cmd/usteerd does.
func (c *Collector) SetStations(node string, n int) {
	c.Stations.WithLabelValues(node).Set(float64(n))
}
