package steer

// NodeSnapshot is the node metadata an OnNodeUpdate/OnRemoteNodeUpdate call
// carries: everything the RPC adapter learns from the driver or from
// internal/gossip about one AP's current state.
type NodeSnapshot struct {
	SSID     string
	BSSID    MAC
	FreqMHz  int
	NoiseDBm int
	NAssoc   int
	MaxAssoc int
	Load     int
	Disabled bool
}

func applySnapshot(n *Node, snap NodeSnapshot) {
	n.SSID = snap.SSID
	n.BSSID = snap.BSSID
	n.FreqMHz = snap.FreqMHz
	n.NoiseDBm = snap.NoiseDBm
	n.NAssoc = snap.NAssoc
	n.MaxAssoc = snap.MaxAssoc
	n.Load = snap.Load
	n.Disabled = snap.Disabled
}

// StationEventSource is the event-input half of §6: the calls the RPC
// adapter (internal/rpcbus) makes into the policy core. The core never
// calls out to the adapter through this interface — it only implements it;
// Radio is the opposite direction.
//
// Every method returns a sentinel error (ErrUnknownNode) instead of
// panicking on an invariant violation; the core itself never logs — per §7
// that is internal/rpcbus's job, using the logger injected into it, so this
// package stays free of any logging dependency.
type StationEventSource interface {
	OnStationEvent(nodeName string, mac MAC, reqType RequestType, freqMHz, signalDBm int) (bool, error)
	OnStationUpdate(nodeName string, mac MAC, signalDBm int, connected ConnState, seen int64) error
	OnNodeUpdate(nodeName string, snap NodeSnapshot) error
	OnRemoteNodeUpdate(host, nodeName string, snap NodeSnapshot) error
	TickLocalNode(nodeName string) error
}

// Dispatcher wires the registries, the admission Filter, and the
// KickController into the single facade internal/rpcbus drives. It owns no
// goroutines and takes no lock: every method must run on the single event
// loop thread (§5).
type Dispatcher struct {
	cfg      *Config
	clock    Clock
	sink     EventSink
	radio    Radio
	nodes    *NodeRegistry
	stations *StationRegistry
	filter   *Filter
	kick     *KickController
}

var _ StationEventSource = (*Dispatcher)(nil)

// NewDispatcher builds a Dispatcher over cfg. radio receives every outbound
// action; sink receives every DecisionEvent.
func NewDispatcher(cfg *Config, clock Clock, sink EventSink, radio Radio) *Dispatcher {
	if sink == nil {
		sink = NopEventSink
	}
	return &Dispatcher{
		cfg:      cfg,
		clock:    clock,
		sink:     sink,
		radio:    radio,
		nodes:    NewNodeRegistry(),
		stations: NewStationRegistry(),
		filter:   NewFilter(cfg, clock, sink),
		kick:     NewKickController(),
	}
}

// Nodes exposes the node registry for read-only inspection (internal/server).
func (d *Dispatcher) Nodes() *NodeRegistry { return d.nodes }

// Stations exposes the station registry for read-only inspection
// (internal/server).
func (d *Dispatcher) Stations() *StationRegistry { return d.stations }

// OnStationEvent runs the admission filter for a PROBE/AUTH/ASSOC request
// from mac on nodeName, creating the station and its observation on first
// sight. Per §7, an event naming an unregistered node is dropped: (false,
// ErrUnknownNode) is returned rather than panicking, and the caller is
// responsible for logging the warning.
func (d *Dispatcher) OnStationEvent(nodeName string, mac MAC, reqType RequestType, freqMHz, signalDBm int) (bool, error) {
	node, ok := d.nodes.Get(nodeName)
	if !ok {
		return false, ErrUnknownNode
	}

	now := d.clock.NowMillis()
	obs, created := d.stations.GetOrCreateObservation(mac, node, now)
	obs.Signal = signalDBm
	obs.Seen = now
	if created {
		obs.Connected = Pending
	}

	accept := d.filter.CheckRequest(obs, reqType)

	stats := &obs.Stats[reqType]
	stats.Requests++
	if accept {
		stats.BlockedCur = 0
	} else {
		stats.BlockedCur++
		stats.BlockedTotal++
		stats.BlockedLastTime = now
	}

	return accept, nil
}

// OnStationUpdate records a station's current signal, connection state, and
// last-seen timestamp on its (station, node) observation.
func (d *Dispatcher) OnStationUpdate(nodeName string, mac MAC, signalDBm int, connected ConnState, seen int64) error {
	node, ok := d.nodes.Get(nodeName)
	if !ok {
		return ErrUnknownNode
	}

	obs, _ := d.stations.GetOrCreateObservation(mac, node, seen)
	obs.Signal = signalDBm
	obs.Connected = connected
	obs.Seen = seen
	return nil
}

// OnNodeUpdate records new metadata for a local node, creating it if this is
// the first time nodeName has been seen.
func (d *Dispatcher) OnNodeUpdate(nodeName string, snap NodeSnapshot) error {
	node := d.nodes.GetOrCreate(nodeName, NodeLocal)
	applySnapshot(node, snap)
	return nil
}

// OnRemoteNodeUpdate records new metadata for a node learned about via
// internal/gossip from host, creating it as NodeRemote if this is the first
// time nodeName has been seen.
func (d *Dispatcher) OnRemoteNodeUpdate(host, nodeName string, snap NodeSnapshot) error {
	node := d.nodes.GetOrCreate(nodeName, NodeRemote)
	applySnapshot(node, snap)
	return nil
}

// TickLocalNode runs one registry-maintenance and KickController pass
// against nodeName, which must already be registered as NodeLocal: stale
// observations are expired, stale blocked_cur counters are reset, and then
// the kick controller runs.
func (d *Dispatcher) TickLocalNode(nodeName string) error {
	node, ok := d.nodes.Get(nodeName)
	if !ok {
		return ErrUnknownNode
	}

	now := d.clock.NowMillis()
	d.stations.ExpireObservations(node, now, d.cfg.LocalStaTimeout)
	for _, obs := range node.Observations() {
		obs.resetStaleBlocks(now, d.cfg.StaBlockTimeout)
	}
	d.kick.Tick(d.cfg, node, now, d.sink, d.radio)
	return nil
}
