package steer

// ConnState is the tri-state connection status of an Observation.
type ConnState uint8

const (
	NotConnected ConnState = iota
	Pending
	StaConnected
)

func (c ConnState) String() string {
	switch c {
	case NotConnected:
		return "NOT_CONNECTED"
	case Pending:
		return "PENDING"
	case StaConnected:
		return "CONNECTED"
	default:
		return unknownStr
	}
}

// RequestStats tracks one RequestType's admission history on an
// Observation. Dispatcher.OnStationEvent updates it after each
// Filter.CheckRequest call; Filter.CheckRequest itself only reads BlockedCur.
type RequestStats struct {
	Requests        uint32
	BlockedCur      uint32
	BlockedTotal    uint32
	BlockedLastTime int64
}

// Station is a client device, identified by MAC, independent of which
// node(s) it currently has observations on.
type Station struct {
	MAC       MAC
	Seen24GHz bool
	Seen5GHz  bool

	observations []*Observation
}

// NewStation constructs a Station with no observations.
func NewStation(mac MAC) *Station {
	return &Station{MAC: mac}
}

// Observations returns every node this station has an observation on, in
// the order those observations were created.
func (s *Station) Observations() []*Observation {
	return s.observations
}

func (s *Station) addObservation(o *Observation) {
	s.observations = append(s.observations, o)
	if o.Node.Is5GHz() {
		s.Seen5GHz = true
	} else {
		s.Seen24GHz = true
	}
}

func (s *Station) removeObservation(o *Observation) {
	for i, cur := range s.observations {
		if cur == o {
			s.observations = append(s.observations[:i], s.observations[i+1:]...)
			return
		}
	}
}

// Observation is a station's record on one node: the sta_info of the
// original implementation. It carries everything the roam trigger state
// machine and kick controller need for that (station, node) pair.
type Observation struct {
	Station *Station
	Node    *Node

	Created   int64
	Seen      int64
	Signal    int
	Connected ConnState

	Stats [requestTypeCount]RequestStats

	RoamState            RoamState
	RoamTries            int
	RoamEvent            int64
	RoamKick             int64
	RoamScanStart        int64
	RoamScanTimeoutStart int64

	KickCount   int
	BelowMinSNR int

	// ScanBand mirrors the original's scan_band bitfield. Reserved for a
	// future dual-band scan-hint split; no decision in this core reads it.
	ScanBand bool
}

// resetStaleBlocks zeroes BlockedCur on every request-type counter whose
// last block happened more than timeout ago, so a station blocked once and
// then silent forever doesn't carry an inflated BlockedCur into a later,
// unrelated burst. A non-positive timeout disables the reset.
func (o *Observation) resetStaleBlocks(now, timeout int64) {
	if timeout <= 0 {
		return
	}
	for i := range o.Stats {
		st := &o.Stats[i]
		if st.BlockedCur > 0 && now-st.BlockedLastTime > timeout {
			st.BlockedCur = 0
		}
	}
}

func (o *Observation) baseEvent(now int64, t EventType) DecisionEvent {
	return DecisionEvent{
		Timestamp:  now,
		Type:       t,
		HasStation: true,
		StationMAC: o.Station.MAC,
		NodeCur:    o.Node.Name,
	}
}

// StationRegistry owns every known Station and the Observation records
// linking stations to nodes. Iteration order is always insertion order.
type StationRegistry struct {
	order []MAC
	byMAC map[MAC]*Station
}

// NewStationRegistry returns an empty registry.
func NewStationRegistry() *StationRegistry {
	return &StationRegistry{byMAC: make(map[MAC]*Station)}
}

// GetOrCreateStation returns the station with the given MAC, creating it if
// absent.
func (r *StationRegistry) GetOrCreateStation(mac MAC) *Station {
	if s, ok := r.byMAC[mac]; ok {
		return s
	}
	s := NewStation(mac)
	r.byMAC[mac] = s
	r.order = append(r.order, mac)
	return s
}

// GetStation looks up a station by MAC.
func (r *StationRegistry) GetStation(mac MAC) (*Station, bool) {
	s, ok := r.byMAC[mac]
	return s, ok
}

// Stations returns every station in registration order.
func (r *StationRegistry) Stations() []*Station {
	out := make([]*Station, 0, len(r.order))
	for _, mac := range r.order {
		out = append(out, r.byMAC[mac])
	}
	return out
}

// Observation looks up the (station, node) pair's observation, if any.
func (r *StationRegistry) Observation(mac MAC, node *Node) (*Observation, bool) {
	s, ok := r.byMAC[mac]
	if !ok {
		return nil, false
	}
	for _, o := range s.observations {
		if o.Node == node {
			return o, true
		}
	}
	return nil, false
}

// GetOrCreateObservation returns the (station, node) pair's observation,
// creating both the station (if new) and the observation (if new). The
// second return value reports whether the observation was just created; a
// duplicate creation attempt is therefore never an error — the invariant
// that at most one Observation exists per (station, node) is enforced by
// construction, never by panicking on a caller that asks for it twice.
func (r *StationRegistry) GetOrCreateObservation(mac MAC, node *Node, now int64) (*Observation, bool) {
	s := r.GetOrCreateStation(mac)
	for _, o := range s.observations {
		if o.Node == node {
			return o, false
		}
	}
	o := &Observation{
		Station: s,
		Node:    node,
		Created: now,
		Seen:    now,
	}
	s.addObservation(o)
	node.addObservation(o)
	return o, true
}

// RemoveObservation detaches an observation from both its station and
// node, deleting the station from the registry entirely if that was its
// last observation.
func (r *StationRegistry) RemoveObservation(o *Observation) {
	o.Station.removeObservation(o)
	o.Node.removeObservation(o)
	if len(o.Station.observations) == 0 {
		r.removeStation(o.Station.MAC)
	}
}

// ExpireObservations removes every observation on node whose last-seen
// timestamp is older than timeout, destroying any station left with no
// observations at all (§3: a station is "destroyed when every per-node
// observation has expired"). A non-positive timeout disables the sweep.
func (r *StationRegistry) ExpireObservations(node *Node, now, timeout int64) {
	if timeout <= 0 {
		return
	}
	for _, obs := range append([]*Observation(nil), node.Observations()...) {
		if now-obs.Seen > timeout {
			r.RemoveObservation(obs)
		}
	}
}

func (r *StationRegistry) removeStation(mac MAC) {
	if _, ok := r.byMAC[mac]; !ok {
		return
	}
	delete(r.byMAC, mac)
	for i, cur := range r.order {
		if cur == mac {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
