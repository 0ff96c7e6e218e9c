package steer

// NodeType distinguishes an AP this process drives directly from one it
// only hears about through internal/gossip.
type NodeType uint8

const (
	NodeLocal NodeType = iota
	NodeRemote
)

func (t NodeType) String() string {
	switch t {
	case NodeLocal:
		return "LOCAL"
	case NodeRemote:
		return "REMOTE"
	default:
		return unknownStr
	}
}

// defaultNoise is substituted for a node whose driver never reported a
// noise floor, matching the original's signal-conversion fallback.
const defaultNoise = -95

// fiveGHzFloorKHz is the frequency above which a node is considered 5GHz
// for band-steering threshold purposes (2.4GHz tops out at 2484MHz).
const fiveGHzFloorKHz = 4000

// Node is an access point participating in steering: either one this
// process drives (NodeLocal) or one learned about via gossip (NodeRemote).
type Node struct {
	Name     string
	Type     NodeType
	SSID     string
	BSSID    MAC
	FreqMHz  int
	NoiseDBm int
	NAssoc   int
	MaxAssoc int
	Load     int
	Disabled bool

	// RRMNeighborReport is the opaque 802.11k neighbor report blob the
	// driver attaches to a local node. The core never interprets it; it
	// exists so internal/rpcbus has somewhere to stash what it receives.
	RRMNeighborReport []byte

	// LoadThrCount is the load-shedding hysteresis counter from §4.5
	// phase 3. Meaningful only for NodeLocal.
	LoadThrCount int

	observations []*Observation
}

// NewNode constructs a Node with no observations.
func NewNode(name string, typ NodeType) *Node {
	return &Node{Name: name, Type: typ}
}

// Is5GHz reports whether the node's operating frequency places it in the
// 5GHz (or above) band for band-steering threshold purposes.
func (n *Node) Is5GHz() bool {
	return n.FreqMHz > fiveGHzFloorKHz
}

func (n *Node) noiseOrDefault() int {
	if n.NoiseDBm == 0 {
		return defaultNoise
	}
	return n.NoiseDBm
}

// Observations returns this node's stations in the order they first
// associated, observation-registry-insertion order, never re-sorted.
func (n *Node) Observations() []*Observation {
	return n.observations
}

func (n *Node) addObservation(o *Observation) {
	n.observations = append(n.observations, o)
}

func (n *Node) removeObservation(o *Observation) {
	for i, cur := range n.observations {
		if cur == o {
			n.observations = append(n.observations[:i], n.observations[i+1:]...)
			return
		}
	}
}

func (n *Node) baseEvent(now int64, t EventType) DecisionEvent {
	return DecisionEvent{
		Timestamp: now,
		Type:      t,
		NodeCur:   n.Name,
	}
}

// NodeRegistry holds every known node, local and remote, in the order they
// were first registered.
type NodeRegistry struct {
	order []string
	byKey map[string]*Node
}

// NewNodeRegistry returns an empty registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{byKey: make(map[string]*Node)}
}

// GetOrCreate returns the node named name, creating it as typ if absent.
func (r *NodeRegistry) GetOrCreate(name string, typ NodeType) *Node {
	if n, ok := r.byKey[name]; ok {
		return n
	}
	n := NewNode(name, typ)
	r.byKey[name] = n
	r.order = append(r.order, name)
	return n
}

// Get looks up a node by name.
func (r *NodeRegistry) Get(name string) (*Node, bool) {
	n, ok := r.byKey[name]
	return n, ok
}

// Remove deletes a node from the registry. Callers must have already
// removed every Observation referencing it.
func (r *NodeRegistry) Remove(name string) {
	if _, ok := r.byKey[name]; !ok {
		return
	}
	delete(r.byKey, name)
	for i, cur := range r.order {
		if cur == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Nodes returns every node in registration order.
func (r *NodeRegistry) Nodes() []*Node {
	out := make([]*Node, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byKey[name])
	}
	return out
}

// LocalNodes returns the subset of Nodes with Type == NodeLocal, in
// registration order.
func (r *NodeRegistry) LocalNodes() []*Node {
	var out []*Node
	for _, name := range r.order {
		n := r.byKey[name]
		if n.Type == NodeLocal {
			out = append(out, n)
		}
	}
	return out
}
