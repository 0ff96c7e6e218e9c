package server

import "github.com/dantte-lp/usteerd/internal/steer"

// NodeDTO is the wire representation of a steer.Node, flattened for JSON
// and carrying its observation count instead of the observations
// themselves (those are reachable individually through /v1/stations).
type NodeDTO struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	SSID      string `json:"ssid,omitempty"`
	BSSID     string `json:"bssid"`
	FreqMHz   int    `json:"freq_mhz"`
	NoiseDBm  int    `json:"noise_dbm"`
	NAssoc    int    `json:"n_assoc"`
	MaxAssoc  int    `json:"max_assoc"`
	Load      int    `json:"load"`
	Disabled  bool   `json:"disabled"`
	Is5GHz    bool   `json:"is_5ghz"`
	StationsN int    `json:"stations"`
}

func nodeToDTO(n *steer.Node) NodeDTO {
	return NodeDTO{
		Name:      n.Name,
		Type:      n.Type.String(),
		SSID:      n.SSID,
		BSSID:     n.BSSID.String(),
		FreqMHz:   n.FreqMHz,
		NoiseDBm:  n.NoiseDBm,
		NAssoc:    n.NAssoc,
		MaxAssoc:  n.MaxAssoc,
		Load:      n.Load,
		Disabled:  n.Disabled,
		Is5GHz:    n.Is5GHz(),
		StationsN: len(n.Observations()),
	}
}

// StationDTO is the wire representation of a steer.Station plus its
// per-node observations.
type StationDTO struct {
	MAC          string           `json:"mac"`
	Seen24GHz    bool             `json:"seen_24ghz"`
	Seen5GHz     bool             `json:"seen_5ghz"`
	Observations []ObservationDTO `json:"observations"`
}

func stationToDTO(s *steer.Station) StationDTO {
	obs := s.Observations()
	out := make([]ObservationDTO, 0, len(obs))
	for _, o := range obs {
		out = append(out, observationToDTO(o))
	}
	return StationDTO{
		MAC:          s.MAC.String(),
		Seen24GHz:    s.Seen24GHz,
		Seen5GHz:     s.Seen5GHz,
		Observations: out,
	}
}

// ObservationDTO is the wire representation of a steer.Observation: one
// station's record on one node.
type ObservationDTO struct {
	Node      string `json:"node"`
	Connected string `json:"connected"`
	Signal    int    `json:"signal"`
	RoamState string `json:"roam_state"`
	RoamTries int    `json:"roam_tries"`
	KickCount int    `json:"kick_count"`
	Created   int64  `json:"created"`
	Seen      int64  `json:"seen"`
}

func observationToDTO(o *steer.Observation) ObservationDTO {
	return ObservationDTO{
		Node:      o.Node.Name,
		Connected: o.Connected.String(),
		Signal:    o.Signal,
		RoamState: o.RoamState.String(),
		RoamTries: o.RoamTries,
		KickCount: o.KickCount,
		Created:   o.Created,
		Seen:      o.Seen,
	}
}
