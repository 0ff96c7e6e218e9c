package steer

// Config is the immutable, process-wide snapshot of policy thresholds
// consumed by every operation in this package. internal/config loads and
// validates the wire (YAML/env) form and projects it into one of these;
// nothing in this package parses configuration itself.
//
// Duration fields are milliseconds unless otherwise noted, matching the
// monotonic millisecond Clock.
type Config struct {
	// Registry lifecycle.
	StaBlockTimeout   int64
	LocalStaTimeout   int64
	LocalStaUpdate    int64
	SeenPolicyTimeout int64
	MaxRetryBand      int

	// Candidate evaluator.
	BandSteeringThreshold  int
	LoadBalancingThreshold int
	SignalDiffThreshold    int
	MinSNR                 int
	LoadKickThreshold      int
	LoadKickMinClients     int

	// Admission filter.
	AssocSteering       bool
	MinConnectSNR       int
	InitialConnectDelay int64

	// Roam trigger state machine.
	RoamScanSNR         int
	RoamTriggerSNR      int
	RoamScanTries       int
	RoamScanInterval    int64
	RoamScanTimeout     int64
	RoamTriggerInterval int64
	// RoamKickDelay is in centiseconds (units of 10ms), matching the
	// option's documented unit.
	RoamKickDelay int64

	// Node kick controller.
	MinSNRKickDelay  int64
	LoadKickEnabled  bool
	LoadKickDelay    int64

	// EventMask gates which DecisionEvent types reach internal/server and
	// internal/metrics; it never affects the decisions themselves.
	EventMask EventMask
}

// DefaultConfig returns the option defaults used by the original daemon,
// expressed in this package's units.
func DefaultConfig() *Config {
	return &Config{
		StaBlockTimeout:        30_000,
		LocalStaTimeout:        30_000,
		LocalStaUpdate:         1_000,
		SeenPolicyTimeout:      30_000,
		MaxRetryBand:           3,
		BandSteeringThreshold:  5,
		LoadBalancingThreshold: 5,
		SignalDiffThreshold:    0,
		MinSNR:                 0,
		LoadKickThreshold:      0,
		LoadKickMinClients:     0,
		AssocSteering:          false,
		MinConnectSNR:          0,
		InitialConnectDelay:    0,
		RoamScanSNR:            0,
		RoamTriggerSNR:         0,
		RoamScanTries:          3,
		RoamScanInterval:       10_000,
		RoamScanTimeout:        30_000,
		RoamTriggerInterval:    60_000,
		RoamKickDelay:          100,
		MinSNRKickDelay:        10_000,
		LoadKickEnabled:        false,
		LoadKickDelay:          10_000,
		EventMask:              EventMaskAll,
	}
}
