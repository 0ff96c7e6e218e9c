package steer_test

import (
	"testing"

	"github.com/dantte-lp/usteerd/internal/steer"
)

func newObservation(t *testing.T, reg *steer.StationRegistry, mac steer.MAC, node *steer.Node, signal int, now int64) *steer.Observation {
	t.Helper()
	obs, _ := reg.GetOrCreateObservation(mac, node, now)
	obs.Signal = signal
	obs.Seen = now
	obs.Connected = steer.StaConnected
	return obs
}

func testMAC(t *testing.T, s string) steer.MAC {
	t.Helper()
	mac, err := steer.ParseMAC(s)
	if err != nil {
		t.Fatalf("parse mac: %v", err)
	}
	return mac
}

// S1 — band steering.
func TestEvaluate_BandSteering(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.BandSteeringThreshold = 5
	cfg.LoadBalancingThreshold = 0

	n24 := steer.NewNode("local/wlan0", steer.NodeLocal)
	n24.FreqMHz = 2437
	n24.NAssoc = 2
	n5 := steer.NewNode("local/wlan1", steer.NodeLocal)
	n5.FreqMHz = 5180
	n5.NAssoc = 4

	reg := steer.NewStationRegistry()
	mac := testMAC(t, "aa:bb:cc:dd:ee:ff")
	ref := newObservation(t, reg, mac, n24, -60, 0)
	cand := newObservation(t, reg, mac, n5, -65, 0)

	got := steer.Evaluate(cfg, ref, cand)
	if !got.Has(steer.ReasonNumAssoc) {
		t.Fatalf("Evaluate() = %v, want NUM_ASSOC set", got)
	}
	if got.Has(steer.ReasonSignal) || got.Has(steer.ReasonLoad) {
		t.Fatalf("Evaluate() = %v, want only NUM_ASSOC", got)
	}
}

// P4 — evaluate is empty once cand's node is full.
func TestEvaluate_MaxAssocHardFilter(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	nCur := steer.NewNode("cur", steer.NodeLocal)
	nCand := steer.NewNode("cand", steer.NodeLocal)
	nCand.MaxAssoc = 2
	nCand.NAssoc = 2

	reg := steer.NewStationRegistry()
	mac := testMAC(t, "11:22:33:44:55:66")
	ref := newObservation(t, reg, mac, nCur, -50, 0)
	cand := newObservation(t, reg, mac, nCand, -40, 0)

	if got := steer.Evaluate(cfg, ref, cand); got != 0 {
		t.Fatalf("Evaluate() = %v, want empty set when cand's node is full", got)
	}
}

// P3 — NUM_ASSOC is never set both ways.
func TestEvaluate_NumAssocStrictAsymmetry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		aAssoc       int
		bAssoc       int
		aFreq, bFreq int
	}{
		{"equal load same band", 3, 3, 2412, 2412},
		{"a busier", 5, 1, 2412, 2412},
		{"b busier", 1, 5, 2412, 2412},
		{"cross band", 4, 4, 2412, 5180},
		{"cross band reverse", 4, 4, 5180, 2412},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := steer.DefaultConfig()
			cfg.BandSteeringThreshold = 5
			cfg.LoadBalancingThreshold = 5

			nA := steer.NewNode("a", steer.NodeLocal)
			nA.FreqMHz = tc.aFreq
			nA.NAssoc = tc.aAssoc
			nB := steer.NewNode("b", steer.NodeLocal)
			nB.FreqMHz = tc.bFreq
			nB.NAssoc = tc.bAssoc

			reg := steer.NewStationRegistry()
			mac := testMAC(t, "aa:11:22:33:44:55")
			oa := newObservation(t, reg, mac, nA, -50, 0)
			ob := newObservation(t, reg, mac, nB, -50, 0)

			ab := steer.Evaluate(cfg, oa, ob).Has(steer.ReasonNumAssoc)
			ba := steer.Evaluate(cfg, ob, oa).Has(steer.ReasonNumAssoc)
			if ab && ba {
				t.Fatalf("NUM_ASSOC set both ways: evaluate(a,b)=%v evaluate(b,a)=%v", ab, ba)
			}
		})
	}
}

// P8 — snr_to_signal conversion.
func TestSNRToSignal(t *testing.T) {
	t.Parallel()

	node := steer.NewNode("n", steer.NodeLocal)
	node.NoiseDBm = -90

	if got, want := steer.SNRToSignal(node, 20), -70; got != want {
		t.Fatalf("SNRToSignal(20) = %d, want %d", got, want)
	}
	if got, want := steer.SNRToSignal(node, -60), -60; got != want {
		t.Fatalf("SNRToSignal(-60) = %d, want %d (passthrough)", got, want)
	}

	defaultNoiseNode := steer.NewNode("n2", steer.NodeLocal)
	if got, want := steer.SNRToSignal(defaultNoiseNode, 20), -75; got != want {
		t.Fatalf("SNRToSignal with default noise = %d, want %d", got, want)
	}
}
