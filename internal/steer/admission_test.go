package steer_test

import (
	"testing"

	"github.com/dantte-lp/usteerd/internal/steer"
)

type collectingSink struct {
	events []steer.DecisionEvent
}

func (s *collectingSink) Emit(ev steer.DecisionEvent) {
	s.events = append(s.events, ev)
}

func (s *collectingSink) last() steer.DecisionEvent {
	return s.events[len(s.events)-1]
}

// P1 — AUTH is always accepted.
func TestCheckRequest_AuthAlwaysAccepted(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.MinConnectSNR = 40 // deliberately strict, to prove AUTH ignores it
	node := steer.NewNode("local/wlan0", steer.NodeLocal)
	reg := steer.NewStationRegistry()
	obs, _ := reg.GetOrCreateObservation(testMAC(t, "00:11:22:33:44:55"), node, 0)
	obs.Signal = -95

	sink := &collectingSink{}
	f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

	if !f.CheckRequest(obs, steer.RequestAuth) {
		t.Fatal("CheckRequest(AUTH) = false, want true")
	}
}

// P2 — assoc_steering disabled bypasses the candidate check once signal
// clears min_snr.
func TestCheckRequest_AssocSteeringDisabledBypassesCandidateCheck(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.AssocSteering = false
	cfg.MinSNR = 10
	cfg.SignalDiffThreshold = 10 // makes betterObs a SIGNAL candidate
	node := steer.NewNode("local/wlan0", steer.NodeLocal)
	node.NoiseDBm = -90

	reg := steer.NewStationRegistry()
	mac := testMAC(t, "00:11:22:33:44:66")
	obs, _ := reg.GetOrCreateObservation(mac, node, 0)
	obs.Signal = -70 // snr_to_signal(node, 10) == -80, -70 clears it

	better := steer.NewNode("local/wlan1", steer.NodeLocal)
	betterObs, _ := reg.GetOrCreateObservation(mac, better, 0)
	betterObs.Signal = -20
	betterObs.Seen = 0
	_ = betterObs

	sink := &collectingSink{}
	f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

	if !f.CheckRequest(obs, steer.RequestAssoc) {
		t.Fatal("CheckRequest(ASSOC) = false, want true (assoc_steering disabled)")
	}
}

// S2 — assoc-loop guard: low signal rejects regardless of assoc_steering.
func TestCheckRequest_AssocLoopGuard(t *testing.T) {
	t.Parallel()

	for _, assocSteering := range []bool{true, false} {
		assocSteering := assocSteering
		t.Run("", func(t *testing.T) {
			t.Parallel()

			cfg := steer.DefaultConfig()
			cfg.MinSNR = 20
			cfg.AssocSteering = assocSteering
			node := steer.NewNode("local/wlan0", steer.NodeLocal)
			node.NoiseDBm = -90

			reg := steer.NewStationRegistry()
			obs, _ := reg.GetOrCreateObservation(testMAC(t, "aa:bb:cc:00:00:01"), node, 0)
			obs.Signal = -75

			sink := &collectingSink{}
			f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

			if f.CheckRequest(obs, steer.RequestAssoc) {
				t.Fatal("CheckRequest(ASSOC) = true, want false (below min_snr)")
			}
			ev := sink.last()
			if ev.Reason != steer.AdmitReasonLowSignal {
				t.Fatalf("reason = %v, want LOW_SIGNAL", ev.Reason)
			}
			if ev.ThresholdRef != -70 {
				t.Fatalf("threshold.ref = %d, want -70", ev.ThresholdRef)
			}
		})
	}
}

// S5 — retry override.
func TestCheckRequest_RetryExceededOverride(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.MaxRetryBand = 3
	cfg.AssocSteering = true

	nCur := steer.NewNode("cur", steer.NodeLocal)
	nCur.SSID = "corp"
	nBetter := steer.NewNode("better", steer.NodeLocal)
	nBetter.SSID = "corp"
	nBetter.NAssoc = 0
	cfg.BandSteeringThreshold = 0
	cfg.LoadBalancingThreshold = 0

	reg := steer.NewStationRegistry()
	mac := testMAC(t, "bb:cc:dd:ee:ff:00")
	obs, _ := reg.GetOrCreateObservation(mac, nCur, 0)
	obs.Signal = -40
	nCur.NAssoc = 10
	betterObs, _ := reg.GetOrCreateObservation(mac, nBetter, 0)
	betterObs.Signal = -30
	betterObs.Seen = 0

	obs.Stats[steer.RequestProbe].BlockedCur = 3

	sink := &collectingSink{}
	f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

	if f.CheckRequest(obs, steer.RequestProbe) {
		t.Fatal("CheckRequest(PROBE) = true, want false (better candidate)")
	}
	ev := sink.last()
	if ev.Reason != steer.AdmitReasonRetryExceeded {
		t.Fatalf("reason = %v, want RETRY_EXCEEDED", ev.Reason)
	}
}

// max_retry_band == 0 overrides the reason unconditionally, matching
// original_source/policy.c's literal blocked_cur >= max_retry_band check.
func TestCheckRequest_RetryExceededOverride_ZeroMaxRetryBand(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.MaxRetryBand = 0
	cfg.AssocSteering = true

	nCur := steer.NewNode("cur", steer.NodeLocal)
	nCur.SSID = "corp"
	nBetter := steer.NewNode("better", steer.NodeLocal)
	nBetter.SSID = "corp"
	nBetter.NAssoc = 0
	cfg.BandSteeringThreshold = 0
	cfg.LoadBalancingThreshold = 0

	reg := steer.NewStationRegistry()
	mac := testMAC(t, "bb:cc:dd:ee:ff:01")
	obs, _ := reg.GetOrCreateObservation(mac, nCur, 0)
	obs.Signal = -40
	nCur.NAssoc = 10
	betterObs, _ := reg.GetOrCreateObservation(mac, nBetter, 0)
	betterObs.Signal = -30
	betterObs.Seen = 0

	sink := &collectingSink{}
	f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

	if f.CheckRequest(obs, steer.RequestProbe) {
		t.Fatal("CheckRequest(PROBE) = true, want false (better candidate)")
	}
	ev := sink.last()
	if ev.Reason != steer.AdmitReasonRetryExceeded {
		t.Fatalf("reason = %v, want RETRY_EXCEEDED even with blocked_cur == 0", ev.Reason)
	}
}

// P9 — an accepted request never emits a reject-flavored event.
func TestCheckRequest_AcceptEmitsAcceptEvent(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	node := steer.NewNode("local/wlan0", steer.NodeLocal)

	reg := steer.NewStationRegistry()
	obs, _ := reg.GetOrCreateObservation(testMAC(t, "cc:dd:ee:ff:00:11"), node, 0)
	obs.Signal = -40

	sink := &collectingSink{}
	f := steer.NewFilter(cfg, steer.NewFakeClock(0), sink)

	if !f.CheckRequest(obs, steer.RequestProbe) {
		t.Fatal("CheckRequest(PROBE) = false, want true")
	}
	ev := sink.last()
	if ev.Type != steer.EventProbeAccept {
		t.Fatalf("event type = %v, want PROBE_ACCEPT", ev.Type)
	}
}
