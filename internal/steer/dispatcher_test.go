package steer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dantte-lp/usteerd/internal/steer"
)

type fakeRadio struct {
	kicked    []steer.MAC
	scanned   []steer.MAC
	disassocd []steer.MAC
}

func (r *fakeRadio) TriggerClientScan(mac steer.MAC)    { r.scanned = append(r.scanned, mac) }
func (r *fakeRadio) NotifyClientDisassoc(mac steer.MAC) { r.disassocd = append(r.disassocd, mac) }
func (r *fakeRadio) KickClient(mac steer.MAC)           { r.kicked = append(r.kicked, mac) }

func mustMAC(t *testing.T, s string) steer.MAC {
	t.Helper()
	mac, err := steer.ParseMAC(s)
	if err != nil {
		t.Fatalf("ParseMAC(%q): %v", s, err)
	}
	return mac
}

func TestDispatcher_OnStationEvent_UnknownNode(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	mac := mustMAC(t, "aa:bb:cc:dd:ee:01")
	_, err := d.OnStationEvent("no-such-node", mac, steer.RequestProbe, 2437, -60)
	if !errors.Is(err, steer.ErrUnknownNode) {
		t.Fatalf("err = %v, want ErrUnknownNode", err)
	}
}

func TestDispatcher_OnNodeUpdateThenStationEvent(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	clock := steer.NewFakeClock(0)
	var sunk []steer.DecisionEvent
	sink := steer.EventSinkFunc(func(ev steer.DecisionEvent) { sunk = append(sunk, ev) })

	d := steer.NewDispatcher(cfg, clock, sink, &fakeRadio{})

	if err := d.OnNodeUpdate("local/wlan0", steer.NodeSnapshot{SSID: "test", FreqMHz: 2437, NAssoc: 0, MaxAssoc: 10}); err != nil {
		t.Fatalf("OnNodeUpdate: %v", err)
	}

	mac := mustMAC(t, "aa:bb:cc:dd:ee:01")
	accept, err := d.OnStationEvent("local/wlan0", mac, steer.RequestProbe, 2437, -60)
	if err != nil {
		t.Fatalf("OnStationEvent: %v", err)
	}
	if !accept {
		t.Error("OnStationEvent() = false, want accepted with all thresholds disabled")
	}

	node, ok := d.Nodes().Get("local/wlan0")
	if !ok {
		t.Fatal("node not registered")
	}
	if node.SSID != "test" {
		t.Errorf("node.SSID = %q, want %q", node.SSID, "test")
	}

	sta, ok := d.Stations().GetStation(mac)
	if !ok {
		t.Fatal("station not registered")
	}
	if len(sta.Observations()) != 1 {
		t.Fatalf("len(observations) = %d, want 1", len(sta.Observations()))
	}

	if len(sunk) == 0 {
		t.Fatal("no DecisionEvent emitted")
	}
	if sunk[0].Type != steer.EventProbeAccept {
		t.Errorf("event type = %v, want EventProbeAccept", sunk[0].Type)
	}
}

func TestDispatcher_OnStationUpdate(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	clock := steer.NewFakeClock(1000)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	if err := d.OnNodeUpdate("local/wlan0", steer.NodeSnapshot{}); err != nil {
		t.Fatalf("OnNodeUpdate: %v", err)
	}

	mac := mustMAC(t, "aa:bb:cc:dd:ee:02")
	if err := d.OnStationUpdate("local/wlan0", mac, -55, steer.StaConnected, 1000); err != nil {
		t.Fatalf("OnStationUpdate: %v", err)
	}

	obs, ok := d.Stations().Observation(mac, func() *steer.Node { n, _ := d.Nodes().Get("local/wlan0"); return n }())
	if !ok {
		t.Fatal("observation not found")
	}
	if obs.Signal != -55 {
		t.Errorf("Signal = %d, want -55", obs.Signal)
	}
	if obs.Connected != steer.StaConnected {
		t.Errorf("Connected = %v, want StaConnected", obs.Connected)
	}
}

func TestDispatcher_OnRemoteNodeUpdate(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	if err := d.OnRemoteNodeUpdate("10.0.0.2", "remote/wlan1", steer.NodeSnapshot{SSID: "mesh"}); err != nil {
		t.Fatalf("OnRemoteNodeUpdate: %v", err)
	}

	node, ok := d.Nodes().Get("remote/wlan1")
	if !ok {
		t.Fatal("remote node not registered")
	}
	if node.Type != steer.NodeRemote {
		t.Errorf("Type = %v, want NodeRemote", node.Type)
	}
}

func TestDispatcher_TickLocalNode_UnknownNode(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	if err := d.TickLocalNode("no-such-node"); !errors.Is(err, steer.ErrUnknownNode) {
		t.Fatalf("err = %v, want ErrUnknownNode", err)
	}
}

func TestDispatcher_TickLocalNode_SignalKick(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.MinSNR = 20
	cfg.MinSNRKickDelay = 1000
	cfg.LocalStaUpdate = 1000
	radio := &fakeRadio{}

	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, radio)

	if err := d.OnNodeUpdate("local/wlan0", steer.NodeSnapshot{NoiseDBm: -95}); err != nil {
		t.Fatalf("OnNodeUpdate: %v", err)
	}
	mac := mustMAC(t, "aa:bb:cc:dd:ee:03")
	if err := d.OnStationUpdate("local/wlan0", mac, -90, steer.StaConnected, 0); err != nil {
		t.Fatalf("OnStationUpdate: %v", err)
	}

	if err := d.TickLocalNode("local/wlan0"); err != nil {
		t.Fatalf("TickLocalNode: %v", err)
	}
	clock.Advance(2 * 1000 * 1000 * 1000) // well past min_snr_kick_delay
	if err := d.TickLocalNode("local/wlan0"); err != nil {
		t.Fatalf("TickLocalNode: %v", err)
	}

	if len(radio.kicked) == 0 {
		t.Error("no kick issued despite station held below min_snr past min_snr_kick_delay")
	}
}

// §3: a station is destroyed once every per-node observation it holds has
// expired past local_sta_timeout.
func TestDispatcher_TickLocalNode_ExpiresStaleObservations(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.LocalStaTimeout = 30_000

	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	if err := d.OnNodeUpdate("local/wlan0", steer.NodeSnapshot{NoiseDBm: -95}); err != nil {
		t.Fatalf("OnNodeUpdate: %v", err)
	}
	mac := mustMAC(t, "aa:bb:cc:dd:ee:04")
	if err := d.OnStationUpdate("local/wlan0", mac, -60, steer.StaConnected, 0); err != nil {
		t.Fatalf("OnStationUpdate: %v", err)
	}

	if _, ok := d.Stations().GetStation(mac); !ok {
		t.Fatal("station not registered after OnStationUpdate")
	}

	clock.Advance(31 * time.Second)
	if err := d.TickLocalNode("local/wlan0"); err != nil {
		t.Fatalf("TickLocalNode: %v", err)
	}

	if _, ok := d.Stations().GetStation(mac); ok {
		t.Error("station still registered after its only observation expired past local_sta_timeout")
	}
	node, _ := d.Nodes().Get("local/wlan0")
	if n := len(node.Observations()); n != 0 {
		t.Errorf("node.Observations() = %d entries, want 0", n)
	}
}

// §3/§9: sta_block_timeout resets a stale blocked_cur so it can't leak into
// an unrelated later burst and trip RETRY_EXCEEDED prematurely.
func TestDispatcher_TickLocalNode_ResetsStaleBlockedCur(t *testing.T) {
	t.Parallel()

	cfg := steer.DefaultConfig()
	cfg.StaBlockTimeout = 30_000
	cfg.LocalStaTimeout = 0 // isolate this test from the expiry sweep

	clock := steer.NewFakeClock(0)
	d := steer.NewDispatcher(cfg, clock, nil, &fakeRadio{})

	if err := d.OnNodeUpdate("local/wlan0", steer.NodeSnapshot{NoiseDBm: -95}); err != nil {
		t.Fatalf("OnNodeUpdate: %v", err)
	}
	mac := mustMAC(t, "aa:bb:cc:dd:ee:05")
	if _, err := d.OnStationEvent("local/wlan0", mac, steer.RequestProbe, 2437, -60); err != nil {
		t.Fatalf("OnStationEvent: %v", err)
	}

	obs, ok := d.Stations().Observation(mac, mustNode(t, d, "local/wlan0"))
	if !ok {
		t.Fatal("observation not found")
	}
	obs.Stats[steer.RequestProbe].BlockedCur = 5
	obs.Stats[steer.RequestProbe].BlockedLastTime = 0

	clock.Advance(31 * time.Second)
	if err := d.TickLocalNode("local/wlan0"); err != nil {
		t.Fatalf("TickLocalNode: %v", err)
	}

	if got := obs.Stats[steer.RequestProbe].BlockedCur; got != 0 {
		t.Errorf("BlockedCur = %d after sta_block_timeout elapsed, want 0", got)
	}
}

func mustNode(t *testing.T, d *steer.Dispatcher, name string) *steer.Node {
	t.Helper()
	n, ok := d.Nodes().Get(name)
	if !ok {
		t.Fatalf("node %q not registered", name)
	}
	return n
}
