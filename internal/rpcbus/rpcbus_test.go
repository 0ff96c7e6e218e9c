package rpcbus_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dantte-lp/usteerd/internal/rpcbus"
	"github.com/dantte-lp/usteerd/internal/steer"
)

// fakeSource is a scripted steer.StationEventSource for testing Adapter's
// error-to-warning translation without exercising the real core.
type fakeSource struct {
	acceptStationEvent bool
	errStationEvent    error
	errStationUpdate   error
	errNodeUpdate      error
	errRemoteNode      error
	errTick            error

	tickedNode string
}

func (f *fakeSource) OnStationEvent(string, steer.MAC, steer.RequestType, int, int) (bool, error) {
	return f.acceptStationEvent, f.errStationEvent
}

func (f *fakeSource) OnStationUpdate(string, steer.MAC, int, steer.ConnState, int64) error {
	return f.errStationUpdate
}

func (f *fakeSource) OnNodeUpdate(string, steer.NodeSnapshot) error {
	return f.errNodeUpdate
}

func (f *fakeSource) OnRemoteNodeUpdate(string, string, steer.NodeSnapshot) error {
	return f.errRemoteNode
}

func (f *fakeSource) TickLocalNode(name string) error {
	f.tickedNode = name
	return f.errTick
}

func testMAC(t *testing.T) steer.MAC {
	t.Helper()
	mac, err := steer.ParseMAC("aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}
	return mac
}

func TestAdapter_StationEvent_Accepted(t *testing.T) {
	t.Parallel()

	src := &fakeSource{acceptStationEvent: true}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	accept := a.StationEvent("local/wlan0", testMAC(t), steer.RequestProbe, 2437, -60)
	if !accept {
		t.Error("StationEvent() = false, want true")
	}
}

func TestAdapter_StationEvent_UnknownNodeTreatedAsReject(t *testing.T) {
	t.Parallel()

	src := &fakeSource{acceptStationEvent: true, errStationEvent: steer.ErrUnknownNode}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	accept := a.StationEvent("no-such-node", testMAC(t), steer.RequestProbe, 2437, -60)
	if accept {
		t.Error("StationEvent() = true, want false when the source errors")
	}
}

func TestAdapter_StationUpdate_NeverPanicsOnError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{errStationUpdate: steer.ErrUnknownNode}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Must not panic despite the source returning an error.
	a.StationUpdate("no-such-node", testMAC(t), -60, steer.StaConnected, 1000)
}

func TestAdapter_NodeUpdate_NeverPanicsOnError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{errNodeUpdate: errors.New("boom")}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a.NodeUpdate("local/wlan0", steer.NodeSnapshot{})
}

func TestAdapter_RemoteNodeUpdate_NeverPanicsOnError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{errRemoteNode: errors.New("boom")}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a.RemoteNodeUpdate("10.0.0.2", "remote/wlan1", steer.NodeSnapshot{})
}

func TestAdapter_Tick_ForwardsNodeName(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a.Tick("local/wlan0")

	if src.tickedNode != "local/wlan0" {
		t.Errorf("tickedNode = %q, want %q", src.tickedNode, "local/wlan0")
	}
}

func TestAdapter_Tick_UnknownNodeNeverPanics(t *testing.T) {
	t.Parallel()

	src := &fakeSource{errTick: steer.ErrUnknownNode}
	a := rpcbus.New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a.Tick("no-such-node")
}
