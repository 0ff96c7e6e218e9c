package rpcbus_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dantte-lp/usteerd/internal/rpcbus"
)

func TestLoggingRadio_NeverPanics(t *testing.T) {
	t.Parallel()

	radio := rpcbus.NewLoggingRadio(slog.New(slog.NewTextHandler(io.Discard, nil)))
	mac := testMAC(t)

	radio.TriggerClientScan(mac)
	radio.NotifyClientDisassoc(mac)
	radio.KickClient(mac)
}
