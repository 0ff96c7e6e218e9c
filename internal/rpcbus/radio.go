package rpcbus

import (
	"log/slog"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// LoggingRadio implements steer.Radio by logging the action instead of
// issuing it over the air. It stands in for the real ubus/driver RPC
// boundary (802.11k beacon requests, 802.11v BTM frames, deauth frames),
// which is out of scope per spec.md's Non-goals.
type LoggingRadio struct {
	logger *slog.Logger
}

var _ steer.Radio = (*LoggingRadio)(nil)

// NewLoggingRadio returns a LoggingRadio logging through logger. A nil
// logger falls back to slog.Default().
func NewLoggingRadio(logger *slog.Logger) *LoggingRadio {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingRadio{logger: logger.With(slog.String("component", "rpcbus.radio"))}
}

// TriggerClientScan logs an 802.11k beacon request that would be sent to mac.
func (r *LoggingRadio) TriggerClientScan(mac steer.MAC) {
	r.logger.Info("trigger_client_scan", slog.String("station", mac.String()))
}

// NotifyClientDisassoc logs an 802.11v BTM request that would be sent to mac.
func (r *LoggingRadio) NotifyClientDisassoc(mac steer.MAC) {
	r.logger.Info("notify_client_disassoc", slog.String("station", mac.String()))
}

// KickClient logs a deauth frame that would be sent to mac.
func (r *LoggingRadio) KickClient(mac steer.MAC) {
	r.logger.Info("kick_client", slog.String("station", mac.String()))
}
