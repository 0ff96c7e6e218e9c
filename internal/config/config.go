// Package config manages usteerd daemon configuration using koanf/v2.
//
// Supports YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete usteerd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Steer   SteerConfig   `koanf:"steer"`
}

// ServerConfig holds the control-plane HTTP server configuration.
type ServerConfig struct {
	// Addr is the control-plane listen address (e.g., ":8080").
	Addr string `koanf:"addr"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// SteerConfig is the wire form of steer.Config: one field per policy
// option spec.md §3's option table names. ToSteerConfig projects this into
// the immutable snapshot the core actually consumes; internal/steer never
// parses this struct itself.
type SteerConfig struct {
	StaBlockTimeout   int64 `koanf:"sta_block_timeout"`
	LocalStaTimeout   int64 `koanf:"local_sta_timeout"`
	LocalStaUpdate    int64 `koanf:"local_sta_update"`
	SeenPolicyTimeout int64 `koanf:"seen_policy_timeout"`
	MaxRetryBand      int   `koanf:"max_retry_band"`

	BandSteeringThreshold  int `koanf:"band_steering_threshold"`
	LoadBalancingThreshold int `koanf:"load_balancing_threshold"`
	SignalDiffThreshold    int `koanf:"signal_diff_threshold"`
	MinSNR                 int `koanf:"min_snr"`
	LoadKickThreshold      int `koanf:"load_kick_threshold"`
	LoadKickMinClients     int `koanf:"load_kick_min_clients"`

	AssocSteering       bool  `koanf:"assoc_steering"`
	MinConnectSNR       int   `koanf:"min_connect_snr"`
	InitialConnectDelay int64 `koanf:"initial_connect_delay"`

	RoamScanSNR         int   `koanf:"roam_scan_snr"`
	RoamTriggerSNR      int   `koanf:"roam_trigger_snr"`
	RoamScanTries       int   `koanf:"roam_scan_tries"`
	RoamScanInterval    int64 `koanf:"roam_scan_interval"`
	RoamScanTimeout     int64 `koanf:"roam_scan_timeout"`
	RoamTriggerInterval int64 `koanf:"roam_trigger_interval"`
	RoamKickDelay       int64 `koanf:"roam_kick_delay"`

	MinSNRKickDelay int64 `koanf:"min_snr_kick_delay"`
	LoadKickEnabled bool  `koanf:"load_kick_enabled"`
	LoadKickDelay   int64 `koanf:"load_kick_delay"`

	// EventMask is a list of event type names (e.g. "probe_reject",
	// "roam_trigger"); empty means "all events", matching
	// steer.EventMaskAll. Recovered from original_source/usteer.h's
	// event_log_mask field, dropped by the distilled spec (see SPEC_FULL.md).
	EventMask []string `koanf:"event_mask"`
}

// ToSteerConfig projects the wire config into the immutable steer.Config
// snapshot, the only form internal/steer ever sees.
func (sc SteerConfig) ToSteerConfig() *steer.Config {
	return &steer.Config{
		StaBlockTimeout:        sc.StaBlockTimeout,
		LocalStaTimeout:        sc.LocalStaTimeout,
		LocalStaUpdate:         sc.LocalStaUpdate,
		SeenPolicyTimeout:      sc.SeenPolicyTimeout,
		MaxRetryBand:           sc.MaxRetryBand,
		BandSteeringThreshold:  sc.BandSteeringThreshold,
		LoadBalancingThreshold: sc.LoadBalancingThreshold,
		SignalDiffThreshold:    sc.SignalDiffThreshold,
		MinSNR:                 sc.MinSNR,
		LoadKickThreshold:      sc.LoadKickThreshold,
		LoadKickMinClients:     sc.LoadKickMinClients,
		AssocSteering:          sc.AssocSteering,
		MinConnectSNR:          sc.MinConnectSNR,
		InitialConnectDelay:    sc.InitialConnectDelay,
		RoamScanSNR:            sc.RoamScanSNR,
		RoamTriggerSNR:         sc.RoamTriggerSNR,
		RoamScanTries:          sc.RoamScanTries,
		RoamScanInterval:       sc.RoamScanInterval,
		RoamScanTimeout:        sc.RoamScanTimeout,
		RoamTriggerInterval:    sc.RoamTriggerInterval,
		RoamKickDelay:          sc.RoamKickDelay,
		MinSNRKickDelay:        sc.MinSNRKickDelay,
		LoadKickEnabled:        sc.LoadKickEnabled,
		LoadKickDelay:          sc.LoadKickDelay,
		EventMask:              parseEventMask(sc.EventMask),
	}
}

func parseEventMask(names []string) steer.EventMask {
	if len(names) == 0 {
		return steer.EventMaskAll
	}
	var mask steer.EventMask
	for _, n := range names {
		if t, ok := eventTypeByName[strings.ToLower(strings.TrimSpace(n))]; ok {
			mask |= steer.EventMask(1) << uint(t)
		}
	}
	return mask
}

var eventTypeByName = map[string]steer.EventType{
	"probe_accept":          steer.EventProbeAccept,
	"probe_reject":          steer.EventProbeReject,
	"assoc_accept":          steer.EventAssocAccept,
	"assoc_reject":          steer.EventAssocReject,
	"auth_accept":           steer.EventAuthAccept,
	"auth_reject":           steer.EventAuthReject,
	"roam_trigger":          steer.EventRoamTrigger,
	"signal_kick":           steer.EventSignalKick,
	"load_kick_trigger":     steer.EventLoadKickTrigger,
	"load_kick_reset":       steer.EventLoadKickReset,
	"load_kick_min_clients": steer.EventLoadKickMinClients,
	"load_kick_no_client":   steer.EventLoadKickNoClient,
	"load_kick_client":      steer.EventLoadKickClient,
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	d := steer.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Steer: SteerConfig{
			StaBlockTimeout:        d.StaBlockTimeout,
			LocalStaTimeout:        d.LocalStaTimeout,
			LocalStaUpdate:         d.LocalStaUpdate,
			SeenPolicyTimeout:      d.SeenPolicyTimeout,
			MaxRetryBand:           d.MaxRetryBand,
			BandSteeringThreshold:  d.BandSteeringThreshold,
			LoadBalancingThreshold: d.LoadBalancingThreshold,
			SignalDiffThreshold:    d.SignalDiffThreshold,
			MinSNR:                 d.MinSNR,
			LoadKickThreshold:      d.LoadKickThreshold,
			LoadKickMinClients:     d.LoadKickMinClients,
			AssocSteering:          d.AssocSteering,
			MinConnectSNR:          d.MinConnectSNR,
			InitialConnectDelay:    d.InitialConnectDelay,
			RoamScanSNR:            d.RoamScanSNR,
			RoamTriggerSNR:         d.RoamTriggerSNR,
			RoamScanTries:          d.RoamScanTries,
			RoamScanInterval:       d.RoamScanInterval,
			RoamScanTimeout:        d.RoamScanTimeout,
			RoamTriggerInterval:    d.RoamTriggerInterval,
			RoamKickDelay:          d.RoamKickDelay,
			MinSNRKickDelay:        d.MinSNRKickDelay,
			LoadKickEnabled:        d.LoadKickEnabled,
			LoadKickDelay:          d.LoadKickDelay,
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for usteerd configuration.
// Variables are named USTEERD_<section>_<key>, e.g., USTEERD_SERVER_ADDR.
const envPrefix = "USTEERD_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (USTEERD_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	USTEERD_SERVER_ADDR       -> server.addr
//	USTEERD_METRICS_ADDR      -> metrics.addr
//	USTEERD_METRICS_PATH      -> metrics.path
//	USTEERD_LOG_LEVEL         -> log.level
//	USTEERD_LOG_FORMAT        -> log.format
//	USTEERD_STEER_MIN_SNR     -> steer.min_snr
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load defaults first.
	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	// Load YAML file on top of defaults.
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	// Load environment variable overrides on top of YAML.
	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms USTEERD_SERVER_ADDR -> server.addr.
// Strips the USTEERD_ prefix, lowercases, and replaces the first _ (the
// section separator) with ., so USTEERD_STEER_MIN_SNR -> steer.min_snr.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"server.addr":                    defaults.Server.Addr,
		"metrics.addr":                   defaults.Metrics.Addr,
		"metrics.path":                   defaults.Metrics.Path,
		"log.level":                      defaults.Log.Level,
		"log.format":                     defaults.Log.Format,
		"steer.sta_block_timeout":        defaults.Steer.StaBlockTimeout,
		"steer.local_sta_timeout":        defaults.Steer.LocalStaTimeout,
		"steer.local_sta_update":         defaults.Steer.LocalStaUpdate,
		"steer.seen_policy_timeout":      defaults.Steer.SeenPolicyTimeout,
		"steer.max_retry_band":           defaults.Steer.MaxRetryBand,
		"steer.band_steering_threshold":  defaults.Steer.BandSteeringThreshold,
		"steer.load_balancing_threshold": defaults.Steer.LoadBalancingThreshold,
		"steer.signal_diff_threshold":    defaults.Steer.SignalDiffThreshold,
		"steer.min_snr":                  defaults.Steer.MinSNR,
		"steer.load_kick_threshold":      defaults.Steer.LoadKickThreshold,
		"steer.load_kick_min_clients":    defaults.Steer.LoadKickMinClients,
		"steer.assoc_steering":           defaults.Steer.AssocSteering,
		"steer.min_connect_snr":          defaults.Steer.MinConnectSNR,
		"steer.initial_connect_delay":    defaults.Steer.InitialConnectDelay,
		"steer.roam_scan_snr":            defaults.Steer.RoamScanSNR,
		"steer.roam_trigger_snr":         defaults.Steer.RoamTriggerSNR,
		"steer.roam_scan_tries":          defaults.Steer.RoamScanTries,
		"steer.roam_scan_interval":       defaults.Steer.RoamScanInterval,
		"steer.roam_scan_timeout":        defaults.Steer.RoamScanTimeout,
		"steer.roam_trigger_interval":    defaults.Steer.RoamTriggerInterval,
		"steer.roam_kick_delay":          defaults.Steer.RoamKickDelay,
		"steer.min_snr_kick_delay":       defaults.Steer.MinSNRKickDelay,
		"steer.load_kick_enabled":        defaults.Steer.LoadKickEnabled,
		"steer.load_kick_delay":          defaults.Steer.LoadKickDelay,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyServerAddr indicates the control-plane listen address is empty.
	ErrEmptyServerAddr = errors.New("server.addr must not be empty")

	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")

	// ErrInvalidLocalStaUpdate indicates the tick interval is not positive.
	ErrInvalidLocalStaUpdate = errors.New("steer.local_sta_update must be > 0")

	// ErrInvalidMaxRetryBand indicates a negative retry ceiling.
	ErrInvalidMaxRetryBand = errors.New("steer.max_retry_band must be >= 0")
)

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return ErrEmptyServerAddr
	}

	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}

	if cfg.Steer.LocalStaUpdate <= 0 {
		return ErrInvalidLocalStaUpdate
	}

	if cfg.Steer.MaxRetryBand < 0 {
		return ErrInvalidMaxRetryBand
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
