// usteerd daemon -- multi-AP 802.11 client steering.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dantte-lp/usteerd/internal/config"
	"github.com/dantte-lp/usteerd/internal/gossip"
	"github.com/dantte-lp/usteerd/internal/metrics"
	"github.com/dantte-lp/usteerd/internal/rpcbus"
	"github.com/dantte-lp/usteerd/internal/server"
	"github.com/dantte-lp/usteerd/internal/steer"
	appversion "github.com/dantte-lp/usteerd/internal/version"
)

// shutdownTimeout is the maximum time to wait for HTTP servers to drain
// active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

// gossipInterval is the period on which this node publishes its local
// snapshots to peers via internal/gossip. There is no discovered peer list
// in this build (see DESIGN.md), so the publish loop runs with an empty
// peer set; it exists to exercise the collaborator's lifecycle.
const gossipInterval = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("usteerd starting",
		slog.String("version", appversion.Version),
		slog.String("server_addr", cfg.Server.Addr),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// events is built standalone so it can be fanned into the sink the
	// steer core is constructed with, before the control-plane server
	// that also reads from it exists.
	events := server.NewEventBroadcaster()
	steerCfg := cfg.Steer.ToSteerConfig()
	fanout := multiSink{collector, events}
	// Event types that steerCfg.EventMask excludes reach neither the
	// metrics collector nor the event stream.
	sink := steer.EventSinkFunc(func(ev steer.DecisionEvent) {
		if steerCfg.EventMask.Allows(ev.Type) {
			fanout.Emit(ev)
		}
	})

	radio := rpcbus.NewLoggingRadio(logger)
	clock := steer.NewClock()
	dispatcher := steer.NewDispatcher(steerCfg, clock, sink, radio)

	ctlServer := server.New(dispatcher.Nodes(), dispatcher.Stations(), events, logger)

	adapter := rpcbus.New(dispatcher, logger)
	hub := gossip.NewHub(adapter, gossipInterval, logger)

	if err := runServers(cfg, dispatcher, adapter, hub, ctlServer, reg, logger, *configPath, logLevel); err != nil {
		logger.Error("usteerd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("usteerd stopped")
	return 0
}

// runServers sets up and runs the control-plane and metrics HTTP servers,
// the per-local-node tick loop, and the gossip publish loop using an
// errgroup with signal-aware context for graceful shutdown.
func runServers(
	cfg *config.Config,
	dispatcher *steer.Dispatcher,
	adapter *rpcbus.Adapter,
	hub *gossip.Hub,
	ctlServer *server.Server,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
) error {
	ctlSrv := newControlServer(cfg.Server, ctlServer)
	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	startHTTPServers(gCtx, g, cfg, ctlSrv, metricsSrv, logger)
	startTickLoop(gCtx, g, dispatcher, adapter, cfg.Steer.LocalStaUpdate, logger)
	startGossipLoop(gCtx, g, hub, dispatcher, logger)
	startSIGHUPReload(gCtx, g, configPath, logLevel, logger)

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, hub, logger, ctlSrv, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// startHTTPServers registers the control-plane and metrics HTTP server
// goroutines.
func startHTTPServers(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	ctlSrv *http.Server,
	metricsSrv *http.Server,
	logger *slog.Logger,
) {
	lc := net.ListenConfig{}

	g.Go(func() error {
		logger.Info("control-plane server listening", slog.String("addr", cfg.Server.Addr))
		return listenAndServe(ctx, &lc, ctlSrv, cfg.Server.Addr)
	})

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(ctx, &lc, metricsSrv, cfg.Metrics.Addr)
	})
}

// startTickLoop runs steer.KickController.Tick once per local_sta_update
// for every NodeLocal node, via internal/rpcbus.Adapter.Tick.
func startTickLoop(
	ctx context.Context,
	g *errgroup.Group,
	dispatcher *steer.Dispatcher,
	adapter *rpcbus.Adapter,
	intervalMs int64,
	logger *slog.Logger,
) {
	interval := time.Duration(intervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				for _, node := range dispatcher.Nodes().LocalNodes() {
					adapter.Tick(node.Name)
				}
			}
		}
	})

	logger.Info("tick loop started", slog.Duration("interval", interval))
}

// startGossipLoop starts internal/gossip.Hub's publish loop, sourcing
// local snapshots from the dispatcher's NodeLocal entries.
func startGossipLoop(
	ctx context.Context,
	g *errgroup.Group,
	hub *gossip.Hub,
	dispatcher *steer.Dispatcher,
	logger *slog.Logger,
) {
	hub.Run(ctx, func() []gossip.Snapshot {
		local := dispatcher.Nodes().LocalNodes()
		snaps := make([]gossip.Snapshot, 0, len(local))
		for _, n := range local {
			snaps = append(snaps, gossip.Snapshot{
				NodeName: n.Name,
				Snap: steer.NodeSnapshot{
					SSID:     n.SSID,
					BSSID:    n.BSSID,
					FreqMHz:  n.FreqMHz,
					NoiseDBm: n.NoiseDBm,
					NAssoc:   n.NAssoc,
					MaxAssoc: n.MaxAssoc,
					Load:     n.Load,
					Disabled: n.Disabled,
				},
			})
		}
		return snaps
	})

	logger.Info("gossip publish loop started")
}

// startSIGHUPReload registers a goroutine that reloads the dynamic log
// level on SIGHUP. Declarative session reconciliation has no analogue here
// (no sessions concept); only the log level is live-reloadable.
func startSIGHUPReload(
	ctx context.Context,
	g *errgroup.Group,
	configPath string,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) {
	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)

	g.Go(func() error {
		defer signal.Stop(sigHUP)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sigHUP:
				reloadLogLevel(configPath, logLevel, logger)
			}
		}
	})
}

func reloadLogLevel(configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings",
			slog.String("error", err.Error()))
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)

	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)
}

// gracefulShutdown stops the gossip hub and shuts down both HTTP servers
// within shutdownTimeout.
func gracefulShutdown(
	ctx context.Context,
	hub *gossip.Hub,
	logger *slog.Logger,
	servers ...*http.Server,
) error {
	logger.Info("initiating graceful shutdown")

	if err := hub.Close(); err != nil {
		logger.Warn("failed to close gossip hub", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown server: %w", err))
		}
	}
	return shutdownErr
}

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newControlServer(cfg config.ServerConfig, ctlServer *server.Server) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           ctlServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// multiSink fans a DecisionEvent out to every sink, so the Prometheus
// collector and the control-plane's event stream both observe the same
// feed without the steer core knowing either exists.
type multiSink []steer.EventSink

func (m multiSink) Emit(ev steer.DecisionEvent) {
	for _, s := range m {
		s.Emit(ev)
	}
}
