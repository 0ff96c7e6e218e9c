// Package server implements the control-plane HTTP surface for usteerd.
//
// There is no generated RPC stub pipeline available to this build (see
// DESIGN.md), so the list/get/watch surface the teacher generates from
// .proto files is reimplemented here as plain net/http + encoding/json,
// in the teacher's handler-struct-with-logger shape.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dantte-lp/usteerd/internal/steer"
)

// Server is the control-plane HTTP handler. It never mutates the steer
// core; it only reads the registries the caller's event loop owns and
// tails the DecisionEvent stream through its embedded EventBroadcaster.
type Server struct {
	nodes    *steer.NodeRegistry
	stations *steer.StationRegistry
	events   *EventBroadcaster
	logger   *slog.Logger

	mux *http.ServeMux
}

// New builds a Server reading from nodes and stations and tailing events
// through the given EventBroadcaster. The caller builds the
// EventBroadcaster with NewEventBroadcaster up front so it can also be
// registered as a steer.EventSink (typically fanned out alongside
// internal/metrics.Collector) before the steer core that feeds it exists.
func New(nodes *steer.NodeRegistry, stations *steer.StationRegistry, events *EventBroadcaster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = NewEventBroadcaster()
	}

	s := &Server{
		nodes:    nodes,
		stations: stations,
		events:   events,
		logger:   logger.With(slog.String("component", "server")),
	}

	s.mux = http.NewServeMux()
	s.routes()

	return s
}

func (s *Server) routes() {
	// Prometheus metrics are served by cmd/usteerd's separate metrics
	// HTTP server (config.MetricsConfig), matching the teacher's
	// gRPC-server-and-metrics-server split; this mux only carries the
	// control-plane surface.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /v1/nodes", s.handleListNodes)
	s.mux.HandleFunc("GET /v1/nodes/{name}", s.handleGetNode)
	s.mux.HandleFunc("GET /v1/stations", s.handleListStations)
	s.mux.HandleFunc("GET /v1/stations/{mac}", s.handleGetStation)
	s.mux.HandleFunc("GET /v1/events", s.handleWatchEvents)
}

// Handler returns the http.Handler to mount, wrapped in the Logging and
// Recovery middleware.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.logger)(RecoveryMiddleware(s.logger)(s.mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleListNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := s.nodes.Nodes()
	out := make([]NodeDTO, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeToDTO(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	n, ok := s.nodes.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, nodeToDTO(n))
}

func (s *Server) handleListStations(w http.ResponseWriter, _ *http.Request) {
	stas := s.stations.Stations()
	out := make([]StationDTO, 0, len(stas))
	for _, sta := range stas {
		out = append(out, stationToDTO(sta))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	macStr := strings.TrimSpace(r.PathValue("mac"))
	mac, err := steer.ParseMAC(macStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sta, ok := s.stations.GetStation(mac)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, stationToDTO(sta))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
