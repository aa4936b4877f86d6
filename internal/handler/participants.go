package handler

import (
	"net/http"
	"strings"
	"time"

	"trustmap/internal/analytics"
	"trustmap/internal/connections"
	"trustmap/internal/graph"
	"trustmap/internal/metrics"
	"trustmap/pkg/logger"

	"github.com/gorilla/mux"
)

// ParticipantHandler serves the per-participant drill-down panels.
type ParticipantHandler struct {
	viewer
	engine   *analytics.Engine
	cycles   connections.CycleSource
	pageSize int
	now      func() time.Time
}

func NewParticipantHandler(
	snapshots Snapshots,
	engine *analytics.Engine,
	cycles connections.CycleSource,
	defaults graph.FilterConfig,
	pageSize int,
	m *metrics.Collector,
	log logger.Logger,
) *ParticipantHandler {
	if pageSize <= 0 {
		pageSize = connections.DefaultPageSize
	}
	if cycles == nil {
		cycles = connections.NewSnapshotCycleSource(snapshots)
	}
	return &ParticipantHandler{
		viewer:   newViewer(snapshots, defaults, m, log),
		engine:   engine,
		cycles:   cycles,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// GetAnalytics returns the analytics bundle for {pid} in the requested
// equivalent. Bottlenecks follow the same graph filter as /graph.
func (h *ParticipantHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.current(w)
	if !ok {
		return
	}
	pid := mux.Vars(r)["pid"]
	cfg := h.filter(r)
	g := h.build(idx, cfg)

	bundle := h.engine.Analyze(idx, g, analytics.Selection{PID: pid, Equivalent: cfg.Equivalent}, h.now())
	respondJSON(w, http.StatusOK, bundle)
}

// ConnectionsResponse pages incoming and outgoing rows independently.
type ConnectionsResponse struct {
	PID         string           `json:"pid"`
	DisplayName string           `json:"display_name"`
	Incoming    connections.Page `json:"incoming"`
	Outgoing    connections.Page `json:"outgoing"`
}

// GetConnections lists {pid}'s trustlines in the filtered graph. page and
// page_size apply to both directions.
func (h *ParticipantHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.current(w)
	if !ok {
		return
	}
	pid := mux.Vars(r)["pid"]
	g := h.build(idx, h.filter(r))

	start := time.Now()
	rows := connections.Rows(idx, g, pid)
	h.metrics.ObserveCompute("connections", time.Since(start))

	page := intParam(r, "page", 1)
	size := intParam(r, "page_size", h.pageSize)
	respondJSON(w, http.StatusOK, ConnectionsResponse{
		PID:         pid,
		DisplayName: idx.DisplayName(pid),
		Incoming:    connections.Paginate(rows.Incoming, page, size),
		Outgoing:    connections.Paginate(rows.Outgoing, page, size),
	})
}

// GetCycles lists the clearing cycles {pid} takes part in. active_cycle
// marks one of them.
func (h *ParticipantHandler) GetCycles(w http.ResponseWriter, r *http.Request) {
	pid := mux.Vars(r)["pid"]
	q := r.URL.Query()
	equivalent := strings.TrimSpace(q.Get("equivalent"))
	if equivalent == "" {
		equivalent = h.defaults.Equivalent
	}

	cycles, err := h.cycles.Cycles(r.Context(), equivalent)
	if err != nil {
		h.logger.Error("Failed to load clearing cycles", map[string]interface{}{
			"pid":        pid,
			"equivalent": equivalent,
			"error":      err.Error(),
		})
		respondError(w, http.StatusBadGateway, "Clearing cycles unavailable")
		return
	}

	sel := connections.Selection{PID: pid, Equivalent: equivalent, ActiveCycle: strings.TrimSpace(q.Get("active_cycle"))}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pid":        pid,
		"equivalent": equivalent,
		"cycles":     connections.CyclesFor(cycles, sel),
	})
}
