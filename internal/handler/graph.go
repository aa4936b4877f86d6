package handler

import (
	"net/http"
	"strings"

	"trustmap/internal/connections"
	"trustmap/internal/domain"
	"trustmap/internal/focus"
	"trustmap/internal/graph"
	"trustmap/internal/metrics"
	"trustmap/pkg/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// GraphHandler serves the filtered network graph, focus mode and search.
type GraphHandler struct {
	viewer
	cycles connections.CycleSource
}

func NewGraphHandler(snapshots Snapshots, cycles connections.CycleSource, defaults graph.FilterConfig, m *metrics.Collector, log logger.Logger) *GraphHandler {
	if cycles == nil {
		cycles = connections.NewSnapshotCycleSource(snapshots)
	}
	return &GraphHandler{viewer: newViewer(snapshots, defaults, m, log), cycles: cycles}
}

// GetGraph renders the graph for the filter in the query string. The
// optional active_cycle and highlight_edge parameters mark edges.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.current(w)
	if !ok {
		return
	}
	cfg := h.filter(r)
	g := h.build(idx, cfg)

	q := r.URL.Query()
	sel := connections.Selection{
		ActiveCycle:     strings.TrimSpace(q.Get("active_cycle")),
		HighlightedEdge: strings.TrimSpace(q.Get("highlight_edge")),
	}
	if sel.ActiveCycle != "" || sel.HighlightedEdge != "" {
		var cycles []domain.ClearingCycle
		if sel.ActiveCycle != "" {
			var err error
			cycles, err = h.cycles.Cycles(r.Context(), cfg.Equivalent)
			if err != nil {
				h.logger.Warn("Cycle lookup failed, rendering without cycle highlight", map[string]interface{}{
					"equivalent": cfg.Equivalent,
					"error":      err.Error(),
				})
			}
		}
		g = connections.Highlight(g, sel, cycles)
	}

	respondJSON(w, http.StatusOK, g)
}

// FocusResponse carries the resolved root, the ego query and the
// restricted graph. Match and Query are null when nothing resolves.
type FocusResponse struct {
	Match *focus.Match `json:"match"`
	Query *focus.Query `json:"query"`
	Graph *graph.Graph `json:"graph"`
}

// GetFocus resolves q (a PID token, PID or display-name prefix) and returns
// the ego graph around it.
func (h *GraphHandler) GetFocus(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.current(w)
	if !ok {
		return
	}
	cfg := h.filter(r)

	resp := FocusResponse{}
	match, found := focus.Resolve(idx, r.URL.Query().Get("q"))
	if found {
		cfg.Focus = graph.FocusConfig{Enabled: true, RootPID: match.PID, Depth: cfg.Focus.Depth}
		resp.Match = &match
		resp.Query = cfg.FocusQuery()
		resp.Graph = h.build(idx, cfg)
	}

	respondJSON(w, http.StatusOK, resp)
}

// Search lists participants matching q.
func (h *GraphHandler) Search(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.current(w)
	if !ok {
		return
	}
	limit := intParam(r, "limit", defaultSearchLimit)
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	matches := focus.Search(idx, r.URL.Query().Get("q"), limit)
	if matches == nil {
		matches = []focus.Match{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": idx.ID,
		"matches":     matches,
	})
}
