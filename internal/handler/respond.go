// Package handler exposes the read-only trust-network API over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trustmap/internal/domain"
	"trustmap/internal/graph"
	"trustmap/internal/metrics"
	"trustmap/internal/snapshot"
	"trustmap/pkg/logger"
)

// Snapshots is the part of snapshot.Holder the handlers use.
type Snapshots interface {
	Current() (*snapshot.Index, error)
	Refresh(ctx context.Context) (*snapshot.Index, error)
}

// viewer carries what every read endpoint needs to turn a request into a
// rendered graph.
type viewer struct {
	snapshots Snapshots
	defaults  graph.FilterConfig
	metrics   *metrics.Collector
	logger    logger.Logger
}

func newViewer(snapshots Snapshots, defaults graph.FilterConfig, m *metrics.Collector, log logger.Logger) viewer {
	if strings.TrimSpace(defaults.Threshold) == "" {
		defaults = graph.DefaultFilterConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return viewer{snapshots: snapshots, defaults: defaults.Normalized(), metrics: m, logger: log}
}

// current writes a 503 and returns false when no snapshot is loaded yet.
func (v viewer) current(w http.ResponseWriter) (*snapshot.Index, bool) {
	idx, err := v.snapshots.Current()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Snapshot not loaded")
		return nil, false
	}
	return idx, true
}

func (v viewer) build(idx *snapshot.Index, cfg graph.FilterConfig) *graph.Graph {
	start := time.Now()
	g := graph.Build(idx, cfg)
	v.metrics.ObserveCompute("graph", time.Since(start))
	return g
}

// filter maps query parameters onto the default filter. Malformed values are
// ignored and leave the default in place.
//
//	equivalent=UAH  status=active,frozen  threshold=0.2  type=person
//	min_degree=2  incidents=true  hide_isolates=true  focus=PID  depth=2
func (v viewer) filter(r *http.Request) graph.FilterConfig {
	q := r.URL.Query()
	cfg := v.defaults

	if eq := strings.TrimSpace(q.Get("equivalent")); eq != "" {
		cfg.Equivalent = eq
	}
	if values, ok := listParam(q["status"]); ok {
		cfg.StatusFilter = make([]domain.TrustlineStatus, 0, len(values))
		for _, s := range values {
			cfg.StatusFilter = append(cfg.StatusFilter, domain.TrustlineStatus(s))
		}
	}
	if t := strings.TrimSpace(q.Get("threshold")); t != "" {
		cfg.Threshold = t
	}
	if values, ok := listParam(q["type"]); ok {
		cfg.TypeFilter = make([]domain.ParticipantType, 0, len(values))
		for _, s := range values {
			cfg.TypeFilter = append(cfg.TypeFilter, domain.ParticipantType(s))
		}
	}
	if n, err := strconv.Atoi(q.Get("min_degree")); err == nil {
		cfg.MinDegree = n
	}
	if b, err := strconv.ParseBool(q.Get("incidents")); err == nil {
		cfg.ShowIncidents = b
	}
	if b, err := strconv.ParseBool(q.Get("hide_isolates")); err == nil {
		cfg.HideIsolates = b
	}
	if root := strings.TrimSpace(q.Get("focus")); root != "" {
		cfg.Focus.Enabled = true
		cfg.Focus.RootPID = root
	}
	if d, err := strconv.Atoi(q.Get("depth")); err == nil {
		cfg.Focus.Depth = d
	}
	return cfg.Normalized()
}

// listParam flattens repeated and comma-separated values. ok is false when
// the parameter is absent, so the default applies.
func listParam(raw []string) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, true
}

func intParam(r *http.Request, key string, fallback int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return fallback
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
