// Package analytics computes per-participant financial analytics over a
// normalized snapshot: net position and rank, counterparty concentration,
// trustline capacity, rolling activity and balance breakdowns.
//
// Every amount is aggregated as integer atoms; floats appear only in ratios
// handed to the presentation layer.
package analytics

import (
	"strings"
	"time"

	"trustmap/internal/domain"
	"trustmap/internal/graph"
	"trustmap/internal/metrics"
	"trustmap/internal/snapshot"
	"trustmap/pkg/logger"
)

// DefaultWindows are the rolling activity windows in days.
var DefaultWindows = []int{7, 30, 90}

// DefaultBins is the histogram width of the net distribution.
const DefaultBins = 10

// Selection names the participant and equivalent being analyzed.
type Selection struct {
	PID        string `json:"pid"`
	Equivalent string `json:"equivalent"`
}

// Scoped reports whether the selection names a single equivalent.
func (s Selection) Scoped() bool {
	return !domain.IsAllEquivalents(s.Equivalent)
}

// Bundle is everything the analytics panel shows for one selection.
// Rank, Concentration, Capacity, CounterpartySplit and NetDistribution are
// only defined for a single equivalent and stay nil for "ALL".
type Bundle struct {
	SnapshotID  string `json:"snapshot_id"`
	PID         string `json:"pid"`
	DisplayName string `json:"display_name"`
	Equivalent  string `json:"equivalent"`
	Precision   int    `json:"precision"`
	Scoped      bool   `json:"scoped"`

	Rank              *Rank              `json:"rank"`
	Concentration     *Concentration     `json:"concentration"`
	Capacity          *Capacity          `json:"capacity"`
	Activity          Activity           `json:"activity"`
	CounterpartySplit *CounterpartySplit `json:"counterparty_split"`
	BalanceRows       []BalanceRow       `json:"balance_rows"`
	NetDistribution   *NetDistribution   `json:"net_distribution"`
}

// Engine computes analytics bundles. It holds no snapshot state, so one
// Engine may serve concurrent calls.
type Engine struct {
	logger  logger.Logger
	metrics *metrics.Collector

	windows []int
	bins    int
	levels  LevelThresholds
}

// Option customizes an Engine.
type Option func(*Engine)

// WithWindows overrides the activity windows.
func WithWindows(days ...int) Option {
	return func(e *Engine) {
		if len(days) > 0 {
			e.windows = append([]int(nil), days...)
		}
	}
}

// WithBins overrides the number of net-distribution bins.
func WithBins(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bins = n
		}
	}
}

// WithLevelThresholds overrides the concentration level cut-offs.
func WithLevelThresholds(t LevelThresholds) Option {
	return func(e *Engine) { e.levels = t }
}

// NewEngine creates an analytics engine.
func NewEngine(log logger.Logger, m *metrics.Collector, opts ...Option) *Engine {
	e := &Engine{
		logger:  log,
		metrics: m,
		windows: DefaultWindows,
		bins:    DefaultBins,
		levels:  DefaultLevelThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze builds the bundle for sel. g is the currently rendered graph and
// only feeds the bottleneck list; it may be nil.
func (e *Engine) Analyze(idx *snapshot.Index, g *graph.Graph, sel Selection, now time.Time) *Bundle {
	start := time.Now()
	sel.PID = strings.TrimSpace(sel.PID)
	sel.Equivalent = strings.TrimSpace(sel.Equivalent)
	if !sel.Scoped() {
		sel.Equivalent = domain.AllEquivalents
	}

	b := &Bundle{
		SnapshotID:  idx.ID,
		PID:         sel.PID,
		DisplayName: idx.DisplayName(sel.PID),
		Equivalent:  sel.Equivalent,
		Scoped:      sel.Scoped(),
		Activity:    ComputeActivity(idx, sel, now, e.windows),
		BalanceRows: ComputeBalanceRows(idx, sel.PID),
	}

	if b.Scoped {
		b.Precision = idx.Precision(sel.Equivalent)
		nets := NetPositions(idx, sel.Equivalent, sel.PID)

		b.Rank = ComputeRank(nets, sel.PID, b.Precision)
		b.Concentration = ComputeConcentration(idx, sel, e.levels)
		b.Capacity = ComputeCapacity(idx, g, sel)
		b.CounterpartySplit = ComputeCounterpartySplit(idx, sel)
		b.NetDistribution = ComputeNetDistribution(nets, sel.PID, e.bins, b.Precision)
	}

	e.metrics.ObserveCompute("analytics", time.Since(start))
	e.logger.Debug("Analytics computed", map[string]interface{}{
		"snapshot_id": idx.ID,
		"pid":         sel.PID,
		"equivalent":  sel.Equivalent,
		"scoped":      b.Scoped,
		"duration_us": time.Since(start).Microseconds(),
	})
	return b
}
