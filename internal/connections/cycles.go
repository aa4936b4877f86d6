package connections

import (
	"context"
	"sort"
	"strings"

	"trustmap/internal/domain"
	"trustmap/internal/graph"
	"trustmap/internal/snapshot"
	"trustmap/pkg/errors"
)

// CycleSource supplies precomputed clearing cycles per equivalent.
type CycleSource interface {
	Cycles(ctx context.Context, equivalent string) ([]domain.ClearingCycle, error)
}

// IndexProvider returns the current normalized snapshot.
type IndexProvider interface {
	Current() (*snapshot.Index, error)
}

// SnapshotCycleSource serves cycles shipped inside the snapshot.
type SnapshotCycleSource struct {
	indexes IndexProvider
}

func NewSnapshotCycleSource(indexes IndexProvider) *SnapshotCycleSource {
	return &SnapshotCycleSource{indexes: indexes}
}

// Cycles returns the cycles of one equivalent, or of all of them in code
// order for "ALL".
func (s *SnapshotCycleSource) Cycles(ctx context.Context, equivalent string) ([]domain.ClearingCycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, err := s.indexes.Current()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCycleSourceFailed, err.Error())
	}
	byEq := idx.Snapshot.Cycles
	if !domain.IsAllEquivalents(equivalent) {
		return byEq[equivalent], nil
	}

	codes := make([]string, 0, len(byEq))
	for code := range byEq {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var out []domain.ClearingCycle
	for _, code := range codes {
		out = append(out, byEq[code]...)
	}
	return out, nil
}

// CycleKey is a stable identifier for a cycle: its equivalent and debtor
// sequence, rotated to start at the smallest PID.
func CycleKey(c domain.ClearingCycle) string {
	if len(c.Edges) == 0 {
		return ""
	}
	pids := make([]string, len(c.Edges))
	start := 0
	for i, e := range c.Edges {
		pids[i] = e.Debtor
		if e.Debtor < pids[start] {
			start = i
		}
	}
	rotated := append(append([]string{}, pids[start:]...), pids[:start]...)
	return c.Edges[0].Equivalent + ":" + strings.Join(rotated, ">")
}

func involves(c domain.ClearingCycle, pid string) bool {
	for _, e := range c.Edges {
		if e.Debtor == pid || e.Creditor == pid {
			return true
		}
	}
	return false
}

// Cycle is a clearing cycle with its highlight state.
type Cycle struct {
	Key    string             `json:"key"`
	Edges  []domain.CycleEdge `json:"edges"`
	Active bool               `json:"active"`
}

// CyclesFor keeps the cycles sel.PID takes part in (all of them when no
// participant is selected) and marks the active one.
func CyclesFor(cycles []domain.ClearingCycle, sel Selection) []Cycle {
	out := []Cycle{}
	for _, c := range cycles {
		if sel.PID != "" && !involves(c, sel.PID) {
			continue
		}
		key := CycleKey(c)
		out = append(out, Cycle{Key: key, Edges: c.Edges, Active: key != "" && key == sel.ActiveCycle})
	}
	return out
}

// Selection is the serializable drill-down state of the connections panel.
type Selection struct {
	PID             string `json:"pid"`
	Equivalent      string `json:"equivalent"`
	ActiveCycle     string `json:"active_cycle,omitempty"`
	HighlightedEdge string `json:"highlighted_edge,omitempty"`
	FocusPID        string `json:"focus_pid,omitempty"`
}

// ToggleCycle activates key, or deactivates it when it is already active.
func (s Selection) ToggleCycle(key string) Selection {
	if s.ActiveCycle == key {
		s.ActiveCycle = ""
	} else {
		s.ActiveCycle = key
	}
	return s
}

// SelectConnection toggles the highlight of row's edge and moves focus to
// the counterparty.
func (s Selection) SelectConnection(row Row) Selection {
	if s.HighlightedEdge == row.EdgeKey {
		s.HighlightedEdge = ""
	} else {
		s.HighlightedEdge = row.EdgeKey
	}
	s.FocusPID = row.CounterpartyPID
	return s
}

// Highlight returns a copy of g with Highlighted set on the selected edge
// and on every edge joining two consecutive members of the active cycle in
// the cycle's equivalent, in either direction.
func Highlight(g *graph.Graph, sel Selection, cycles []domain.ClearingCycle) *graph.Graph {
	marked := make(map[string]struct{})
	if sel.HighlightedEdge != "" {
		marked[sel.HighlightedEdge] = struct{}{}
	}
	if sel.ActiveCycle != "" {
		for _, c := range cycles {
			if CycleKey(c) != sel.ActiveCycle {
				continue
			}
			for _, e := range c.Edges {
				marked[graph.EdgeKey(e.Equivalent, e.Creditor, e.Debtor)] = struct{}{}
				marked[graph.EdgeKey(e.Equivalent, e.Debtor, e.Creditor)] = struct{}{}
			}
		}
	}

	out := *g
	out.Edges = make([]graph.Edge, len(g.Edges))
	for i, e := range g.Edges {
		_, e.Highlighted = marked[e.Key()]
		out.Edges[i] = e
	}
	return &out
}
