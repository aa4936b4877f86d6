// Package graph derives the filtered, annotated trust graph from a
// normalized snapshot.
package graph

import (
	"sort"
	"strings"

	"trustmap/internal/domain"
	"trustmap/internal/snapshot"
	"trustmap/pkg/money"
)

// Node is a participant in the rendered graph. Degrees count filtered edges
// only.
type Node struct {
	PID           string                   `json:"pid"`
	DisplayName   string                   `json:"display_name"`
	Type          domain.ParticipantType   `json:"type,omitempty"`
	Status        domain.ParticipantStatus `json:"status,omitempty"`
	Degree        int                      `json:"degree"`
	InDegree      int                      `json:"in_degree"`
	OutDegree     int                      `json:"out_degree"`
	IncidentCount int                      `json:"incident_count,omitempty"`
	OverSLA       bool                     `json:"over_sla,omitempty"`
}

// Edge is one trustline that survived filtering.
type Edge struct {
	Equivalent  string                 `json:"equivalent"`
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	Limit       string                 `json:"limit"`
	Used        string                 `json:"used"`
	Available   string                 `json:"available"`
	Status      domain.TrustlineStatus `json:"status"`
	Bottleneck  bool                   `json:"bottleneck"`
	Highlighted bool                   `json:"highlighted,omitempty"`
}

// Key identifies the edge by (equivalent, from, to).
func (e Edge) Key() string {
	return EdgeKey(e.Equivalent, e.From, e.To)
}

func EdgeKey(equivalent, from, to string) string {
	return equivalent + "|" + from + "|" + to
}

type Stats struct {
	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
	Bottlenecks int `json:"bottlenecks"`
	Isolates    int `json:"isolates"`
	OverSLA     int `json:"over_sla"`
}

// Graph is the render-ready output of Build. Nodes are sorted by PID and
// edges by (equivalent, from, to).
type Graph struct {
	SnapshotID string       `json:"snapshot_id"`
	Filter     FilterConfig `json:"filter"`
	Nodes      []Node       `json:"nodes"`
	Edges      []Edge       `json:"edges"`
	Stats      Stats        `json:"stats"`
}

// Node looks up a node by PID.
func (g *Graph) Node(pid string) (Node, bool) {
	i := sort.Search(len(g.Nodes), func(i int) bool { return g.Nodes[i].PID >= pid })
	if i < len(g.Nodes) && g.Nodes[i].PID == pid {
		return g.Nodes[i], true
	}
	return Node{}, false
}

// Edge looks up an edge by its key.
func (g *Graph) Edge(key string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Key() == key {
			return e, true
		}
	}
	return Edge{}, false
}

// Build applies cfg to the snapshot in a fixed order: trustline selection,
// participant-type policy, bottleneck flags, degrees, minimum degree, focus.
// It is a pure function of its inputs.
func Build(idx *snapshot.Index, cfg FilterConfig) *Graph {
	cfg = cfg.Normalized()

	// 1-2: select and apply the same-type edge policy
	var edges []Edge
	for _, tl := range idx.Trustlines(cfg.Equivalent) {
		if !cfg.statusAllowed(tl.Status) {
			continue
		}
		if !keepByType(idx, cfg, tl) {
			continue
		}
		edges = append(edges, Edge{
			Equivalent: tl.Equivalent,
			From:       tl.From,
			To:         tl.To,
			Limit:      tl.Limit,
			Used:       tl.Used,
			Available:  tl.Available,
			Status:     tl.Status,
		})
	}

	// 3: bottlenecks
	for i := range edges {
		e := &edges[i]
		e.Bottleneck = strings.EqualFold(string(e.Status), string(domain.TrustlineStatusActive)) &&
			money.IsRatioBelowThreshold(money.RatioCheck{
				Numerator:   e.Available,
				Denominator: e.Limit,
				Threshold:   cfg.Threshold,
			})
	}

	// 4: nodes and post-filter degrees
	nodes := make(map[string]*Node)
	touch := func(pid string) *Node {
		n, ok := nodes[pid]
		if !ok {
			p, _ := idx.Participant(pid)
			n = &Node{PID: pid, DisplayName: p.DisplayName, Type: p.Type, Status: p.Status}
			nodes[pid] = n
		}
		return n
	}
	for _, e := range edges {
		from := touch(e.From)
		to := touch(e.To)
		from.OutDegree++
		from.Degree++
		to.InDegree++
		to.Degree++
	}
	if !cfg.HideIsolates {
		for _, pid := range idx.PIDs() {
			p, _ := idx.Participant(pid)
			if cfg.typeAllowed(p.Type) {
				touch(pid)
			}
		}
	}

	// 5: single-pass minimum degree
	if cfg.MinDegree > 0 {
		for pid, n := range nodes {
			if n.Degree < cfg.MinDegree {
				delete(nodes, pid)
			}
		}
		edges = keepEdgesWithin(edges, nodes)
	}

	// 6: focus
	if q := cfg.FocusQuery(); q != nil {
		reach := Ego(edges, q.PID, q.Depth)
		if _, ok := nodes[q.PID]; !ok {
			reach = map[string]int{}
		}
		for pid := range nodes {
			if _, ok := reach[pid]; !ok {
				delete(nodes, pid)
			}
		}
		edges = keepEdgesWithin(edges, nodes)
	}

	if cfg.ShowIncidents {
		for _, n := range nodes {
			annotateIncidents(idx, cfg.Equivalent, n)
		}
	}

	g := &Graph{SnapshotID: idx.ID, Filter: cfg, Edges: edges}
	g.Nodes = make([]Node, 0, len(nodes))
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, *n)
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].PID < g.Nodes[j].PID })
	sort.Slice(g.Edges, func(i, j int) bool { return edgeLess(g.Edges[i], g.Edges[j]) })
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	g.Stats = computeStats(g)
	return g
}

// keepByType hides cross-type edges and edges touching a participant whose
// type is outside a non-empty type filter.
func keepByType(idx *snapshot.Index, cfg FilterConfig, tl domain.Trustline) bool {
	if len(cfg.TypeFilter) == 0 {
		return true
	}
	from, _ := idx.Participant(tl.From)
	to, _ := idx.Participant(tl.To)
	if !cfg.typeAllowed(from.Type) || !cfg.typeAllowed(to.Type) {
		return false
	}
	return strings.EqualFold(string(from.Type), string(to.Type))
}

func keepEdgesWithin(edges []Edge, nodes map[string]*Node) []Edge {
	kept := edges[:0:0]
	for _, e := range edges {
		_, okFrom := nodes[e.From]
		_, okTo := nodes[e.To]
		if okFrom && okTo {
			kept = append(kept, e)
		}
	}
	return kept
}

func annotateIncidents(idx *snapshot.Index, equivalent string, n *Node) {
	for _, inc := range idx.IncidentsBy(n.PID) {
		if !domain.IsAllEquivalents(equivalent) && inc.Equivalent != equivalent {
			continue
		}
		n.IncidentCount++
		if inc.OverSLA() {
			n.OverSLA = true
		}
	}
}

func edgeLess(a, b Edge) bool {
	if a.Equivalent != b.Equivalent {
		return a.Equivalent < b.Equivalent
	}
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}

func computeStats(g *Graph) Stats {
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, e := range g.Edges {
		if e.Bottleneck {
			s.Bottlenecks++
		}
	}
	for _, n := range g.Nodes {
		if n.Degree == 0 {
			s.Isolates++
		}
		if n.OverSLA {
			s.OverSLA++
		}
	}
	return s
}
