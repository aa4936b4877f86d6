package analytics

import (
	"math/big"

	"trustmap/internal/graph"
	"trustmap/internal/snapshot"
	"trustmap/pkg/money"
)

// CapacityDirection aggregates trustlines on one side of the participant.
type CapacityDirection struct {
	Trustlines int     `json:"trustlines"`
	Limit      string  `json:"limit"`
	Used       string  `json:"used"`
	Available  string  `json:"available"`
	Pct        float64 `json:"pct"`
}

// Capacity is trustline utilization. Outgoing lines are those the
// participant extends (it is the creditor side); Incoming are extended to it.
type Capacity struct {
	Outgoing    CapacityDirection `json:"outgoing"`
	Incoming    CapacityDirection `json:"incoming"`
	Bottlenecks []graph.Edge      `json:"bottlenecks"`
}

type capacitySum struct {
	count       int
	limit, used *big.Int
}

func (s *capacitySum) add(limit, used *big.Int) {
	s.count++
	s.limit.Add(s.limit, limit)
	s.used.Add(s.used, used)
}

func (s *capacitySum) direction(precision int) CapacityDirection {
	return CapacityDirection{
		Trustlines: s.count,
		Limit:      money.AtomsToDecimal(s.limit, precision),
		Used:       money.AtomsToDecimal(s.used, precision),
		Available:  money.AtomsToDecimal(new(big.Int).Sub(s.limit, s.used), precision),
		Pct:        money.Ratio(s.used, s.limit),
	}
}

// ComputeCapacity sums every trustline of the equivalent regardless of
// status. Bottlenecks come from g so they match what is on screen.
func ComputeCapacity(idx *snapshot.Index, g *graph.Graph, sel Selection) *Capacity {
	precision := idx.Precision(sel.Equivalent)
	out := &capacitySum{limit: new(big.Int), used: new(big.Int)}
	in := &capacitySum{limit: new(big.Int), used: new(big.Int)}

	for _, tl := range idx.Trustlines(sel.Equivalent) {
		limit := money.MustAtoms(tl.Limit, precision)
		used := money.MustAtoms(tl.Used, precision)
		if tl.From == sel.PID {
			out.add(limit, used)
		}
		if tl.To == sel.PID {
			in.add(limit, used)
		}
	}

	c := &Capacity{
		Outgoing:    out.direction(precision),
		Incoming:    in.direction(precision),
		Bottlenecks: []graph.Edge{},
	}
	if g != nil {
		for _, e := range g.Edges {
			if e.Bottleneck && e.Equivalent == sel.Equivalent && (e.From == sel.PID || e.To == sel.PID) {
				c.Bottlenecks = append(c.Bottlenecks, e)
			}
		}
	}
	return c
}
