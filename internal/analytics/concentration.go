package analytics

import (
	"math/big"
	"sort"

	"trustmap/internal/snapshot"
	"trustmap/pkg/money"
)

// ==============================================================================
// COUNTERPARTY CONCENTRATION
// Shares are exact rationals of atom totals; floats only leave this file.
// ==============================================================================

// Level is a qualitative concentration bucket for display.
type Level string

const (
	LevelNone   Level = "none"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// LevelThresholds are the HHI cut-offs between buckets.
type LevelThresholds struct {
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{Medium: 0.15, High: 0.25}
}

// Levels buckets an HHI value.
func Levels(hhi float64, t LevelThresholds) Level {
	switch {
	case hhi >= t.High:
		return LevelHigh
	case hhi >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DirectionConcentration describes how one direction's debt total is spread
// over counterparties.
type DirectionConcentration struct {
	Total          string  `json:"total"`
	Counterparties int     `json:"counterparties"`
	Top1           float64 `json:"top1"`
	Top5           float64 `json:"top5"`
	HHI            float64 `json:"hhi"`
	Level          Level   `json:"level"`
}

// Concentration splits by direction: Outgoing covers debts the participant
// owes, Incoming debts owed to it.
type Concentration struct {
	Outgoing DirectionConcentration `json:"outgoing"`
	Incoming DirectionConcentration `json:"incoming"`
}

func ComputeConcentration(idx *snapshot.Index, sel Selection, levels LevelThresholds) *Concentration {
	precision := idx.Precision(sel.Equivalent)
	outgoing := make(map[string]*big.Int)
	incoming := make(map[string]*big.Int)

	for _, d := range idx.Debts(sel.Equivalent) {
		amount := money.MustAtoms(d.Amount, precision)
		switch sel.PID {
		case d.Debtor:
			accumulate(outgoing, d.Creditor, amount)
		case d.Creditor:
			accumulate(incoming, d.Debtor, amount)
		}
	}

	return &Concentration{
		Outgoing: concentrationOf(outgoing, precision, levels),
		Incoming: concentrationOf(incoming, precision, levels),
	}
}

func accumulate(m map[string]*big.Int, key string, amount *big.Int) {
	if cur, ok := m[key]; ok {
		cur.Add(cur, amount)
		return
	}
	m[key] = new(big.Int).Set(amount)
}

// concentrationOf ignores non-positive per-counterparty amounts; a share
// distribution is only meaningful over positive weights.
func concentrationOf(byCounterparty map[string]*big.Int, precision int, levels LevelThresholds) DirectionConcentration {
	amounts := make([]*big.Int, 0, len(byCounterparty))
	total := new(big.Int)
	for _, a := range byCounterparty {
		if a.Sign() <= 0 {
			continue
		}
		amounts = append(amounts, a)
		total.Add(total, a)
	}

	out := DirectionConcentration{
		Total:          money.AtomsToDecimal(total, precision),
		Counterparties: len(amounts),
		Level:          LevelNone,
	}
	if total.Sign() == 0 {
		return out
	}

	sort.Slice(amounts, func(i, j int) bool { return amounts[i].Cmp(amounts[j]) > 0 })

	top5 := new(big.Int)
	for i := 0; i < len(amounts) && i < 5; i++ {
		top5.Add(top5, amounts[i])
	}

	// HHI = sum(a_i^2) / total^2
	squares := new(big.Int)
	for _, a := range amounts {
		squares.Add(squares, new(big.Int).Mul(a, a))
	}
	hhi := money.Ratio(squares, new(big.Int).Mul(total, total))

	out.Top1 = clampUnit(money.Ratio(amounts[0], total))
	out.Top5 = clampUnit(money.Ratio(top5, total))
	out.HHI = clampUnit(hhi)
	out.Level = Levels(out.HHI, levels)
	return out
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
