package analytics

import (
	"math/big"
	"sort"

	"trustmap/internal/snapshot"
	"trustmap/pkg/money"
)

// NetPositions returns credit minus debt in atoms for every known
// participant in one equivalent. extra PIDs are included even when the
// snapshot does not list them, so an unknown selection still ranks.
func NetPositions(idx *snapshot.Index, equivalent string, extra ...string) map[string]*big.Int {
	nets := make(map[string]*big.Int, len(idx.PIDs())+len(extra))
	for _, pid := range idx.PIDs() {
		nets[pid] = new(big.Int)
	}
	for _, pid := range extra {
		if pid != "" && nets[pid] == nil {
			nets[pid] = new(big.Int)
		}
	}

	precision := idx.Precision(equivalent)
	for _, d := range idx.Debts(equivalent) {
		amount := money.MustAtoms(d.Amount, precision)
		if creditor, ok := nets[d.Creditor]; ok {
			creditor.Add(creditor, amount)
		}
		if debtor, ok := nets[d.Debtor]; ok {
			debtor.Sub(debtor, amount)
		}
	}
	return nets
}

// RankEntry is one participant's place in the ranking.
type RankEntry struct {
	PID  string
	Net  *big.Int
	Rank int
}

// Ranking orders participants by net descending, PID ascending on ties.
// Ranks are 1..N with no gaps.
func Ranking(nets map[string]*big.Int) []RankEntry {
	entries := make([]RankEntry, 0, len(nets))
	for pid, net := range nets {
		entries = append(entries, RankEntry{PID: pid, Net: net})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Net.Cmp(entries[j].Net); c != 0 {
			return c > 0
		}
		return entries[i].PID < entries[j].PID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Percentile maps a rank to [0,1], 1 being the top net creditor.
func Percentile(rank, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(total-rank) / float64(total-1)
}

// Rank is the selected participant's net position among all participants.
type Rank struct {
	Net          string  `json:"net"`
	Rank         int     `json:"rank"`
	Participants int     `json:"participants"`
	Percentile   float64 `json:"percentile"`
}

// ComputeRank locates pid in the ranking of nets. It returns nil when pid
// is not ranked.
func ComputeRank(nets map[string]*big.Int, pid string, precision int) *Rank {
	for _, entry := range Ranking(nets) {
		if entry.PID != pid {
			continue
		}
		return &Rank{
			Net:          money.AtomsToDecimal(entry.Net, precision),
			Rank:         entry.Rank,
			Participants: len(nets),
			Percentile:   Percentile(entry.Rank, len(nets)),
		}
	}
	return nil
}
