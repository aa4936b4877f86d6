package analytics

import (
	"math/big"
	"sort"

	"trustmap/internal/snapshot"
	"trustmap/pkg/money"
)

// CounterpartyRow is the bilateral debt position with one counterparty.
// Net > 0 means the counterparty owes the participant on balance.
type CounterpartyRow struct {
	PID         string `json:"pid"`
	DisplayName string `json:"display_name"`
	Credit      string `json:"credit"`
	Debt        string `json:"debt"`
	Net         string `json:"net"`
}

type CounterpartySplit struct {
	Rows []CounterpartyRow `json:"rows"`
	// Creditors are counterparties the participant owes on balance.
	Creditors int `json:"creditors"`
	// Debtors are counterparties that owe the participant on balance.
	Debtors int `json:"debtors"`
}

type bilateral struct {
	credit, debt *big.Int
}

// ComputeCounterpartySplit nets debts per counterparty. Rows are ordered by
// absolute net descending, then PID.
func ComputeCounterpartySplit(idx *snapshot.Index, sel Selection) *CounterpartySplit {
	precision := idx.Precision(sel.Equivalent)
	byPID := make(map[string]*bilateral)
	get := func(pid string) *bilateral {
		b, ok := byPID[pid]
		if !ok {
			b = &bilateral{credit: new(big.Int), debt: new(big.Int)}
			byPID[pid] = b
		}
		return b
	}

	for _, d := range idx.Debts(sel.Equivalent) {
		amount := money.MustAtoms(d.Amount, precision)
		switch sel.PID {
		case d.Creditor:
			b := get(d.Debtor)
			b.credit.Add(b.credit, amount)
		case d.Debtor:
			b := get(d.Creditor)
			b.debt.Add(b.debt, amount)
		}
	}

	type netRow struct {
		pid string
		b   *bilateral
		net *big.Int
	}
	rows := make([]netRow, 0, len(byPID))
	for pid, b := range byPID {
		rows = append(rows, netRow{pid: pid, b: b, net: new(big.Int).Sub(b.credit, b.debt)})
	}
	sort.Slice(rows, func(i, j int) bool {
		ai := new(big.Int).Abs(rows[i].net)
		aj := new(big.Int).Abs(rows[j].net)
		if c := ai.Cmp(aj); c != 0 {
			return c > 0
		}
		return rows[i].pid < rows[j].pid
	})

	split := &CounterpartySplit{Rows: make([]CounterpartyRow, 0, len(rows))}
	for _, r := range rows {
		switch r.net.Sign() {
		case 1:
			split.Debtors++
		case -1:
			split.Creditors++
		}
		split.Rows = append(split.Rows, CounterpartyRow{
			PID:         r.pid,
			DisplayName: idx.DisplayName(r.pid),
			Credit:      money.AtomsToDecimal(r.b.credit, precision),
			Debt:        money.AtomsToDecimal(r.b.debt, precision),
			Net:         money.AtomsToDecimal(r.net, precision),
		})
	}
	return split
}

// BalanceRow summarizes the participant in one equivalent.
type BalanceRow struct {
	Equivalent    string `json:"equivalent"`
	Precision     int    `json:"precision"`
	Credit        string `json:"credit"`
	Debt          string `json:"debt"`
	Net           string `json:"net"`
	OutgoingLimit string `json:"outgoing_limit"`
	OutgoingUsed  string `json:"outgoing_used"`
	IncomingLimit string `json:"incoming_limit"`
	IncomingUsed  string `json:"incoming_used"`
}

// ComputeBalanceRows returns one row per equivalent in which the participant
// has a debt or a trustline, ordered by equivalent code.
func ComputeBalanceRows(idx *snapshot.Index, pid string) []BalanceRow {
	rows := []BalanceRow{}
	for _, eq := range idx.Equivalents() {
		p := idx.Precision(eq)
		credit, debt := new(big.Int), new(big.Int)
		outLimit, outUsed := new(big.Int), new(big.Int)
		inLimit, inUsed := new(big.Int), new(big.Int)
		touched := false

		for _, d := range idx.Debts(eq) {
			amount := money.MustAtoms(d.Amount, p)
			if d.Creditor == pid {
				credit.Add(credit, amount)
				touched = true
			}
			if d.Debtor == pid {
				debt.Add(debt, amount)
				touched = true
			}
		}
		for _, tl := range idx.Trustlines(eq) {
			if tl.From == pid {
				outLimit.Add(outLimit, money.MustAtoms(tl.Limit, p))
				outUsed.Add(outUsed, money.MustAtoms(tl.Used, p))
				touched = true
			}
			if tl.To == pid {
				inLimit.Add(inLimit, money.MustAtoms(tl.Limit, p))
				inUsed.Add(inUsed, money.MustAtoms(tl.Used, p))
				touched = true
			}
		}
		if !touched {
			continue
		}

		rows = append(rows, BalanceRow{
			Equivalent:    eq,
			Precision:     p,
			Credit:        money.AtomsToDecimal(credit, p),
			Debt:          money.AtomsToDecimal(debt, p),
			Net:           money.AtomsToDecimal(new(big.Int).Sub(credit, debt), p),
			OutgoingLimit: money.AtomsToDecimal(outLimit, p),
			OutgoingUsed:  money.AtomsToDecimal(outUsed, p),
			IncomingLimit: money.AtomsToDecimal(inLimit, p),
			IncomingUsed:  money.AtomsToDecimal(inUsed, p),
		})
	}
	return rows
}

// Bin is one equal-width bucket of the net distribution. Lower is
// inclusive; Upper is exclusive except for the last bin.
type Bin struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
	Count int    `json:"count"`
}

type NetDistribution struct {
	Bins         []Bin  `json:"bins"`
	SelectedBin  int    `json:"selected_bin"`
	Participants int    `json:"participants"`
	Min          string `json:"min"`
	Max          string `json:"max"`
	Median       string `json:"median"`
}

// ComputeNetDistribution histograms every participant's net. SelectedBin is
// -1 when pid has no net.
func ComputeNetDistribution(nets map[string]*big.Int, pid string, bins, precision int) *NetDistribution {
	if bins <= 0 {
		bins = DefaultBins
	}
	dist := &NetDistribution{SelectedBin: -1, Participants: len(nets), Bins: []Bin{}}
	if len(nets) == 0 {
		return dist
	}

	values := make([]*big.Int, 0, len(nets))
	for _, v := range nets {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Cmp(values[j]) < 0 })

	lo, hi := values[0], values[len(values)-1]
	dist.Min = money.AtomsToDecimal(lo, precision)
	dist.Max = money.AtomsToDecimal(hi, precision)
	dist.Median = money.AtomsToDecimal(median(values), precision)

	span := new(big.Int).Sub(hi, lo)
	if span.IsInt64() && span.Int64()+1 < int64(bins) {
		bins = int(span.Int64()) + 1
	}
	// the last bin absorbs the remainder of span / bins
	width := new(big.Int).Quo(span, big.NewInt(int64(bins)))
	if width.Sign() == 0 {
		width.SetInt64(1)
	}

	bucket := func(v *big.Int) int {
		i := new(big.Int).Sub(v, lo)
		i.Quo(i, width)
		if !i.IsInt64() || i.Int64() >= int64(bins) {
			return bins - 1
		}
		return int(i.Int64())
	}

	dist.Bins = make([]Bin, bins)
	for i := range dist.Bins {
		lower := new(big.Int).Mul(width, big.NewInt(int64(i)))
		lower.Add(lower, lo)
		upper := new(big.Int).Add(lower, width)
		if i == bins-1 {
			upper = hi
		}
		dist.Bins[i] = Bin{
			Lower: money.AtomsToDecimal(lower, precision),
			Upper: money.AtomsToDecimal(upper, precision),
		}
	}
	for _, v := range values {
		dist.Bins[bucket(v)].Count++
	}
	if v, ok := nets[pid]; ok {
		dist.SelectedBin = bucket(v)
	}
	return dist
}

// median of sorted values; the even case averages toward zero in atoms.
func median(sorted []*big.Int) *big.Int {
	n := len(sorted)
	if n%2 == 1 {
		return new(big.Int).Set(sorted[n/2])
	}
	sum := new(big.Int).Add(sorted[n/2-1], sorted[n/2])
	return sum.Quo(sum, big.NewInt(2))
}
