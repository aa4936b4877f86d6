// Package snapshot normalizes raw ledger collections into lookup indexes and
// acquires snapshots from fixtures or the ledger database.
package snapshot

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"trustmap/internal/domain"
	"trustmap/pkg/money"
	"trustmap/pkg/validator"

	"github.com/google/uuid"
)

var recordValidator = validator.New()

// Index is the normalized, read-only view of one snapshot. It is rebuilt
// from scratch on every reload and never mutated afterwards, so any number
// of goroutines may read it at once.
type Index struct {
	// ID identifies this normalization run; derived state tagged with an
	// older ID is stale.
	ID       string
	BuiltAt  time.Time
	Snapshot *domain.Snapshot
	Warnings []string

	participants   map[string]domain.Participant
	pids           []string
	precision      map[string]int
	equivalents    []string
	trustlines     []domain.Trustline
	trustlinesByEq map[string][]domain.Trustline
	debts          []domain.Debt
	debtsByEq      map[string][]domain.Debt
	incidentsByPID map[string][]domain.Incident
}

// Normalize builds an Index from a raw snapshot. It never fails: malformed
// or duplicated records are reported in Warnings and handled fail-soft.
func Normalize(snap *domain.Snapshot) *Index {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	idx := &Index{
		ID:             uuid.NewString(),
		BuiltAt:        time.Now().UTC(),
		Snapshot:       snap,
		participants:   make(map[string]domain.Participant, len(snap.Participants)),
		precision:      make(map[string]int, len(snap.Equivalents)),
		trustlinesByEq: make(map[string][]domain.Trustline),
		debtsByEq:      make(map[string][]domain.Debt),
		incidentsByPID: make(map[string][]domain.Incident),
	}

	for _, p := range snap.Participants {
		idx.check("participant", p.PID, p)
		if _, dup := idx.participants[p.PID]; dup {
			idx.warnf("duplicate participant %q ignored", p.PID)
			continue
		}
		idx.participants[p.PID] = p
		idx.pids = append(idx.pids, p.PID)
	}
	sort.Strings(idx.pids)

	codes := make(map[string]struct{})
	for _, eq := range snap.Equivalents {
		idx.check("equivalent", eq.Code, eq)
		if _, dup := idx.precision[eq.Code]; dup {
			idx.warnf("duplicate equivalent %q ignored", eq.Code)
			continue
		}
		p := eq.Precision
		if p < 0 {
			p = 0
		}
		idx.precision[eq.Code] = p
		codes[eq.Code] = struct{}{}
	}

	seenTL := make(map[string]struct{}, len(snap.Trustlines))
	for _, tl := range snap.Trustlines {
		key := tl.Equivalent + "|" + tl.From + "|" + tl.To
		idx.check("trustline", key, tl)
		if _, dup := seenTL[key]; dup {
			idx.warnf("duplicate trustline %s ignored", key)
			continue
		}
		seenTL[key] = struct{}{}
		idx.trustlines = append(idx.trustlines, tl)
		idx.trustlinesByEq[tl.Equivalent] = append(idx.trustlinesByEq[tl.Equivalent], tl)
		codes[tl.Equivalent] = struct{}{}
		idx.checkAvailable(tl)
	}

	seenDebt := make(map[string]struct{}, len(snap.Debts))
	for _, d := range snap.Debts {
		key := d.Equivalent + "|" + d.Debtor + "|" + d.Creditor
		idx.check("debt", key, d)
		if _, dup := seenDebt[key]; dup {
			idx.warnf("duplicate debt %s ignored", key)
			continue
		}
		seenDebt[key] = struct{}{}
		idx.debts = append(idx.debts, d)
		idx.debtsByEq[d.Equivalent] = append(idx.debtsByEq[d.Equivalent], d)
		codes[d.Equivalent] = struct{}{}
	}

	for _, inc := range snap.Incidents {
		idx.check("incident", inc.TxID, inc)
		idx.incidentsByPID[inc.InitiatorPID] = append(idx.incidentsByPID[inc.InitiatorPID], inc)
	}

	delete(codes, "")
	for code := range codes {
		idx.equivalents = append(idx.equivalents, code)
	}
	sort.Strings(idx.equivalents)

	return idx
}

func (idx *Index) check(kind, key string, record interface{}) {
	for _, problem := range recordValidator.Problems(record) {
		idx.warnf("%s %s: %s", kind, key, problem)
	}
}

// checkAvailable flags trustlines whose available amount disagrees with
// limit - used. The record is still used as-is.
func (idx *Index) checkAvailable(tl domain.Trustline) {
	p := idx.Precision(tl.Equivalent)
	limit, errL := money.ParseAtoms(tl.Limit, p)
	used, errU := money.ParseAtoms(tl.Used, p)
	avail, errA := money.ParseAtoms(tl.Available, p)
	if errL != nil || errU != nil || errA != nil {
		return
	}
	if new(big.Int).Sub(limit, used).Cmp(avail) != 0 {
		idx.warnf("trustline %s|%s|%s: available %s != limit %s - used %s",
			tl.Equivalent, tl.From, tl.To, tl.Available, tl.Limit, tl.Used)
	}
}

func (idx *Index) warnf(format string, args ...interface{}) {
	idx.Warnings = append(idx.Warnings, fmt.Sprintf(format, args...))
}

// Participant returns the participant with the given PID.
func (idx *Index) Participant(pid string) (domain.Participant, bool) {
	p, ok := idx.participants[pid]
	return p, ok
}

// DisplayName returns the participant's name, or "" for an unknown PID.
func (idx *Index) DisplayName(pid string) string {
	return idx.participants[pid].DisplayName
}

// PIDs returns every known participant PID in ascending order.
func (idx *Index) PIDs() []string {
	return idx.pids
}

// Precision returns the decimal places of an equivalent, falling back to
// money.DefaultPrecision when the code is unknown.
func (idx *Index) Precision(code string) int {
	if p, ok := idx.precision[code]; ok {
		return p
	}
	return money.DefaultPrecision
}

// Equivalents returns every equivalent code referenced by the snapshot.
func (idx *Index) Equivalents() []string {
	return idx.equivalents
}

// Trustlines returns deduplicated trustlines for an equivalent, or all of
// them for "" and "ALL".
func (idx *Index) Trustlines(code string) []domain.Trustline {
	if domain.IsAllEquivalents(code) {
		return idx.trustlines
	}
	return idx.trustlinesByEq[code]
}

// Debts returns deduplicated debts for an equivalent, or all of them for ""
// and "ALL".
func (idx *Index) Debts(code string) []domain.Debt {
	if domain.IsAllEquivalents(code) {
		return idx.debts
	}
	return idx.debtsByEq[code]
}

// IncidentsBy returns incidents initiated by pid.
func (idx *Index) IncidentsBy(pid string) []domain.Incident {
	return idx.incidentsByPID[pid]
}

// Counts reports the record count per raw collection.
func (idx *Index) Counts() map[string]int {
	s := idx.Snapshot
	return map[string]int{
		"participants": len(s.Participants),
		"trustlines":   len(s.Trustlines),
		"debts":        len(s.Debts),
		"incidents":    len(s.Incidents),
		"equivalents":  len(s.Equivalents),
		"audit_log":    len(s.AuditLog),
		"transactions": len(s.Transactions),
	}
}
