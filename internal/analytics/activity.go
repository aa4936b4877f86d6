package analytics

import (
	"strings"
	"time"

	"trustmap/internal/domain"
	"trustmap/internal/snapshot"
)

const auditObjectParticipant = "participant"

// ActivityWindow holds counts for one rolling window ending at now.
type ActivityWindow struct {
	Days              int `json:"days"`
	TrustlinesCreated int `json:"trustlines_created"`
	// TrustlinesClosed counts lines created in the window that are closed
	// now. It is a live-state count, not a tally of close events.
	TrustlinesClosed int `json:"trustlines_closed"`
	Incidents        int `json:"incidents"`
	AuditEvents      int `json:"audit_events"`
	// Transactions is nil when the transactions dataset is absent.
	Transactions *int `json:"transactions"`
}

// Activity lists one entry per configured window, shortest first.
type Activity struct {
	Windows               []ActivityWindow `json:"windows"`
	TransactionsAvailable bool             `json:"transactions_available"`
}

// Window returns the entry for days.
func (a Activity) Window(days int) (ActivityWindow, bool) {
	for _, w := range a.Windows {
		if w.Days == days {
			return w, true
		}
	}
	return ActivityWindow{}, false
}

// ComputeActivity counts the participant's events in each window (now-days,
// now]. Trustlines and incidents honour a specific equivalent; audit and
// transaction counts do not carry one.
func ComputeActivity(idx *snapshot.Index, sel Selection, now time.Time, windows []int) Activity {
	snap := idx.Snapshot
	act := Activity{
		Windows:               make([]ActivityWindow, 0, len(windows)),
		TransactionsAvailable: snap.HasTransactions(),
	}

	for _, days := range windows {
		from := now.Add(-time.Duration(days) * 24 * time.Hour)
		in := func(t time.Time) bool { return t.After(from) && !t.After(now) }
		w := ActivityWindow{Days: days}

		for _, tl := range idx.Trustlines(sel.Equivalent) {
			if tl.From != sel.PID && tl.To != sel.PID {
				continue
			}
			if !in(tl.CreatedAt) {
				continue
			}
			w.TrustlinesCreated++
			if strings.EqualFold(string(tl.Status), string(domain.TrustlineStatusClosed)) {
				w.TrustlinesClosed++
			}
		}

		for _, inc := range idx.IncidentsBy(sel.PID) {
			if sel.Scoped() && inc.Equivalent != sel.Equivalent {
				continue
			}
			started := now.Add(-time.Duration(inc.AgeSeconds) * time.Second)
			if in(started) {
				w.Incidents++
			}
		}

		for _, entry := range snap.AuditLog {
			if entry.ObjectID == sel.PID && isParticipantOperation(entry) && in(entry.Timestamp) {
				w.AuditEvents++
			}
		}

		if act.TransactionsAvailable {
			n := 0
			for _, tx := range snap.Transactions {
				if tx.InitiatorPID == sel.PID && countsAsActivity(tx) && in(tx.UpdatedAt) {
					n++
				}
			}
			w.Transactions = &n
		}

		act.Windows = append(act.Windows, w)
	}
	return act
}

func isParticipantOperation(e domain.AuditLogEntry) bool {
	return strings.EqualFold(e.ObjectType, auditObjectParticipant) ||
		strings.HasPrefix(strings.ToLower(e.Action), auditObjectParticipant)
}

func countsAsActivity(tx domain.Transaction) bool {
	if !strings.EqualFold(tx.State, domain.TransactionStateCommitted) {
		return false
	}
	switch domain.TransactionType(strings.ToUpper(string(tx.Type))) {
	case domain.TransactionTypePayment, domain.TransactionTypeClearing:
		return true
	}
	return false
}
