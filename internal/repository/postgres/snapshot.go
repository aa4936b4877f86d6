// Package postgres reads ledger snapshots from the read-model database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trustmap/internal/domain"
	pkgerrors "trustmap/pkg/errors"

	"github.com/jmoiron/sqlx"
)

const (
	participantsQuery = `SELECT pid, display_name, type, status FROM ledger.participants ORDER BY pid`
	equivalentsQuery  = `SELECT code, precision, is_active FROM ledger.equivalents ORDER BY code`
	trustlinesQuery   = `
		SELECT equivalent, from_pid, to_pid,
		       limit_amount::text AS limit_amount,
		       used_amount::text AS used_amount,
		       available_amount::text AS available_amount,
		       status, created_at
		FROM ledger.trustlines
		ORDER BY equivalent, from_pid, to_pid`
	debtsQuery = `
		SELECT equivalent, debtor_pid, creditor_pid, amount::text AS amount
		FROM ledger.debts
		ORDER BY equivalent, debtor_pid, creditor_pid`
	incidentsQuery = `
		SELECT tx_id, initiator_pid, equivalent,
		       GREATEST(0, EXTRACT(EPOCH FROM (now() - started_at)))::bigint AS age_seconds,
		       sla_seconds
		FROM ledger.incidents
		ORDER BY started_at`
	auditLogQuery = `
		SELECT timestamp, actor_id, action, object_type, object_id
		FROM ledger.audit_log
		WHERE timestamp > now() - $1::interval
		ORDER BY timestamp`
	transactionsQuery = `
		SELECT tx_id, type, initiator_pid, state, updated_at
		FROM ledger.transactions
		WHERE updated_at > now() - $1::interval
		ORDER BY updated_at`
	cycleEdgesQuery = `
		SELECT cycle_id, equivalent, debtor_pid, creditor_pid, amount::text AS amount
		FROM ledger.clearing_cycle_edges
		ORDER BY equivalent, cycle_id, position`
	tableExistsQuery = `SELECT to_regclass($1) IS NOT NULL`
)

// DefaultHistory bounds how far back audit and transaction rows are read.
// It must cover the longest activity window.
const DefaultHistory = 90 * 24 * time.Hour

// SnapshotRepository loads a full snapshot inside one read-only transaction
// so every collection reflects the same point in time.
type SnapshotRepository struct {
	db      *sqlx.DB
	history time.Duration
}

// NewSnapshotRepository creates a SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, history: DefaultHistory}
}

// WithHistory overrides how much audit and transaction history is read.
func (r *SnapshotRepository) WithHistory(d time.Duration) *SnapshotRepository {
	if d > 0 {
		r.history = d
	}
	return r
}

type cycleEdgeRow struct {
	CycleID    string `db:"cycle_id"`
	Equivalent string `db:"equivalent"`
	Debtor     string `db:"debtor_pid"`
	Creditor   string `db:"creditor_pid"`
	Amount     string `db:"amount"`
}

// Load implements snapshot.Source. Optional tables (transactions, clearing
// cycles) that do not exist leave their collection nil.
func (r *SnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to begin snapshot transaction")
	}
	defer tx.Rollback()

	snap := &domain.Snapshot{}
	interval := formatInterval(r.history)

	reads := []struct {
		what  string
		dest  interface{}
		query string
		args  []interface{}
	}{
		{"participants", &snap.Participants, participantsQuery, nil},
		{"equivalents", &snap.Equivalents, equivalentsQuery, nil},
		{"trustlines", &snap.Trustlines, trustlinesQuery, nil},
		{"debts", &snap.Debts, debtsQuery, nil},
		{"incidents", &snap.Incidents, incidentsQuery, nil},
		{"audit log", &snap.AuditLog, auditLogQuery, []interface{}{interval}},
	}
	for _, read := range reads {
		if err := tx.SelectContext(ctx, read.dest, read.query, read.args...); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read "+read.what)
		}
	}

	hasTransactions, err := tableExists(ctx, tx, "ledger.transactions")
	if err != nil {
		return nil, err
	}
	if hasTransactions {
		txs := []domain.Transaction{}
		if err := tx.SelectContext(ctx, &txs, transactionsQuery, interval); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read transactions")
		}
		snap.Transactions = txs
	}

	hasCycles, err := tableExists(ctx, tx, "ledger.clearing_cycle_edges")
	if err != nil {
		return nil, err
	}
	if hasCycles {
		var rows []cycleEdgeRow
		if err := tx.SelectContext(ctx, &rows, cycleEdgesQuery); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read clearing cycles")
		}
		snap.Cycles = groupCycles(rows)
	}

	if err := tx.Commit(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to close snapshot transaction")
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

func tableExists(ctx context.Context, tx *sqlx.Tx, name string) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists, tableExistsQuery, name); err != nil {
		return false, pkgerrors.Wrap(err, "failed to check table "+name)
	}
	return exists, nil
}

// groupCycles folds ordered edge rows into cycles per equivalent.
func groupCycles(rows []cycleEdgeRow) map[string][]domain.ClearingCycle {
	out := make(map[string][]domain.ClearingCycle)
	current := ""
	for _, row := range rows {
		key := row.Equivalent + "/" + row.CycleID
		if key != current {
			out[row.Equivalent] = append(out[row.Equivalent], domain.ClearingCycle{})
			current = key
		}
		cycles := out[row.Equivalent]
		last := &cycles[len(cycles)-1]
		last.Edges = append(last.Edges, domain.CycleEdge{
			Debtor:     row.Debtor,
			Creditor:   row.Creditor,
			Amount:     row.Amount,
			Equivalent: row.Equivalent,
		})
	}
	return out
}

// formatInterval renders d as a Postgres interval literal.
func formatInterval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d/time.Second))
}
