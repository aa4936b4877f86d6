package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func expectCoreReads(mock sqlmock.Sqlmock, created time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery("FROM ledger.participants").WillReturnRows(
		sqlmock.NewRows([]string{"pid", "display_name", "type", "status"}).
			AddRow("alice", "Alice", "person", "active").
			AddRow("bob", "Bob", "business", "active"))
	mock.ExpectQuery("FROM ledger.equivalents").WillReturnRows(
		sqlmock.NewRows([]string{"code", "precision", "is_active"}).
			AddRow("UAH", 2, true))
	mock.ExpectQuery("FROM ledger.trustlines").WillReturnRows(
		sqlmock.NewRows([]string{"equivalent", "from_pid", "to_pid", "limit_amount", "used_amount", "available_amount", "status", "created_at"}).
			AddRow("UAH", "alice", "bob", "100.00", "40.00", "60.00", "active", created))
	mock.ExpectQuery("FROM ledger.debts").WillReturnRows(
		sqlmock.NewRows([]string{"equivalent", "debtor_pid", "creditor_pid", "amount"}).
			AddRow("UAH", "bob", "alice", "40.00"))
	mock.ExpectQuery("FROM ledger.incidents").WillReturnRows(
		sqlmock.NewRows([]string{"tx_id", "initiator_pid", "equivalent", "age_seconds", "sla_seconds"}).
			AddRow("tx-1", "bob", "UAH", int64(7200), int64(3600)))
	mock.ExpectQuery("FROM ledger.audit_log").WithArgs("7776000 seconds").WillReturnRows(
		sqlmock.NewRows([]string{"timestamp", "actor_id", "action", "object_type", "object_id"}).
			AddRow(created, "admin", "participant.freeze", "participant", "bob"))
}

func TestSnapshotRepository_LoadWithoutOptionalTables(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	expectCoreReads(mock, created)
	mock.ExpectQuery("to_regclass").WithArgs("ledger.transactions").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("to_regclass").WithArgs("ledger.clearing_cycle_edges").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectCommit()

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Participants, 2)
	assert.Equal(t, "Bob", snap.Participants[1].DisplayName)
	require.Len(t, snap.Trustlines, 1)
	assert.Equal(t, "60.00", snap.Trustlines[0].Available)
	assert.Equal(t, created, snap.Trustlines[0].CreatedAt)
	require.Len(t, snap.Incidents, 1)
	assert.True(t, snap.Incidents[0].OverSLA())
	assert.Len(t, snap.AuditLog, 1)
	assert.False(t, snap.HasTransactions())
	assert.Nil(t, snap.Cycles)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_LoadWithOptionalTables(t *testing.T) {
	repo, mock := newMockRepo(t)
	repo.WithHistory(7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM ledger.participants").WillReturnRows(sqlmock.NewRows([]string{"pid"}))
	mock.ExpectQuery("FROM ledger.equivalents").WillReturnRows(sqlmock.NewRows([]string{"code"}))
	mock.ExpectQuery("FROM ledger.trustlines").WillReturnRows(sqlmock.NewRows([]string{"equivalent"}))
	mock.ExpectQuery("FROM ledger.debts").WillReturnRows(sqlmock.NewRows([]string{"equivalent"}))
	mock.ExpectQuery("FROM ledger.incidents").WillReturnRows(sqlmock.NewRows([]string{"tx_id"}))
	mock.ExpectQuery("FROM ledger.audit_log").WithArgs("604800 seconds").
		WillReturnRows(sqlmock.NewRows([]string{"timestamp"}))
	mock.ExpectQuery("to_regclass").WithArgs("ledger.transactions").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM ledger.transactions").WithArgs("604800 seconds").
		WillReturnRows(sqlmock.NewRows([]string{"tx_id", "type", "initiator_pid", "state", "updated_at"}))
	mock.ExpectQuery("to_regclass").WithArgs("ledger.clearing_cycle_edges").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM ledger.clearing_cycle_edges").WillReturnRows(
		sqlmock.NewRows([]string{"cycle_id", "equivalent", "debtor_pid", "creditor_pid", "amount"}).
			AddRow("c1", "UAH", "a", "b", "1.00").
			AddRow("c1", "UAH", "b", "a", "1.00").
			AddRow("c2", "UAH", "a", "c", "2.00").
			AddRow("c2", "UAH", "c", "a", "2.00").
			AddRow("c1", "USD", "x", "y", "3.000").
			AddRow("c1", "USD", "y", "x", "3.000"))
	mock.ExpectCommit()

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.HasTransactions(), "an empty table still counts as supplied")
	assert.Empty(t, snap.Transactions)
	require.Len(t, snap.Cycles["UAH"], 2)
	assert.Len(t, snap.Cycles["UAH"][1].Edges, 2)
	assert.Equal(t, "c", snap.Cycles["UAH"][1].Edges[0].Creditor)
	require.Len(t, snap.Cycles["USD"], 1)
	assert.Equal(t, "3.000", snap.Cycles["USD"][0].Edges[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_QueryErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM ledger.participants").WillReturnError(fmt.Errorf("relation does not exist"))
	mock.ExpectRollback()

	snap, err := repo.Load(context.Background())
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read participants")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_BeginError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

	_, err := repo.Load(context.Background())
	assert.ErrorContains(t, err, "failed to begin snapshot transaction")
}

func TestGroupCycles_SplitsOnCycleBoundary(t *testing.T) {
	got := groupCycles([]cycleEdgeRow{
		{CycleID: "1", Equivalent: "UAH", Debtor: "a", Creditor: "b"},
		{CycleID: "1", Equivalent: "UAH", Debtor: "b", Creditor: "a"},
		{CycleID: "2", Equivalent: "UAH", Debtor: "a", Creditor: "b"},
	})

	require.Len(t, got["UAH"], 2)
	assert.Len(t, got["UAH"][0].Edges, 2)
	assert.Len(t, got["UAH"][1].Edges, 1)
	assert.Empty(t, groupCycles(nil))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "7776000 seconds", formatInterval(DefaultHistory))
	assert.Equal(t, "90 seconds", formatInterval(90*time.Second+300*time.Millisecond))
}
