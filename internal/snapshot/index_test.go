package snapshot

import (
	"testing"

	"trustmap/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Participants: []domain.Participant{
			{PID: "bob", DisplayName: "Bob", Type: domain.ParticipantTypePerson, Status: domain.ParticipantStatusActive},
			{PID: "alice", DisplayName: "Alice", Type: domain.ParticipantTypePerson, Status: domain.ParticipantStatusActive},
			{PID: "alice", DisplayName: "Alice again"},
		},
		Equivalents: []domain.Equivalent{
			{Code: "UAH", Precision: 2, IsActive: true},
			{Code: "BTC", Precision: 8, IsActive: true},
			{Code: "NEG", Precision: -3},
		},
		Trustlines: []domain.Trustline{
			{Equivalent: "UAH", From: "alice", To: "bob", Limit: "100.00", Used: "40.00", Available: "60.00", Status: domain.TrustlineStatusActive},
			{Equivalent: "UAH", From: "alice", To: "bob", Limit: "1.00", Used: "0", Available: "1.00"},
			{Equivalent: "XYZ", From: "bob", To: "ghost", Limit: "10", Used: "1", Available: "5"},
		},
		Debts: []domain.Debt{
			{Equivalent: "UAH", Debtor: "bob", Creditor: "alice", Amount: "40.00"},
		},
		Incidents: []domain.Incident{
			{TxID: "tx1", InitiatorPID: "bob", Equivalent: "UAH", AgeSeconds: 100, SLASeconds: 50},
		},
	}
}

func TestNormalize_BuildsIndexes(t *testing.T) {
	idx := Normalize(sampleSnapshot())

	assert.NotEmpty(t, idx.ID)
	assert.Equal(t, []string{"alice", "bob"}, idx.PIDs())
	assert.Equal(t, []string{"UAH", "XYZ"}, idx.Equivalents())

	p, ok := idx.Participant("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.DisplayName, "first record wins")

	assert.Len(t, idx.Trustlines("UAH"), 1)
	assert.Len(t, idx.Trustlines(domain.AllEquivalents), 2)
	assert.Len(t, idx.Trustlines(""), 2)
	assert.Len(t, idx.Debts("UAH"), 1)
	assert.Empty(t, idx.Debts("BTC"))
	assert.Len(t, idx.IncidentsBy("bob"), 1)
}

func TestNormalize_PrecisionFallback(t *testing.T) {
	idx := Normalize(sampleSnapshot())

	assert.Equal(t, 8, idx.Precision("BTC"))
	assert.Equal(t, 2, idx.Precision("UNKNOWN"))
	assert.Equal(t, 0, idx.Precision("NEG"))
}

func TestNormalize_WarnsInsteadOfFailing(t *testing.T) {
	idx := Normalize(sampleSnapshot())

	joined := ""
	for _, w := range idx.Warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, `duplicate participant "alice"`)
	assert.Contains(t, joined, "duplicate trustline UAH|alice|bob")
	assert.Contains(t, joined, "available 5 != limit 10 - used 1")
	assert.Contains(t, joined, "Precision")
}

func TestNormalize_UnknownParticipantHasEmptyName(t *testing.T) {
	idx := Normalize(sampleSnapshot())

	_, ok := idx.Participant("ghost")
	assert.False(t, ok)
	assert.Equal(t, "", idx.DisplayName("ghost"))
}

func TestNormalize_NilSnapshot(t *testing.T) {
	idx := Normalize(nil)

	require.NotNil(t, idx)
	assert.Empty(t, idx.PIDs())
	assert.Equal(t, 0, idx.Counts()["participants"])
}

func TestNormalize_FreshIDPerRun(t *testing.T) {
	snap := sampleSnapshot()

	a := Normalize(snap)
	b := Normalize(snap)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.PIDs(), b.PIDs())
}
