package focus

import (
	"encoding/json"
	"testing"

	"trustmap/internal/domain"
	"trustmap/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_NilCases(t *testing.T) {
	assert.Nil(t, BuildQuery(Input{Enabled: false, RootPID: "alice"}))
	assert.Nil(t, BuildQuery(Input{Enabled: true, RootPID: "  "}))
	assert.Nil(t, BuildQuery(Input{Enabled: true}))
}

func TestBuildQuery_NormalizesFields(t *testing.T) {
	q := BuildQuery(Input{
		Enabled:      true,
		RootPID:      " alice ",
		Depth:        2,
		Equivalent:   "ALL",
		StatusFilter: []string{" active ", "", "frozen"},
	})
	require.NotNil(t, q)

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid":"alice","depth":2,"status":["active","frozen"],"participant_pid":"alice"}`, string(raw))
}

func TestBuildQuery_KeepsSpecificEquivalent(t *testing.T) {
	q := BuildQuery(Input{Enabled: true, RootPID: "bob", Depth: 7, Equivalent: " UAH ", StatusFilter: []string{" "}})
	require.NotNil(t, q)

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid":"bob","depth":1,"equivalent":"UAH","participant_pid":"bob"}`, string(raw))
}

func TestNormalizeDepth(t *testing.T) {
	for in, want := range map[int]int{-1: 1, 0: 1, 1: 1, 2: 2, 3: 1} {
		assert.Equal(t, want, NormalizeDepth(in), "depth %d", in)
	}
}

func TestExtractPID(t *testing.T) {
	pid, ok := ExtractPID("see PID_ab12_CD34 and PID_x_y")
	assert.True(t, ok)
	assert.Equal(t, "PID_ab12_CD34", pid)

	_, ok = ExtractPID("PID_only")
	assert.False(t, ok)

	_, ok = ExtractPID("")
	assert.False(t, ok)
}

func searchIndex() *snapshot.Index {
	return snapshot.Normalize(&domain.Snapshot{
		Participants: []domain.Participant{
			{PID: "PID_alice_1", DisplayName: "Alice Cooper"},
			{PID: "alpha", DisplayName: "Zed"},
			{PID: "bob", DisplayName: "Alan"},
			{PID: "al", DisplayName: "Short"},
		},
	})
}

func TestResolve_PrefersToken(t *testing.T) {
	idx := searchIndex()

	m, ok := Resolve(idx, "pasted: PID_alice_1 from chat")
	require.True(t, ok)
	assert.Equal(t, Match{PID: "PID_alice_1", DisplayName: "Alice Cooper", Kind: MatchToken, Known: true}, m)

	m, ok = Resolve(idx, "PID_nobody_2")
	require.True(t, ok)
	assert.False(t, m.Known)
	assert.Equal(t, "", m.DisplayName)
}

func TestResolve_ExactThenPrefix(t *testing.T) {
	idx := searchIndex()

	m, ok := Resolve(idx, "al")
	require.True(t, ok)
	assert.Equal(t, "al", m.PID)

	_, ok = Resolve(idx, "nothing")
	assert.False(t, ok)
	_, ok = Resolve(idx, "   ")
	assert.False(t, ok)
}

func TestSearch_Ordering(t *testing.T) {
	got := Search(searchIndex(), "AL", 0)

	pids := make([]string, 0, len(got))
	for _, m := range got {
		pids = append(pids, m.PID)
	}
	assert.Equal(t, []string{"al", "alpha", "PID_alice_1", "bob"}, pids)
	assert.Equal(t, MatchName, got[2].Kind)

	assert.Len(t, Search(searchIndex(), "a", 2), 2)
}
