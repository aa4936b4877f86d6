package connections

import (
	"context"
	"fmt"
	"testing"

	"trustmap/internal/domain"
	"trustmap/internal/graph"
	"trustmap/internal/snapshot"
	"trustmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycle(eq string, pids ...string) domain.ClearingCycle {
	c := domain.ClearingCycle{}
	for i, p := range pids {
		c.Edges = append(c.Edges, domain.CycleEdge{
			Debtor:     p,
			Creditor:   pids[(i+1)%len(pids)],
			Amount:     "1.00",
			Equivalent: eq,
		})
	}
	return c
}

func testIndex() *snapshot.Index {
	active := domain.TrustlineStatusActive
	return snapshot.Normalize(&domain.Snapshot{
		Participants: []domain.Participant{
			{PID: "a", DisplayName: "Alice"},
			{PID: "b", DisplayName: "Bob"},
			{PID: "c", DisplayName: "Carol"},
		},
		Trustlines: []domain.Trustline{
			{Equivalent: "UAH", From: "b", To: "a", Limit: "10.00", Used: "0.00", Available: "10.00", Status: active},
			{Equivalent: "UAH", From: "c", To: "a", Limit: "10.00", Used: "9.99", Available: "0.01", Status: active},
			{Equivalent: "EUR", From: "ghost", To: "a", Limit: "10.00", Used: "1.00", Available: "9.00", Status: active},
			{Equivalent: "UAH", From: "a", To: "b", Limit: "5.00", Used: "0.00", Available: "5.00", Status: active},
			{Equivalent: "UAH", From: "b", To: "c", Limit: "5.00", Used: "0.00", Available: "5.00", Status: active},
		},
		Cycles: map[string][]domain.ClearingCycle{
			"UAH": {cycle("UAH", "b", "a", "c"), cycle("UAH", "b", "c")},
			"EUR": {cycle("EUR", "a", "ghost")},
		},
	})
}

func TestRows_PartitionAndSort(t *testing.T) {
	idx := testIndex()
	g := graph.Build(idx, graph.DefaultFilterConfig())

	c := Rows(idx, g, "a")

	require.Len(t, c.Incoming, 3)
	assert.Equal(t, "ghost", c.Incoming[0].CounterpartyPID, "EUR sorts first")
	assert.Equal(t, "", c.Incoming[0].CounterpartyName)
	assert.Equal(t, "c", c.Incoming[1].CounterpartyPID, "bottleneck first within UAH")
	assert.True(t, c.Incoming[1].Bottleneck)
	assert.Equal(t, "Bob", c.Incoming[2].CounterpartyName)

	require.Len(t, c.Outgoing, 1)
	assert.Equal(t, Row{
		CounterpartyPID: "b", CounterpartyName: "Bob", Equivalent: "UAH", Status: "active",
		Limit: "5.00", Used: "0.00", Available: "5.00", EdgeKey: "UAH|a|b",
	}, c.Outgoing[0])
}

func TestRows_FollowsFilteredGraph(t *testing.T) {
	idx := testIndex()
	cfg := graph.DefaultFilterConfig()
	cfg.Equivalent = "EUR"

	c := Rows(idx, graph.Build(idx, cfg), "a")

	assert.Len(t, c.Incoming, 1)
	assert.Empty(t, c.Outgoing)
}

func makeRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{CounterpartyPID: fmt.Sprintf("p%02d", i)}
	}
	return rows
}

func TestPaginate(t *testing.T) {
	rows := makeRows(30)

	p := Paginate(rows, 2, 25)
	assert.Len(t, p.Rows, 5)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, "p25", p.Rows[0].CounterpartyPID)

	p = Paginate(makeRows(10), 5, 25)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Rows, 10)

	p = Paginate(rows, 0, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 1, p.Page)

	p = Paginate(nil, 3, 25)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Rows)
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	rows := makeRows(3)
	p := Paginate(rows, 1, 25)
	p.Rows[0].CounterpartyPID = "changed"

	assert.Equal(t, "p00", rows[0].CounterpartyPID)
}

func TestCycleKey_RotationInvariant(t *testing.T) {
	a := cycle("UAH", "b", "a", "c")
	b := cycle("UAH", "a", "c", "b")

	assert.Equal(t, "UAH:a>c>b", CycleKey(a))
	assert.Equal(t, CycleKey(a), CycleKey(b))
	assert.NotEqual(t, CycleKey(a), CycleKey(cycle("UAH", "a", "b", "c")))
	assert.Equal(t, "", CycleKey(domain.ClearingCycle{}))
}

func TestCyclesFor(t *testing.T) {
	cycles := testIndex().Snapshot.Cycles["UAH"]

	got := CyclesFor(cycles, Selection{PID: "a"})
	require.Len(t, got, 1)
	assert.False(t, got[0].Active)

	got = CyclesFor(cycles, Selection{ActiveCycle: "UAH:b>c"})
	require.Len(t, got, 2)
	assert.False(t, got[0].Active)
	assert.True(t, got[1].Active)
}

func TestSelection_ToggleCycle(t *testing.T) {
	s := Selection{PID: "a"}

	s = s.ToggleCycle("UAH:a>c>b")
	assert.Equal(t, "UAH:a>c>b", s.ActiveCycle)
	s = s.ToggleCycle("UAH:b>c")
	assert.Equal(t, "UAH:b>c", s.ActiveCycle)
	s = s.ToggleCycle("UAH:b>c")
	assert.Equal(t, "", s.ActiveCycle)
}

func TestSelection_SelectConnection(t *testing.T) {
	row := Row{CounterpartyPID: "b", EdgeKey: "UAH|a|b"}
	s := Selection{PID: "a"}

	s = s.SelectConnection(row)
	assert.Equal(t, "UAH|a|b", s.HighlightedEdge)
	assert.Equal(t, "b", s.FocusPID)

	s = s.SelectConnection(row)
	assert.Equal(t, "", s.HighlightedEdge)
	assert.Equal(t, "b", s.FocusPID)
}

func TestHighlight(t *testing.T) {
	idx := testIndex()
	g := graph.Build(idx, graph.DefaultFilterConfig())
	cycles := idx.Snapshot.Cycles["UAH"]

	h := Highlight(g, Selection{ActiveCycle: "UAH:b>c"}, cycles)
	var lit []string
	for _, e := range h.Edges {
		if e.Highlighted {
			lit = append(lit, e.Key())
		}
	}
	assert.Equal(t, []string{"UAH|b|c"}, lit)

	h = Highlight(g, Selection{HighlightedEdge: "UAH|a|b"}, cycles)
	e, ok := h.Edge("UAH|a|b")
	require.True(t, ok)
	assert.True(t, e.Highlighted)

	for _, orig := range g.Edges {
		assert.False(t, orig.Highlighted, "input graph is untouched")
	}
}

type stubIndexes struct {
	idx *snapshot.Index
	err error
}

func (s stubIndexes) Current() (*snapshot.Index, error) { return s.idx, s.err }

func TestSnapshotCycleSource(t *testing.T) {
	src := NewSnapshotCycleSource(stubIndexes{idx: testIndex()})
	ctx := context.Background()

	uah, err := src.Cycles(ctx, "UAH")
	require.NoError(t, err)
	assert.Len(t, uah, 2)

	all, err := src.Cycles(ctx, "ALL")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "EUR", all[0].Edges[0].Equivalent)

	none, err := src.Cycles(ctx, "USD")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = NewSnapshotCycleSource(stubIndexes{err: errors.ErrSnapshotNotLoaded}).Cycles(ctx, "UAH")
	assert.ErrorIs(t, err, errors.ErrCycleSourceFailed)
}
