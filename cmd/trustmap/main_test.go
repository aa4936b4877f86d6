package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"trustmap/internal/analytics"
	"trustmap/internal/graph"
	"trustmap/pkg/config"
	"trustmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "8080"},
		Snapshot: config.SnapshotConfig{Source: config.SourceFile, FixturePath: "../../fixtures/snapshot.json"},
		Engine:   config.EngineConfig{DefaultThreshold: "0.10", DefaultEquivalent: "ALL", PageSize: 25},
		Log:      config.LogConfig{Level: "error"},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(cfg)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, testConfig(), "graph", "--equivalent", "UAH")
	require.NoError(t, err)

	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, 7, g.Stats.Nodes)
	assert.Equal(t, 6, g.Stats.Edges)
	assert.Equal(t, 2, g.Stats.Bottlenecks)
	assert.Equal(t, 1, g.Stats.Isolates)
}

func TestGraphCommand_Table(t *testing.T) {
	out, err := run(t, testConfig(), "graph", "--equivalent", "UAH", "--status", "active", "--hide-isolates", "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "BOTTLENECK")
	assert.Contains(t, out, "PID_bakery_02")
	assert.NotContains(t, out, "PID_ivan_06")
	assert.Contains(t, out, "edges=4 bottlenecks=2")
}

func TestAnalyticsCommand(t *testing.T) {
	out, err := run(t, testConfig(), "analytics", "PID_anna_01", "--equivalent", "UAH", "--at", "2026-10-15T00:00:00Z")
	require.NoError(t, err)

	var b analytics.Bundle
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	require.NotNil(t, b.Rank)
	assert.Equal(t, "430.00", b.Rank.Net)
	assert.Equal(t, 2, b.Rank.Rank)
	assert.Equal(t, 7, b.Rank.Participants)
	assert.True(t, b.Activity.TransactionsAvailable)

	week, ok := b.Activity.Window(7)
	require.True(t, ok)
	assert.Equal(t, 1, week.TrustlinesCreated)
	assert.Equal(t, 0, week.TrustlinesClosed)
	assert.Equal(t, 1, week.Incidents)
	assert.Equal(t, 1, week.AuditEvents)
	require.NotNil(t, week.Transactions)
	assert.Equal(t, 1, *week.Transactions)

	month, ok := b.Activity.Window(30)
	require.True(t, ok)
	assert.Equal(t, 3, month.TrustlinesCreated)
	assert.Equal(t, 1, month.TrustlinesClosed)
}

func TestAnalyticsCommand_YAML(t *testing.T) {
	out, err := run(t, testConfig(), "analytics", "PID_anna_01", "--equivalent", "UAH", "--format", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "rank:")
	assert.Contains(t, out, `net: "430.00"`)
}

func TestAnalyticsCommand_BadTime(t *testing.T) {
	_, err := run(t, testConfig(), "analytics", "PID_anna_01", "--at", "yesterday")
	assert.ErrorContains(t, err, "invalid --at")
}

func TestConnectionsCommand(t *testing.T) {
	out, err := run(t, testConfig(), "connections", "PID_olena_04", "--equivalent", "UAH")
	require.NoError(t, err)

	var got connectionsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Incoming.Rows, 1)
	assert.Equal(t, "PID_dmytro_03", got.Incoming.Rows[0].CounterpartyPID)
	require.Len(t, got.Outgoing.Rows, 1)
	assert.Equal(t, "Anna Koval", got.Outgoing.Rows[0].CounterpartyName)
	require.Len(t, got.Cycles, 1)
	assert.Equal(t, "UAH:PID_anna_01>PID_olena_04>PID_dmytro_03", got.Cycles[0].Key)
}

func TestFocusCommand(t *testing.T) {
	out, err := run(t, testConfig(), "focus", "stuck", "payment", "PID_maria_07")
	require.NoError(t, err)

	var got focusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Match)
	assert.Equal(t, "PID_maria_07", got.Match.PID)
	require.NotNil(t, got.Query)
	assert.Equal(t, 1, got.Query.Depth)
	require.NotNil(t, got.Graph)
	assert.Len(t, got.Graph.Nodes, 2)
}

func TestFocusCommand_NoMatch(t *testing.T) {
	out, err := run(t, testConfig(), "focus", "zzz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"match":null,"query":null,"graph":null}`, out)
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, testConfig(), "search", "--limit", "0", "pid_")
	require.NoError(t, err)

	var matches []struct {
		PID string `json:"pid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	assert.Len(t, matches, 7)
	assert.Equal(t, "PID_anna_01", matches[0].PID)
}

func TestCommandErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Snapshot.FixturePath = "../../fixtures/missing.json"
	_, err := run(t, cfg, "graph")
	assert.True(t, errors.Is(err, errors.ErrSnapshotSource))

	_, err = run(t, testConfig(), "graph", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, testConfig(), "--source", "s3", "graph")
	assert.ErrorContains(t, err, "unknown SNAPSHOT_SOURCE")

	_, err = run(t, testConfig(), "analytics")
	assert.Error(t, err)
}

func TestFilterFlags_Normalizes(t *testing.T) {
	f := filterFlags{equivalent: " ", statuses: []string{"active", " "}, minDegree: -3, focus: "PID_anna_01", depth: 7}

	cfg := f.config()

	assert.Equal(t, "ALL", cfg.Equivalent)
	assert.Len(t, cfg.StatusFilter, 1)
	assert.Equal(t, 0, cfg.MinDegree)
	assert.True(t, cfg.Focus.Enabled)
	assert.Equal(t, 1, cfg.Focus.Depth)
}
