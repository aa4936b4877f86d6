// Package focus builds ego-subgraph queries around a root participant and
// resolves free search text to a participant PID.
package focus

import (
	"regexp"
	"strings"

	"trustmap/internal/domain"
	"trustmap/internal/snapshot"
)

const (
	MinDepth = 1
	MaxDepth = 2
)

var pidPattern = regexp.MustCompile(`PID_[A-Za-z0-9]+_[A-Za-z0-9]+`)

// Input is the focus-mode portion of the caller's filter state.
type Input struct {
	Enabled      bool
	RootPID      string
	Depth        int
	Equivalent   string
	StatusFilter []string
}

// Query is the ego-subgraph request handed to the graph layer or a backend.
type Query struct {
	PID            string   `json:"pid"`
	Depth          int      `json:"depth"`
	Equivalent     string   `json:"equivalent,omitempty"`
	Status         []string `json:"status,omitempty"`
	ParticipantPID string   `json:"participant_pid"`
}

// NormalizeDepth maps anything other than 2 to 1.
func NormalizeDepth(depth int) int {
	if depth == MaxDepth {
		return MaxDepth
	}
	return MinDepth
}

// BuildQuery returns nil when focus mode is off or the root trims to empty.
func BuildQuery(in Input) *Query {
	if !in.Enabled {
		return nil
	}
	pid := strings.TrimSpace(in.RootPID)
	if pid == "" {
		return nil
	}

	q := &Query{
		PID:            pid,
		Depth:          NormalizeDepth(in.Depth),
		ParticipantPID: pid,
	}
	if eq := strings.TrimSpace(in.Equivalent); !domain.IsAllEquivalents(eq) {
		q.Equivalent = eq
	}
	for _, s := range in.StatusFilter {
		if s = strings.TrimSpace(s); s != "" {
			q.Status = append(q.Status, s)
		}
	}
	return q
}

// ExtractPID returns the first PID token found in text.
func ExtractPID(text string) (string, bool) {
	pid := pidPattern.FindString(text)
	return pid, pid != ""
}

// MatchKind says how a search candidate was found.
type MatchKind string

const (
	MatchToken MatchKind = "token"
	MatchPID   MatchKind = "pid"
	MatchName  MatchKind = "name"
)

// Match is one search candidate.
type Match struct {
	PID         string    `json:"pid"`
	DisplayName string    `json:"display_name"`
	Kind        MatchKind `json:"kind"`
	// Known is false for an extracted token that is not in the snapshot.
	Known bool `json:"known"`
}

// Resolve picks the single best candidate for text: an embedded PID token,
// then an exact PID, then the first display-name prefix match by PID.
func Resolve(idx *snapshot.Index, text string) (Match, bool) {
	if pid, ok := ExtractPID(text); ok {
		_, known := idx.Participant(pid)
		return Match{PID: pid, DisplayName: idx.DisplayName(pid), Kind: MatchToken, Known: known}, true
	}
	matches := Search(idx, text, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Search lists up to limit known participants matching text. Exact PID hits
// come first, then PID prefixes, then case-insensitive display-name prefixes.
// A limit <= 0 means no limit.
func Search(idx *snapshot.Index, text string, limit int) []Match {
	needle := strings.TrimSpace(text)
	if needle == "" {
		return nil
	}
	lower := strings.ToLower(needle)

	var exact, byPID, byName []Match
	for _, pid := range idx.PIDs() {
		name := idx.DisplayName(pid)
		switch {
		case pid == needle:
			exact = append(exact, Match{PID: pid, DisplayName: name, Kind: MatchPID, Known: true})
		case strings.HasPrefix(strings.ToLower(pid), lower):
			byPID = append(byPID, Match{PID: pid, DisplayName: name, Kind: MatchPID, Known: true})
		case strings.HasPrefix(strings.ToLower(name), lower):
			byName = append(byName, Match{PID: pid, DisplayName: name, Kind: MatchName, Known: true})
		}
	}

	out := append(append(exact, byPID...), byName...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
