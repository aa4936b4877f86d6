package graph

import (
	"strings"

	"trustmap/internal/domain"
	"trustmap/internal/focus"
)

// DefaultThreshold flags an edge as a bottleneck below 10% availability.
const DefaultThreshold = "0.10"

// FocusConfig restricts the graph to an ego-subgraph.
type FocusConfig struct {
	Enabled bool   `json:"enabled"`
	RootPID string `json:"root_pid"`
	Depth   int    `json:"depth"`
}

// FilterConfig is the full, serializable view configuration. Empty sets mean
// no restriction.
type FilterConfig struct {
	Equivalent    string                   `json:"equivalent"`
	StatusFilter  []domain.TrustlineStatus `json:"status_filter,omitempty"`
	Threshold     string                   `json:"threshold"`
	TypeFilter    []domain.ParticipantType `json:"type_filter,omitempty"`
	MinDegree     int                      `json:"min_degree"`
	ShowIncidents bool                     `json:"show_incidents"`
	HideIsolates  bool                     `json:"hide_isolates"`
	Focus         FocusConfig              `json:"focus"`
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Equivalent: domain.AllEquivalents,
		Threshold:  DefaultThreshold,
		Focus:      FocusConfig{Depth: focus.MinDepth},
	}
}

// Normalized returns a copy with malformed values clamped. It never rejects
// a configuration.
func (c FilterConfig) Normalized() FilterConfig {
	out := c
	out.Equivalent = strings.TrimSpace(c.Equivalent)
	if domain.IsAllEquivalents(out.Equivalent) {
		out.Equivalent = domain.AllEquivalents
	}
	out.Threshold = strings.TrimSpace(c.Threshold)

	out.StatusFilter = nil
	for _, s := range c.StatusFilter {
		if s = domain.TrustlineStatus(strings.TrimSpace(string(s))); s != "" {
			out.StatusFilter = append(out.StatusFilter, s)
		}
	}
	out.TypeFilter = nil
	for _, t := range c.TypeFilter {
		if t = domain.ParticipantType(strings.TrimSpace(string(t))); t != "" {
			out.TypeFilter = append(out.TypeFilter, t)
		}
	}

	if out.MinDegree < 0 {
		out.MinDegree = 0
	}
	out.Focus.RootPID = strings.TrimSpace(c.Focus.RootPID)
	out.Focus.Depth = focus.NormalizeDepth(c.Focus.Depth)
	return out
}

// FocusQuery converts the focus part of the configuration.
func (c FilterConfig) FocusQuery() *focus.Query {
	statuses := make([]string, 0, len(c.StatusFilter))
	for _, s := range c.StatusFilter {
		statuses = append(statuses, string(s))
	}
	return focus.BuildQuery(focus.Input{
		Enabled:      c.Focus.Enabled,
		RootPID:      c.Focus.RootPID,
		Depth:        c.Focus.Depth,
		Equivalent:   c.Equivalent,
		StatusFilter: statuses,
	})
}

func (c FilterConfig) statusAllowed(s domain.TrustlineStatus) bool {
	if len(c.StatusFilter) == 0 {
		return true
	}
	for _, allowed := range c.StatusFilter {
		if strings.EqualFold(string(allowed), string(s)) {
			return true
		}
	}
	return false
}

func (c FilterConfig) typeAllowed(t domain.ParticipantType) bool {
	if len(c.TypeFilter) == 0 {
		return true
	}
	for _, allowed := range c.TypeFilter {
		if strings.EqualFold(string(allowed), string(t)) {
			return true
		}
	}
	return false
}
