package preferences

import (
	"context"
	"strings"

	"trustmap/internal/connections"
	"trustmap/internal/graph"
	"trustmap/pkg/errors"
	"trustmap/pkg/logger"
)

// Prefs is everything a user's view remembers between sessions.
type Prefs struct {
	Filter    graph.FilterConfig    `json:"filter"`
	Selection connections.Selection `json:"selection"`
	Page      int                   `json:"page"`
}

func DefaultPrefs() Prefs {
	return Prefs{Filter: graph.DefaultFilterConfig(), Page: 1}
}

// Normalized clamps values that would otherwise produce an empty view.
func (p Prefs) Normalized() Prefs {
	p.Filter = p.Filter.Normalized()
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// BestEffort wraps a Store and swallows every failure. Errors are logged at
// debug level only.
type BestEffort struct {
	store  Store
	logger logger.Logger
}

// NewBestEffort wraps store; a nil store behaves as an always-empty one.
func NewBestEffort(store Store, log logger.Logger) *BestEffort {
	return &BestEffort{store: store, logger: log}
}

// Load returns the user's saved prefs, or defaults on any failure.
func (b *BestEffort) Load(ctx context.Context, user string) Prefs {
	prefs := DefaultPrefs()
	user = strings.TrimSpace(user)
	if b.store == nil || user == "" {
		return prefs
	}
	if err := b.store.Load(ctx, user, &prefs); err != nil {
		if !errors.Is(err, errors.ErrPreferenceNotFound) {
			b.logger.Debug("Preference load failed", map[string]interface{}{
				"user":  user,
				"error": err.Error(),
			})
		}
		return DefaultPrefs()
	}
	return prefs.Normalized()
}

// Save stores prefs and reports whether it worked. Callers may ignore the
// result.
func (b *BestEffort) Save(ctx context.Context, user string, prefs Prefs) bool {
	user = strings.TrimSpace(user)
	if b.store == nil || user == "" {
		return false
	}
	if err := b.store.Save(ctx, user, prefs.Normalized()); err != nil {
		b.logger.Debug("Preference save failed", map[string]interface{}{
			"user":  user,
			"error": err.Error(),
		})
		return false
	}
	return true
}
