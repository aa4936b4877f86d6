// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strings"

	"trustmap/pkg/errors"
)

// ValidateCore ensures the settings needed to acquire a snapshot are present.
func (c *Config) ValidateCore() error {
	var missing []string

	switch c.Snapshot.Source {
	case SourceFile:
		if strings.TrimSpace(c.Snapshot.FixturePath) == "" {
			missing = append(missing, "SNAPSHOT_FIXTURE_PATH")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_SOURCE %q (want %s or %s)", c.Snapshot.Source, SourceFile, SourcePostgres)
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "SERVER_PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrMissingConfiguration, strings.Join(missing, ", "))
	}

	return nil
}
