package main

import (
	"context"
	"strings"
	"time"

	"trustmap/internal/repository/postgres"
	"trustmap/internal/snapshot"
	"trustmap/pkg/config"
	"trustmap/pkg/errors"
	"trustmap/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	format string
	now    func() time.Time
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg, log: logger.NewNop(), now: time.Now}

	root := &cobra.Command{
		Use:   "trustmap",
		Short: "Trust-network analytics over a ledger snapshot",
		Long: `trustmap derives the filtered trust graph, per-participant analytics,
connection lists and focus subgraphs from a read-only ledger snapshot.

The snapshot comes from a JSON/YAML fixture or from the Postgres read model.
Every command except serve loads the snapshot once, prints and exits.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Snapshot.Source = strings.ToLower(strings.TrimSpace(a.cfg.Snapshot.Source))
			a.log = logger.NewWithWriter("trustmap", cmd.ErrOrStderr(), a.cfg.Log.Level)
			return a.cfg.ValidateCore()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Snapshot.Source, "source", cfg.Snapshot.Source, "Snapshot source: file or postgres")
	flags.StringVar(&a.cfg.Snapshot.FixturePath, "fixture", cfg.Snapshot.FixturePath, "Fixture path when --source=file")
	flags.StringVar(&a.cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	flags.StringVar(&a.format, "format", "json", "Output format: json, yaml or table")

	root.AddCommand(
		newServeCmd(a),
		newGraphCmd(a),
		newAnalyticsCmd(a),
		newConnectionsCmd(a),
		newFocusCmd(a),
		newSearchCmd(a),
	)
	return root
}

// openSource builds the configured snapshot source. The returned func
// releases whatever the source holds open.
func (a *app) openSource() (snapshot.Source, func(), error) {
	switch a.cfg.Snapshot.Source {
	case config.SourcePostgres:
		db, err := sqlx.Connect("postgres", a.cfg.Database.URL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to database")
		}
		db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(a.cfg.Database.ConnMaxLifetime)
		return postgres.NewSnapshotRepository(db), func() { db.Close() }, nil
	default:
		return snapshot.NewFileSource(a.cfg.Snapshot.FixturePath), func() {}, nil
	}
}

// loadIndex loads and normalizes the snapshot once.
func (a *app) loadIndex(ctx context.Context) (*snapshot.Index, error) {
	source, release, err := a.openSource()
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSnapshotSource, err.Error())
	}
	idx := snapshot.Normalize(snap)
	for _, w := range idx.Warnings {
		a.log.Warn("Snapshot warning", map[string]interface{}{"warning": w})
	}
	return idx, nil
}
