package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustmap/internal/analytics"
	"trustmap/internal/connections"
	"trustmap/internal/graph"
	"trustmap/internal/handler"
	"trustmap/internal/metrics"
	"trustmap/internal/preferences"
	"trustmap/internal/snapshot"
	"trustmap/pkg/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only JSON API",
		Long: `Serve the graph, analytics, connections, focus, search and preference
endpoints over HTTP. The snapshot is reloaded every SNAPSHOT_REFRESH_INTERVAL
and on POST /api/v1/snapshot/refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), logger.NewWithWriter("trustmap", cmd.OutOrStdout(), a.cfg.Log.Level))
		},
	}
}

func (a *app) serve(ctx context.Context, log logger.Logger) error {
	cfg := a.cfg
	log.Info("Starting trustmap", map[string]interface{}{
		"port":   cfg.Server.Port,
		"source": cfg.Snapshot.Source,
	})

	source, release, err := a.openSource()
	if err != nil {
		return err
	}
	defer release()

	m := metrics.NewCollector()
	holder := snapshot.NewHolder(source, log, m)
	if _, err := holder.Refresh(ctx); err != nil {
		// Keep serving: /health reports 503 until a refresh succeeds.
		log.Warn("Initial snapshot load failed", map[string]interface{}{"error": err.Error()})
	}
	holder.Start(cfg.Snapshot.RefreshInterval)
	defer holder.Stop()

	prefs, closePrefs := a.openPreferences(ctx, log)
	defer closePrefs()

	defaults := graph.DefaultFilterConfig()
	defaults.Equivalent = cfg.Engine.DefaultEquivalent
	defaults.Threshold = cfg.Engine.DefaultThreshold

	cycles := connections.NewSnapshotCycleSource(holder)
	engine := analytics.NewEngine(log, m)

	router := handler.NewRouter(handler.Routes{
		Graph:        handler.NewGraphHandler(holder, cycles, defaults, m, log),
		Participants: handler.NewParticipantHandler(holder, engine, cycles, defaults, cfg.Engine.PageSize, m, log),
		Preferences:  handler.NewPreferencesHandler(prefs),
		System:       handler.NewSystemHandler(holder, log),
		Metrics:      m,
		Logger:       log,
		CORSOrigins:  cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("trustmap started", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down trustmap...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("trustmap stopped gracefully", nil)
	return nil
}

// openPreferences uses Redis when REDIS_URL is set and reachable, and an
// in-process store otherwise. Preferences never block startup.
func (a *app) openPreferences(ctx context.Context, log logger.Logger) (*preferences.BestEffort, func()) {
	if a.cfg.Redis.URL == "" {
		return preferences.NewBestEffort(preferences.NewMemoryStore(), log), func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := preferences.NewRedisStore(pingCtx, a.cfg.Redis.URL, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.Redis.PrefsTTL)
	if err != nil {
		log.Warn("Redis unavailable, keeping preferences in memory", map[string]interface{}{"error": err.Error()})
		return preferences.NewBestEffort(preferences.NewMemoryStore(), log), func() {}
	}
	log.Info("Redis connected", nil)
	return preferences.NewBestEffort(store, log), func() { store.Close() }
}
