// Command arogyad runs the Arogya dev server: the HTTP API the consultation
// client talks to, backed by SQLite and an optional OpenAI responder.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/arogya-health/arogya/internal/api"
	"github.com/arogya-health/arogya/internal/engine"
	"github.com/arogya-health/arogya/internal/genai"
	"github.com/arogya-health/arogya/internal/lockfile"
	"github.com/arogya-health/arogya/internal/report"
	"github.com/arogya-health/arogya/internal/scheduler"
	"github.com/arogya-health/arogya/internal/store"
	"github.com/arogya-health/arogya/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultDBDSN is the default SQLite database path
	DefaultDBDSN = "data/arogyad.db"
	// DefaultReportsDir is the default directory for rendered PDF reports
	DefaultReportsDir = "data/reports"
)

func main() {
	initializeLogger()

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	addr := flag.String("addr", envOr("AROGYAD_ADDR", api.DefaultAddr), "listen address")
	dbDSN := flag.String("db-dsn", envOr("AROGYAD_DB_DSN", DefaultDBDSN), "SQLite database path")
	reportsDir := flag.String("reports-dir", envOr("AROGYAD_REPORTS_DIR", DefaultReportsDir), "directory for rendered PDF reports")
	flag.Parse()

	lock, err := lockfile.AcquireLock(filepath.Dir(*dbDSN))
	if err != nil {
		slog.Error("Failed to lock data directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := store.NewSQLiteStore(store.WithDSN(*dbDSN))
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	engineOpts := []engine.Option{engine.WithStore(st)}
	if os.Getenv("OPENAI_API_KEY") != "" {
		responder, err := genai.NewClient()
		if err != nil {
			slog.Error("Failed to initialize GenAI client", "error", err)
			os.Exit(1)
		}
		engineOpts = append(engineOpts, engine.WithResponder(responder))
		slog.Info("GenAI responder enabled")
	} else {
		slog.Info("OPENAI_API_KEY not set, using scripted replies")
	}

	eng, err := engine.New(engineOpts...)
	if err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}

	reports, err := report.NewService(report.WithReportsDir(*reportsDir))
	if err != nil {
		slog.Error("Failed to initialize report service", "error", err)
		os.Exit(1)
	}
	reports.CleanupOldReports()

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddJob(scheduler.DailyCleanupExpr, reports.CleanupOldReports); err != nil {
		slog.Error("Failed to schedule report cleanup", "error", err)
		os.Exit(1)
	}

	srv, err := api.NewServer(
		api.WithAddr(*addr),
		api.WithStore(st),
		api.WithEngine(eng),
		api.WithReports(reports),
	)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("arogyad exited successfully")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initializeLogger sets up structured logging; AROGYA_DEBUG enables debug
// level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("AROGYA_DEBUG", false) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
