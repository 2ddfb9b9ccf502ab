// Command arogya runs the interactive Dr. Arogya consultation in the
// terminal.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/arogya-health/arogya/internal/client"
	"github.com/arogya-health/arogya/internal/ui"
	"github.com/arogya-health/arogya/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	initializeLogger()

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	apiBase := os.Getenv("AROGYA_API_BASE")
	if apiBase == "" {
		apiBase = client.DefaultBaseURL
	}
	apiBaseFlag := flag.String("api-base", apiBase, "base URL of the consultation server")
	flag.Parse()

	c := client.New(client.WithBaseURL(*apiBaseFlag))
	slog.Debug("starting consultation UI", "api_base", *apiBaseFlag)

	p := tea.NewProgram(ui.NewModel(c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("consultation UI failed", "error", err)
		os.Exit(1)
	}
}

// initializeLogger sets up structured logging. Logs go to a file instead of
// stderr so they never corrupt the TUI; AROGYA_DEBUG enables debug level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("AROGYA_DEBUG", false) {
		level = slog.LevelDebug
	}
	logFile, err := os.OpenFile("arogya.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// No log file, discard rather than fight the terminal for stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))
}
