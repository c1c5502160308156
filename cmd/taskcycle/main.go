package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"taskcycle/internal/api"
	"taskcycle/internal/config"
	"taskcycle/internal/dates"
	"taskcycle/internal/engine"
	"taskcycle/internal/storage"
	syncer "taskcycle/internal/sync"
	"taskcycle/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskcycle failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile("taskcycle.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	mirror, err := storage.OpenSQLite(cfg.MirrorPath)
	if err != nil {
		return err
	}
	defer mirror.Close()

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, cfg.MaxRetries, logger)
	clock := dates.SystemClock()
	lifecycle := engine.NewLifecycle(client, mirror, clock, logger)

	reconciler := syncer.NewReconciler(client, mirror, logger)
	if err := reconciler.Start(cfg.ReconcileSpec); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}
	defer reconciler.Stop()

	program := tea.NewProgram(update.NewModel(client, lifecycle, clock))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
