package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/dori/taskflow/internal/api"
	"github.com/dori/taskflow/internal/config"
	"github.com/dori/taskflow/internal/db"
	"github.com/dori/taskflow/internal/notify"
	"github.com/dori/taskflow/internal/store"
)

// LogTarget chooses where structured logs go
type LogTarget int

const (
	// LogToFile is used by the TUI, which owns the terminal.
	LogToFile LogTarget = iota
	// LogToStderr is used by the server and one-shot commands.
	LogToStderr
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Store    store.TaskStore
	Notifier *notify.Notifier
	Logger   *slog.Logger

	// DB is set only for the sqlite store
	DB *db.DB

	logFile  *os.File
	lockFile *flock.Flock
}

// New wires the store, logger and notifier described by cfg
func New(cfg *config.Config, target LogTarget) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := cfg.Finalize(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		Notifier: notify.NewNotifier(cfg.Notifications),
	}

	if err := app.openLogger(target); err != nil {
		return nil, err
	}

	if err := app.openStore(); err != nil {
		app.Close()
		return nil, err
	}

	app.Logger.Info("taskflow started", "store", cfg.Store)
	return app, nil
}

func (a *App) openLogger(target LogTarget) error {
	level, err := config.ParseLevel(a.Config.Log.Level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if target == LogToFile {
		if err := os.MkdirAll(filepath.Dir(a.Config.Log.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(a.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	a.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *App) openStore() error {
	cfg := a.Config
	switch cfg.Store {
	case config.StoreMemory:
		seed, err := store.LoadSeedFile(cfg.SeedFile, time.Now())
		if err != nil {
			return err
		}
		a.Store = store.NewMemory(seed, store.WithLatency(store.Latency{
			Min: cfg.Latency.Min,
			Max: cfg.Latency.Max,
		}))

	case config.StoreSQLite:
		// Acquire lock to ensure a single writer
		if err := a.acquireLock(); err != nil {
			return err
		}
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		a.DB = database
		a.Store = database

		seed, err := store.LoadSeedFile(cfg.SeedFile, time.Now())
		if err != nil {
			return err
		}
		seeded, err := database.SeedIfEmpty(context.Background(), seed)
		if err != nil {
			return err
		}
		if seeded {
			a.Logger.Info("seeded new database", "path", cfg.DBPath, "tasks", len(seed.Tasks))
		}

	case config.StoreRemote:
		client, err := api.NewClient(api.ClientConfig{
			BaseURL: cfg.RemoteURL,
			Logger:  a.Logger,
			Retries: 2,
		})
		if err != nil {
			return err
		}
		a.Store = client

	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}
	return nil
}

// acquireLock acquires an exclusive file lock to prevent multiple writers
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "taskflow.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of taskflow is already using %s", a.Config.DBPath)
	}

	return nil
}

func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}

	return errors.Join(errs...)
}
