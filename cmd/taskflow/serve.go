package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dori/taskflow/internal/api"
	"github.com/dori/taskflow/internal/app"
)

const shutdownTimeout = 10 * time.Second

func runServe(args []string) error {
	var common commonFlags
	var addr string
	fs := pflag.NewFlagSet("taskflow serve", pflag.ContinueOnError)
	common.register(fs)
	fs.StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	application, err := app.New(cfg, app.LogToStderr)
	if err != nil {
		return err
	}
	defer application.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(application.Store, api.WithLogger(application.Logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		application.Logger.Info("listening", "addr", cfg.Addr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	application.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
