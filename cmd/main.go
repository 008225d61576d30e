package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinoosan/apishell/internal/config"
	"github.com/tinoosan/apishell/internal/health"
	"github.com/tinoosan/apishell/internal/logging"
	"github.com/tinoosan/apishell/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "example-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	base, closeLogs, err := logging.Setup(cfg, os.Stdout)
	if err != nil {
		return err
	}
	l := logging.Named(base, "app")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeLogs(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "flush logs:", err)
		}
	}()

	var checks []health.Checker
	if cfg.DatabaseURL != "" {
		pg, err := health.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer pg.Close()
		checks = append(checks, pg)
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: router.New(base, router.Options{
			CORSOrigins: cfg.CORSOrigins,
			CORSHeaders: cfg.CORSHeaders,
			APIToken:    cfg.APIToken,
			Checks:      checks,
		}),
		ErrorLog:          slog.NewLogLogger(logging.Named(base, "http").Handler(), slog.LevelError),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.Info("starting API", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("received terminate, graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
