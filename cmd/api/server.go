package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const healthTimeout = 2 * time.Second

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully within the configured timeout.
func Run(deps *Dependencies) error {
	srv := &http.Server{
		Addr:         deps.Config.Server.Addr(),
		Handler:      SetupRouter(deps),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		deps.Logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	deps.Logger.Info("server stopped")
	return nil
}
