package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

// Start runs the HTTP server until ctx is canceled or an interrupt or
// terminate signal arrives, then shuts down within SHUTDOWN_TIMEOUT.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort("", s.Cfg.GetPort())
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", addr, "store", s.Cfg.GetStoreDriver())
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Cfg.GetShutdownTimeout())
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, closes every WebSocket connection,
// stops the modules in reverse boot order and releases the core services.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Container.Bridge.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, m := range slices.Backward(s.modules) {
		if err := m.Shutdown(ctx); err != nil {
			slog.Error("Module shutdown failed", "module", m.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	if err := s.Container.Close(ctx); err != nil {
		errs = append(errs, err)
	}

	slog.Info("Server stopped")
	return errors.Join(errs...)
}
