package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts everything
// down: HTTP first, then WebSocket connections, the bus and the database.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.StartBridges(ctx); err != nil {
		slog.Error("Failed to start event bridges", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := s.E.Start(s.Cfg.GetAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()
	slog.Info("WebUI server started", "addr", s.Cfg.GetAddr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("Shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.E.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	s.Registry.CloseAll()
	if err := s.Bus.Close(); err != nil {
		slog.Error("Bus close failed", "error", err)
	}
	if err := s.DB.Close(shutdownCtx); err != nil {
		slog.Error("Database close failed", "error", err)
	}
	slog.Info("Shutdown complete")
}
