// Package server implements the reference tracker server the client syncs
// against: a chi REST API over a JSON-file store with one global write lock.
package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/logger"
)

// Server runs the tracker HTTP API until shut down.
type Server interface {
	// RunServer blocks serving requests until a stop signal arrives or
	// Shutdown is called.
	RunServer()

	// Shutdown gracefully stops the HTTP server.
	Shutdown()
}

type server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer builds the tracker server: it loads the JSON data store, wires
// the API routes and configures the HTTP listener.
func NewServer(cfg *config.ServerConfig, log *logger.Logger) (Server, error) {
	log.Info().Msg("creating new server...")

	store, err := NewFileStore(cfg.DataFile, log)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(store, log)

	return &server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddress,
			Handler:      handler.Init(),
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
		},
		logger: log,
	}, nil
}

func (s *server) RunServer() {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()
		s.Shutdown()
		close(idleConnectionsClosed)
	}()

	s.logger.Info().Str("address", s.httpServer.Addr).Msg("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Err(err).Msg("HTTP server ListenAndServe")
		return
	}

	<-idleConnectionsClosed
}

func (s *server) Shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Err(err).Msg("HTTP server Shutdown")
	}
}
