package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"webhook-fanout/internal/common/logging"
)

// Server represents an HTTP server
type Server struct {
	srv      *http.Server
	listener net.Listener
	errCh    chan error
}

// New creates a new server instance
func New(handler http.Handler, port string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		errCh: make(chan error, 1),
	}
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; later serve errors are reported on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server stopped unexpectedly", err)
			s.errCh <- err
		}
		close(s.errCh)
	}()

	logging.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, useful when started on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.srv.Addr
	}
	return s.listener.Addr().String()
}

// Errors delivers a serve failure, then closes.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
