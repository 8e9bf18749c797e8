// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const defaultListenAddress = ":8080"

// Config holds the API server settings
type Config struct {
	ListenAddress string
}

// Server is the read-only HTTP query API over the escrow state
type Server struct {
	config     Config
	logger     *slog.Logger
	engine     Engine
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg Config, engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	return &Server{
		config: cfg,
		logger: logger,
		engine: engine,
	}
}

// Handler returns the request router of the API
func (s *Server) Handler() http.Handler {
	const registrarPath = "/api/v0/registrars/{realm}/{mint}"
	const voterPath = registrarPath + "/voters/{authority}"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/registrars", s.handleRegistrars)
	mux.HandleFunc("GET "+registrarPath, s.handleRegistrar)
	mux.HandleFunc("GET "+registrarPath+"/voters", s.handleVoters)
	mux.HandleFunc("GET "+registrarPath+"/history", s.handleHistory)
	mux.HandleFunc("GET "+voterPath, s.handleVoter)
	mux.HandleFunc("GET "+voterPath+"/weight", s.handleVoterWeight)
	mux.HandleFunc("GET "+voterPath+"/deposits", s.handleDeposits)
	mux.HandleFunc("GET "+voterPath+"/deposits/{index}", s.handleDeposit)
	mux.HandleFunc("GET "+voterPath+"/history", s.handleHistory)
	return mux
}

// Start binds the listener and serves in a background goroutine. The server
// shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	s.logger.Info(
		"API listener started",
		"address", ln.Addr().String(),
	)

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}
