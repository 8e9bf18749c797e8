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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/api"
	"github.com/blinklabs-io/escrow/internal/config"
)

// NewEngine opens the engine described by the config. A nil clock uses the
// host time.
func NewEngine(
	cfg *config.Config,
	logger *slog.Logger,
	registry prometheus.Registerer,
	clock func() time.Time,
) (*escrow.Engine, error) {
	shutdownTimeout, err := cfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	opts := []escrow.ConfigOptionFunc{
		escrow.WithLogger(logger),
		escrow.WithDatabasePath(cfg.DatabasePath),
		escrow.WithJournal(cfg.Journal),
		escrow.WithJournalTuning(cfg.JournalTuning()),
		escrow.WithShutdownTimeout(shutdownTimeout),
		escrow.WithTracing(cfg.Tracing),
		escrow.WithTracingStdout(cfg.TracingStdout),
	}
	if registry != nil {
		opts = append(opts, escrow.WithPromRegistry(registry))
	}
	if clock != nil {
		opts = append(opts, escrow.WithClock(clock))
	}
	return escrow.New(escrow.NewConfig(opts...))
}

// Run serves the query API and metrics until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ParseShutdownTimeout()
	if err != nil {
		return err
	}
	e, err := NewEngine(cfg, logger, prometheus.DefaultRegisterer, nil)
	if err != nil {
		return err
	}

	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	apiServer := api.New(
		api.Config{
			ListenAddress: net.JoinHostPort(
				cfg.BindAddr,
				strconv.FormatUint(uint64(cfg.ApiPort), 10),
			),
		},
		e,
		logger,
	)
	if err := apiServer.Start(signalCtx); err != nil {
		return errors.Join(err, e.Stop())
	}

	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	metricsAddr := net.JoinHostPort(
		cfg.BindAddr,
		strconv.FormatUint(uint64(cfg.MetricsPort), 10),
	)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics listener: %w", err)
		}
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info(
			"signal received, initiating graceful shutdown",
			"component", "node",
		)
	case runErr = <-errChan:
		logger.Error("node error", "error", runErr, "component", "node")
		signalCtxStop()
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	if err := e.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	logger.Info("shutdown complete", "component", "node")
	return runErr
}
