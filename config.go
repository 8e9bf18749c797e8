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

package escrow

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/escrow/database"
)

const (
	defaultShutdownTimeout    = 30 * time.Second
	defaultRegistrarCacheSize = 256
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	vault              Vault
	clock              func() time.Time
	dataDir            string
	shutdownTimeout    time.Duration
	registrarCacheSize int
	journal            bool
	journalTuning      database.JournalTuning
	tracing            bool
	tracingStdout      bool
}

// ConfigOptionFunc is a type that represents functions that modify the engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new engine config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
		vault:              NopVault{},
		clock:              time.Now,
		shutdownTimeout:    defaultShutdownTimeout,
		registrarCacheSize: defaultRegistrarCacheSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics. Metrics are disabled without one
func WithPromRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithJournal specifies whether applied operations are recorded in the operation journal
func WithJournal(journal bool) ConfigOptionFunc {
	return func(c *Config) {
		c.journal = journal
	}
}

// WithJournalTuning overrides the badger settings of an on-disk journal. Zero fields keep the defaults
func WithJournalTuning(tuning database.JournalTuning) ConfigOptionFunc {
	return func(c *Config) {
		c.journalTuning = tuning
	}
}

// WithVault specifies the collaborator that moves tokens in and out of escrow. The default moves nothing
func WithVault(vault Vault) ConfigOptionFunc {
	return func(c *Config) {
		c.vault = vault
	}
}

// WithClock specifies the source of the current time. Registrar time offsets are applied on top of it
func WithClock(clock func() time.Time) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithShutdownTimeout specifies how long Stop waits for shutdown work
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithRegistrarCacheSize specifies how many registrars are cached for queries
func WithRegistrarCacheSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.registrarCacheSize = size
	}
}

// WithTracing enables an OTLP span exporter for engine operations. The endpoint is taken from the
// OTEL_EXPORTER_OTLP_* env vars understood by [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout writes spans to stdout instead of an OTLP endpoint. It only has an effect together with WithTracing
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
