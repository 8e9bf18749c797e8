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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/database"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, NopVault{}, cfg.vault)
	assert.NotNil(t, cfg.clock)
	assert.Equal(t, defaultShutdownTimeout, cfg.shutdownTimeout)
	assert.Equal(t, defaultRegistrarCacheSize, cfg.registrarCacheSize)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.journal)
	assert.False(t, cfg.tracing)
	assert.Nil(t, cfg.promRegistry)
}

func TestNewConfigOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	fixed := time.Unix(1_700_000_000, 0)
	cfg := NewConfig(
		WithPromRegistry(reg),
		WithDatabasePath("/tmp/escrow"),
		WithJournal(true),
		WithJournalTuning(database.JournalTuning{BlockCacheSize: 1 << 20, DisableGc: true}),
		WithClock(func() time.Time { return fixed }),
		WithShutdownTimeout(5*time.Second),
		WithRegistrarCacheSize(8),
		WithTracing(true),
		WithTracingStdout(true),
	)
	assert.Equal(t, reg, cfg.promRegistry)
	assert.Equal(t, "/tmp/escrow", cfg.dataDir)
	assert.True(t, cfg.journal)
	assert.Equal(t, uint64(1<<20), cfg.journalTuning.BlockCacheSize)
	assert.True(t, cfg.journalTuning.DisableGc)
	assert.Equal(t, fixed, cfg.clock())
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
	assert.Equal(t, 8, cfg.registrarCacheSize)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
}

func TestNewFillsMissingConfig(t *testing.T) {
	// A zero Config gets the same defaults as NewConfig
	e, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Stop() })
	assert.NotNil(t, e.config.logger)
	assert.Equal(t, NopVault{}, e.config.vault)
	assert.NotNil(t, e.config.clock)
	assert.Equal(t, defaultShutdownTimeout, e.config.shutdownTimeout)
	assert.Equal(t, defaultRegistrarCacheSize, e.config.registrarCacheSize)
	assert.Nil(t, e.metrics)
}
