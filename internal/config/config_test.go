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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() Config {
	return Config{
		DatabasePath:    ".escrow",
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		ApiPort:         8080,
		MetricsPort:     12799,
		Journal:         true,
		JournalGc:       true,
	}
}

func resetGlobalConfig(t *testing.T) {
	t.Helper()
	cfg := defaultConfig()
	globalConfig = &cfg
	// Keep a config in the home directory out of the way
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "escrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	resetGlobalConfig(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), *cfg)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadFile(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
databasePath: /var/lib/escrow
bindAddr: 127.0.0.1
apiPort: 9000
journal: false
tracing: true
tracingStdout: true
shutdownTimeout: 5s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := Config{
		DatabasePath:    "/var/lib/escrow",
		BindAddr:        "127.0.0.1",
		ShutdownTimeout: "5s",
		ApiPort:         9000,
		MetricsPort:     12799,
		Tracing:         true,
		TracingStdout:   true,
		JournalGc:       true,
	}
	assert.Equal(t, expected, *cfg)
	timeout, err := cfg.ParseShutdownTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadConfigSection(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
config:
  metricsPort: 9100
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9100), cfg.MetricsPort)
	assert.Equal(t, ".escrow", cfg.DatabasePath)
}

func TestLoadEnvironment(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, "apiPort: 9000\n")
	t.Setenv("ESCROW_API_PORT", "9500")
	t.Setenv("ESCROW_DATABASE_PATH", "/tmp/escrow-env")
	t.Setenv("ESCROW_JOURNAL", "false")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9500), cfg.ApiPort)
	assert.Equal(t, "/tmp/escrow-env", cfg.DatabasePath)
	assert.False(t, cfg.Journal)
}

func TestLoadJournalTuning(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
journalBlockCacheSize: 1048576
journalValueThreshold: 4096
`)
	t.Setenv("ESCROW_JOURNAL_MEM_TABLE_SIZE", "8388608")
	t.Setenv("ESCROW_JOURNAL_GC", "false")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	tuning := cfg.JournalTuning()
	assert.Equal(t, uint64(1<<20), tuning.BlockCacheSize)
	assert.Equal(t, int64(4096), tuning.ValueThreshold)
	assert.Equal(t, int64(8<<20), tuning.MemTableSize)
	assert.Zero(t, tuning.IndexCacheSize)
	assert.True(t, tuning.DisableGc)

	// Defaults leave GC on
	defaults := defaultConfig()
	assert.False(t, defaults.JournalTuning().DisableGc)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad timeout", content: "shutdownTimeout: soon\n"},
		{name: "negative timeout", content: "shutdownTimeout: -1s\n"},
		{name: "empty database path", content: "databasePath: \"\"\n"},
		{name: "port out of range", content: "metricsPort: 70000\n"},
		{name: "value threshold too large", content: "journalValueThreshold: 2097152\n"},
		{name: "value log file too small", content: "journalValueLogFileSize: 1024\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resetGlobalConfig(t)
			_, err := LoadConfig(writeConfig(t, test.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	resetGlobalConfig(t)
	_, err := LoadConfig(writeConfig(t, "apiPort: [1, 2]\n"))
	require.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), &cfg)
	assert.Same(t, &cfg, FromContext(ctx))
}
