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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/escrow/database"
)

type ctxKey string

const configContextKey ctxKey = "escrow.config"

const DefaultShutdownTimeout = "30s"

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// tempConfig allows the settings to live under a top-level config key
type tempConfig struct {
	Config yaml.Node `yaml:"config,omitempty"`
}

type Config struct {
	DatabasePath    string `yaml:"databasePath"    split_words:"true"`
	BindAddr        string `yaml:"bindAddr"        split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	ApiPort         uint   `yaml:"apiPort"         split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"     split_words:"true"`
	// Journal enables the operation history
	Journal       bool `yaml:"journal"`
	Tracing       bool `yaml:"tracing"`
	TracingStdout bool `yaml:"tracingStdout"   split_words:"true"`
	// Badger settings for the journal. Zero keeps the built-in default
	JournalBlockCacheSize   uint64 `yaml:"journalBlockCacheSize"   split_words:"true"`
	JournalIndexCacheSize   uint64 `yaml:"journalIndexCacheSize"   split_words:"true"`
	JournalValueLogFileSize int64  `yaml:"journalValueLogFileSize" split_words:"true"`
	JournalMemTableSize     int64  `yaml:"journalMemTableSize"     split_words:"true"`
	JournalValueThreshold   int64  `yaml:"journalValueThreshold"   split_words:"true"`
	JournalGc               bool   `yaml:"journalGc"               split_words:"true"`
}

// JournalTuning returns the badger settings for the journal
func (c *Config) JournalTuning() database.JournalTuning {
	return database.JournalTuning{
		BlockCacheSize:   c.JournalBlockCacheSize,
		IndexCacheSize:   c.JournalIndexCacheSize,
		ValueLogFileSize: c.JournalValueLogFileSize,
		MemTableSize:     c.JournalMemTableSize,
		ValueThreshold:   c.JournalValueThreshold,
		DisableGc:        !c.JournalGc,
	}
}

// ParseShutdownTimeout returns the shutdown timeout as a duration
func (c *Config) ParseShutdownTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: shutdown timeout %q: %w",
			ErrInvalidConfig,
			c.ShutdownTimeout,
			err,
		)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf(
			"%w: shutdown timeout must be positive",
			ErrInvalidConfig,
		)
	}
	return timeout, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: databasePath must be set", ErrInvalidConfig)
	}
	if c.ApiPort > 65535 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: port out of range", ErrInvalidConfig)
	}
	if _, err := c.ParseShutdownTimeout(); err != nil {
		return err
	}
	if c.Journal {
		if err := c.JournalTuning().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

var globalConfig = &Config{
	DatabasePath:    ".escrow",
	BindAddr:        "0.0.0.0",
	ShutdownTimeout: DefaultShutdownTimeout,
	ApiPort:         8080,
	MetricsPort:     12799,
	Journal:         true,
	JournalGc:       true,
}

// LoadConfig overlays the config file, if any, and the environment onto the
// defaults. Without an explicit file ~/.escrow/escrow.yaml and then
// /etc/escrow/escrow.yaml are tried.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".escrow", "escrow.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/escrow/escrow.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if tempCfg.Config.Kind != 0 {
			// Decoding the node only touches the keys it contains
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("escrow", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
