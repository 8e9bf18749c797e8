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

package badger

import (
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type BadgerOptionFunc func(*JournalStoreBadger)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BadgerOptionFunc {
	return func(b *JournalStoreBadger) {
		b.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(
	registry prometheus.Registerer,
) BadgerOptionFunc {
	return func(b *JournalStoreBadger) {
		b.promRegistry = registry
	}
}

// WithDataDir specifies the data directory to use for storage
func WithDataDir(dataDir string) BadgerOptionFunc {
	return func(b *JournalStoreBadger) {
		b.dataDir = dataDir
	}
}

// WithTuning overrides the journal's badger settings. Zero fields keep their
// defaults
func WithTuning(tuning Tuning) BadgerOptionFunc {
	return func(b *JournalStoreBadger) {
		b.tuning = tuning.withDefaults()
	}
}

// Tuning holds the badger settings of an on-disk journal
type Tuning struct {
	BlockCacheSize   uint64
	IndexCacheSize   uint64
	ValueLogFileSize int64
	MemTableSize     int64
	// ValueThreshold is the largest value kept in the LSM tree instead of
	// the value log
	ValueThreshold int64
	DisableGc      bool
}

// DefaultTuning returns the settings used when none are given
func DefaultTuning() Tuning {
	return Tuning{
		BlockCacheSize:   DefaultBlockCacheSize,
		IndexCacheSize:   DefaultIndexCacheSize,
		ValueLogFileSize: DefaultValueLogFileSize,
		MemTableSize:     DefaultMemTableSize,
		ValueThreshold:   DefaultValueThreshold,
	}
}

func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.BlockCacheSize == 0 {
		t.BlockCacheSize = def.BlockCacheSize
	}
	if t.IndexCacheSize == 0 {
		t.IndexCacheSize = def.IndexCacheSize
	}
	if t.ValueLogFileSize == 0 {
		t.ValueLogFileSize = def.ValueLogFileSize
	}
	if t.MemTableSize == 0 {
		t.MemTableSize = def.MemTableSize
	}
	if t.ValueThreshold == 0 {
		t.ValueThreshold = def.ValueThreshold
	}
	return t
}

// Validate checks the settings against the limits badger enforces on open
func (t Tuning) Validate() error {
	t = t.withDefaults()
	if t.ValueLogFileSize < 1<<20 || t.ValueLogFileSize >= 2<<30 {
		return fmt.Errorf(
			"%w: value log file size %d not in [1MB, 2GB)",
			ErrInvalidTuning,
			t.ValueLogFileSize,
		)
	}
	if t.MemTableSize < 0 || t.ValueThreshold < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidTuning)
	}
	if t.ValueThreshold > MaxValueThreshold {
		return fmt.Errorf(
			"%w: value threshold %d exceeds %d",
			ErrInvalidTuning,
			t.ValueThreshold,
			MaxValueThreshold,
		)
	}
	// badger caps a write batch at 15% of the memtable
	if t.ValueThreshold > t.MemTableSize*15/100 {
		return fmt.Errorf(
			"%w: value threshold %d too large for memtable size %d",
			ErrInvalidTuning,
			t.ValueThreshold,
			t.MemTableSize,
		)
	}
	return nil
}

// apply sets the on-disk settings on badger options
func (t Tuning) apply(opts badger.Options) badger.Options {
	return opts.
		WithBlockCacheSize(int64(t.BlockCacheSize)). //nolint:gosec
		WithIndexCacheSize(int64(t.IndexCacheSize)). //nolint:gosec
		WithValueLogFileSize(t.ValueLogFileSize).
		WithMemTableSize(t.MemTableSize)
}
