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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/escrow/database/badger"
	"github.com/blinklabs-io/escrow/database/sqlite"
)

// JournalTuning holds the badger settings of the on-disk journal
type JournalTuning = badger.Tuning

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	DataDir      string
	// Journal enables the badger-backed operation journal
	Journal       bool
	JournalTuning JournalTuning
}

// Database pairs the SQLite state store with the optional operation journal
type Database struct {
	logger  *slog.Logger
	state   *sqlite.StateStoreSqlite
	journal *badger.JournalStoreBadger
	dataDir string
}

// New creates a new database instance with optional persistence using the
// configured data directory
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	db := &Database{
		logger:  cfg.Logger,
		dataDir: cfg.DataDir,
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	stateDb, err := sqlite.New(
		sqlite.WithDataDir(cfg.DataDir),
		sqlite.WithLogger(db.logger),
		sqlite.WithPromRegistry(cfg.PromRegistry),
	)
	if err != nil {
		if stateDb != nil {
			_ = stateDb.Close()
		}
		return nil, fmt.Errorf("open state store: %w", err)
	}
	db.state = stateDb
	if cfg.Journal {
		journalDb, err := badger.New(
			badger.WithDataDir(cfg.DataDir),
			badger.WithLogger(db.logger),
			badger.WithPromRegistry(cfg.PromRegistry),
			badger.WithTuning(cfg.JournalTuning),
		)
		if err != nil {
			if journalDb != nil {
				_ = journalDb.Close()
			}
			_ = stateDb.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		db.journal = journalDb
	}
	if err := db.checkCommitTimestamp(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// State returns the underlying state store
func (d *Database) State() *sqlite.StateStoreSqlite {
	return d.state
}

// Journal returns the underlying journal store, or nil when the journal is
// disabled
func (d *Database) Journal() *badger.JournalStoreBadger {
	return d.journal
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.journal != nil {
		err = errors.Join(err, d.journal.Close())
	}
	err = errors.Join(err, d.state.Close())
	return err
}
