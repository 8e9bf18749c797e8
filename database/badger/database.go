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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlockCacheSize   = 268435456 // 256MB
	DefaultIndexCacheSize   = 67108864  // 64MB
	DefaultValueLogFileSize = 1<<30 - 1
	DefaultMemTableSize     = 64 << 20
	DefaultValueThreshold   = 1 << 20
	MaxValueThreshold       = 1 << 20

	journalSequenceKey       = "journal_sequence"
	journalSequenceBandwidth = 128
)

// JournalStoreBadger keeps the append-only operation journal in badger
type JournalStoreBadger struct {
	promRegistry prometheus.Registerer
	db           *badger.DB
	seq          *badger.Sequence
	logger       *slog.Logger
	gcTicker     *time.Ticker
	gcStopCh     chan struct{}
	dataDir      string
	gcWg         sync.WaitGroup
	tuning       Tuning
	gcEnabled    bool
}

// New creates a journal store. Uses an in-memory database if no data
// directory is given.
func New(opts ...BadgerOptionFunc) (*JournalStoreBadger, error) {
	db := &JournalStoreBadger{
		tuning: DefaultTuning(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.tuning.Validate(); err != nil {
		return nil, err
	}
	db.gcEnabled = !db.tuning.DisableGc
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	db.logger = db.logger.With("component", "database")
	var badgerOpts badger.Options
	if db.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
		// Nothing to reclaim without a value log on disk
		db.gcEnabled = false
	} else {
		if _, err := os.Stat(db.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(db.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = db.tuning.apply(
			badger.DefaultOptions(filepath.Join(db.dataDir, "journal")),
		).WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(NewBadgerLogger(db.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING).
		WithValueThreshold(db.tuning.ValueThreshold)
	journalDb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	db.db = journalDb
	if err := db.init(); err != nil {
		return db, err
	}
	return db, nil
}

func (d *JournalStoreBadger) init() error {
	seq, err := d.db.GetSequence(
		[]byte(journalSequenceKey),
		journalSequenceBandwidth,
	)
	if err != nil {
		return fmt.Errorf("failed to lease journal sequence: %w", err)
	}
	d.seq = seq
	if d.promRegistry != nil {
		d.registerMetrics()
	}
	if d.gcEnabled {
		d.gcTicker = time.NewTicker(5 * time.Minute)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.journalGc(d.gcTicker, d.gcStopCh)
	}
	return nil
}

func (d *JournalStoreBadger) journalGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			// Keep collecting while badger finds files worth rewriting
			for {
				if err := d.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						d.logger.Warn(
							"journal GC failure",
							"error", err,
						)
					}
					break
				}
			}
		case <-stop:
			return
		}
	}
}

// Close stops the GC loop and closes the database
func (d *JournalStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
	}
	var err error
	if d.seq != nil {
		err = d.seq.Release()
		d.seq = nil
	}
	return errors.Join(err, d.db.Close())
}

// Tuning returns the settings the journal was opened with
func (d *JournalStoreBadger) Tuning() Tuning {
	return d.tuning
}

// GcRunning returns true while the value log GC loop is active
func (d *JournalStoreBadger) GcRunning() bool {
	return d.gcTicker != nil
}

// DB returns the database handle
func (d *JournalStoreBadger) DB() *badger.DB {
	return d.db
}

// NewTransaction creates a new badger transaction
func (d *JournalStoreBadger) NewTransaction(update bool) *badger.Txn {
	return d.db.NewTransaction(update)
}

// Append stores val under prefix followed by the next journal sequence
// number and returns that number. Sequence numbers only grow, so iterating a
// prefix returns records in append order.
func (d *JournalStoreBadger) Append(
	prefix []byte,
	val []byte,
	txn *badger.Txn,
) (uint64, error) {
	if txn == nil {
		return 0, ErrNilTxn
	}
	seq, err := d.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal sequence: %w", err)
	}
	key := binary.BigEndian.AppendUint64(
		append(make([]byte, 0, len(prefix)+8), prefix...),
		seq,
	)
	if err := txn.Set(key, val); err != nil {
		return 0, err
	}
	return seq, nil
}

// Iterate calls fn for each record under prefix in append order, or in
// reverse append order when reverse is set. Returning ErrStopIteration from
// fn ends the iteration without error.
func (d *JournalStoreBadger) Iterate(
	prefix []byte,
	reverse bool,
	fn func(seq uint64, val []byte) error,
	txn *badger.Txn,
) error {
	if txn == nil {
		txn = d.NewTransaction(false)
		defer txn.Discard()
	}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = prefix
	iterOpts.Reverse = reverse
	it := txn.NewIterator(iterOpts)
	defer it.Close()
	start := prefix
	if reverse {
		// Reverse iteration seeks to the last key <= start
		start = append(
			append(make([]byte, 0, len(prefix)+9), prefix...),
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		)
	}
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.Key()
		if len(key) != len(prefix)+8 {
			continue
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(binary.BigEndian.Uint64(key[len(prefix):]), val); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}
