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
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
)

// Txn coordinates the state store and journal transactions of one operation
type Txn struct {
	db         *Database
	stateTxn   *gorm.DB
	journalTxn *badgerdb.Txn
	lock       sync.Mutex
	finished   bool
	readWrite  bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	t := &Txn{
		db:        db,
		readWrite: readWrite,
		stateTxn:  db.state.Transaction(),
	}
	if db.journal != nil {
		t.journalTxn = db.journal.NewTransaction(readWrite)
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// State returns the underlying SQL transaction handle
func (t *Txn) State() *gorm.DB {
	return t.stateTxn
}

// Journal returns the journal transaction handle, or nil when the journal is
// disabled
func (t *Txn) Journal() *badgerdb.Txn {
	return t.journalTxn
}

// Do executes the specified function in the context of the transaction. Any errors returned will result
// in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if err2 := t.Rollback(); err2 != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				err2,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	// No need to commit for read-only, but we do want to free up resources
	if !t.readWrite {
		return t.rollback()
	}
	if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
		_ = t.rollback()
		return fmt.Errorf("failed to update commit timestamp: %w", err)
	}
	// Commit the journal first so a failure there leaves the state untouched
	if t.journalTxn != nil {
		if err := t.journalTxn.Commit(); err != nil {
			t.stateTxn.Rollback()
			t.finished = true
			return fmt.Errorf("journal commit failed: %w", err)
		}
	}
	if err := t.stateTxn.Commit().Error; err != nil {
		t.db.logger.Error(
			"partial commit: journal committed, state failed",
			"error", err,
		)
		t.finished = true
		return fmt.Errorf(
			"partial commit: state commit failed after journal commit: %w",
			err,
		)
	}
	t.finished = true
	return nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	var errs []error
	if t.journalTxn != nil {
		t.journalTxn.Discard()
	}
	if err := t.stateTxn.Rollback().Error; err != nil {
		errs = append(errs, fmt.Errorf("state rollback: %w", err))
	}
	t.finished = true
	return errors.Join(errs...)
}

// Release releases transaction resources. For read-write transactions this
// is equivalent to Rollback. Errors are logged but not returned, making this
// safe for deferred calls.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
