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
	"fmt"
)

type CommitTimestampError struct {
	StateTimestamp   int64
	JournalTimestamp int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (state) != %d (journal)",
		e.StateTimestamp,
		e.JournalTimestamp,
	)
}

func (d *Database) checkCommitTimestamp() error {
	if d.journal == nil {
		return nil
	}
	stateTimestamp, err := d.state.GetCommitTimestamp(nil)
	if err != nil {
		return fmt.Errorf("failed to get state commit timestamp: %w", err)
	}
	// No timestamp in the database
	if stateTimestamp <= 0 {
		return nil
	}
	journalTimestamp, err := d.journal.GetCommitTimestamp(nil)
	if err != nil {
		return fmt.Errorf("failed to get journal commit timestamp: %w", err)
	}
	if journalTimestamp == 0 {
		d.logger.Warn(
			"journal is empty, history of earlier operations is not available",
		)
		return nil
	}
	if journalTimestamp != stateTimestamp {
		return CommitTimestampError{
			StateTimestamp:   stateTimestamp,
			JournalTimestamp: journalTimestamp,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.state.SetCommitTimestamp(timestamp, txn.State()); err != nil {
		return err
	}
	if txn.Journal() != nil {
		if err := d.journal.SetCommitTimestamp(timestamp, txn.Journal()); err != nil {
			return err
		}
	}
	return nil
}

// RecoverCommitTimestampConflict brings the journal back in step with the
// state store after an interrupted commit. The journal is committed first,
// so it may hold records of an operation whose state change was lost.
func (d *Database) RecoverCommitTimestampConflict() error {
	if d.journal == nil {
		return nil
	}
	stateTimestamp, err := d.state.GetCommitTimestamp(nil)
	if err != nil {
		return fmt.Errorf("failed to get state commit timestamp: %w", err)
	}
	txn := d.journal.NewTransaction(true)
	defer txn.Discard()
	if err := d.journal.SetCommitTimestamp(stateTimestamp, txn); err != nil {
		return err
	}
	return txn.Commit()
}
