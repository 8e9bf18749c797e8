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
	"bytes"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/escrow/database/badger"
	"github.com/blinklabs-io/escrow/registrar"
)

const journalKeyPrefix = "journal:"

// JournalRecord describes one applied operation. Fields that do not apply to
// an operation are left at their zero value, with Index and MintIndex set to
// -1.
type JournalRecord struct {
	cbor.StructAsArray
	Operation     string
	Timestamp     int64
	Voter         []byte
	Signer        []byte
	Index         int64
	MintIndex     int64
	Kind          uint8
	Periods       uint32
	Amount        uint64
	AllowClawback bool
}

// JournalEntry is a stored JournalRecord with its position in the journal
type JournalEntry struct {
	JournalRecord
	Sequence uint64
}

func journalPrefix(key registrar.Key) []byte {
	ret := make([]byte, 0, len(journalKeyPrefix)+2*registrar.IdentitySize)
	ret = append(ret, journalKeyPrefix...)
	ret = append(ret, key.Realm.Bytes()...)
	return append(ret, key.GoverningMint.Bytes()...)
}

// JournalEnabled returns true if operations are being journaled
func (d *Database) JournalEnabled() bool {
	return d.journal != nil
}

// AppendJournal records an operation against a registrar. It does nothing
// when the journal is disabled.
func (d *Database) AppendJournal(
	key registrar.Key,
	rec *JournalRecord,
	txn *Txn,
) error {
	if d.journal == nil {
		return nil
	}
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.AppendJournal(key, rec, txn)
		})
	}
	recCbor, err := cbor.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if _, err := d.journal.Append(journalPrefix(key), recCbor, txn.Journal()); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

// History returns journaled operations of a registrar, newest first. A
// non-zero voter limits the result to that voter's operations and a limit
// of zero or less returns everything.
func (d *Database) History(
	key registrar.Key,
	voter registrar.Identity,
	limit int,
	txn *Txn,
) ([]JournalEntry, error) {
	if d.journal == nil {
		return nil, ErrJournalDisabled
	}
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	var ret []JournalEntry
	err := d.journal.Iterate(
		journalPrefix(key),
		true,
		func(seq uint64, val []byte) error {
			entry := JournalEntry{Sequence: seq}
			if _, err := cbor.Decode(val, &entry.JournalRecord); err != nil {
				return fmt.Errorf("decode journal record %d: %w", seq, err)
			}
			if !voter.IsZero() && !bytes.Equal(entry.Voter, voter.Bytes()) {
				return nil
			}
			ret = append(ret, entry)
			if limit > 0 && len(ret) >= limit {
				return badger.ErrStopIteration
			}
			return nil
		},
		txn.Journal(),
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
