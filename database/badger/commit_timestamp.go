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
	"errors"
	"math/big"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	commitTimestampKey = "state_commit_timestamp"
)

func (d *JournalStoreBadger) GetCommitTimestamp(txn *badger.Txn) (int64, error) {
	if txn == nil {
		txn = d.NewTransaction(false)
		defer txn.Discard()
	}
	item, err := txn.Get([]byte(commitTimestampKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(val).Int64(), nil
}

func (d *JournalStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn *badger.Txn,
) error {
	if txn == nil {
		return ErrNilTxn
	}
	tmpTimestamp := new(big.Int).SetInt64(timestamp)
	return txn.Set([]byte(commitTimestampKey), tmpTimestamp.Bytes())
}
