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

package badger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/database/badger"
)

func TestJournalAppendIterate(t *testing.T) {
	db, err := badger.New()
	require.NoError(t, err)
	defer db.Close()

	prefixA := []byte("a:")
	prefixB := []byte("b:")
	txn := db.NewTransaction(true)
	var seqs []uint64
	for _, val := range []string{"one", "two", "three"} {
		seq, err := db.Append(prefixA, []byte(val), txn)
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}
	_, err = db.Append(prefixB, []byte("other"), txn)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())
	assert.Less(t, seqs[0], seqs[1])
	assert.Less(t, seqs[1], seqs[2])

	var got []string
	require.NoError(t, db.Iterate(prefixA, false, func(seq uint64, val []byte) error {
		got = append(got, string(val))
		return nil
	}, nil))
	assert.Equal(t, []string{"one", "two", "three"}, got)

	got = nil
	require.NoError(t, db.Iterate(prefixA, true, func(seq uint64, val []byte) error {
		got = append(got, string(val))
		if len(got) == 2 {
			return badger.ErrStopIteration
		}
		return nil
	}, nil))
	assert.Equal(t, []string{"three", "two"}, got)

	errTest := errors.New("test")
	err = db.Iterate(prefixB, false, func(seq uint64, val []byte) error {
		return errTest
	}, nil)
	require.ErrorIs(t, err, errTest)

	_, err = db.Append(prefixA, []byte("x"), nil)
	require.ErrorIs(t, err, badger.ErrNilTxn)
}

func TestJournalCommitTimestamp(t *testing.T) {
	db, err := badger.New()
	require.NoError(t, err)
	defer db.Close()
	ts, err := db.GetCommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	txn := db.NewTransaction(true)
	require.NoError(t, db.SetCommitTimestamp(1_700_000_000_123, txn))
	require.NoError(t, txn.Commit())
	ts, err = db.GetCommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_123), ts)
}
