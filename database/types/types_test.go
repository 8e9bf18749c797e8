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

package types_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/database/types"
)

func TestUint64(t *testing.T) {
	testDefs := []struct {
		value  uint64
		stored string
	}{
		{value: 0, stored: "0"},
		{value: 1_000_000, stored: "1000000"},
		{value: math.MaxUint64, stored: "18446744073709551615"},
	}
	for _, testDef := range testDefs {
		val, err := types.Uint64(testDef.value).Value()
		require.NoError(t, err)
		assert.Equal(t, testDef.stored, val)
		var tmp types.Uint64
		require.NoError(t, tmp.Scan(testDef.stored))
		assert.Equal(t, testDef.value, uint64(tmp))
		require.NoError(t, tmp.Scan([]byte(testDef.stored)))
		assert.Equal(t, testDef.value, uint64(tmp))
	}
}

func TestUint64ScanErrors(t *testing.T) {
	var tmp types.Uint64
	require.Error(t, tmp.Scan(int64(5)))
	require.Error(t, tmp.Scan("-1"))
	require.Error(t, tmp.Scan("abc"))
}
