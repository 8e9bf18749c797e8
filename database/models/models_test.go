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

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/database/models"
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

func testIdentity(b byte) registrar.Identity {
	var ret registrar.Identity
	for i := range ret {
		ret[i] = b
	}
	return ret
}

var testKey = registrar.Key{
	Realm:         testIdentity(20),
	GoverningMint: testIdentity(21),
}

func TestRegistrarModel(t *testing.T) {
	reg, err := registrar.New(testKey, testIdentity(22), testIdentity(1), registrar.Identity{}, 6)
	require.NoError(t, err)
	require.NoError(t, reg.ConfigureVotingMint(testIdentity(1), 4, registrar.VotingMintConfig{
		Mint:                           testIdentity(10),
		BaselineVoteWeightScaledFactor: registrar.ScaledFactorBase,
		LockupSaturationSecs:           1,
		Decimals:                       2,
	}))
	row := models.NewRegistrar(reg)
	require.Len(t, row.VotingMints, 1)
	assert.Equal(t, uint8(4), row.VotingMints[0].Slot)
	got, err := row.Registrar()
	require.NoError(t, err)
	assert.Equal(t, reg, got)

	row.VotingMints[0].Slot = registrar.MaxVotingMints
	_, err = row.Registrar()
	require.ErrorIs(t, err, registrar.ErrVotingMintIndexOutOfRange)

	row.RealmAuthority = []byte{1, 2, 3}
	_, err = row.Registrar()
	require.ErrorIs(t, err, registrar.ErrInvalidIdentity)
}

func TestVoterModel(t *testing.T) {
	v, err := voter.New(testIdentity(4), testKey)
	require.NoError(t, err)
	v.Deposits[31] = voter.DepositEntry{
		Lockup: lockup.Lockup{
			Kind:    lockup.KindConstant,
			StartTs: 100,
			EndTs:   100 + 5*lockup.SecsPerDay,
		},
		AmountDepositedNative:       50,
		AmountInitiallyLockedNative: 50,
		IsUsed:                      true,
		AllowClawback:               true,
		VotingMintConfigIdx:         3,
	}
	row := models.NewVoter(v, 9)
	require.Len(t, row.Deposits, 1)
	assert.Equal(t, uint(9), row.RegistrarID)
	got, err := row.Voter(testKey)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	row.Deposits[0].EndTs = 0
	_, err = row.Voter(testKey)
	require.ErrorIs(t, err, lockup.ErrInvalidTimestamp)
}
