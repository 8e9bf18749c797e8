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

package voter_test

import (
	"testing"

	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVotingPower(t *testing.T) {
	cfg := testMintConfig(10)
	testDefs := []struct {
		name       string
		kind       lockup.Kind
		periods    uint32
		amount     uint64
		modify     func(*registrar.VotingMintConfig)
		accelerate bool
		now        int64
		expected   uint64
	}{
		{
			name:     "unlocked only earns baseline",
			kind:     lockup.KindNone,
			amount:   1000,
			now:      t0,
			expected: 1000,
		},
		{
			name:     "saturated cliff",
			kind:     lockup.KindCliff,
			periods:  20,
			amount:   1000,
			now:      t0,
			expected: 2000,
		},
		{
			name:     "cliff inside the saturation window",
			kind:     lockup.KindCliff,
			periods:  10,
			amount:   1000,
			now:      at(5 * day),
			expected: 1500,
		},
		{
			name:     "expired cliff",
			kind:     lockup.KindCliff,
			periods:  10,
			amount:   1000,
			now:      at(10 * day),
			expected: 1000,
		},
		{
			name:     "daily vesting",
			kind:     lockup.KindDaily,
			periods:  3,
			amount:   90,
			modify:   func(c *registrar.VotingMintConfig) { c.LockupSaturationSecs = 3 * day },
			now:      at(day + hour),
			expected: 90 + 39,
		},
		{
			name:       "accelerated entry holds the baseline",
			kind:       lockup.KindCliff,
			periods:    10,
			amount:     1000,
			accelerate: true,
			now:        at(300 * day),
			expected:   1000,
		},
		{
			name:       "accelerated entry right away",
			kind:       lockup.KindDaily,
			periods:    5,
			amount:     1000,
			accelerate: true,
			now:        t0,
			expected:   1000,
		},
		{
			name:    "fractional factors",
			kind:    lockup.KindCliff,
			periods: 10,
			amount:  1000,
			modify: func(c *registrar.VotingMintConfig) {
				c.BaselineVoteWeightScaledFactor = registrar.ScaledFactorBase / 10
				c.MaxExtraLockupVoteWeightScaledFactor = 3 * registrar.ScaledFactorBase
			},
			now:      t0,
			expected: 100 + 3000,
		},
		{
			name:    "decimal shift",
			kind:    lockup.KindCliff,
			periods: 10,
			amount:  1000,
			modify: func(c *registrar.VotingMintConfig) {
				c.Decimals = 2
			},
			now:      t0,
			expected: 2000 * 10_000,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			tmpCfg := cfg
			if testDef.modify != nil {
				testDef.modify(&tmpCfg)
			}
			var d voter.DepositEntry
			require.NoError(t, d.Create(testDef.kind, testDef.periods, false, 0, t0))
			require.NoError(t, d.Deposit(testDef.amount, t0))
			if testDef.accelerate {
				require.NoError(t, d.Accelerate(t0))
				require.Equal(t, lockup.KindConstant, d.Lockup.Kind)
			}
			power, err := d.VotingPower(&tmpCfg, 6, testDef.now)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, power)
		})
	}
}

func TestVotingPowerDecimalsMismatch(t *testing.T) {
	cfg := testMintConfig(10)
	cfg.Decimals = 9
	var d voter.DepositEntry
	require.NoError(t, d.Create(lockup.KindNone, 0, false, 0, t0))
	require.NoError(t, d.Deposit(1, t0))
	_, err := d.VotingPower(&cfg, 6, t0)
	require.ErrorIs(t, err, registrar.ErrDecimalsMismatch)
}

func TestVoterWeight(t *testing.T) {
	mintB := testMintConfig(11)
	mintB.Decimals = 3
	mintB.GrantAuthority = registrar.Identity{}
	reg := newTestRegistrar(t, testMintConfig(10), mintB)
	v := newTestVoter(t)

	weight, err := v.Weight(reg, t0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), weight)

	require.NoError(t, v.CreateDepositEntry(reg, 0, lockup.KindCliff, 10, false, 0, t0))
	require.NoError(t, v.Deposit(0, 1000, t0))
	require.NoError(t, v.CreateDepositEntry(reg, 5, lockup.KindNone, 0, false, 1, t0))
	require.NoError(t, v.Deposit(5, 7, t0))

	weight, err = v.Weight(reg, t0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000+7000), weight)

	weight, err = v.Weight(reg, at(5*day))
	require.NoError(t, err)
	assert.Equal(t, uint64(1500+7000), weight)

	// Weight is derived from the entries on every call
	require.NoError(t, v.AccelerateVesting(reg, realmAuthority, 0, at(5*day)))
	weight, err = v.Weight(reg, at(5*day))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000+7000), weight)

	// A config edited behind the registrar's back is still caught
	reg.VotingMints[1].Decimals = 8
	_, err = v.Weight(reg, t0)
	require.ErrorIs(t, err, registrar.ErrDecimalsMismatch)
}
