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

package voter

import (
	"fmt"

	"github.com/blinklabs-io/escrow/registrar"
	"github.com/holiman/uint256"
)

var scaledFactorBase = uint256.NewInt(registrar.ScaledFactorBase)

// VotingPower returns the vote weight of the entry in the registrar's vote
// weight decimals. Every deposited token earns the baseline factor and every
// locked token earns up to the max extra factor, in proportion to how much of
// the saturation window its lockup still covers
func (d *DepositEntry) VotingPower(
	cfg *registrar.VotingMintConfig,
	voteWeightDecimals uint8,
	now int64,
) (uint64, error) {
	power, err := d.votingPower(cfg, voteWeightDecimals, now)
	if err != nil {
		return 0, err
	}
	if !power.IsUint64() {
		return 0, ErrVoteWeightOverflow
	}
	return power.Uint64(), nil
}

func (d *DepositEntry) votingPower(
	cfg *registrar.VotingMintConfig,
	voteWeightDecimals uint8,
	now int64,
) (*uint256.Int, error) {
	shift, err := cfg.DigitShift(voteWeightDecimals)
	if err != nil {
		return nil, err
	}
	scale, overflow := pow10(shift)
	if overflow {
		return nil, fmt.Errorf("%w: digit shift %d", ErrVoteWeightOverflow, shift)
	}
	locked, err := d.AmountLocked(now)
	if err != nil {
		return nil, err
	}

	deposited := uint256.NewInt(d.AmountDepositedNative)
	if _, overflow := deposited.MulOverflow(deposited, scale); overflow {
		return nil, ErrVoteWeightOverflow
	}
	baseline, overflow := new(uint256.Int).MulOverflow(
		deposited,
		uint256.NewInt(cfg.BaselineVoteWeightScaledFactor),
	)
	if overflow {
		return nil, ErrVoteWeightOverflow
	}
	baseline.Div(baseline, scaledFactorBase)

	if locked == 0 || cfg.LockupSaturationSecs == 0 {
		return baseline, nil
	}
	lockedScaled := uint256.NewInt(locked)
	if _, overflow := lockedScaled.MulOverflow(lockedScaled, scale); overflow {
		return nil, ErrVoteWeightOverflow
	}
	maxExtra, overflow := new(uint256.Int).MulOverflow(
		lockedScaled,
		uint256.NewInt(cfg.MaxExtraLockupVoteWeightScaledFactor),
	)
	if overflow {
		return nil, ErrVoteWeightOverflow
	}
	maxExtra.Div(maxExtra, scaledFactorBase)
	secsLeft := min(d.Lockup.SecondsLeft(now), cfg.LockupSaturationSecs)
	lockedWeight, overflow := new(uint256.Int).MulOverflow(
		maxExtra,
		uint256.NewInt(secsLeft),
	)
	if overflow {
		return nil, ErrVoteWeightOverflow
	}
	lockedWeight.Div(lockedWeight, uint256.NewInt(cfg.LockupSaturationSecs))

	if _, overflow := baseline.AddOverflow(baseline, lockedWeight); overflow {
		return nil, ErrVoteWeightOverflow
	}
	return baseline, nil
}

func pow10(exp uint8) (*uint256.Int, bool) {
	ret := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for range exp {
		if _, overflow := ret.MulOverflow(ret, ten); overflow {
			return nil, true
		}
	}
	return ret, false
}
