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

package registrar

import "fmt"

// ScaledFactorBase is the fixed point base of the vote weight factors. A
// factor of ScaledFactorBase means 1.0
const ScaledFactorBase uint64 = 1_000_000_000

// VotingMintConfig describes a token accepted for deposits and how deposits
// of it are weighted
type VotingMintConfig struct {
	Mint Identity `json:"mint" yaml:"mint"`
	// GrantAuthority may grant, accelerate and unlock deposits of this mint.
	// Zero means only the realm authority can
	GrantAuthority                       Identity `json:"grantAuthority"                       yaml:"grantAuthority"`
	BaselineVoteWeightScaledFactor       uint64   `json:"baselineVoteWeightScaledFactor"       yaml:"baselineVoteWeightScaledFactor"`
	MaxExtraLockupVoteWeightScaledFactor uint64   `json:"maxExtraLockupVoteWeightScaledFactor" yaml:"maxExtraLockupVoteWeightScaledFactor"`
	LockupSaturationSecs                 uint64   `json:"lockupSaturationSecs"                 yaml:"lockupSaturationSecs"`
	Decimals                             uint8    `json:"decimals"                             yaml:"decimals"`
	// UsageCount counts deposit entries ever created against this config
	UsageCount uint64 `json:"usageCount" yaml:"usageCount"`
}

// Configured returns true once a mint has been assigned to the config slot
func (c VotingMintConfig) Configured() bool {
	return !c.Mint.IsZero()
}

// InUse returns true if a deposit entry was ever created against the config
func (c VotingMintConfig) InUse() bool {
	return c.UsageCount > 0
}

// DigitShift returns the power of ten that scales native amounts of the mint
// to the registrar's vote weight decimals
func (c VotingMintConfig) DigitShift(voteWeightDecimals uint8) (uint8, error) {
	if c.Decimals > voteWeightDecimals {
		return 0, fmt.Errorf(
			"%w: mint %s has %d decimals, vote weight has %d",
			ErrDecimalsMismatch,
			c.Mint,
			c.Decimals,
			voteWeightDecimals,
		)
	}
	return voteWeightDecimals - c.Decimals, nil
}

func (c VotingMintConfig) validate(voteWeightDecimals uint8) error {
	if c.Mint.IsZero() {
		return fmt.Errorf("%w: mint must be set", ErrInvalidMintConfig)
	}
	if c.LockupSaturationSecs == 0 {
		return ErrLockupSaturationMustBePositive
	}
	if _, err := c.DigitShift(voteWeightDecimals); err != nil {
		return err
	}
	return nil
}
