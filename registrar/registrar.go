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

import (
	"fmt"
	"math"
)

// MaxVotingMints is the fixed capacity of a registrar's mint catalog
const MaxVotingMints = 5

// Key identifies a registrar. There is a single registrar per realm and
// governing mint
type Key struct {
	Realm         Identity `json:"realm"         yaml:"realm"`
	GoverningMint Identity `json:"governingMint" yaml:"governingMint"`
}

func (k Key) String() string {
	return k.Realm.String() + "/" + k.GoverningMint.String()
}

type Registrar struct {
	Key                 `yaml:",inline"`
	GovernanceProgramID Identity `json:"governanceProgramId" yaml:"governanceProgramId"`
	RealmAuthority      Identity `json:"realmAuthority"      yaml:"realmAuthority"`
	ClawbackAuthority   Identity `json:"clawbackAuthority"   yaml:"clawbackAuthority"`
	VoteWeightDecimals  uint8    `json:"voteWeightDecimals"  yaml:"voteWeightDecimals"`
	// TimeOffset is added to the host clock. It only exists for testing
	TimeOffset  int64                            `json:"timeOffset"  yaml:"timeOffset"`
	VotingMints [MaxVotingMints]VotingMintConfig `json:"votingMints" yaml:"votingMints"`
}

func New(
	key Key,
	governanceProgramID Identity,
	realmAuthority Identity,
	clawbackAuthority Identity,
	voteWeightDecimals uint8,
) (*Registrar, error) {
	if key.Realm.IsZero() || key.GoverningMint.IsZero() {
		return nil, fmt.Errorf(
			"%w: realm and governing mint must be set",
			ErrInvalidRegistrar,
		)
	}
	if realmAuthority.IsZero() {
		return nil, fmt.Errorf(
			"%w: realm authority must be set",
			ErrInvalidRegistrar,
		)
	}
	return &Registrar{
		Key:                 key,
		GovernanceProgramID: governanceProgramID,
		RealmAuthority:      realmAuthority,
		ClawbackAuthority:   clawbackAuthority,
		VoteWeightDecimals:  voteWeightDecimals,
	}, nil
}

// ConfigureVotingMint sets the config at the given catalog index. The usage
// counter of an existing config at that index is kept
func (r *Registrar) ConfigureVotingMint(
	signer Identity,
	idx int,
	cfg VotingMintConfig,
) error {
	if signer != r.RealmAuthority {
		return ErrBadRealmAuthority
	}
	if err := checkMintIndex(idx); err != nil {
		return err
	}
	if err := cfg.validate(r.VoteWeightDecimals); err != nil {
		return err
	}
	for i, existing := range r.VotingMints {
		if i != idx && existing.Mint == cfg.Mint {
			return fmt.Errorf(
				"%w: %s at index %d",
				ErrVotingMintAlreadyConfigured,
				cfg.Mint,
				i,
			)
		}
	}
	cfg.UsageCount = r.VotingMints[idx].UsageCount
	r.VotingMints[idx] = cfg
	return nil
}

// VotingMint returns the configured mint at the given catalog index
func (r *Registrar) VotingMint(idx int) (*VotingMintConfig, error) {
	if err := checkMintIndex(idx); err != nil {
		return nil, err
	}
	cfg := &r.VotingMints[idx]
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: index %d", ErrVotingMintNotConfigured, idx)
	}
	return cfg, nil
}

// MintIndex looks up the catalog index of a mint
func (r *Registrar) MintIndex(mint Identity) (int, error) {
	if !mint.IsZero() {
		for i, cfg := range r.VotingMints {
			if cfg.Mint == mint {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrVotingMintNotFound, mint)
}

// MarkUsed records that a deposit entry was created against the config
func (r *Registrar) MarkUsed(idx int) error {
	cfg, err := r.VotingMint(idx)
	if err != nil {
		return err
	}
	if cfg.UsageCount < math.MaxUint64 {
		cfg.UsageCount++
	}
	return nil
}

func (r *Registrar) SetTimeOffset(signer Identity, offset int64) error {
	if signer != r.RealmAuthority {
		return ErrBadRealmAuthority
	}
	r.TimeOffset = offset
	return nil
}

// Clock applies the registrar's time offset to a host timestamp
func (r *Registrar) Clock(now int64) int64 {
	return now + r.TimeOffset
}

func checkMintIndex(idx int) error {
	if idx < 0 || idx >= MaxVotingMints {
		return fmt.Errorf(
			"%w: %d not in [0, %d)",
			ErrVotingMintIndexOutOfRange,
			idx,
			MaxVotingMints,
		)
	}
	return nil
}
