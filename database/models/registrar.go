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

package models

import (
	"fmt"

	"github.com/blinklabs-io/escrow/database/types"
	"github.com/blinklabs-io/escrow/registrar"
)

type Registrar struct {
	Realm               []byte `gorm:"uniqueIndex:idx_registrar_key"`
	GoverningMint       []byte `gorm:"uniqueIndex:idx_registrar_key"`
	GovernanceProgramID []byte
	RealmAuthority      []byte
	ClawbackAuthority   []byte
	VotingMints         []VotingMint `gorm:"foreignKey:RegistrarID;constraint:OnDelete:CASCADE"`
	TimeOffset          int64
	ID                  uint `gorm:"primarykey"`
	VoteWeightDecimals  uint8
}

func (Registrar) TableName() string {
	return "registrar"
}

// VotingMint holds one configured slot of a registrar's mint catalog. Slots
// that were never configured have no row.
type VotingMint struct {
	Mint                                 []byte
	GrantAuthority                       []byte
	RegistrarID                          uint `gorm:"uniqueIndex:idx_voting_mint_slot"`
	ID                                   uint `gorm:"primarykey"`
	BaselineVoteWeightScaledFactor       types.Uint64
	MaxExtraLockupVoteWeightScaledFactor types.Uint64
	LockupSaturationSecs                 types.Uint64
	UsageCount                           types.Uint64
	Slot                                 uint8 `gorm:"uniqueIndex:idx_voting_mint_slot"`
	Decimals                             uint8
}

func (VotingMint) TableName() string {
	return "voting_mint"
}

// NewRegistrar builds the row for a registrar. The row ID is left for the
// caller to fill in when updating an existing record.
func NewRegistrar(reg *registrar.Registrar) Registrar {
	ret := Registrar{
		Realm:               reg.Realm.Bytes(),
		GoverningMint:       reg.GoverningMint.Bytes(),
		GovernanceProgramID: reg.GovernanceProgramID.Bytes(),
		RealmAuthority:      reg.RealmAuthority.Bytes(),
		ClawbackAuthority:   reg.ClawbackAuthority.Bytes(),
		VoteWeightDecimals:  reg.VoteWeightDecimals,
		TimeOffset:          reg.TimeOffset,
	}
	for i, cfg := range reg.VotingMints {
		if !cfg.Configured() {
			continue
		}
		ret.VotingMints = append(
			ret.VotingMints,
			VotingMint{
				Slot:                                 uint8(i), //nolint:gosec
				Mint:                                 cfg.Mint.Bytes(),
				GrantAuthority:                       cfg.GrantAuthority.Bytes(),
				BaselineVoteWeightScaledFactor:       types.Uint64(cfg.BaselineVoteWeightScaledFactor),
				MaxExtraLockupVoteWeightScaledFactor: types.Uint64(cfg.MaxExtraLockupVoteWeightScaledFactor),
				LockupSaturationSecs:                 types.Uint64(cfg.LockupSaturationSecs),
				Decimals:                             cfg.Decimals,
				UsageCount:                           types.Uint64(cfg.UsageCount),
			},
		)
	}
	return ret
}

// Registrar converts the row back into a registrar
func (r *Registrar) Registrar() (*registrar.Registrar, error) {
	var err error
	ret := &registrar.Registrar{
		VoteWeightDecimals: r.VoteWeightDecimals,
		TimeOffset:         r.TimeOffset,
	}
	if ret.Realm, err = identity("realm", r.Realm); err != nil {
		return nil, err
	}
	if ret.GoverningMint, err = identity("governing mint", r.GoverningMint); err != nil {
		return nil, err
	}
	if ret.GovernanceProgramID, err = identity("governance program", r.GovernanceProgramID); err != nil {
		return nil, err
	}
	if ret.RealmAuthority, err = identity("realm authority", r.RealmAuthority); err != nil {
		return nil, err
	}
	if ret.ClawbackAuthority, err = identity("clawback authority", r.ClawbackAuthority); err != nil {
		return nil, err
	}
	for _, vm := range r.VotingMints {
		if int(vm.Slot) >= registrar.MaxVotingMints {
			return nil, fmt.Errorf(
				"%w: stored slot %d",
				registrar.ErrVotingMintIndexOutOfRange,
				vm.Slot,
			)
		}
		cfg := &ret.VotingMints[vm.Slot]
		if cfg.Mint, err = identity("mint", vm.Mint); err != nil {
			return nil, err
		}
		if cfg.GrantAuthority, err = identity("grant authority", vm.GrantAuthority); err != nil {
			return nil, err
		}
		cfg.BaselineVoteWeightScaledFactor = uint64(vm.BaselineVoteWeightScaledFactor)
		cfg.MaxExtraLockupVoteWeightScaledFactor = uint64(vm.MaxExtraLockupVoteWeightScaledFactor)
		cfg.LockupSaturationSecs = uint64(vm.LockupSaturationSecs)
		cfg.Decimals = vm.Decimals
		cfg.UsageCount = uint64(vm.UsageCount)
	}
	return ret, nil
}
