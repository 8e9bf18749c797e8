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
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

type Voter struct {
	Authority   []byte         `gorm:"uniqueIndex:idx_voter"`
	Deposits    []DepositEntry `gorm:"foreignKey:VoterID;constraint:OnDelete:CASCADE"`
	RegistrarID uint           `gorm:"uniqueIndex:idx_voter"`
	ID          uint           `gorm:"primarykey"`
}

func (Voter) TableName() string {
	return "voter"
}

// DepositEntry holds one used deposit slot of a voter. Unused slots have no
// row.
type DepositEntry struct {
	VoterID                     uint `gorm:"uniqueIndex:idx_deposit_entry_slot"`
	ID                          uint `gorm:"primarykey"`
	StartTs                     int64
	EndTs                       int64
	AmountDepositedNative       types.Uint64
	AmountInitiallyLockedNative types.Uint64
	Slot                        uint8 `gorm:"uniqueIndex:idx_deposit_entry_slot"`
	LockupKind                  uint8
	VotingMintConfigIdx         uint8
	AllowClawback               bool
}

func (DepositEntry) TableName() string {
	return "deposit_entry"
}

// NewVoter builds the row for a voter. RegistrarID links it to the stored
// registrar row.
func NewVoter(v *voter.Voter, registrarID uint) Voter {
	ret := Voter{
		Authority:   v.Authority.Bytes(),
		RegistrarID: registrarID,
	}
	for i, d := range v.Deposits {
		if !d.IsUsed {
			continue
		}
		ret.Deposits = append(
			ret.Deposits,
			DepositEntry{
				Slot:                        uint8(i), //nolint:gosec
				LockupKind:                  uint8(d.Lockup.Kind),
				StartTs:                     d.Lockup.StartTs,
				EndTs:                       d.Lockup.EndTs,
				AmountDepositedNative:       types.Uint64(d.AmountDepositedNative),
				AmountInitiallyLockedNative: types.Uint64(d.AmountInitiallyLockedNative),
				AllowClawback:               d.AllowClawback,
				VotingMintConfigIdx:         d.VotingMintConfigIdx,
			},
		)
	}
	return ret
}

// Voter converts the row back into a voter of the given registrar
func (v *Voter) Voter(key registrar.Key) (*voter.Voter, error) {
	authority, err := identity("voter authority", v.Authority)
	if err != nil {
		return nil, err
	}
	ret := &voter.Voter{
		Authority: authority,
		Registrar: key,
	}
	for _, d := range v.Deposits {
		if int(d.Slot) >= voter.MaxDepositEntries {
			return nil, fmt.Errorf(
				"%w: stored slot %d",
				voter.ErrDepositEntryIndexOutOfRange,
				d.Slot,
			)
		}
		l := lockup.Lockup{
			Kind:    lockup.Kind(d.LockupKind),
			StartTs: d.StartTs,
			EndTs:   d.EndTs,
		}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("deposit entry %d: %w", d.Slot, err)
		}
		ret.Deposits[d.Slot] = voter.DepositEntry{
			Lockup:                      l,
			AmountDepositedNative:       uint64(d.AmountDepositedNative),
			AmountInitiallyLockedNative: uint64(d.AmountInitiallyLockedNative),
			IsUsed:                      true,
			AllowClawback:               d.AllowClawback,
			VotingMintConfigIdx:         d.VotingMintConfigIdx,
		}
	}
	return ret, nil
}
