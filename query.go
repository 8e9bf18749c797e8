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

package escrow

import (
	"context"

	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// DepositEntryInfo summarizes one used deposit entry of a voter
type DepositEntryInfo struct {
	Index         int                 `json:"index"`
	Mint          registrar.Identity  `json:"mint"`
	AllowClawback bool                `json:"allowClawback"`
	Status        voter.DepositStatus `json:"status"`
	Locking       voter.LockingInfo   `json:"locking"`
	VotingPower   uint64              `json:"votingPower"`
}

// VoterInfo summarizes a voter at a point in time
type VoterInfo struct {
	Authority registrar.Identity `json:"authority"`
	Timestamp int64              `json:"timestamp"`
	Weight    uint64             `json:"weight"`
	Deposits  []DepositEntryInfo `json:"deposits"`
}

func (e *Engine) readVoter(
	ctx context.Context,
	op string,
	key registrar.Key,
	authority registrar.Identity,
	fn func(reg *registrar.Registrar, v *voter.Voter, now int64) error,
) error {
	return e.read(
		ctx,
		op,
		key,
		func(ctx context.Context, txn *database.Txn) error {
			reg, v, err := e.loadVoter(txn, key, authority)
			if err != nil {
				return err
			}
			return fn(reg, v, e.now(reg))
		},
	)
}

// VoterWeight returns the current vote weight of a voter
func (e *Engine) VoterWeight(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
) (uint64, error) {
	var ret uint64
	err := e.readVoter(
		ctx,
		"voter_weight",
		key,
		authority,
		func(reg *registrar.Registrar, v *voter.Voter, now int64) error {
			var err error
			ret, err = v.Weight(reg, now)
			return err
		},
	)
	return ret, err
}

// DepositStatus returns the current status of a used deposit entry
func (e *Engine) DepositStatus(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
) (voter.DepositStatus, error) {
	var ret voter.DepositStatus
	err := e.readVoter(
		ctx,
		"deposit_status",
		key,
		authority,
		func(reg *registrar.Registrar, v *voter.Voter, now int64) error {
			d, err := v.ActiveEntry(idx)
			if err != nil {
				return err
			}
			ret, err = d.Status(now)
			return err
		},
	)
	return ret, err
}

// VoterInfo returns the weight of a voter along with the status, locking
// details and voting power of each used deposit entry
func (e *Engine) VoterInfo(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
) (*VoterInfo, error) {
	var ret *VoterInfo
	err := e.readVoter(
		ctx,
		"voter_info",
		key,
		authority,
		func(reg *registrar.Registrar, v *voter.Voter, now int64) error {
			weight, err := v.Weight(reg, now)
			if err != nil {
				return err
			}
			info := &VoterInfo{
				Authority: v.Authority,
				Timestamp: now,
				Weight:    weight,
				Deposits:  []DepositEntryInfo{},
			}
			for i := range v.Deposits {
				d := &v.Deposits[i]
				if !d.IsUsed {
					continue
				}
				entryInfo, err := depositEntryInfo(reg, i, d, now)
				if err != nil {
					return err
				}
				info.Deposits = append(info.Deposits, entryInfo)
			}
			ret = info
			return nil
		},
	)
	return ret, err
}

func depositEntryInfo(
	reg *registrar.Registrar,
	idx int,
	d *voter.DepositEntry,
	now int64,
) (DepositEntryInfo, error) {
	cfg, err := reg.VotingMint(int(d.VotingMintConfigIdx))
	if err != nil {
		return DepositEntryInfo{}, err
	}
	status, err := d.Status(now)
	if err != nil {
		return DepositEntryInfo{}, err
	}
	locking, err := d.LockingInfo(now)
	if err != nil {
		return DepositEntryInfo{}, err
	}
	power, err := d.VotingPower(cfg, reg.VoteWeightDecimals, now)
	if err != nil {
		return DepositEntryInfo{}, err
	}
	return DepositEntryInfo{
		Index:         idx,
		Mint:          cfg.Mint,
		AllowClawback: d.AllowClawback,
		Status:        status,
		Locking:       locking,
		VotingPower:   power,
	}, nil
}

// History returns journaled operations of a registrar, newest first. A zero
// voter returns operations of all voters.
func (e *Engine) History(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	limit int,
) ([]database.JournalEntry, error) {
	var ret []database.JournalEntry
	err := e.read(
		ctx,
		"history",
		key,
		func(ctx context.Context, txn *database.Txn) error {
			var err error
			ret, err = e.db.History(key, authority, limit, txn)
			return err
		},
	)
	return ret, err
}
