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

	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/holiman/uint256"
)

// MaxDepositEntries is the fixed number of deposit slots of a voter
const MaxDepositEntries = 32

type Voter struct {
	Authority registrar.Identity              `json:"authority" yaml:"authority"`
	Registrar registrar.Key                   `json:"registrar" yaml:"registrar"`
	Deposits  [MaxDepositEntries]DepositEntry `json:"deposits"  yaml:"deposits"`
}

func New(authority registrar.Identity, reg registrar.Key) (*Voter, error) {
	if authority.IsZero() {
		return nil, fmt.Errorf("%w: authority must be set", ErrInvalidVoter)
	}
	return &Voter{
		Authority: authority,
		Registrar: reg,
	}, nil
}

// Entry returns the entry at the given index whether or not it is in use
func (v *Voter) Entry(idx int) (*DepositEntry, error) {
	if idx < 0 || idx >= MaxDepositEntries {
		return nil, fmt.Errorf(
			"%w: %d not in [0, %d)",
			ErrDepositEntryIndexOutOfRange,
			idx,
			MaxDepositEntries,
		)
	}
	return &v.Deposits[idx], nil
}

// ActiveEntry returns the entry at the given index if it is in use
func (v *Voter) ActiveEntry(idx int) (*DepositEntry, error) {
	d, err := v.Entry(idx)
	if err != nil {
		return nil, err
	}
	if !d.IsUsed {
		return nil, fmt.Errorf("%w: index %d", ErrDepositEntryNotActive, idx)
	}
	return d, nil
}

func (v *Voter) checkRegistrar(reg *registrar.Registrar) error {
	if reg.Key != v.Registrar {
		return fmt.Errorf(
			"%w: voter registrar %s, got %s",
			ErrRegistrarMismatch,
			v.Registrar,
			reg.Key,
		)
	}
	return nil
}

// CreateDepositEntry activates the entry at idx against a configured mint
func (v *Voter) CreateDepositEntry(
	reg *registrar.Registrar,
	idx int,
	kind lockup.Kind,
	periods uint32,
	allowClawback bool,
	mintIdx int,
	now int64,
) error {
	if err := v.checkRegistrar(reg); err != nil {
		return err
	}
	d, err := v.Entry(idx)
	if err != nil {
		return err
	}
	if _, err := reg.VotingMint(mintIdx); err != nil {
		return err
	}
	// VotingMint bounds mintIdx by MaxVotingMints
	if err := d.Create(kind, periods, allowClawback, uint8(mintIdx), now); err != nil { //nolint:gosec
		return err
	}
	return reg.MarkUsed(mintIdx)
}

func (v *Voter) Deposit(idx int, amount uint64, now int64) error {
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	return d.Deposit(amount, now)
}

func (v *Voter) Withdraw(idx int, amount uint64, now int64) error {
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	return d.Withdraw(amount, now)
}

func (v *Voter) ResetLockup(
	idx int,
	kind lockup.Kind,
	periods uint32,
	now int64,
) error {
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	return d.ResetLockup(kind, periods, now)
}

// AccelerateVesting fully vests an entry on behalf of the realm or grant
// authority
func (v *Voter) AccelerateVesting(
	reg *registrar.Registrar,
	signer registrar.Identity,
	idx int,
	now int64,
) error {
	if err := v.checkRegistrar(reg); err != nil {
		return err
	}
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	if err := reg.AuthorizeAcceleration(signer, int(d.VotingMintConfigIdx)); err != nil {
		return err
	}
	return d.Accelerate(now)
}

// UnlockDeposit fully releases an entry on behalf of the realm or grant
// authority
func (v *Voter) UnlockDeposit(
	reg *registrar.Registrar,
	signer registrar.Identity,
	idx int,
	now int64,
) error {
	if err := v.checkRegistrar(reg); err != nil {
		return err
	}
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	if err := reg.AuthorizeUnlock(signer, int(d.VotingMintConfigIdx)); err != nil {
		return err
	}
	return d.Unlock(now)
}

// Grant creates a locked deposit in the first free entry on behalf of the
// realm or grant authority and returns the index of that entry
func (v *Voter) Grant(
	reg *registrar.Registrar,
	signer registrar.Identity,
	kind lockup.Kind,
	periods uint32,
	allowClawback bool,
	mintIdx int,
	amount uint64,
	now int64,
) (int, error) {
	if err := v.checkRegistrar(reg); err != nil {
		return -1, err
	}
	if err := reg.AuthorizeGrant(signer, mintIdx); err != nil {
		return -1, err
	}
	idx := v.FreeEntryIndex()
	if idx < 0 {
		return -1, ErrNoFreeDepositEntry
	}
	// Build the entry aside so a failure leaves the slot free
	var entry DepositEntry
	if err := entry.Create(kind, periods, allowClawback, uint8(mintIdx), now); err != nil { //nolint:gosec
		return -1, err
	}
	if err := entry.Deposit(amount, now); err != nil {
		return -1, err
	}
	if err := reg.MarkUsed(mintIdx); err != nil {
		return -1, err
	}
	v.Deposits[idx] = entry
	return idx, nil
}

// Clawback takes back the locked part of an entry on behalf of the clawback
// authority and returns the amount taken
func (v *Voter) Clawback(
	reg *registrar.Registrar,
	signer registrar.Identity,
	idx int,
	now int64,
) (uint64, error) {
	if err := v.checkRegistrar(reg); err != nil {
		return 0, err
	}
	if err := reg.AuthorizeClawback(signer); err != nil {
		return 0, err
	}
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return 0, err
	}
	return d.Clawback(now)
}

func (v *Voter) CloseDepositEntry(idx int) error {
	d, err := v.ActiveEntry(idx)
	if err != nil {
		return err
	}
	return d.Close()
}

// FreeEntryIndex returns the first unused entry index or -1
func (v *Voter) FreeEntryIndex() int {
	for i := range v.Deposits {
		if !v.Deposits[i].IsUsed {
			return i
		}
	}
	return -1
}

// Weight returns the vote weight of all used entries at the given time. It is
// computed from the entries on every call
func (v *Voter) Weight(reg *registrar.Registrar, now int64) (uint64, error) {
	if err := v.checkRegistrar(reg); err != nil {
		return 0, err
	}
	total := new(uint256.Int)
	for i := range v.Deposits {
		d := &v.Deposits[i]
		if !d.IsUsed {
			continue
		}
		cfg, err := reg.VotingMint(int(d.VotingMintConfigIdx))
		if err != nil {
			return 0, fmt.Errorf("deposit entry %d: %w", i, err)
		}
		power, err := d.votingPower(cfg, reg.VoteWeightDecimals, now)
		if err != nil {
			return 0, fmt.Errorf("deposit entry %d: %w", i, err)
		}
		if _, overflow := total.AddOverflow(total, power); overflow {
			return 0, ErrVoteWeightOverflow
		}
	}
	if !total.IsUint64() {
		return 0, ErrVoteWeightOverflow
	}
	return total.Uint64(), nil
}
