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
	"math"

	"github.com/blinklabs-io/escrow/lockup"
)

// DepositEntry is one lockup slot of a voter. Every mutating method validates
// before it writes, so a failed call leaves the entry unchanged
type DepositEntry struct {
	Lockup lockup.Lockup `json:"lockup" yaml:"lockup"`
	// AmountDepositedNative is the outstanding balance: everything deposited
	// minus everything withdrawn
	AmountDepositedNative uint64 `json:"amountDepositedNative"       yaml:"amountDepositedNative"`
	// AmountInitiallyLockedNative is the principal the current schedule
	// vests
	AmountInitiallyLockedNative uint64 `json:"amountInitiallyLockedNative" yaml:"amountInitiallyLockedNative"`
	IsUsed                      bool   `json:"isUsed"                      yaml:"isUsed"`
	AllowClawback               bool   `json:"allowClawback"               yaml:"allowClawback"`
	VotingMintConfigIdx         uint8  `json:"votingMintConfigIdx"         yaml:"votingMintConfigIdx"`
}

// Create activates an unused entry with an empty balance and a fresh lockup
func (d *DepositEntry) Create(
	kind lockup.Kind,
	periods uint32,
	allowClawback bool,
	mintIdx uint8,
	now int64,
) error {
	if d.IsUsed {
		return ErrDepositEntryInUse
	}
	l, err := lockup.New(kind, now, periods)
	if err != nil {
		return err
	}
	*d = DepositEntry{
		Lockup:              l,
		IsUsed:              true,
		AllowClawback:       allowClawback,
		VotingMintConfigIdx: mintIdx,
	}
	return nil
}

func (d *DepositEntry) checkActive() error {
	if !d.IsUsed {
		return ErrDepositEntryNotActive
	}
	return nil
}

// Vested returns the part of the initially locked principal released so far
func (d *DepositEntry) Vested(now int64) (uint64, error) {
	return d.Lockup.Vested(now, d.AmountInitiallyLockedNative)
}

// AmountLocked returns the part of the balance that may not be withdrawn yet
func (d *DepositEntry) AmountLocked(now int64) (uint64, error) {
	locked, err := d.Lockup.Locked(now, d.AmountInitiallyLockedNative)
	if err != nil {
		return 0, err
	}
	return min(locked, d.AmountDepositedNative), nil
}

// AmountUnlocked returns the part of the balance that may be withdrawn
func (d *DepositEntry) AmountUnlocked(now int64) (uint64, error) {
	return d.Lockup.AmountUnlocked(
		now,
		d.AmountInitiallyLockedNative,
		d.AmountDepositedNative,
	)
}

// resolveVesting returns the lockup and initially locked amount with all
// vesting up to now folded in. The still-locked amount is unchanged by this
func (d *DepositEntry) resolveVesting(now int64) (lockup.Lockup, uint64, error) {
	vested, err := d.Vested(now)
	if err != nil {
		return lockup.Lockup{}, 0, err
	}
	l := d.Lockup
	l.RemovePastPeriods(now)
	return l, d.AmountInitiallyLockedNative - vested, nil
}

// Deposit adds tokens to the entry. Tokens that already vested stay vested
// and the new tokens are locked under the remaining schedule. Tokens added
// after the lockup expired are immediately unlocked
func (d *DepositEntry) Deposit(amount uint64, now int64) error {
	if err := d.checkActive(); err != nil {
		return err
	}
	if amount > math.MaxUint64-d.AmountDepositedNative {
		return fmt.Errorf(
			"%w: deposited %d plus %d",
			ErrAmountOverflow,
			d.AmountDepositedNative,
			amount,
		)
	}
	l, stillLocked, err := d.resolveVesting(now)
	if err != nil {
		return err
	}
	// stillLocked never exceeds the deposited balance
	d.Lockup = l
	d.AmountInitiallyLockedNative = stillLocked + amount
	d.AmountDepositedNative += amount
	return nil
}

// Withdraw removes unlocked tokens from the entry
func (d *DepositEntry) Withdraw(amount uint64, now int64) error {
	if err := d.checkActive(); err != nil {
		return err
	}
	unlocked, err := d.AmountUnlocked(now)
	if err != nil {
		return err
	}
	if amount > unlocked {
		return NewInsufficientUnlockedFundsError(amount, unlocked)
	}
	d.AmountDepositedNative -= amount
	return nil
}

// ResetLockup replaces the lockup with a new one starting now. The new lockup
// must last at least as long as what is left of the current one and its kind
// may not be less strict. Whatever is locked now is locked again under the new
// schedule and whatever already vested stays vested
func (d *DepositEntry) ResetLockup(
	kind lockup.Kind,
	periods uint32,
	now int64,
) error {
	if err := d.checkActive(); err != nil {
		return err
	}
	candidate, err := lockup.New(kind, now, periods)
	if err != nil {
		return err
	}
	if kind.Strictness() < d.Lockup.Kind.Strictness() {
		return fmt.Errorf(
			"%w: cannot reset %s lockup to %s",
			lockup.ErrInvalidLockupKind,
			d.Lockup.Kind,
			kind,
		)
	}
	secsLeft := d.Lockup.SecondsLeft(now)
	if candidate.Duration() < secsLeft {
		return fmt.Errorf(
			"%w: new lockup of %d seconds is shorter than the %d seconds left",
			lockup.ErrInvalidLockupPeriod,
			candidate.Duration(),
			secsLeft,
		)
	}
	locked, err := d.AmountLocked(now)
	if err != nil {
		return err
	}
	d.Lockup = candidate
	d.AmountInitiallyLockedNative = locked
	return nil
}

// Accelerate vests the whole entry immediately. The lockup becomes a
// released Constant lockup
func (d *DepositEntry) Accelerate(now int64) error {
	if err := d.checkActive(); err != nil {
		return err
	}
	d.Lockup = lockup.Lockup{
		Kind:    lockup.KindConstant,
		StartTs: now,
		EndTs:   now,
	}
	return nil
}

// Unlock releases the whole entry immediately. It has the same effect as
// Accelerate but is authorized differently
func (d *DepositEntry) Unlock(now int64) error {
	return d.Accelerate(now)
}

// Clawback removes the locked tokens from the entry and returns their amount.
// The unlocked balance stays with the voter
func (d *DepositEntry) Clawback(now int64) (uint64, error) {
	if err := d.checkActive(); err != nil {
		return 0, err
	}
	if !d.AllowClawback {
		return 0, ErrClawbackNotAllowed
	}
	locked, err := d.AmountLocked(now)
	if err != nil {
		return 0, err
	}
	d.AmountDepositedNative -= locked
	d.AmountInitiallyLockedNative = 0
	d.Lockup = lockup.Lockup{
		Kind:    lockup.KindNone,
		StartTs: now,
		EndTs:   now,
	}
	return locked, nil
}

// Close frees an empty entry for reuse
func (d *DepositEntry) Close() error {
	if err := d.checkActive(); err != nil {
		return err
	}
	if d.AmountDepositedNative != 0 {
		return fmt.Errorf(
			"%w: %d remaining",
			ErrVotingTokenNonzero,
			d.AmountDepositedNative,
		)
	}
	*d = DepositEntry{}
	return nil
}
