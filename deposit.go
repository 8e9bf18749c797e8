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
	"fmt"

	"github.com/blinklabs-io/escrow/event"
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
)

// DepositEntryParams describes a new deposit entry
type DepositEntryParams struct {
	Kind          lockup.Kind
	Periods       uint32
	AllowClawback bool
	Mint          registrar.Identity
}

// GrantParams describes a locked deposit made on behalf of a voter
type GrantParams struct {
	Kind          lockup.Kind
	Periods       uint32
	AllowClawback bool
	Mint          registrar.Identity
	Amount        uint64
}

// CreateDepositEntry activates a voter's deposit entry for one of the
// registrar's voting mints
func (e *Engine) CreateDepositEntry(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
	params DepositEntryParams,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:            "create_deposit_entry",
			eventType:     event.DepositEntryCreatedEventType,
			key:           key,
			authority:     authority,
			signer:        authority,
			saveRegistrar: true,
		},
		func(ctx context.Context, o *voterOp) error {
			mintIdx, err := o.reg.MintIndex(params.Mint)
			if err != nil {
				return err
			}
			err = o.voter.CreateDepositEntry(
				o.reg,
				idx,
				params.Kind,
				params.Periods,
				params.AllowClawback,
				mintIdx,
				o.now,
			)
			if err != nil {
				return err
			}
			o.setEntry(idx, &o.voter.Deposits[idx])
			o.record.Periods = params.Periods
			return nil
		},
	)
}

// Deposit moves tokens from the voter into a deposit entry
func (e *Engine) Deposit(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
	amount uint64,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "deposit",
			eventType: event.DepositEventType,
			key:       key,
			authority: authority,
			signer:    authority,
		},
		func(ctx context.Context, o *voterOp) error {
			if err := o.voter.Deposit(idx, amount, o.now); err != nil {
				return err
			}
			d := &o.voter.Deposits[idx]
			o.setEntry(idx, d)
			o.setAmount(amount)
			if amount == 0 {
				return nil
			}
			mint, err := o.mint(d)
			if err != nil {
				return err
			}
			if err := e.config.vault.TransferIn(ctx, authority, mint, amount); err != nil {
				return fmt.Errorf("vault transfer in: %w", err)
			}
			return nil
		},
	)
}

// Withdraw moves unlocked tokens from a deposit entry back to the voter
func (e *Engine) Withdraw(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
	amount uint64,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "withdraw",
			eventType: event.WithdrawEventType,
			key:       key,
			authority: authority,
			signer:    authority,
		},
		func(ctx context.Context, o *voterOp) error {
			if err := o.voter.Withdraw(idx, amount, o.now); err != nil {
				return err
			}
			d := &o.voter.Deposits[idx]
			o.setEntry(idx, d)
			o.setAmount(amount)
			if amount == 0 {
				return nil
			}
			mint, err := o.mint(d)
			if err != nil {
				return err
			}
			if err := e.config.vault.TransferOut(ctx, authority, mint, amount); err != nil {
				return fmt.Errorf("vault transfer out: %w", err)
			}
			return nil
		},
	)
}

// ResetLockup restarts the lockup of a deposit entry. The new lockup may not
// end earlier or be of a less strict kind.
func (e *Engine) ResetLockup(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
	kind lockup.Kind,
	periods uint32,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "reset_lockup",
			eventType: event.LockupResetEventType,
			key:       key,
			authority: authority,
			signer:    authority,
		},
		func(ctx context.Context, o *voterOp) error {
			if err := o.voter.ResetLockup(idx, kind, periods, o.now); err != nil {
				return err
			}
			o.setEntry(idx, &o.voter.Deposits[idx])
			o.record.Periods = periods
			return nil
		},
	)
}

// AccelerateVesting releases everything still locked in a deposit entry
func (e *Engine) AccelerateVesting(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	authority registrar.Identity,
	idx int,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "accelerate_vesting",
			eventType: event.VestingAcceleratedEventType,
			key:       key,
			authority: authority,
			signer:    signer,
		},
		func(ctx context.Context, o *voterOp) error {
			if err := o.voter.AccelerateVesting(o.reg, signer, idx, o.now); err != nil {
				return err
			}
			o.setEntry(idx, &o.voter.Deposits[idx])
			return nil
		},
	)
}

// UnlockDeposit ends the lockup of a deposit entry immediately
func (e *Engine) UnlockDeposit(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	authority registrar.Identity,
	idx int,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "unlock_deposit",
			eventType: event.DepositUnlockedEventType,
			key:       key,
			authority: authority,
			signer:    signer,
		},
		func(ctx context.Context, o *voterOp) error {
			if err := o.voter.UnlockDeposit(o.reg, signer, idx, o.now); err != nil {
				return err
			}
			o.setEntry(idx, &o.voter.Deposits[idx])
			return nil
		},
	)
}

// Grant makes a locked deposit for a voter, funded by the signer. The voter
// is created if needed. It returns the index of the new deposit entry.
func (e *Engine) Grant(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	authority registrar.Identity,
	params GrantParams,
) (int, error) {
	idx := -1
	err := e.writeVoter(
		ctx,
		voterWrite{
			op:            "grant",
			eventType:     event.GrantEventType,
			key:           key,
			authority:     authority,
			signer:        signer,
			saveRegistrar: true,
			createVoter:   true,
		},
		func(ctx context.Context, o *voterOp) error {
			mintIdx, err := o.reg.MintIndex(params.Mint)
			if err != nil {
				return err
			}
			idx, err = o.voter.Grant(
				o.reg,
				signer,
				params.Kind,
				params.Periods,
				params.AllowClawback,
				mintIdx,
				params.Amount,
				o.now,
			)
			if err != nil {
				return err
			}
			o.setEntry(idx, &o.voter.Deposits[idx])
			o.setAmount(params.Amount)
			o.record.Periods = params.Periods
			if params.Amount == 0 {
				return nil
			}
			if err := e.config.vault.TransferIn(ctx, signer, params.Mint, params.Amount); err != nil {
				return fmt.Errorf("vault transfer in: %w", err)
			}
			return nil
		},
	)
	if err != nil {
		return -1, err
	}
	return idx, nil
}

// Clawback takes the locked part of a deposit entry and sends it to the
// destination. It returns the amount taken.
func (e *Engine) Clawback(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	authority registrar.Identity,
	idx int,
	destination registrar.Identity,
) (uint64, error) {
	var amount uint64
	err := e.writeVoter(
		ctx,
		voterWrite{
			op:        "clawback",
			eventType: event.ClawbackEventType,
			key:       key,
			authority: authority,
			signer:    signer,
		},
		func(ctx context.Context, o *voterOp) error {
			var err error
			amount, err = o.voter.Clawback(o.reg, signer, idx, o.now)
			if err != nil {
				return err
			}
			d := &o.voter.Deposits[idx]
			o.setEntry(idx, d)
			o.setAmount(amount)
			if amount == 0 {
				return nil
			}
			mint, err := o.mint(d)
			if err != nil {
				return err
			}
			if err := e.config.vault.TransferOut(ctx, destination, mint, amount); err != nil {
				return fmt.Errorf("vault transfer out: %w", err)
			}
			return nil
		},
	)
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// CloseDepositEntry frees an empty deposit entry
func (e *Engine) CloseDepositEntry(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
	idx int,
) error {
	return e.writeVoter(
		ctx,
		voterWrite{
			op:        "close_deposit_entry",
			eventType: event.DepositEntryClosedEventType,
			key:       key,
			authority: authority,
			signer:    authority,
		},
		func(ctx context.Context, o *voterOp) error {
			d, err := o.voter.ActiveEntry(idx)
			if err != nil {
				return err
			}
			// Capture the entry before Close clears it
			o.setEntry(idx, d)
			return o.voter.CloseDepositEntry(idx)
		},
	)
}
