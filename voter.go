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
	"errors"
	"fmt"

	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/event"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// voterWrite describes a write against a single voter
type voterWrite struct {
	op        string
	eventType event.EventType
	key       registrar.Key
	authority registrar.Identity
	signer    registrar.Identity
	// saveRegistrar stores the registrar again after fn, for operations
	// that bump a mint's usage count
	saveRegistrar bool
	// createVoter creates the voter if it does not exist yet
	createVoter bool
}

// voterOp is handed to the body of a voter write. The body fills in the
// journal record and event as it goes.
type voterOp struct {
	*operation
	reg    *registrar.Registrar
	voter  *voter.Voter
	now    int64
	record *database.JournalRecord
	event  *event.DepositEntryEvent
}

// setEntry records the deposit entry an operation applied to
func (o *voterOp) setEntry(idx int, d *voter.DepositEntry) {
	o.record.Index = int64(idx)
	o.record.MintIndex = int64(d.VotingMintConfigIdx)
	o.record.Kind = uint8(d.Lockup.Kind)
	o.record.AllowClawback = d.AllowClawback
	o.event.Index = idx
	o.event.MintIndex = int(d.VotingMintConfigIdx)
	o.event.Kind = d.Lockup.Kind
}

func (o *voterOp) setAmount(amount uint64) {
	o.record.Amount = amount
	o.event.Amount = amount
}

// mint returns the mint of a deposit entry
func (o *voterOp) mint(d *voter.DepositEntry) (registrar.Identity, error) {
	cfg, err := o.reg.VotingMint(int(d.VotingMintConfigIdx))
	if err != nil {
		return registrar.Identity{}, err
	}
	return cfg.Mint, nil
}

func (e *Engine) writeVoter(
	ctx context.Context,
	w voterWrite,
	fn func(context.Context, *voterOp) error,
) error {
	return e.write(
		ctx,
		w.op,
		w.key,
		func(ctx context.Context, o *operation) error {
			reg, err := e.db.GetRegistrar(w.key, o.txn)
			if err != nil {
				return err
			}
			v, err := e.db.GetVoter(w.key, w.authority, o.txn)
			if err != nil {
				if !w.createVoter || !errors.Is(err, database.ErrVoterNotFound) {
					return err
				}
				v, err = voter.New(w.authority, w.key)
				if err != nil {
					return err
				}
			}
			now := e.now(reg)
			vo := &voterOp{
				operation: o,
				reg:       reg,
				voter:     v,
				now:       now,
				record:    newRecord(w.op, now),
				event: &event.DepositEntryEvent{
					Registrar: w.key,
					Voter:     w.authority,
					Signer:    w.signer,
					Index:     -1,
					MintIndex: -1,
					Timestamp: now,
				},
			}
			vo.record.Voter = w.authority.Bytes()
			vo.record.Signer = w.signer.Bytes()
			if err := fn(ctx, vo); err != nil {
				return err
			}
			if w.saveRegistrar {
				if err := e.db.SetRegistrar(reg, o.txn); err != nil {
					return err
				}
			}
			if err := e.db.SetVoter(v, o.txn); err != nil {
				return err
			}
			if err := e.journal(o, w.key, vo.record); err != nil {
				return err
			}
			o.publish(w.eventType, *vo.event)
			return nil
		},
	)
}

// CreateVoter stores an empty voter for the given authority
func (e *Engine) CreateVoter(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
) (*voter.Voter, error) {
	v, err := voter.New(authority, key)
	if err != nil {
		return nil, err
	}
	err = e.write(
		ctx,
		"create_voter",
		key,
		func(ctx context.Context, o *operation) error {
			reg, err := e.db.GetRegistrar(key, o.txn)
			if err != nil {
				return err
			}
			_, err = e.db.GetVoter(key, authority, o.txn)
			if err == nil {
				return fmt.Errorf("%w: %s", ErrVoterExists, authority)
			}
			if !errors.Is(err, database.ErrVoterNotFound) {
				return err
			}
			if err := e.db.SetVoter(v, o.txn); err != nil {
				return err
			}
			now := e.now(reg)
			rec := newRecord("create_voter", now)
			rec.Voter = authority.Bytes()
			rec.Signer = authority.Bytes()
			if err := e.journal(o, key, rec); err != nil {
				return err
			}
			o.publish(
				event.VoterCreatedEventType,
				event.DepositEntryEvent{
					Registrar: key,
					Voter:     authority,
					Signer:    authority,
					Index:     -1,
					MintIndex: -1,
					Timestamp: now,
				},
			)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	e.config.logger.Info(
		"created voter",
		"registrar", key.String(),
		"voter", authority.String(),
	)
	return v, nil
}

// GetVoter returns a stored voter
func (e *Engine) GetVoter(
	ctx context.Context,
	key registrar.Key,
	authority registrar.Identity,
) (*voter.Voter, error) {
	var ret *voter.Voter
	err := e.read(
		ctx,
		"get_voter",
		key,
		func(ctx context.Context, txn *database.Txn) error {
			var err error
			ret, err = e.db.GetVoter(key, authority, txn)
			return err
		},
	)
	return ret, err
}

// ListVoters returns all voters of a registrar
func (e *Engine) ListVoters(
	ctx context.Context,
	key registrar.Key,
) ([]*voter.Voter, error) {
	var ret []*voter.Voter
	err := e.read(
		ctx,
		"list_voters",
		key,
		func(ctx context.Context, txn *database.Txn) error {
			var err error
			ret, err = e.db.ListVoters(key, txn)
			return err
		},
	)
	return ret, err
}
