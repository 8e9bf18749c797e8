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
)

// RegistrarParams describes a new registrar
type RegistrarParams struct {
	Key                 registrar.Key
	GovernanceProgramID registrar.Identity
	RealmAuthority      registrar.Identity
	ClawbackAuthority   registrar.Identity
	VoteWeightDecimals  uint8
}

// CreateRegistrar stores a new registrar with an empty mint catalog
func (e *Engine) CreateRegistrar(
	ctx context.Context,
	params RegistrarParams,
) (*registrar.Registrar, error) {
	reg, err := registrar.New(
		params.Key,
		params.GovernanceProgramID,
		params.RealmAuthority,
		params.ClawbackAuthority,
		params.VoteWeightDecimals,
	)
	if err != nil {
		return nil, err
	}
	err = e.write(
		ctx,
		"create_registrar",
		params.Key,
		func(ctx context.Context, o *operation) error {
			_, err := e.db.GetRegistrar(params.Key, o.txn)
			if err == nil {
				return fmt.Errorf("%w: %s", ErrRegistrarExists, params.Key)
			}
			if !errors.Is(err, database.ErrRegistrarNotFound) {
				return err
			}
			if err := e.db.SetRegistrar(reg, o.txn); err != nil {
				return err
			}
			rec := newRecord("create_registrar", e.now(reg))
			rec.Signer = reg.RealmAuthority.Bytes()
			if err := e.journal(o, params.Key, rec); err != nil {
				return err
			}
			o.publish(
				event.RegistrarCreatedEventType,
				event.RegistrarEvent{
					Registrar: params.Key,
					Signer:    reg.RealmAuthority,
					MintIndex: -1,
				},
			)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	e.config.logger.Info(
		"created registrar",
		"registrar", params.Key.String(),
	)
	return reg, nil
}

// ConfigureVotingMint sets the voting mint config at a catalog index
func (e *Engine) ConfigureVotingMint(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	idx int,
	cfg registrar.VotingMintConfig,
) error {
	return e.write(
		ctx,
		"configure_voting_mint",
		key,
		func(ctx context.Context, o *operation) error {
			reg, err := e.db.GetRegistrar(key, o.txn)
			if err != nil {
				return err
			}
			if err := reg.ConfigureVotingMint(signer, idx, cfg); err != nil {
				return err
			}
			if err := e.db.SetRegistrar(reg, o.txn); err != nil {
				return err
			}
			rec := newRecord("configure_voting_mint", e.now(reg))
			rec.Signer = signer.Bytes()
			rec.MintIndex = int64(idx)
			if err := e.journal(o, key, rec); err != nil {
				return err
			}
			o.publish(
				event.VotingMintConfiguredEventType,
				event.RegistrarEvent{
					Registrar: key,
					Signer:    signer,
					MintIndex: idx,
					Mint:      cfg.Mint,
				},
			)
			return nil
		},
	)
}

// SetTimeOffset shifts the clock seen by a registrar's lockups
func (e *Engine) SetTimeOffset(
	ctx context.Context,
	key registrar.Key,
	signer registrar.Identity,
	offset int64,
) error {
	return e.write(
		ctx,
		"set_time_offset",
		key,
		func(ctx context.Context, o *operation) error {
			reg, err := e.db.GetRegistrar(key, o.txn)
			if err != nil {
				return err
			}
			if err := reg.SetTimeOffset(signer, offset); err != nil {
				return err
			}
			if err := e.db.SetRegistrar(reg, o.txn); err != nil {
				return err
			}
			rec := newRecord("set_time_offset", e.now(reg))
			rec.Signer = signer.Bytes()
			rec.Amount = uint64(offset) //nolint:gosec
			if err := e.journal(o, key, rec); err != nil {
				return err
			}
			o.publish(
				event.TimeOffsetSetEventType,
				event.RegistrarEvent{
					Registrar:  key,
					Signer:     signer,
					MintIndex:  -1,
					TimeOffset: offset,
				},
			)
			return nil
		},
	)
}

// GetRegistrar returns a stored registrar
func (e *Engine) GetRegistrar(
	ctx context.Context,
	key registrar.Key,
) (*registrar.Registrar, error) {
	var ret *registrar.Registrar
	err := e.read(
		ctx,
		"get_registrar",
		key,
		func(ctx context.Context, txn *database.Txn) error {
			var err error
			ret, err = e.cachedRegistrar(txn, key)
			return err
		},
	)
	return ret, err
}

// ListRegistrars returns all stored registrars
func (e *Engine) ListRegistrars(ctx context.Context) ([]*registrar.Registrar, error) {
	var ret []*registrar.Registrar
	err := e.read(
		ctx,
		"list_registrars",
		registrar.Key{},
		func(ctx context.Context, txn *database.Txn) error {
			var err error
			ret, err = e.db.ListRegistrars(txn)
			return err
		},
	)
	return ret, err
}
