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

package database

import (
	"fmt"

	"github.com/blinklabs-io/escrow/database/models"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// GetVoter returns the voter with the given authority under a registrar
func (d *Database) GetVoter(
	key registrar.Key,
	authority registrar.Identity,
	txn *Txn,
) (*voter.Voter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpRegistrar, err := d.getRegistrarModel(key, txn)
	if err != nil {
		return nil, err
	}
	tmpVoter, err := d.state.GetVoter(
		tmpRegistrar.ID,
		authority.Bytes(),
		txn.State(),
	)
	if err != nil {
		return nil, err
	}
	if tmpVoter == nil {
		return nil, fmt.Errorf("%w: %s", ErrVoterNotFound, authority)
	}
	return tmpVoter.Voter(key)
}

// SetVoter creates or replaces a voter. Its registrar must already be stored.
func (d *Database) SetVoter(v *voter.Voter, txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetVoter(v, txn)
		})
	}
	tmpRegistrar, err := d.getRegistrarModel(v.Registrar, txn)
	if err != nil {
		return err
	}
	tmpVoter := models.NewVoter(v, tmpRegistrar.ID)
	return d.state.SetVoter(&tmpVoter, txn.State())
}

// ListVoters returns all voters of a registrar
func (d *Database) ListVoters(
	key registrar.Key,
	txn *Txn,
) ([]*voter.Voter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpRegistrar, err := d.getRegistrarModel(key, txn)
	if err != nil {
		return nil, err
	}
	tmpVoters, err := d.state.GetVoters(tmpRegistrar.ID, txn.State())
	if err != nil {
		return nil, err
	}
	ret := make([]*voter.Voter, 0, len(tmpVoters))
	for i := range tmpVoters {
		v, err := tmpVoters[i].Voter(key)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}
