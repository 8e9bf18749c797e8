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
)

func (d *Database) getRegistrarModel(
	key registrar.Key,
	txn *Txn,
) (*models.Registrar, error) {
	ret, err := d.state.GetRegistrar(
		key.Realm.Bytes(),
		key.GoverningMint.Bytes(),
		txn.State(),
	)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, fmt.Errorf("%w: %s", ErrRegistrarNotFound, key)
	}
	return ret, nil
}

// GetRegistrar returns the registrar with the given key
func (d *Database) GetRegistrar(
	key registrar.Key,
	txn *Txn,
) (*registrar.Registrar, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpRegistrar, err := d.getRegistrarModel(key, txn)
	if err != nil {
		return nil, err
	}
	return tmpRegistrar.Registrar()
}

// SetRegistrar creates or replaces a registrar
func (d *Database) SetRegistrar(
	reg *registrar.Registrar,
	txn *Txn,
) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetRegistrar(reg, txn)
		})
	}
	tmpRegistrar := models.NewRegistrar(reg)
	return d.state.SetRegistrar(&tmpRegistrar, txn.State())
}

// ListRegistrars returns all stored registrars
func (d *Database) ListRegistrars(txn *Txn) ([]*registrar.Registrar, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpRegistrars, err := d.state.GetRegistrars(txn.State())
	if err != nil {
		return nil, err
	}
	ret := make([]*registrar.Registrar, 0, len(tmpRegistrars))
	for i := range tmpRegistrars {
		reg, err := tmpRegistrars[i].Registrar()
		if err != nil {
			return nil, err
		}
		ret = append(ret, reg)
	}
	return ret, nil
}
