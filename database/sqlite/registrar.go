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

package sqlite

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/escrow/database/models"
)

func preloadVotingMints(db *gorm.DB) *gorm.DB {
	return db.Preload(
		"VotingMints",
		func(db *gorm.DB) *gorm.DB {
			return db.Order("slot")
		},
	)
}

// GetRegistrar returns the registrar with the given key, or nil if there is
// none
func (d *StateStoreSqlite) GetRegistrar(
	realm, governingMint []byte,
	txn *gorm.DB,
) (*models.Registrar, error) {
	ret := &models.Registrar{}
	result := preloadVotingMints(d.resolveDB(txn)).
		Where("realm = ? AND governing_mint = ?", realm, governingMint).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetRegistrars returns all registrars
func (d *StateStoreSqlite) GetRegistrars(
	txn *gorm.DB,
) ([]models.Registrar, error) {
	var ret []models.Registrar
	result := preloadVotingMints(d.resolveDB(txn)).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetRegistrar creates or replaces a registrar and its voting mint rows. The
// ID of the stored row is written back to reg.
func (d *StateStoreSqlite) SetRegistrar(
	reg *models.Registrar,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	existing := models.Registrar{}
	result := db.Select("id").
		Where("realm = ? AND governing_mint = ?", reg.Realm, reg.GoverningMint).
		First(&existing)
	switch {
	case result.Error == nil:
		reg.ID = existing.ID
		if err := db.Omit(clause.Associations).Save(reg).Error; err != nil {
			return fmt.Errorf("failed to update registrar: %w", err)
		}
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		reg.ID = 0
		if err := db.Omit(clause.Associations).Create(reg).Error; err != nil {
			return fmt.Errorf("failed to create registrar: %w", err)
		}
	default:
		return result.Error
	}
	if err := db.Where("registrar_id = ?", reg.ID).Delete(&models.VotingMint{}).Error; err != nil {
		return fmt.Errorf("failed to clear voting mints: %w", err)
	}
	if len(reg.VotingMints) == 0 {
		return nil
	}
	for i := range reg.VotingMints {
		reg.VotingMints[i].ID = 0
		reg.VotingMints[i].RegistrarID = reg.ID
	}
	if err := db.Create(&reg.VotingMints).Error; err != nil {
		return fmt.Errorf("failed to create voting mints: %w", err)
	}
	return nil
}
