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

func preloadDeposits(db *gorm.DB) *gorm.DB {
	return db.Preload(
		"Deposits",
		func(db *gorm.DB) *gorm.DB {
			return db.Order("slot")
		},
	)
}

// GetVoter returns the voter with the given authority, or nil if there is
// none
func (d *StateStoreSqlite) GetVoter(
	registrarID uint,
	authority []byte,
	txn *gorm.DB,
) (*models.Voter, error) {
	ret := &models.Voter{}
	result := preloadDeposits(d.resolveDB(txn)).
		Where("registrar_id = ? AND authority = ?", registrarID, authority).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetVoters returns all voters of a registrar
func (d *StateStoreSqlite) GetVoters(
	registrarID uint,
	txn *gorm.DB,
) ([]models.Voter, error) {
	var ret []models.Voter
	result := preloadDeposits(d.resolveDB(txn)).
		Where("registrar_id = ?", registrarID).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetVoter creates or replaces a voter and its deposit entry rows. The ID of
// the stored row is written back to v.
func (d *StateStoreSqlite) SetVoter(
	v *models.Voter,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	existing := models.Voter{}
	result := db.Select("id").
		Where("registrar_id = ? AND authority = ?", v.RegistrarID, v.Authority).
		First(&existing)
	switch {
	case result.Error == nil:
		v.ID = existing.ID
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		v.ID = 0
		if err := db.Omit(clause.Associations).Create(v).Error; err != nil {
			return fmt.Errorf("failed to create voter: %w", err)
		}
	default:
		return result.Error
	}
	if err := db.Where("voter_id = ?", v.ID).Delete(&models.DepositEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear deposit entries: %w", err)
	}
	if len(v.Deposits) == 0 {
		return nil
	}
	for i := range v.Deposits {
		v.Deposits[i].ID = 0
		v.Deposits[i].VoterID = v.ID
	}
	if err := db.Create(&v.Deposits).Error; err != nil {
		return fmt.Errorf("failed to create deposit entries: %w", err)
	}
	return nil
}
