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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/escrow/database/models"
)

func (d *StateStoreSqlite) registerMetrics() {
	promautoFactory := promauto.With(d.promRegistry)
	rowCount := func(model any) func() float64 {
		return func() float64 {
			var count int64
			if err := d.db.Model(model).Count(&count).Error; err != nil {
				d.logger.Debug("failed to count rows", "error", err)
				return 0
			}
			return float64(count)
		}
	}
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "escrow_state_registrars",
			Help: "number of stored registrars",
		},
		rowCount(&models.Registrar{}),
	)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "escrow_state_voters",
			Help: "number of stored voters",
		},
		rowCount(&models.Voter{}),
	)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "escrow_state_deposit_entries",
			Help: "number of used deposit entries",
		},
		rowCount(&models.DepositEntry{}),
	)
}
