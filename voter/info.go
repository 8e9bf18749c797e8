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
	"github.com/blinklabs-io/escrow/lockup"
)

// DepositStatus is a point in time summary of a deposit entry
type DepositStatus struct {
	Kind                        lockup.Kind `json:"kind"`
	TimePassed                  uint64      `json:"timePassed"`
	Duration                    uint64      `json:"duration"`
	AmountInitiallyLockedNative uint64      `json:"amountInitiallyLockedNative"`
	AmountDepositedNative       uint64      `json:"amountDepositedNative"`
	AmountUnlocked              uint64      `json:"amountUnlocked"`
}

func (d *DepositEntry) Status(now int64) (DepositStatus, error) {
	unlocked, err := d.AmountUnlocked(now)
	if err != nil {
		return DepositStatus{}, err
	}
	return DepositStatus{
		Kind:                        d.Lockup.Kind,
		TimePassed:                  d.Lockup.TimePassed(now),
		Duration:                    d.Lockup.Duration(),
		AmountInitiallyLockedNative: d.AmountInitiallyLockedNative,
		AmountDepositedNative:       d.AmountDepositedNative,
		AmountUnlocked:              unlocked,
	}, nil
}

// LockingInfo describes what is still locked in a deposit entry and when it
// unlocks
type LockingInfo struct {
	Amount uint64 `json:"amount"`
	// EndTimestamp is unset when nothing is locked
	EndTimestamp *int64 `json:"endTimestamp,omitempty"`
	// Vesting is only set for lockups that vest per period
	Vesting *VestingInfo `json:"vesting,omitempty"`
}

type VestingInfo struct {
	// Rate is the amount released at the end of each period
	Rate          uint64 `json:"rate"`
	NextTimestamp int64  `json:"nextTimestamp"`
}

func (d *DepositEntry) LockingInfo(now int64) (LockingInfo, error) {
	locked, err := d.AmountLocked(now)
	if err != nil {
		return LockingInfo{}, err
	}
	ret := LockingInfo{Amount: locked}
	if locked == 0 {
		return ret, nil
	}
	endTs := d.Lockup.EndTs
	ret.EndTimestamp = &endTs
	if d.Lockup.Kind.IsLinear() {
		periodsTotal, err := d.Lockup.PeriodsTotal()
		if err != nil {
			return LockingInfo{}, err
		}
		periodCurrent := d.Lockup.PeriodCurrent(now)
		// The periods can be no more than a 100 year lockup
		ret.Vesting = &VestingInfo{
			Rate: d.AmountInitiallyLockedNative / periodsTotal,
			NextTimestamp: d.Lockup.StartTs +
				int64(periodCurrent+1)*d.Lockup.Kind.PeriodSecs(), //nolint:gosec
		}
	}
	return ret, nil
}
