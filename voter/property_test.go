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

package voter_test

import (
	"testing"

	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/voter"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genKind() gopter.Gen {
	return gen.OneConstOf(
		lockup.KindNone,
		lockup.KindDaily,
		lockup.KindMonthly,
		lockup.KindCliff,
	)
}

func genPeriodic() gopter.Gen {
	return gen.OneConstOf(
		lockup.KindDaily,
		lockup.KindMonthly,
		lockup.KindCliff,
	)
}

func periodsFor(kind lockup.Kind, periods uint32) uint32 {
	if kind == lockup.KindNone {
		return 0
	}
	return periods
}

func TestDepositEntryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	cfg := testMintConfig(10)

	properties.Property(
		"weight never increases without new deposits",
		prop.ForAll(
			func(kind lockup.Kind, periods uint32, amount uint64, a, b uint64) bool {
				var d voter.DepositEntry
				if err := d.Create(kind, periodsFor(kind, periods), false, 0, t0); err != nil {
					return false
				}
				if err := d.Deposit(amount, t0); err != nil {
					return false
				}
				if a > b {
					a, b = b, a
				}
				wa, err := d.VotingPower(&cfg, 6, at(a))
				if err != nil {
					return false
				}
				wb, err := d.VotingPower(&cfg, 6, at(b))
				if err != nil {
					return false
				}
				return wb <= wa
			},
			genKind(),
			gen.UInt32Range(1, 60),
			gen.UInt64Range(0, 1<<50),
			gen.UInt64Range(0, 400*day),
			gen.UInt64Range(0, 400*day),
		),
	)

	properties.Property(
		"reset keeps the balance and never shortens the lockup",
		prop.ForAll(
			func(kind, newKind lockup.Kind, periods, newPeriods uint32, elapsed uint64) bool {
				var d voter.DepositEntry
				if err := d.Create(kind, periods, false, 0, t0); err != nil {
					return false
				}
				if err := d.Deposit(1_000_000, t0); err != nil {
					return false
				}
				now := at(elapsed)
				before := d
				secsLeft := d.Lockup.SecondsLeft(now)
				if err := d.ResetLockup(newKind, newPeriods, now); err != nil {
					// Rejected resets change nothing
					return d == before
				}
				return d.AmountDepositedNative == before.AmountDepositedNative &&
					d.Lockup.Duration() >= secsLeft &&
					d.Lockup.TimePassed(now) == 0 &&
					newKind.Strictness() >= before.Lockup.Kind.Strictness()
			},
			genPeriodic(),
			genPeriodic(),
			gen.UInt32Range(1, 60),
			gen.UInt32Range(1, 60),
			gen.UInt64Range(0, 100*day),
		),
	)

	properties.Property(
		"accelerate is idempotent",
		prop.ForAll(
			func(kind lockup.Kind, periods uint32, elapsed, later uint64) bool {
				var d voter.DepositEntry
				if err := d.Create(kind, periods, false, 0, t0); err != nil {
					return false
				}
				if err := d.Deposit(5000, t0); err != nil {
					return false
				}
				if err := d.Accelerate(at(elapsed)); err != nil {
					return false
				}
				first, err := d.AmountUnlocked(at(elapsed))
				if err != nil || first != d.AmountDepositedNative {
					return false
				}
				if err := d.Accelerate(at(elapsed + later)); err != nil {
					return false
				}
				second, err := d.AmountUnlocked(at(elapsed + later))
				return err == nil && second == first
			},
			genPeriodic(),
			gen.UInt32Range(1, 60),
			gen.UInt64Range(0, 100*day),
			gen.UInt64Range(0, 100*day),
		),
	)

	properties.Property(
		"unlocked amount is bounded by deposits after withdrawals",
		prop.ForAll(
			func(kind lockup.Kind, periods uint32, elapsed uint64, withdrawPct uint64) bool {
				var d voter.DepositEntry
				if err := d.Create(kind, periods, false, 0, t0); err != nil {
					return false
				}
				if err := d.Deposit(10_000, t0); err != nil {
					return false
				}
				now := at(elapsed)
				unlocked, err := d.AmountUnlocked(now)
				if err != nil {
					return false
				}
				if err := d.Withdraw(unlocked*withdrawPct/100, now); err != nil {
					return false
				}
				// Top up and check again
				if err := d.Deposit(500, now); err != nil {
					return false
				}
				after, err := d.AmountUnlocked(now)
				if err != nil {
					return false
				}
				return after <= d.AmountDepositedNative &&
					d.AmountInitiallyLockedNative <= d.AmountDepositedNative
			},
			genPeriodic(),
			gen.UInt32Range(1, 60),
			gen.UInt64Range(0, 100*day),
			gen.UInt64Range(0, 100),
		),
	)

	properties.TestingRun(t)
}
