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

package lockup

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// Lockup is the schedule on which a deposit's principal becomes spendable.
// All queries are pure functions of the lockup and the supplied timestamp,
// which lets callers evaluate a schedule at any point in time without a clock
type Lockup struct {
	Kind    Kind  `json:"kind"    yaml:"kind"`
	StartTs int64 `json:"startTs" yaml:"startTs"`
	EndTs   int64 `json:"endTs"   yaml:"endTs"`
}

// New creates a lockup of the given kind starting at now and lasting the
// given number of periods
func New(kind Kind, now int64, periods uint32) (Lockup, error) {
	secs, err := DurationFor(kind, periods)
	if err != nil {
		return Lockup{}, err
	}
	if now > math.MaxInt64-secs {
		return Lockup{}, fmt.Errorf(
			"%w: lockup end overflows timestamp",
			ErrInvalidLockupPeriod,
		)
	}
	return Lockup{
		Kind:    kind,
		StartTs: now,
		EndTs:   now + secs,
	}, nil
}

// DurationFor returns the length in seconds of a lockup of the given kind and
// period count, validating the combination
func DurationFor(kind Kind, periods uint32) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLockupKind, uint8(kind))
	}
	if !kind.Creatable() {
		return 0, fmt.Errorf(
			"%w: %s lockups only result from acceleration",
			ErrInvalidLockupKind,
			kind,
		)
	}
	period := kind.PeriodSecs()
	if period == 0 {
		if periods != 0 {
			return 0, fmt.Errorf(
				"%w: lockup kind %s does not take periods, got %d",
				ErrInvalidLockupPeriod,
				kind,
				periods,
			)
		}
		return 0, nil
	}
	if periods == 0 {
		return 0, fmt.Errorf(
			"%w: lockup kind %s requires at least one period",
			ErrInvalidLockupPeriod,
			kind,
		)
	}
	// uint32 periods times the longest period cannot overflow int64
	secs := int64(periods) * period
	if secs > MaxLockupSecs {
		return 0, fmt.Errorf(
			"%w: %d seconds exceeds maximum lockup of %d seconds",
			ErrInvalidLockupPeriod,
			secs,
			MaxLockupSecs,
		)
	}
	return secs, nil
}

// Validate checks the structural invariants of the lockup
func (l Lockup) Validate() error {
	if !l.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLockupKind, uint8(l.Kind))
	}
	if l.EndTs < l.StartTs {
		return fmt.Errorf(
			"%w: start %d, end %d",
			ErrInvalidTimestamp,
			l.StartTs,
			l.EndTs,
		)
	}
	return nil
}

// Duration returns the full length of the schedule in seconds
func (l Lockup) Duration() uint64 {
	if l.EndTs <= l.StartTs {
		return 0
	}
	return uint64(l.EndTs - l.StartTs)
}

// SecondsLeft returns the number of seconds until the lockup ends. A time
// before the start is treated as the start. Released lockups have none left
func (l Lockup) SecondsLeft(now int64) uint64 {
	if l.Kind == KindConstant {
		return 0
	}
	if now < l.StartTs {
		now = l.StartTs
	}
	if now >= l.EndTs {
		return 0
	}
	return uint64(l.EndTs - now)
}

// SecondsSinceStart returns the number of seconds elapsed since the start,
// saturating at zero
func (l Lockup) SecondsSinceStart(now int64) uint64 {
	if now <= l.StartTs {
		return 0
	}
	return uint64(now - l.StartTs)
}

// TimePassed returns the elapsed part of the schedule, saturating at the
// full duration
func (l Lockup) TimePassed(now int64) uint64 {
	return l.Duration() - l.SecondsLeft(now)
}

// Expired returns true once nothing remains locked by the schedule
func (l Lockup) Expired(now int64) bool {
	return l.SecondsLeft(now) == 0
}

// PeriodsTotal returns the number of periods in the schedule
func (l Lockup) PeriodsTotal() (uint64, error) {
	period := l.Kind.PeriodSecs()
	if period == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotPeriodic, l.Kind)
	}
	duration := l.Duration()
	if duration%uint64(period) != 0 {
		return 0, fmt.Errorf(
			"%w: duration %d is not a multiple of period %d",
			ErrInvalidLockupPeriod,
			duration,
			period,
		)
	}
	return duration / uint64(period), nil
}

// PeriodCurrent returns the number of whole periods elapsed since the start,
// clamped to the periods in the schedule
func (l Lockup) PeriodCurrent(now int64) uint64 {
	period := l.Kind.PeriodSecs()
	if period == 0 {
		return 0
	}
	elapsed := min(l.SecondsSinceStart(now), l.Duration())
	return elapsed / uint64(period)
}

// PeriodsLeft returns the number of periods, including a partially elapsed
// one, that remain in the schedule
func (l Lockup) PeriodsLeft(now int64) uint64 {
	period := l.Kind.PeriodSecs()
	if period == 0 {
		return 0
	}
	secsLeft := l.SecondsLeft(now)
	return (secsLeft + uint64(period) - 1) / uint64(period)
}

// RemovePastPeriods moves the start forward past all elapsed whole periods,
// leaving the end untouched
func (l *Lockup) RemovePastPeriods(now int64) {
	periods := l.PeriodCurrent(now)
	if periods == 0 {
		return
	}
	// PeriodCurrent is clamped to the duration so this never passes EndTs
	l.StartTs += int64(periods) * l.Kind.PeriodSecs() //nolint:gosec
}

// Vested returns how much of the initially locked principal has been released
// by the schedule at the given time
func (l Lockup) Vested(now int64, initiallyLocked uint64) (uint64, error) {
	if l.Kind == KindNone || l.Kind == KindConstant || l.Expired(now) {
		return initiallyLocked, nil
	}
	if !l.Kind.IsLinear() {
		// Cliff releases nothing before expiry
		return 0, nil
	}
	periodsTotal, err := l.PeriodsTotal()
	if err != nil {
		return 0, err
	}
	periodCurrent := l.PeriodCurrent(now)
	if periodsTotal == 0 || periodCurrent >= periodsTotal {
		return initiallyLocked, nil
	}
	return mulDiv(initiallyLocked, periodCurrent, periodsTotal), nil
}

// Locked returns how much of the initially locked principal is still locked
func (l Lockup) Locked(now int64, initiallyLocked uint64) (uint64, error) {
	vested, err := l.Vested(now, initiallyLocked)
	if err != nil {
		return 0, err
	}
	return initiallyLocked - vested, nil
}

// AmountUnlocked returns how much of the deposited amount may be withdrawn.
// The result never exceeds the deposited amount
func (l Lockup) AmountUnlocked(
	now int64,
	initiallyLocked uint64,
	deposited uint64,
) (uint64, error) {
	locked, err := l.Locked(now, initiallyLocked)
	if err != nil {
		return 0, err
	}
	if locked >= deposited {
		return 0, nil
	}
	return deposited - locked, nil
}

// mulDiv computes a*b/c with a 256-bit intermediate, truncating
func mulDiv(a, b, c uint64) uint64 {
	tmp := new(uint256.Int).SetUint64(a)
	tmp.Mul(tmp, uint256.NewInt(b))
	tmp.Div(tmp, uint256.NewInt(c))
	return tmp.Uint64()
}
