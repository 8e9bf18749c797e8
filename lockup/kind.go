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
	"strings"
)

const (
	SecsPerDay   int64 = 24 * 60 * 60
	SecsPerMonth int64 = 365 * SecsPerDay / 12

	// MaxLockupSecs bounds how far into the future a lockup may end
	MaxLockupSecs int64 = 100 * 365 * SecsPerDay
)

// Kind selects how a lockup releases its principal over time
type Kind uint8

const (
	// KindNone means nothing is locked
	KindNone Kind = iota
	// KindDaily releases the principal linearly, one tranche per day
	KindDaily
	// KindMonthly releases the principal linearly, one tranche per month
	KindMonthly
	// KindCliff keeps everything locked until the end timestamp
	KindCliff
	// KindConstant marks a lockup released by an authority. It only results
	// from acceleration and behaves like KindNone
	KindConstant
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindDaily:    "daily",
	KindMonthly:  "monthly",
	KindCliff:    "cliff",
	KindConstant: "constant",
}

// ParseKind converts the textual name of a lockup kind
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == needle {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", ErrInvalidLockupKind, s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid returns true for known lockup kinds
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// PeriodSecs returns the length of one period of the kind. Cliff lockups are
// measured in days even though they do not vest per period. None and Constant
// have no periods
func (k Kind) PeriodSecs() int64 {
	switch k {
	case KindDaily, KindCliff:
		return SecsPerDay
	case KindMonthly:
		return SecsPerMonth
	default:
		return 0
	}
}

// Strictness orders kinds for lockup resets. A reset may never move to a kind
// with a lower strictness than the current one
func (k Kind) Strictness() uint8 {
	switch k {
	case KindDaily:
		return 1
	case KindMonthly:
		return 2
	case KindCliff:
		return 3
	default:
		return 0
	}
}

// Creatable returns true for kinds a deposit entry may be created with or
// reset to
func (k Kind) Creatable() bool {
	return k.Valid() && k != KindConstant
}

// IsLinear returns true for kinds that vest stepwise, one tranche per period
func (k Kind) IsLinear() bool {
	return k == KindDaily || k == KindMonthly
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLockupKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	tmpKind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = tmpKind
	return nil
}
