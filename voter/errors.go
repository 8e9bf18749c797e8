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
	"errors"
	"fmt"
)

var (
	ErrInvalidVoter          = errors.New("invalid voter")
	ErrRegistrarMismatch     = errors.New("voter belongs to another registrar")
	ErrDepositEntryInUse     = errors.New("deposit entry is already in use")
	ErrDepositEntryNotActive = errors.New("deposit entry is not active")
	ErrAmountOverflow        = errors.New("deposit amount overflows")
	ErrClawbackNotAllowed    = errors.New("deposit entry does not allow clawback")
	ErrVotingTokenNonzero    = errors.New("deposit entry still holds tokens")
	ErrNoFreeDepositEntry    = errors.New("no free deposit entry")
	ErrVoteWeightOverflow    = errors.New("vote weight overflows")

	ErrDepositEntryIndexOutOfRange = errors.New(
		"deposit entry index out of range",
	)
	ErrInsufficientUnlockedFunds = errors.New(
		"insufficient unlocked funds",
	)
)

// InsufficientUnlockedFundsError reports a withdrawal larger than the unlocked
// balance. It matches ErrInsufficientUnlockedFunds with errors.Is
type InsufficientUnlockedFundsError struct {
	requested uint64
	available uint64
}

func NewInsufficientUnlockedFundsError(
	requested uint64,
	available uint64,
) InsufficientUnlockedFundsError {
	return InsufficientUnlockedFundsError{
		requested: requested,
		available: available,
	}
}

func (e InsufficientUnlockedFundsError) Requested() uint64 {
	return e.requested
}

func (e InsufficientUnlockedFundsError) Available() uint64 {
	return e.available
}

func (e InsufficientUnlockedFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient unlocked funds: requested %d, available %d",
		e.requested,
		e.available,
	)
}

func (e InsufficientUnlockedFundsError) Is(target error) bool {
	return target == ErrInsufficientUnlockedFunds
}
