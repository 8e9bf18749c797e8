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

package registrar

import "errors"

var (
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrInvalidRegistrar   = errors.New("invalid registrar")
	ErrBadRealmAuthority  = errors.New("signer is not the realm authority")
	ErrDecimalsMismatch   = errors.New("mint decimals exceed vote weight decimals")
	ErrMintConfigNotUsed  = errors.New("voting mint config is not in use")
	ErrInvalidMintConfig  = errors.New("invalid voting mint config")
	ErrVotingMintNotFound = errors.New("no voting mint config for mint")

	ErrVotingMintIndexOutOfRange = errors.New(
		"voting mint config index out of range",
	)
	ErrVotingMintAlreadyConfigured = errors.New(
		"mint is already configured at another index",
	)
	ErrVotingMintNotConfigured = errors.New(
		"voting mint config is not configured",
	)
	ErrLockupSaturationMustBePositive = errors.New(
		"lockup saturation seconds must be positive",
	)

	// Authorization failures are distinct per flow
	ErrBadAccelerationAuthority = errors.New(
		"signer may not accelerate vesting for this mint",
	)
	ErrBadUnlockDepositAuthority = errors.New(
		"signer may not unlock deposits for this mint",
	)
	ErrBadGrantAuthority = errors.New(
		"signer may not grant deposits for this mint",
	)
	ErrBadClawbackAuthority = errors.New(
		"signer is not the clawback authority",
	)
)
