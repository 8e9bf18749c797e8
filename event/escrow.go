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

package event

import (
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
)

const (
	RegistrarCreatedEventType     EventType = "escrow.registrar.create"
	VotingMintConfiguredEventType EventType = "escrow.registrar.configure_mint"
	TimeOffsetSetEventType        EventType = "escrow.registrar.time_offset"
	VoterCreatedEventType         EventType = "escrow.voter.create"
	DepositEntryCreatedEventType  EventType = "escrow.deposit.create"
	DepositEventType              EventType = "escrow.deposit"
	WithdrawEventType             EventType = "escrow.withdraw"
	LockupResetEventType          EventType = "escrow.lockup.reset"
	VestingAcceleratedEventType   EventType = "escrow.vesting.accelerate"
	DepositUnlockedEventType      EventType = "escrow.deposit.unlock"
	GrantEventType                EventType = "escrow.grant"
	ClawbackEventType             EventType = "escrow.clawback"
	DepositEntryClosedEventType   EventType = "escrow.deposit.close"
)

// RegistrarEvent is published after a registrar level change is committed
type RegistrarEvent struct {
	Registrar  registrar.Key
	Signer     registrar.Identity
	MintIndex  int
	Mint       registrar.Identity
	TimeOffset int64
}

// DepositEntryEvent is published after a change to a voter's deposit entry
// is committed. Amount is the amount moved by the operation, if any.
type DepositEntryEvent struct {
	Registrar registrar.Key
	Voter     registrar.Identity
	Signer    registrar.Identity
	Index     int
	MintIndex int
	Kind      lockup.Kind
	Amount    uint64
	Timestamp int64
}
