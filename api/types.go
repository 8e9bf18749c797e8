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

package api

import (
	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// RootResponse is returned by GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is returned for any failed request
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// VotingMintResponse describes a configured catalog slot
type VotingMintResponse struct {
	Index                                int                `json:"index"`
	Mint                                 registrar.Identity `json:"mint"`
	GrantAuthority                       string             `json:"grant_authority"`
	BaselineVoteWeightScaledFactor       uint64             `json:"baseline_vote_weight_scaled_factor"`
	MaxExtraLockupVoteWeightScaledFactor uint64             `json:"max_extra_lockup_vote_weight_scaled_factor"`
	LockupSaturationSecs                 uint64             `json:"lockup_saturation_secs"`
	Decimals                             uint8              `json:"decimals"`
	UsageCount                           uint64             `json:"usage_count"`
}

// RegistrarResponse describes a registrar and its configured voting mints
type RegistrarResponse struct {
	Realm               registrar.Identity   `json:"realm"`
	GoverningMint       registrar.Identity   `json:"governing_mint"`
	GovernanceProgramID string               `json:"governance_program_id"`
	RealmAuthority      registrar.Identity   `json:"realm_authority"`
	ClawbackAuthority   string               `json:"clawback_authority"`
	VoteWeightDecimals  uint8                `json:"vote_weight_decimals"`
	TimeOffset          int64                `json:"time_offset"`
	VotingMints         []VotingMintResponse `json:"voting_mints"`
}

// WeightResponse is returned by the voter weight endpoint
type WeightResponse struct {
	Authority registrar.Identity `json:"authority"`
	Weight    uint64             `json:"weight"`
}

// DepositResponse describes a used deposit entry
type DepositResponse struct {
	Index         int                `json:"index"`
	Mint          registrar.Identity `json:"mint"`
	AllowClawback bool               `json:"allow_clawback"`
	Kind          string             `json:"kind"`
	TimePassed    uint64             `json:"time_passed"`
	Duration      uint64             `json:"duration"`
	// Amounts are in the mint's native units
	AmountDeposited       uint64             `json:"amount_deposited"`
	AmountInitiallyLocked uint64             `json:"amount_initially_locked"`
	AmountUnlocked        uint64             `json:"amount_unlocked"`
	Locking               *voter.LockingInfo `json:"locking,omitempty"`
	VotingPower           *uint64            `json:"voting_power,omitempty"`
}

// VoterResponse describes a voter at a point in time
type VoterResponse struct {
	Authority registrar.Identity `json:"authority"`
	Timestamp int64              `json:"timestamp"`
	Weight    uint64             `json:"weight"`
	Deposits  []DepositResponse  `json:"deposits"`
}

// HistoryResponse describes one journaled operation
type HistoryResponse struct {
	Sequence      uint64 `json:"sequence"`
	Operation     string `json:"operation"`
	Timestamp     int64  `json:"timestamp"`
	Voter         string `json:"voter,omitempty"`
	Signer        string `json:"signer,omitempty"`
	Index         *int64 `json:"index,omitempty"`
	MintIndex     *int64 `json:"mint_index,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Periods       uint32 `json:"periods,omitempty"`
	Amount        uint64 `json:"amount"`
	AllowClawback bool   `json:"allow_clawback"`
}

func optionalIdentity(id registrar.Identity) string {
	if id.IsZero() {
		return ""
	}
	return id.String()
}

func newRegistrarResponse(reg *registrar.Registrar) RegistrarResponse {
	ret := RegistrarResponse{
		Realm:               reg.Realm,
		GoverningMint:       reg.GoverningMint,
		GovernanceProgramID: optionalIdentity(reg.GovernanceProgramID),
		RealmAuthority:      reg.RealmAuthority,
		ClawbackAuthority:   optionalIdentity(reg.ClawbackAuthority),
		VoteWeightDecimals:  reg.VoteWeightDecimals,
		TimeOffset:          reg.TimeOffset,
		VotingMints:         []VotingMintResponse{},
	}
	for i, cfg := range reg.VotingMints {
		if !cfg.Configured() {
			continue
		}
		ret.VotingMints = append(ret.VotingMints, VotingMintResponse{
			Index:                                i,
			Mint:                                 cfg.Mint,
			GrantAuthority:                       optionalIdentity(cfg.GrantAuthority),
			BaselineVoteWeightScaledFactor:       cfg.BaselineVoteWeightScaledFactor,
			MaxExtraLockupVoteWeightScaledFactor: cfg.MaxExtraLockupVoteWeightScaledFactor,
			LockupSaturationSecs:                 cfg.LockupSaturationSecs,
			Decimals:                             cfg.Decimals,
			UsageCount:                           cfg.UsageCount,
		})
	}
	return ret
}

func newDepositResponse(
	idx int,
	mint registrar.Identity,
	allowClawback bool,
	status voter.DepositStatus,
) DepositResponse {
	return DepositResponse{
		Index:                 idx,
		Mint:                  mint,
		AllowClawback:         allowClawback,
		Kind:                  status.Kind.String(),
		TimePassed:            status.TimePassed,
		Duration:              status.Duration,
		AmountDeposited:       status.AmountDepositedNative,
		AmountInitiallyLocked: status.AmountInitiallyLockedNative,
		AmountUnlocked:        status.AmountUnlocked,
	}
}

func identityText(data []byte) string {
	id, err := registrar.NewIdentity(data)
	if err != nil || id.IsZero() {
		return ""
	}
	return id.String()
}

func newHistoryResponse(entry database.JournalEntry) HistoryResponse {
	ret := HistoryResponse{
		Sequence:      entry.Sequence,
		Operation:     entry.Operation,
		Timestamp:     entry.Timestamp,
		Voter:         identityText(entry.Voter),
		Signer:        identityText(entry.Signer),
		Periods:       entry.Periods,
		Amount:        entry.Amount,
		AllowClawback: entry.AllowClawback,
	}
	if entry.Index >= 0 {
		idx := entry.Index
		ret.Index = &idx
		ret.Kind = lockup.Kind(entry.Kind).String()
	}
	if entry.MintIndex >= 0 {
		mintIdx := entry.MintIndex
		ret.MintIndex = &mintIdx
	}
	return ret
}
