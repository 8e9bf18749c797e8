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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/internal/test/testutil"
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testIdentity(b byte) registrar.Identity {
	var ret registrar.Identity
	for i := range ret {
		ret[i] = b
	}
	return ret
}

var (
	testKey = registrar.Key{
		Realm:         testIdentity(20),
		GoverningMint: testIdentity(21),
	}
	testAuthority = testIdentity(4)
	testMint      = testIdentity(10)
)

// mockEngine implements Engine for testing
type mockEngine struct {
	registrars []*registrar.Registrar
	voters     []*voter.Voter
	weight     uint64
	info       *escrow.VoterInfo
	history    []database.JournalEntry
	err        error
	// lastAuthority is the voter filter of the last History call
	lastAuthority registrar.Identity
}

func (m *mockEngine) ListRegistrars(context.Context) ([]*registrar.Registrar, error) {
	return m.registrars, m.err
}

func (m *mockEngine) GetRegistrar(
	_ context.Context,
	key registrar.Key,
) (*registrar.Registrar, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, reg := range m.registrars {
		if reg.Key == key {
			return reg, nil
		}
	}
	return nil, database.ErrRegistrarNotFound
}

func (m *mockEngine) ListVoters(context.Context, registrar.Key) ([]*voter.Voter, error) {
	return m.voters, m.err
}

func (m *mockEngine) VoterWeight(
	context.Context,
	registrar.Key,
	registrar.Identity,
) (uint64, error) {
	return m.weight, m.err
}

func (m *mockEngine) VoterInfo(
	context.Context,
	registrar.Key,
	registrar.Identity,
) (*escrow.VoterInfo, error) {
	return m.info, m.err
}

func (m *mockEngine) History(
	_ context.Context,
	_ registrar.Key,
	authority registrar.Identity,
	_ int,
) ([]database.JournalEntry, error) {
	m.lastAuthority = authority
	if m.err != nil {
		return nil, m.err
	}
	// Callers may reorder the result
	ret := make([]database.JournalEntry, len(m.history))
	copy(ret, m.history)
	return ret, nil
}

func newTestRegistrar(t *testing.T) *registrar.Registrar {
	t.Helper()
	reg, err := registrar.New(testKey, registrar.Identity{}, testIdentity(1), testIdentity(2), 6)
	require.NoError(t, err)
	require.NoError(
		t,
		reg.ConfigureVotingMint(testIdentity(1), 1, registrar.VotingMintConfig{
			Mint:                                 testMint,
			BaselineVoteWeightScaledFactor:       registrar.ScaledFactorBase,
			MaxExtraLockupVoteWeightScaledFactor: registrar.ScaledFactorBase,
			LockupSaturationSecs:                 86400,
			Decimals:                             6,
		}),
	)
	return reg
}

func testInfo() *escrow.VoterInfo {
	endTs := int64(1_700_864_000)
	return &escrow.VoterInfo{
		Authority: testAuthority,
		Timestamp: 1_700_000_000,
		Weight:    2000,
		Deposits: []escrow.DepositEntryInfo{
			{
				Index: 3,
				Mint:  testMint,
				Status: voter.DepositStatus{
					Kind:                        lockup.KindCliff,
					Duration:                    864_000,
					AmountInitiallyLockedNative: 1000,
					AmountDepositedNative:       1000,
				},
				Locking: voter.LockingInfo{
					Amount:       1000,
					EndTimestamp: &endTs,
				},
				VotingPower: 2000,
			},
		},
	}
}

func doRequest(
	t *testing.T,
	engine Engine,
	path string,
	target any,
) *httptest.ResponseRecorder {
	t.Helper()
	s := New(Config{}, engine, nil)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if target != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
	}
	return rec
}

func registrarPath() string {
	return "/api/v0/registrars/" + testKey.Realm.String() + "/" + testKey.GoverningMint.String()
}

func voterPath() string {
	return registrarPath() + "/voters/" + testAuthority.String()
}

func TestStartStop(t *testing.T) {
	s := New(Config{ListenAddress: "127.0.0.1:0"}, &mockEngine{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Start(ctx))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	s.mu.Lock()
	assert.Nil(t, s.httpServer)
	s.mu.Unlock()
	// Stopping twice is harmless
	require.NoError(t, s.Stop(stopCtx))
}

func TestStartContextCancel(t *testing.T) {
	s := New(Config{ListenAddress: "127.0.0.1:0"}, &mockEngine{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	testutil.WaitForCondition(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.httpServer == nil
	}, 5*time.Second, "server stop on context cancel")
}

func TestHealthAndRoot(t *testing.T) {
	var health HealthResponse
	rec := doRequest(t, &mockEngine{}, "/health", &health)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, health.IsHealthy)

	var root RootResponse
	rec = doRequest(t, &mockEngine{}, "/", &root)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "escrow", root.Name)

	rec = doRequest(t, &mockEngine{}, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegistrar(t *testing.T) {
	engine := &mockEngine{registrars: []*registrar.Registrar{newTestRegistrar(t)}}
	var resp RegistrarResponse
	rec := doRequest(t, engine, registrarPath(), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testKey.Realm, resp.Realm)
	assert.Empty(t, resp.GovernanceProgramID)
	require.Len(t, resp.VotingMints, 1)
	assert.Equal(t, 1, resp.VotingMints[0].Index)
	assert.Equal(t, testMint, resp.VotingMints[0].Mint)

	var list []RegistrarResponse
	rec = doRequest(t, engine, "/api/v0/registrars", &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list, 1)
	assert.Equal(t, "1", rec.Header().Get("X-Pagination-Count-Total"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		err     error
		status  int
		message string
	}{
		{
			name:   "bad realm",
			path:   "/api/v0/registrars/0OIl/" + testMint.String(),
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown registrar",
			path:   registrarPath(),
			status: http.StatusNotFound,
		},
		{
			name:   "unknown voter",
			path:   voterPath() + "/weight",
			err:    database.ErrVoterNotFound,
			status: http.StatusNotFound,
		},
		{
			name:    "decimals mismatch",
			path:    voterPath() + "/weight",
			err:     fmt.Errorf("%w: mint has 9 decimals, vote weight has 6", registrar.ErrDecimalsMismatch),
			status:  http.StatusUnprocessableEntity,
			message: "mint has 9 decimals, vote weight has 6",
		},
		{
			name:   "journal disabled",
			path:   registrarPath() + "/history",
			err:    database.ErrJournalDisabled,
			status: http.StatusNotImplemented,
		},
		{
			name:   "engine stopped",
			path:   voterPath(),
			err:    escrow.ErrEngineStopped,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "internal error",
			path:   voterPath() + "/deposits",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
		},
		{
			name:   "bad pagination",
			path:   registrarPath() + "/voters?count=abc",
			status: http.StatusBadRequest,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(t, &mockEngine{err: test.err}, test.path, nil)
			assert.Equal(t, test.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, test.status, resp.StatusCode)
			if test.message != "" {
				assert.Contains(t, resp.Message, test.message)
			}
		})
	}
}

func TestVoterWeight(t *testing.T) {
	var resp WeightResponse
	rec := doRequest(t, &mockEngine{weight: 12345}, voterPath()+"/weight", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAuthority, resp.Authority)
	assert.Equal(t, uint64(12345), resp.Weight)
}

func TestVoterDeposits(t *testing.T) {
	engine := &mockEngine{info: testInfo()}

	var voterResp VoterResponse
	rec := doRequest(t, engine, voterPath(), &voterResp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(2000), voterResp.Weight)
	require.Len(t, voterResp.Deposits, 1)

	var deposits []DepositResponse
	rec = doRequest(t, engine, voterPath()+"/deposits", &deposits)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, deposits, 1)
	assert.Equal(t, "cliff", deposits[0].Kind)
	require.NotNil(t, deposits[0].Locking)
	assert.Equal(t, uint64(1000), deposits[0].Locking.Amount)
	require.NotNil(t, deposits[0].VotingPower)
	assert.Equal(t, uint64(2000), *deposits[0].VotingPower)

	var deposit DepositResponse
	rec = doRequest(t, engine, voterPath()+"/deposits/3", &deposit)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, deposit.Index)
	assert.Equal(t, uint64(1000), deposit.AmountDeposited)

	rec = doRequest(t, engine, voterPath()+"/deposits/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, engine, voterPath()+"/deposits/32", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(t, engine, voterPath()+"/deposits/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoters(t *testing.T) {
	var voters []*voter.Voter
	for i := range 5 {
		v, err := voter.New(testIdentity(byte(40+i)), testKey)
		require.NoError(t, err)
		voters = append(voters, v)
	}
	var resp []registrar.Identity
	rec := doRequest(t, &mockEngine{voters: voters}, registrarPath()+"/voters?count=2&page=3", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []registrar.Identity{testIdentity(44)}, resp)
	assert.Equal(t, "5", rec.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "3", rec.Header().Get("X-Pagination-Page-Total"))
}

func TestHistory(t *testing.T) {
	engine := &mockEngine{
		history: []database.JournalEntry{
			{
				Sequence: 2,
				JournalRecord: database.JournalRecord{
					Operation: "deposit",
					Timestamp: 1_700_000_100,
					Voter:     testAuthority.Bytes(),
					Signer:    testAuthority.Bytes(),
					Index:     3,
					MintIndex: 1,
					Kind:      uint8(lockup.KindCliff),
					Amount:    1000,
				},
			},
			{
				Sequence: 1,
				JournalRecord: database.JournalRecord{
					Operation: "create_registrar",
					Timestamp: 1_700_000_000,
					Signer:    testIdentity(1).Bytes(),
					Index:     -1,
					MintIndex: -1,
				},
			},
		},
	}

	var resp []HistoryResponse
	rec := doRequest(t, engine, registrarPath()+"/history", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp, 2)
	assert.Equal(t, "create_registrar", resp[0].Operation)
	assert.Nil(t, resp[0].Index)
	assert.Empty(t, resp[0].Voter)
	assert.Equal(t, "deposit", resp[1].Operation)
	require.NotNil(t, resp[1].Index)
	assert.Equal(t, int64(3), *resp[1].Index)
	assert.Equal(t, "cliff", resp[1].Kind)
	assert.Equal(t, testAuthority.String(), resp[1].Voter)
	assert.True(t, engine.lastAuthority.IsZero())

	rec = doRequest(t, engine, voterPath()+"/history?order=desc&count=1", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp, 1)
	assert.Equal(t, "deposit", resp[0].Operation)
	assert.Equal(t, testAuthority, engine.lastAuthority)

	rec = doRequest(t, engine, registrarPath()+"/history?voter="+testIdentity(9).String(), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testIdentity(9), engine.lastAuthority)
}
