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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/internal/version"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeEngineError maps an error from parsing or the engine to a response
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, registrar.ErrInvalidIdentity),
		errors.Is(err, voter.ErrDepositEntryIndexOutOfRange),
		errors.Is(err, ErrInvalidPaginationParameters):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrRegistrarNotFound),
		errors.Is(err, database.ErrVoterNotFound),
		errors.Is(err, voter.ErrDepositEntryNotActive):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registrar.ErrDecimalsMismatch):
		// The stored registrar cannot produce a weight until reconfigured
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrJournalDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, escrow.ErrEngineStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseKey(r *http.Request) (registrar.Key, error) {
	realm, err := registrar.ParseIdentity(r.PathValue("realm"))
	if err != nil {
		return registrar.Key{}, fmt.Errorf("realm: %w", err)
	}
	mint, err := registrar.ParseIdentity(r.PathValue("mint"))
	if err != nil {
		return registrar.Key{}, fmt.Errorf("governing mint: %w", err)
	}
	return registrar.Key{Realm: realm, GoverningMint: mint}, nil
}

func parseVoter(r *http.Request) (registrar.Key, registrar.Identity, error) {
	key, err := parseKey(r)
	if err != nil {
		return key, registrar.Identity{}, err
	}
	authority, err := registrar.ParseIdentity(r.PathValue("authority"))
	if err != nil {
		return key, authority, fmt.Errorf("voter authority: %w", err)
	}
	return key, authority, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// The catch-all pattern also matches unknown paths
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "escrow",
		Version: version.GetVersionString(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleRegistrars(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	regs, err := s.engine.ListRegistrars(r.Context())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	ret := make([]RegistrarResponse, 0, len(regs))
	for _, reg := range regs {
		ret = append(ret, newRegistrarResponse(reg))
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, Paginate(ret, params))
}

func (s *Server) handleRegistrar(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	reg, err := s.engine.GetRegistrar(r.Context(), key)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrarResponse(reg))
}

func (s *Server) handleVoters(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	voters, err := s.engine.ListVoters(r.Context(), key)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	ret := make([]registrar.Identity, 0, len(voters))
	for _, v := range voters {
		ret = append(ret, v.Authority)
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, Paginate(ret, params))
}

func (s *Server) voterResponse(r *http.Request) (*VoterResponse, error) {
	key, authority, err := parseVoter(r)
	if err != nil {
		return nil, err
	}
	info, err := s.engine.VoterInfo(r.Context(), key, authority)
	if err != nil {
		return nil, err
	}
	ret := &VoterResponse{
		Authority: info.Authority,
		Timestamp: info.Timestamp,
		Weight:    info.Weight,
		Deposits:  make([]DepositResponse, 0, len(info.Deposits)),
	}
	for _, d := range info.Deposits {
		dr := newDepositResponse(d.Index, d.Mint, d.AllowClawback, d.Status)
		locking := d.Locking
		dr.Locking = &locking
		power := d.VotingPower
		dr.VotingPower = &power
		ret.Deposits = append(ret.Deposits, dr)
	}
	return ret, nil
}

func (s *Server) handleVoter(w http.ResponseWriter, r *http.Request) {
	ret, err := s.voterResponse(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleVoterWeight(w http.ResponseWriter, r *http.Request) {
	key, authority, err := parseVoter(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	weight, err := s.engine.VoterWeight(r.Context(), key, authority)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WeightResponse{
		Authority: authority,
		Weight:    weight,
	})
}

func (s *Server) handleDeposits(w http.ResponseWriter, r *http.Request) {
	ret, err := s.voterResponse(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ret.Deposits)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeEngineError(w, fmt.Errorf("%w: deposit index %q", errBadRequest, r.PathValue("index")))
		return
	}
	if idx < 0 || idx >= voter.MaxDepositEntries {
		s.writeEngineError(w, fmt.Errorf("%w: %d", voter.ErrDepositEntryIndexOutOfRange, idx))
		return
	}
	ret, err := s.voterResponse(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	for _, d := range ret.Deposits {
		if d.Index == idx {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	s.writeEngineError(w, fmt.Errorf("%w: index %d", voter.ErrDepositEntryNotActive, idx))
}

// handleHistory serves the journal of a registrar, optionally narrowed to
// one voter by path or by the voter query parameter
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	authorityText := r.PathValue("authority")
	if authorityText == "" {
		authorityText = r.URL.Query().Get("voter")
	}
	var authority registrar.Identity
	if authorityText != "" {
		authority, err = registrar.ParseIdentity(authorityText)
		if err != nil {
			s.writeEngineError(w, fmt.Errorf("voter authority: %w", err))
			return
		}
	}
	params, err := ParsePagination(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	entries, err := s.engine.History(r.Context(), key, authority, 0)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	// The journal is read newest first
	slices.Reverse(entries)
	ret := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		ret = append(ret, newHistoryResponse(entry))
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, Paginate(ret, params))
}
