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

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// Engine is the interface the API server uses to query escrow state. It is
// satisfied by *escrow.Engine.
type Engine interface {
	ListRegistrars(ctx context.Context) ([]*registrar.Registrar, error)
	GetRegistrar(ctx context.Context, key registrar.Key) (*registrar.Registrar, error)
	ListVoters(ctx context.Context, key registrar.Key) ([]*voter.Voter, error)
	VoterWeight(
		ctx context.Context,
		key registrar.Key,
		authority registrar.Identity,
	) (uint64, error)
	VoterInfo(
		ctx context.Context,
		key registrar.Key,
		authority registrar.Identity,
	) (*escrow.VoterInfo, error)
	History(
		ctx context.Context,
		key registrar.Key,
		authority registrar.Identity,
		limit int,
	) ([]database.JournalEntry, error)
}

var _ Engine = (*escrow.Engine)(nil)
