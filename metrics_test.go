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

package escrow

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/registrar"
)

func TestOperationMetrics(t *testing.T) {
	e, err := New(NewConfig(WithPromRegistry(prometheus.NewRegistry())))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, e.Stop())
	}()
	var realm, mint, authority registrar.Identity
	realm[0], mint[0], authority[0] = 1, 2, 3
	key := registrar.Key{Realm: realm, GoverningMint: mint}

	_, err = e.CreateRegistrar(context.Background(), RegistrarParams{
		Key:            key,
		RealmAuthority: authority,
	})
	require.NoError(t, err)
	_, err = e.CreateRegistrar(context.Background(), RegistrarParams{
		Key:            key,
		RealmAuthority: authority,
	})
	require.ErrorIs(t, err, ErrRegistrarExists)

	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(e.metrics.operations.WithLabelValues("create_registrar", "success")),
		0,
	)
	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(e.metrics.operations.WithLabelValues("create_registrar", "failure")),
		0,
	)
}

func TestRegistrarCache(t *testing.T) {
	ctx := context.Background()
	e, err := New(NewConfig(WithPromRegistry(prometheus.NewRegistry())))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, e.Stop())
	}()
	var realm, mint, authority registrar.Identity
	realm[0], mint[0], authority[0] = 1, 2, 3
	key := registrar.Key{Realm: realm, GoverningMint: mint}
	_, err = e.CreateRegistrar(ctx, RegistrarParams{
		Key:            key,
		RealmAuthority: authority,
	})
	require.NoError(t, err)

	lookups := func(result string) float64 {
		return testutil.ToFloat64(e.metrics.registrarCache.WithLabelValues(result))
	}
	reg, err := e.GetRegistrar(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reg.TimeOffset)
	// Callers get a copy of the cached value
	reg.TimeOffset = 99
	reg, err = e.GetRegistrar(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reg.TimeOffset)
	assert.InDelta(t, 1, lookups("miss"), 0)
	assert.InDelta(t, 1, lookups("hit"), 0)

	// A committed write evicts the registrar
	require.NoError(t, e.SetTimeOffset(ctx, key, authority, 60))
	reg, err = e.GetRegistrar(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(60), reg.TimeOffset)
	assert.InDelta(t, 2, lookups("miss"), 0)
}
