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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/internal/config"
	"github.com/blinklabs-io/escrow/internal/node"
	"github.com/blinklabs-io/escrow/lockup"
	"github.com/blinklabs-io/escrow/registrar"
)

// parseNow accepts RFC3339 or unix seconds. An empty value means the host
// clock.
func parseNow(value string) (func() time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		now := time.Unix(secs, 0)
		return func() time.Time { return now }, nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --now value %q: %w", value, err)
	}
	return func() time.Time { return now }, nil
}

// withEngine opens the engine for the duration of fn
func withEngine(
	cmd *cobra.Command,
	fn func(context.Context, *escrow.Engine) error,
) (err error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	clock, err := parseNow(globalFlags.now)
	if err != nil {
		return err
	}
	logger := commonRun(os.Stderr, true)
	e, err := node.NewEngine(cfg, logger, nil, clock)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, e.Stop())
	}()
	return fn(cmd.Context(), e)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func identityFlag(
	cmd *cobra.Command,
	name string,
	required bool,
) (registrar.Identity, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return registrar.Identity{}, err
	}
	if value == "" {
		if required {
			return registrar.Identity{}, fmt.Errorf("--%s is required", name)
		}
		return registrar.Identity{}, nil
	}
	ret, err := registrar.ParseIdentity(value)
	if err != nil {
		return registrar.Identity{}, fmt.Errorf("--%s: %w", name, err)
	}
	return ret, nil
}

func kindFlag(cmd *cobra.Command, name string) (lockup.Kind, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return lockup.KindNone, err
	}
	return lockup.ParseKind(value)
}

func addRegistrarFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("realm", "", "realm identity")
	cmd.PersistentFlags().String("governing-mint", "", "governing mint identity")
}

func registrarKey(cmd *cobra.Command) (registrar.Key, error) {
	realm, err := identityFlag(cmd, "realm", true)
	if err != nil {
		return registrar.Key{}, err
	}
	mint, err := identityFlag(cmd, "governing-mint", true)
	if err != nil {
		return registrar.Key{}, err
	}
	return registrar.Key{Realm: realm, GoverningMint: mint}, nil
}

func addVoterFlags(cmd *cobra.Command) {
	addRegistrarFlags(cmd)
	cmd.PersistentFlags().String("authority", "", "voter authority identity")
}

func voterKey(cmd *cobra.Command) (registrar.Key, registrar.Identity, error) {
	key, err := registrarKey(cmd)
	if err != nil {
		return key, registrar.Identity{}, err
	}
	authority, err := identityFlag(cmd, "authority", true)
	return key, authority, err
}
