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

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/escrow"
	"github.com/blinklabs-io/escrow/registrar"
)

func voterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voter",
		Short: "Manage voters",
	}
	addVoterFlags(cmd)
	cmd.AddCommand(
		voterCreateCommand(),
		voterWeightCommand(),
		voterInfoCommand(),
		voterHistoryCommand(),
		voterListCommand(),
	)
	return cmd
}

// voterRunE builds a RunE for commands that act on a single voter
func voterRunE(
	fn func(context.Context, *cobra.Command, *escrow.Engine, registrar.Key, registrar.Identity) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		key, authority, err := voterKey(cmd)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
			return fn(ctx, cmd, e, key, authority)
		})
	}
}

func voterCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a voter",
		RunE: voterRunE(func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, key registrar.Key, authority registrar.Identity) error {
			v, err := e.CreateVoter(ctx, key, authority)
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		}),
	}
}

func voterWeightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "weight",
		Short: "Show the current vote weight of a voter",
		RunE: voterRunE(func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, key registrar.Key, authority registrar.Identity) error {
			weight, err := e.VoterWeight(ctx, key, authority)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"authority": authority,
				"weight":    weight,
			})
		}),
	}
}

func voterInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the deposits and vote weight of a voter",
		RunE: voterRunE(func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, key registrar.Key, authority registrar.Identity) error {
			info, err := e.VoterInfo(ctx, key, authority)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		}),
	}
}

func voterHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled operations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			// Without an authority the whole registrar history is shown
			authority, err := identityFlag(cmd, "authority", false)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				entries, err := e.History(ctx, key, authority, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, entries)
			})
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of entries, 0 for all")
	return cmd
}

func voterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the voters of a registrar",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				voters, err := e.ListVoters(ctx, key)
				if err != nil {
					return err
				}
				authorities := make([]registrar.Identity, 0, len(voters))
				for _, v := range voters {
					authorities = append(authorities, v.Authority)
				}
				return printJSON(cmd, authorities)
			})
		},
	}
}
