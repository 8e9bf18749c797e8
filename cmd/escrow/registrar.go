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

func registrarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registrar",
		Short: "Manage registrars and their voting mints",
	}
	addRegistrarFlags(cmd)
	cmd.AddCommand(
		registrarCreateCommand(),
		registrarConfigureMintCommand(),
		registrarSetTimeOffsetCommand(),
		registrarShowCommand(),
		registrarListCommand(),
	)
	return cmd
}

func registrarCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a registrar",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			realmAuthority, err := identityFlag(cmd, "realm-authority", true)
			if err != nil {
				return err
			}
			clawbackAuthority, err := identityFlag(cmd, "clawback-authority", false)
			if err != nil {
				return err
			}
			programID, err := identityFlag(cmd, "governance-program", false)
			if err != nil {
				return err
			}
			decimals, err := cmd.Flags().GetUint8("vote-weight-decimals")
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				reg, err := e.CreateRegistrar(ctx, escrow.RegistrarParams{
					Key:                 key,
					GovernanceProgramID: programID,
					RealmAuthority:      realmAuthority,
					ClawbackAuthority:   clawbackAuthority,
					VoteWeightDecimals:  decimals,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, reg)
			})
		},
	}
	cmd.Flags().String("realm-authority", "", "realm authority identity")
	cmd.Flags().String("clawback-authority", "", "clawback authority identity")
	cmd.Flags().String("governance-program", "", "governance program identity")
	cmd.Flags().Uint8("vote-weight-decimals", 6, "decimals of vote weights")
	return cmd
}

func registrarConfigureMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure-mint",
		Short: "Configure a voting mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			mint, err := identityFlag(cmd, "mint", true)
			if err != nil {
				return err
			}
			grantAuthority, err := identityFlag(cmd, "grant-authority", false)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			idx, _ := flags.GetInt("index")
			baseline, _ := flags.GetUint64("baseline-factor")
			maxExtra, _ := flags.GetUint64("max-extra-factor")
			saturation, _ := flags.GetUint64("saturation-secs")
			decimals, _ := flags.GetUint8("decimals")
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				err := e.ConfigureVotingMint(ctx, key, signer, idx, registrar.VotingMintConfig{
					Mint:                                 mint,
					GrantAuthority:                       grantAuthority,
					BaselineVoteWeightScaledFactor:       baseline,
					MaxExtraLockupVoteWeightScaledFactor: maxExtra,
					LockupSaturationSecs:                 saturation,
					Decimals:                             decimals,
				})
				if err != nil {
					return err
				}
				reg, err := e.GetRegistrar(ctx, key)
				if err != nil {
					return err
				}
				return printJSON(cmd, reg)
			})
		},
	}
	cmd.Flags().String("signer", "", "realm authority signing the change")
	cmd.Flags().Int("index", 0, "voting mint catalog index")
	cmd.Flags().String("mint", "", "mint identity")
	cmd.Flags().String("grant-authority", "", "authority that may grant deposits of the mint")
	cmd.Flags().Uint64("baseline-factor", registrar.ScaledFactorBase, "baseline vote weight factor, scaled by 1e9")
	cmd.Flags().Uint64("max-extra-factor", 0, "maximum extra lockup vote weight factor, scaled by 1e9")
	cmd.Flags().Uint64("saturation-secs", 0, "lockup length that earns the maximum extra weight")
	cmd.Flags().Uint8("decimals", 6, "decimals of the mint")
	return cmd
}

func registrarSetTimeOffsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-time-offset",
		Short: "Shift the clock of a registrar",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			offset, err := cmd.Flags().GetInt64("offset")
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				return e.SetTimeOffset(ctx, key, signer, offset)
			})
		},
	}
	cmd.Flags().String("signer", "", "realm authority signing the change")
	cmd.Flags().Int64("offset", 0, "offset in seconds")
	return cmd
}

func registrarShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a registrar",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := registrarKey(cmd)
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				reg, err := e.GetRegistrar(ctx, key)
				if err != nil {
					return err
				}
				return printJSON(cmd, reg)
			})
		},
	}
}

func registrarListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registrars",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
				regs, err := e.ListRegistrars(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, regs)
			})
		},
	}
}
