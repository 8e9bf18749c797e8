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

func depositCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Manage the deposit entries of a voter",
	}
	addVoterFlags(cmd)
	cmd.PersistentFlags().Int("index", 0, "deposit entry index")
	cmd.AddCommand(
		depositCreateCommand(),
		depositAddCommand(),
		depositWithdrawCommand(),
		depositResetCommand(),
		depositAccelerateCommand(),
		depositUnlockCommand(),
		depositGrantCommand(),
		depositClawbackCommand(),
		depositCloseCommand(),
		depositStatusCommand(),
	)
	return cmd
}

// depositTarget identifies the deposit entry a command acts on
type depositTarget struct {
	key       registrar.Key
	authority registrar.Identity
	index     int
}

// depositRunE builds a RunE for commands that act on a single deposit entry.
// The status of the entry is printed afterwards unless the entry was closed.
func depositRunE(
	printStatus bool,
	fn func(context.Context, *cobra.Command, *escrow.Engine, *depositTarget) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		key, authority, err := voterKey(cmd)
		if err != nil {
			return err
		}
		idx, err := cmd.Flags().GetInt("index")
		if err != nil {
			return err
		}
		target := &depositTarget{key: key, authority: authority, index: idx}
		return withEngine(cmd, func(ctx context.Context, e *escrow.Engine) error {
			if err := fn(ctx, cmd, e, target); err != nil {
				return err
			}
			if !printStatus {
				return nil
			}
			status, err := e.DepositStatus(ctx, key, authority, target.index)
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		})
	}
}

func addLockupFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "none", "lockup kind: none, daily, monthly or cliff")
	cmd.Flags().Uint32("periods", 0, "lockup length in periods")
}

func depositCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deposit entry",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			kind, err := kindFlag(cmd, "kind")
			if err != nil {
				return err
			}
			mint, err := identityFlag(cmd, "mint", true)
			if err != nil {
				return err
			}
			periods, _ := cmd.Flags().GetUint32("periods")
			allowClawback, _ := cmd.Flags().GetBool("allow-clawback")
			return e.CreateDepositEntry(ctx, t.key, t.authority, t.index, escrow.DepositEntryParams{
				Kind:          kind,
				Periods:       periods,
				AllowClawback: allowClawback,
				Mint:          mint,
			})
		}),
	}
	addLockupFlags(cmd)
	cmd.Flags().Bool("allow-clawback", false, "allow the clawback authority to take locked tokens")
	cmd.Flags().String("mint", "", "mint identity")
	return cmd
}

func depositAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Deposit tokens into an entry",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			amount, _ := cmd.Flags().GetUint64("amount")
			return e.Deposit(ctx, t.key, t.authority, t.index, amount)
		}),
	}
	cmd.Flags().Uint64("amount", 0, "amount in native units")
	return cmd
}

func depositWithdrawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw unlocked tokens from an entry",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			amount, _ := cmd.Flags().GetUint64("amount")
			return e.Withdraw(ctx, t.key, t.authority, t.index, amount)
		}),
	}
	cmd.Flags().Uint64("amount", 0, "amount in native units")
	return cmd
}

func depositResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restart the lockup of an entry",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			kind, err := kindFlag(cmd, "kind")
			if err != nil {
				return err
			}
			periods, _ := cmd.Flags().GetUint32("periods")
			return e.ResetLockup(ctx, t.key, t.authority, t.index, kind, periods)
		}),
	}
	addLockupFlags(cmd)
	return cmd
}

func depositAccelerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accelerate",
		Short: "Vest an entry immediately",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			return e.AccelerateVesting(ctx, t.key, signer, t.authority, t.index)
		}),
	}
	cmd.Flags().String("signer", "", "realm or grant authority")
	return cmd
}

func depositUnlockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "End the lockup of an entry immediately",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			return e.UnlockDeposit(ctx, t.key, signer, t.authority, t.index)
		}),
	}
	cmd.Flags().String("signer", "", "realm or grant authority")
	return cmd
}

func depositGrantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Create a locked deposit on behalf of a voter",
		Long:  "Create a locked deposit on behalf of a voter. The entry index is chosen by the engine and --index is ignored.",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			kind, err := kindFlag(cmd, "kind")
			if err != nil {
				return err
			}
			mint, err := identityFlag(cmd, "mint", true)
			if err != nil {
				return err
			}
			periods, _ := cmd.Flags().GetUint32("periods")
			allowClawback, _ := cmd.Flags().GetBool("allow-clawback")
			amount, _ := cmd.Flags().GetUint64("amount")
			idx, err := e.Grant(ctx, t.key, signer, t.authority, escrow.GrantParams{
				Kind:          kind,
				Periods:       periods,
				AllowClawback: allowClawback,
				Mint:          mint,
				Amount:        amount,
			})
			if err != nil {
				return err
			}
			t.index = idx
			return nil
		}),
	}
	addLockupFlags(cmd)
	cmd.Flags().String("signer", "", "realm or grant authority funding the deposit")
	cmd.Flags().Bool("allow-clawback", false, "allow the clawback authority to take locked tokens")
	cmd.Flags().String("mint", "", "mint identity")
	cmd.Flags().Uint64("amount", 0, "amount in native units")
	return cmd
}

func depositClawbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clawback",
		Short: "Take the locked tokens of an entry",
		RunE: depositRunE(true, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			signer, err := identityFlag(cmd, "signer", true)
			if err != nil {
				return err
			}
			destination, err := identityFlag(cmd, "destination", true)
			if err != nil {
				return err
			}
			amount, err := e.Clawback(ctx, t.key, signer, t.authority, t.index, destination)
			if err != nil {
				return err
			}
			cmd.PrintErrf("clawed back %d\n", amount)
			return nil
		}),
	}
	cmd.Flags().String("signer", "", "clawback authority")
	cmd.Flags().String("destination", "", "account receiving the tokens")
	return cmd
}

func depositCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Free an empty deposit entry",
		RunE: depositRunE(false, func(ctx context.Context, cmd *cobra.Command, e *escrow.Engine, t *depositTarget) error {
			return e.CloseDepositEntry(ctx, t.key, t.authority, t.index)
		}),
	}
}

func depositStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of a deposit entry",
		RunE: depositRunE(true, func(context.Context, *cobra.Command, *escrow.Engine, *depositTarget) error {
			return nil
		}),
	}
}
