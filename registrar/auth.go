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

package registrar

import "fmt"

// The predicates below only compare identities. Signature checks happen
// before a signer reaches the registrar

// AuthorizeAcceleration checks that the signer may accelerate vesting of
// deposits of the mint at the given index
func (r *Registrar) AuthorizeAcceleration(signer Identity, mintIdx int) error {
	cfg, err := r.VotingMint(mintIdx)
	if err != nil {
		return err
	}
	if !r.isMintAuthority(signer, cfg) {
		return fmt.Errorf(
			"%w: %s for mint %s",
			ErrBadAccelerationAuthority,
			signer,
			cfg.Mint,
		)
	}
	return nil
}

// AuthorizeUnlock checks that the signer may unlock deposits of the mint at
// the given index. Unlike acceleration the config must be in use
func (r *Registrar) AuthorizeUnlock(signer Identity, mintIdx int) error {
	cfg, err := r.VotingMint(mintIdx)
	if err != nil {
		return err
	}
	if !cfg.InUse() {
		return fmt.Errorf("%w: mint %s", ErrMintConfigNotUsed, cfg.Mint)
	}
	if signer.IsZero() || !r.isMintAuthority(signer, cfg) {
		return fmt.Errorf(
			"%w: %s for mint %s",
			ErrBadUnlockDepositAuthority,
			signer,
			cfg.Mint,
		)
	}
	return nil
}

// AuthorizeGrant checks that the signer may create a locked deposit on behalf
// of a voter
func (r *Registrar) AuthorizeGrant(signer Identity, mintIdx int) error {
	cfg, err := r.VotingMint(mintIdx)
	if err != nil {
		return err
	}
	if signer.IsZero() || !r.isMintAuthority(signer, cfg) {
		return fmt.Errorf(
			"%w: %s for mint %s",
			ErrBadGrantAuthority,
			signer,
			cfg.Mint,
		)
	}
	return nil
}

func (r *Registrar) AuthorizeClawback(signer Identity) error {
	if signer.IsZero() || signer != r.ClawbackAuthority {
		return fmt.Errorf("%w: %s", ErrBadClawbackAuthority, signer)
	}
	return nil
}

func (r *Registrar) isMintAuthority(
	signer Identity,
	cfg *VotingMintConfig,
) bool {
	return signer == r.RealmAuthority ||
		(!cfg.GrantAuthority.IsZero() && signer == cfg.GrantAuthority)
}
