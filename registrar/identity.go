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

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const IdentitySize = 32

// Identity is an account or authority key that the caller has already
// verified. The zero value means "no identity"
type Identity [IdentitySize]byte

func NewIdentity(data []byte) (Identity, error) {
	var ret Identity
	if len(data) != IdentitySize {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidIdentity,
			IdentitySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// ParseIdentity decodes the base58 text form of an identity
func ParseIdentity(s string) (Identity, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	return NewIdentity(data)
}

func (i Identity) String() string {
	return base58.Encode(i[:])
}

func (i Identity) Bytes() []byte {
	return i[:]
}

func (i Identity) IsZero() bool {
	return i == Identity{}
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(text []byte) error {
	tmp, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = tmp
	return nil
}
