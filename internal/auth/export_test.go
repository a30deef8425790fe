// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth

import "io"

// NewArgon2idHasherWithRand returns a hasher drawing salt from r.
func NewArgon2idHasherWithRand(r io.Reader) *Argon2idHasher {
	return &Argon2idHasher{rand: r}
}

// DummyPasswordHash exposes the timing-equalization hash to tests.
const DummyPasswordHash = dummyPasswordHash
