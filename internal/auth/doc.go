// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

// Package auth provides account authentication for Hireline.
//
// # Domain Types
//
// Accounts should be created with NewAccount, which validates the required
// fields and refuses an empty password hash. Direct struct initialization
// bypasses validation and may create invalid state. Repository
// implementations receive pre-validated accounts.
//
// # Primitives
//
//   - Argon2idHasher - salted password hashing and constant-time verification
//   - TokenCodec - signed, expiring session tokens carrying an account ID
//
// # Services
//
// Service coordinates registration, login and profile updates. It is created
// with NewService or NewServiceWithLogger, which validate dependencies.
package auth
