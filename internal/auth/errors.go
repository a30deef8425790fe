// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by repositories when an account with the same
// email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// Error codes attached to errors returned by this package. Transport layers
// map them to responses; anything without one of these codes is internal.
const (
	CodeMissingFields      = "AUTH_MISSING_FIELDS"
	CodeInvalidRole        = "AUTH_INVALID_ROLE"
	CodeDuplicateAccount   = "AUTH_DUPLICATE_ACCOUNT"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeRoleMismatch       = "AUTH_ROLE_MISMATCH"
	CodeUnauthenticated    = "AUTH_UNAUTHENTICATED"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// Client-facing messages. Unknown email and wrong password share
// MsgInvalidCredentials so responses cannot be used to probe for accounts.
const (
	MsgMissingFields      = "Something is missing"
	MsgMissingLoginFields = "All fields are required"
	MsgInvalidRole        = "Role must be one of: seeker, recruiter"
	MsgDuplicateAccount   = "User already exists with this email"
	MsgInvalidCredentials = "Invalid credentials"
	MsgRoleMismatch       = "You do not have the appropriate role to access this account."
	MsgUnauthenticated    = "User is not authenticated"
	MsgInvalidToken       = "Invalid token"
	MsgAccountNotFound    = "User not found"
)
