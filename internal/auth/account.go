// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the kind of account. The set is closed; use ParseRole to convert
// untrusted input.
type Role string

// Known roles.
const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
)

// ParseRole converts s to a Role. It returns an error coded
// AUTH_INVALID_ROLE for anything outside the known set.
func ParseRole(s string) (Role, error) {
	if r := Role(s); r.Valid() {
		return r, nil
	}
	return "", oops.Code(CodeInvalidRole).
		With("role", s).
		Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleRecruiter
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// Profile holds the optional, user-editable part of an account.
type Profile struct {
	Bio    *string
	Skills []string
}

// Account represents a registered user.
type Account struct {
	ID           ulid.ULID
	Fullname     string
	Email        string
	PhoneNumber  string
	Role         Role
	PasswordHash string
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount creates a validated Account with a fresh ID.
// passwordHash must already be the output of a PasswordHasher.
func NewAccount(fullname, email, phoneNumber string, role Role, passwordHash string) (*Account, error) {
	if fullname == "" || email == "" || phoneNumber == "" {
		return nil, oops.Code(CodeMissingFields).Errorf("fullname, email and phone number are required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Fullname:     fullname,
		Email:        email,
		PhoneNumber:  phoneNumber,
		Role:         role,
		PasswordHash: passwordHash,
		Profile:      Profile{Skills: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ParseSkills splits a comma-joined skills string into trimmed entries.
// Empty entries are dropped.
func ParseSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account.
	// Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	// Returns ErrNotFound if no account has the given ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by exact email.
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update saves all mutable fields of an existing account.
	// Returns ErrNotFound if the account does not exist and
	// ErrDuplicateEmail if the new email belongs to another account.
	Update(ctx context.Context, account *Account) error
}
