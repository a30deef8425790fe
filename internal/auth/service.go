// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenIssuer issues session tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID ulid.ULID) (token string, expiresAt time.Time, err error)
}

// Service provides account registration, login and profile operations.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewService creates a new Service using the default logger.
func NewService(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service that logs to logger.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("logger is required")
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// dummyPasswordHash is used when an account doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterInput is the data required to create an account.
type RegisterInput struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
}

// Register creates a new account. No session is issued; the caller must log
// in separately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if in.Fullname == "" || in.Email == "" || in.PhoneNumber == "" || in.Password == "" || in.Role == "" {
		return nil, oops.Code(CodeMissingFields).Errorf("fullname, email, phone number, password and role are required")
	}

	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	_, err = s.accounts.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, oops.Code(CodeDuplicateAccount).
			With("email", in.Email).
			Errorf("account already exists")
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(in.Fullname, in.Email, in.PhoneNumber, role, hash)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// The unique index wins any race with the lookup above.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code(CodeDuplicateAccount).
				With("email", in.Email).
				Errorf("account already exists")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"role", account.Role.String(),
	)
	return account, nil
}

// LoginInput is the data supplied with a login attempt.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Account   *Account
	Token     string
	ExpiresAt time.Time
}

// Login authenticates an account and issues a session token.
//
// Unknown email and wrong password return the same AUTH_INVALID_CREDENTIALS
// error, and the password is verified against a dummy hash when the account
// does not exist so timing does not reveal which case occurred. The role is
// checked only after the credentials succeed.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, oops.Code(CodeMissingFields).Errorf("email, password and role are required")
	}

	account, lookupErr := s.accounts.GetByEmail(ctx, in.Email)

	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		exists = true
	}

	// Always verify, even against the dummy hash.
	valid := s.hasher.Verify(in.Password, targetHash)
	if !exists || !valid {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	}

	if Role(in.Role) != account.Role {
		return nil, oops.Code(CodeRoleMismatch).
			With("account_id", account.ID.String()).
			Errorf("role does not match account")
	}

	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		s.upgradeHash(ctx, account, in.Password)
	}

	token, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session token").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return &LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// upgradeHash replaces a legacy hash. Failures are logged; login proceeds.
func (s *Service) upgradeHash(ctx context.Context, account *Account, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed",
			"account_id", account.ID.String(),
			"operation", "hash password",
			"error", err,
		)
		return
	}

	previous := account.PasswordHash
	account.PasswordHash = newHash
	account.UpdatedAt = time.Now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		account.PasswordHash = previous
		s.logger.WarnContext(ctx, "password hash upgrade failed",
			"account_id", account.ID.String(),
			"operation", "update account",
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "password hash upgraded", "account_id", account.ID.String())
}

// ProfileUpdate holds optional profile changes. Empty fields are left as is.
type ProfileUpdate struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Bio         string
	// Skills is a comma-joined list, e.g. "go, sql".
	Skills string
}

// UpdateProfile applies changes to the account identified by id.
func (s *Service) UpdateProfile(ctx context.Context, id ulid.ULID, in ProfileUpdate) (*Account, error) {
	account, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != account.Email {
		other, lookupErr := s.accounts.GetByEmail(ctx, in.Email)
		switch {
		case lookupErr == nil && other.ID != account.ID:
			return nil, oops.Code(CodeDuplicateAccount).
				With("account_id", id.String()).
				Errorf("email belongs to another account")
		case lookupErr != nil && !errors.Is(lookupErr, ErrNotFound):
			return nil, oops.Code("AUTH_PROFILE_UPDATE_FAILED").
				With("operation", "get account by email").
				With("account_id", id.String()).
				Wrap(lookupErr)
		}
		account.Email = in.Email
	}
	if in.Fullname != "" {
		account.Fullname = in.Fullname
	}
	if in.PhoneNumber != "" {
		account.PhoneNumber = in.PhoneNumber
	}
	if in.Bio != "" {
		bio := in.Bio
		account.Profile.Bio = &bio
	}
	if in.Skills != "" {
		account.Profile.Skills = ParseSkills(in.Skills)
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, oops.Code(CodeAccountNotFound).
				With("account_id", id.String()).
				Wrap(ErrNotFound)
		case errors.Is(err, ErrDuplicateEmail):
			return nil, oops.Code(CodeDuplicateAccount).
				With("account_id", id.String()).
				Errorf("email belongs to another account")
		}
		return nil, oops.Code("AUTH_PROFILE_UPDATE_FAILED").
			With("operation", "update account").
			With("account_id", id.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "profile updated", "account_id", id.String())
	return account, nil
}

// Account returns the account identified by id.
func (s *Service) Account(ctx context.Context, id ulid.ULID) (*Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeAccountNotFound).
				With("account_id", id.String()).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_ACCOUNT_LOOKUP_FAILED").
			With("operation", "get account by id").
			With("account_id", id.String()).
			Wrap(err)
	}
	return account, nil
}
