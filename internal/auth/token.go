// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenTTL = 24 * time.Hour // fixed lifetime, no renewal
	MinSecretLength = 32             // bytes
)

var (
	// ErrInvalidToken is wrapped by every token verification failure.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens whose expiry has passed.
	// It wraps ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrInvalidToken)
)

// Claims is the verified content of a session token.
type Claims struct {
	AccountID ulid.ULID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire form of Claims.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithTTL overrides the token lifetime. Intended for tests.
func WithTTL(ttl time.Duration) TokenOption {
	return func(c *TokenCodec) { c.ttl = ttl }
}

// NewTokenCodec creates a codec signing with secret.
// The secret must be at least MinSecretLength bytes.
func NewTokenCodec(secret []byte, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_SECRET_MISSING").Errorf("session secret is required")
	}
	if len(secret) < MinSecretLength {
		return nil, oops.Code("AUTH_SECRET_WEAK").
			With("min_length", MinSecretLength).
			Errorf("session secret must be at least %d bytes", MinSecretLength)
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    SessionTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Issue signs a token for accountID that expires after the codec's TTL.
func (c *TokenCodec) Issue(accountID ulid.ULID) (string, time.Time, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_ISSUE_FAILED").Errorf("account ID cannot be zero")
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and returns its claims.
//
// The HMAC over header.payload is checked before any segment is decoded, so
// claims are never read from an unauthenticated token.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, invalidToken("malformed token", nil)
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return Claims{}, invalidToken("malformed signature", err)
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return Claims{}, invalidToken("signature mismatch", err)
	}

	var tc tokenClaims
	parsed, err := c.parser.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, oops.Code(CodeInvalidToken).
				With("reason", "expired").
				Wrap(ErrTokenExpired)
		}
		return Claims{}, invalidToken("invalid claims", err)
	}
	if !parsed.Valid {
		return Claims{}, invalidToken("invalid claims", nil)
	}

	id, err := ulid.Parse(tc.UserID)
	if err != nil {
		return Claims{}, invalidToken("invalid account id", err)
	}

	claims := Claims{AccountID: id}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

func invalidToken(reason string, cause error) error {
	b := oops.Code(CodeInvalidToken).With("reason", reason)
	if cause != nil {
		b = b.With("cause", cause.Error())
	}
	return b.Wrap(ErrInvalidToken)
}
