// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/pkg/errutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenCodec(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := auth.NewTokenCodec(nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_SECRET_MISSING")
	})

	t.Run("rejects short secret", func(t *testing.T) {
		_, err := auth.NewTokenCodec([]byte("too-short"))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_SECRET_WEAK")
	})

	t.Run("defaults to one day", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(now)))
		require.NoError(t, err)
		_, expiresAt, err := codec.Issue(ulid.Make())
		require.NoError(t, err)
		assert.Equal(t, now.Add(24*time.Hour), expiresAt)
	})
}

func TestTokenCodec_IssueVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(now)))
	require.NoError(t, err)

	id := ulid.Make()
	token, expiresAt, err := codec.Issue(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), expiresAt)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestTokenCodec_IssueRejectsZeroID(t *testing.T) {
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)

	_, _, err = codec.Issue(ulid.ULID{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_TOKEN_ISSUE_FAILED")
}

func TestTokenCodec_VerifyRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, _, err := codec.Issue(ulid.Make())
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	otherCodec, err := auth.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), auth.WithClock(fixedClock(now)))
	require.NoError(t, err)
	foreign, _, err := otherCodec.Issue(ulid.Make())
	require.NoError(t, err)

	swapFirst := func(s string) string {
		c := byte('A')
		if s[0] == 'A' {
			c = 'B'
		}
		return string(c) + s[1:]
	}

	forgedPayload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"userId":"` + ulid.Make().String() + `","exp":9999999999}`))
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	notULID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "not-a-ulid",
		"exp":    now.Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": ulid.Make().String(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":             "",
		"one segment":       "abc",
		"two segments":      "abc.def",
		"four segments":     token + ".x",
		"tampered sig":      parts[0] + "." + parts[1] + "." + swapFirst(parts[2]),
		"bad sig encoding":  parts[0] + "." + parts[1] + ".!!!",
		"forged payload":    parts[0] + "." + forgedPayload + "." + parts[2],
		"other secret":      foreign,
		"alg none":          noneHeader + "." + parts[1] + ".",
		"userId not a ULID": notULID,
		"missing expiry":    noExpiry,
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(tok)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			errutil.AssertErrorCode(t, err, auth.CodeInvalidToken)
		})
	}
}

func TestTokenCodec_VerifyExpired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, _, err := issuer.Issue(ulid.Make())
	require.NoError(t, err)

	t.Run("valid just before expiry", func(t *testing.T) {
		verifier, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(issuedAt.Add(23*time.Hour))))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		verifier, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(issuedAt.Add(25*time.Hour))))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidToken)
	})
}

func TestTokenCodec_WithTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(fixedClock(now)), auth.WithTTL(time.Hour))
	require.NoError(t, err)

	_, expiresAt, err := codec.Issue(ulid.Make())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)
}
