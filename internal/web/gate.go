// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/observability"
)

type ctxKey struct{}

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// WithAccountID returns a copy of ctx carrying the authenticated account ID.
func WithAccountID(ctx context.Context, id ulid.ULID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// AccountIDFromContext returns the account ID attached by RequireSession.
func AccountIDFromContext(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(ctxKey{}).(ulid.ULID)
	return id, ok
}

// RequireSession admits requests carrying a valid session cookie and attaches
// the account ID to the request context. Other requests get a 401 and next is
// not called.
func RequireSession(tokens TokenVerifier, metrics *observability.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				metrics.RecordAuth("gate", observability.OutcomeRejected)
				writeJSON(w, http.StatusUnauthorized, response{Message: auth.MsgUnauthenticated})
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				metrics.RecordAuth("gate", observability.OutcomeRejected)
				logger.DebugContext(r.Context(), "session rejected", "error", err)
				writeJSON(w, http.StatusUnauthorized, response{Message: auth.MsgInvalidToken})
				return
			}

			metrics.RecordAuth("gate", observability.OutcomeSuccess)
			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), claims.AccountID)))
		})
	}
}
