// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/observability"
)

// gated wraps a handler that records the account ID it was called with.
func gated(t *testing.T, codec *auth.TokenCodec, metrics *observability.Metrics) (http.Handler, *ulid.ULID, *bool) {
	t.Helper()
	var seen ulid.ULID
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, ok := AccountIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireSession(codec, metrics, quiet)(next), &seen, &called
}

func newCodec(t *testing.T, opts ...auth.TokenOption) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec([]byte(testSecret), opts...)
	require.NoError(t, err)
	return codec
}

func TestRequireSession_AcceptsFreshToken(t *testing.T) {
	codec := newCodec(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler, seen, called := gated(t, codec, metrics)

	id := ulid.Make()
	token, _, err := codec.Issue(id)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, *called)
	assert.Equal(t, id, *seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("gate", observability.OutcomeSuccess)))
}

func TestRequireSession_Rejects(t *testing.T) {
	codec := newCodec(t)
	id := ulid.Make()

	expiredIssuer := newCodec(t, auth.WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) }))
	expired, _, err := expiredIssuer.Issue(id)
	require.NoError(t, err)

	fresh, _, err := codec.Issue(id)
	require.NoError(t, err)
	dot := strings.LastIndex(fresh, ".")
	replacement := "A"
	if fresh[dot+1] == 'A' {
		replacement = "B"
	}
	tampered := fresh[:dot+1] + replacement + fresh[dot+2:]

	otherCodec, err := auth.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	foreign, _, err := otherCodec.Issue(id)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cookie  *http.Cookie
		message string
	}{
		{"no cookie", nil, auth.MsgUnauthenticated},
		{"empty cookie", &http.Cookie{Name: SessionCookieName, Value: ""}, auth.MsgUnauthenticated},
		{"malformed", &http.Cookie{Name: SessionCookieName, Value: "not-a-token"}, auth.MsgInvalidToken},
		{"expired", &http.Cookie{Name: SessionCookieName, Value: expired}, auth.MsgInvalidToken},
		{"tampered signature", &http.Cookie{Name: SessionCookieName, Value: tampered}, auth.MsgInvalidToken},
		{"signed with another secret", &http.Cookie{Name: SessionCookieName, Value: foreign}, auth.MsgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetrics(prometheus.NewRegistry())
			handler, _, called := gated(t, codec, metrics)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *called, "next must not run")
			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.message, resp.Message)
			assert.False(t, resp.Success)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("gate", observability.OutcomeRejected)))
		})
	}
}

func TestAccountIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := AccountIDFromContext(req.Context())
	assert.False(t, ok)
}

func TestRequireSession_NilMetrics(t *testing.T) {
	codec := newCodec(t)
	handler, _, called := gated(t, codec, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}
