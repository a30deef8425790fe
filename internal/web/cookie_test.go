// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieJar_Set(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	jar := cookieJar{secure: false, now: func() time.Time { return now }}

	rec := httptest.NewRecorder()
	jar.set(rec, "tok", now.Add(24*time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 86400, c.MaxAge)
	assert.False(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestCookieJar_SetAlreadyExpired(t *testing.T) {
	now := time.Now()
	jar := cookieJar{now: func() time.Time { return now }}

	rec := httptest.NewRecorder()
	jar.set(rec, "tok", now.Add(-time.Minute))

	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, sessionToken(req))

	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	assert.Equal(t, "abc", sessionToken(req))
}
