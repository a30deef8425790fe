// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/observability"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// memRepo is an in-memory auth.AccountRepository.
type memRepo struct {
	mu       sync.Mutex
	accounts map[ulid.ULID]*auth.Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[ulid.ULID]*auth.Account)}
}

func cloneAccount(a *auth.Account) *auth.Account {
	c := *a
	c.Profile.Skills = slices.Clone(a.Profile.Skills)
	return &c
}

func (m *memRepo) Create(_ context.Context, a *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	m.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, a *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; !ok {
		return auth.ErrNotFound
	}
	for id, existing := range m.accounts {
		if id != a.ID && existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	m.accounts[a.ID] = cloneAccount(a)
	return nil
}

type testAPI struct {
	repo    *memRepo
	codec   *auth.TokenCodec
	metrics *observability.Metrics
	router  http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repo := newMemRepo()
	codec, err := auth.NewTokenCodec([]byte(testSecret))
	require.NoError(t, err)
	svc, err := auth.NewServiceWithLogger(repo, auth.NewArgon2idHasher(), codec, quiet)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	h, err := NewHandler(svc, codec, Options{
		CookieSecure: true,
		CORSOrigin:   "https://localhost:5173",
		Metrics:      metrics,
		Logger:       quiet,
	})
	require.NoError(t, err)
	return &testAPI{repo: repo, codec: codec, metrics: metrics, router: h.Routes()}
}

// do sends a JSON request through router.
func do(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookieName)
	return nil
}
