// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/observability"
	"github.com/hireline/hireline/pkg/errutil"
)

// AccountService defines the account operations the HTTP API needs.
type AccountService interface {
	// Register creates a new account.
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Account, error)

	// Login authenticates an account and issues a session token.
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)

	// UpdateProfile applies profile changes to an existing account.
	UpdateProfile(ctx context.Context, id ulid.ULID, in auth.ProfileUpdate) (*auth.Account, error)

	// Account returns an account by ID.
	Account(ctx context.Context, id ulid.ULID) (*auth.Account, error)
}

// Operation labels used for metrics and logs.
const (
	opRegister      = "register"
	opLogin         = "login"
	opLogout        = "logout"
	opUpdateProfile = "profile_update"
	opMe            = "me"
)

// internalMessages are returned to clients for unclassified failures.
var internalMessages = map[string]string{
	opRegister:      "Failed to register",
	opLogin:         "Failed to login",
	opUpdateProfile: "Failed to update profile",
	opMe:            "Failed to load user",
}

// Options configures a Handler.
type Options struct {
	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool
	// CORSOrigin is the single origin allowed to call the API with
	// credentials. Empty disables CORS handling.
	CORSOrigin string
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

// Handler serves the /api/v1/user endpoints.
type Handler struct {
	accounts   AccountService
	tokens     TokenVerifier
	cookies    cookieJar
	corsOrigin string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewHandler creates a Handler. A nil Options.Logger discards logs and a nil
// Options.Metrics records nothing.
func NewHandler(accounts AccountService, tokens TokenVerifier, opts Options) (*Handler, error) {
	if accounts == nil {
		return nil, oops.Code("WEB_INVALID_HANDLER").Errorf("account service is required")
	}
	if tokens == nil {
		return nil, oops.Code("WEB_INVALID_HANDLER").Errorf("token verifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		accounts:   accounts,
		tokens:     tokens,
		cookies:    cookieJar{secure: opts.CookieSecure, now: time.Now},
		corsOrigin: opts.CORSOrigin,
		metrics:    opts.Metrics,
		logger:     logger,
	}, nil
}

// flexString accepts a JSON string or number. Phone numbers arrive as either.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type registerRequest struct {
	Fullname    string     `json:"fullname"`
	Email       string     `json:"email"`
	PhoneNumber flexString `json:"phoneNumber"`
	Password    string     `json:"password"`
	Role        string     `json:"role"`
}

func (req *registerRequest) fromForm(v url.Values) {
	req.Fullname = v.Get("fullname")
	req.Email = v.Get("email")
	req.PhoneNumber = flexString(v.Get("phoneNumber"))
	req.Password = v.Get("password")
	req.Role = v.Get("role")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req *loginRequest) fromForm(v url.Values) {
	req.Email = v.Get("email")
	req.Password = v.Get("password")
	req.Role = v.Get("role")
}

type profileRequest struct {
	Fullname    string     `json:"fullname"`
	Email       string     `json:"email"`
	PhoneNumber flexString `json:"phoneNumber"`
	Bio         string     `json:"bio"`
	Skills      string     `json:"skills"`
}

func (req *profileRequest) fromForm(v url.Values) {
	req.Fullname = v.Get("fullname")
	req.Email = v.Get("email")
	req.PhoneNumber = flexString(v.Get("phoneNumber"))
	req.Bio = v.Get("bio")
	req.Skills = v.Get("skills")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, opRegister, err)
		return
	}

	_, err := h.accounts.Register(r.Context(), auth.RegisterInput{
		Fullname:    req.Fullname,
		Email:       req.Email,
		PhoneNumber: string(req.PhoneNumber),
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		h.fail(w, r, opRegister, err)
		return
	}

	h.metrics.RecordAuth(opRegister, observability.OutcomeSuccess)
	writeJSON(w, http.StatusCreated, response{Message: "Account created successfully", Success: true})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, opLogin, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, r, opLogin, err)
		return
	}

	h.cookies.set(w, result.Token, result.ExpiresAt)
	h.metrics.RecordAuth(opLogin, observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, response{
		Message: fmt.Sprintf("Welcome back %s", result.Account.Fullname),
		Success: true,
		User:    newUserView(result.Account),
	})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.clear(w)
	h.metrics.RecordAuth(opLogout, observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, response{Message: "Logged out successfully", Success: true})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := AccountIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, opUpdateProfile, oops.Code(auth.CodeUnauthenticated).Errorf("no account in context"))
		return
	}

	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, opUpdateProfile, err)
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), id, auth.ProfileUpdate{
		Fullname:    req.Fullname,
		Email:       req.Email,
		PhoneNumber: string(req.PhoneNumber),
		Bio:         req.Bio,
		Skills:      req.Skills,
	})
	if err != nil {
		h.fail(w, r, opUpdateProfile, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: "Profile updated successfully",
		Success: true,
		User:    newUserView(account),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := AccountIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, opMe, oops.Code(auth.CodeUnauthenticated).Errorf("no account in context"))
		return
	}

	account, err := h.accounts.Account(r.Context(), id)
	if err != nil {
		h.fail(w, r, opMe, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "User found", Success: true, User: newUserView(account)})
}

// fail writes the error response for op. Internal errors are logged with
// their code and context and replaced by a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message, internal := classify(err)
	if internal {
		h.metrics.RecordAuth(op, observability.OutcomeError)
		errutil.LogErrorContext(r.Context(), h.logger, op+" failed", err)
		writeJSON(w, status, response{Message: internalMessages[op]})
		return
	}

	if op == opLogin && errutil.Code(err) == auth.CodeMissingFields {
		message = auth.MsgMissingLoginFields
	}
	h.metrics.RecordAuth(op, observability.OutcomeRejected)
	h.logger.DebugContext(r.Context(), "request rejected",
		"operation", op,
		"code", errutil.Code(err),
		"status", status,
	)
	writeJSON(w, status, response{Message: message})
}
