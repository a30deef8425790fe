// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/samber/oops"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/pkg/errutil"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

const (
	msgBadRequest       = "Invalid request body"
	msgUnsupportedMedia = "Content-Type must be application/json or application/x-www-form-urlencoded"
	msgInternal         = "Internal server error"
)

// response is the envelope of every API reply.
type response struct {
	Message string    `json:"message"`
	Success bool      `json:"success"`
	User    *userView `json:"user,omitempty"`
}

type profileView struct {
	Bio    *string  `json:"bio"`
	Skills []string `json:"skills"`
}

// userView is the public projection of an account. It never carries the
// password hash.
type userView struct {
	ID          string      `json:"_id"`
	Fullname    string      `json:"fullname"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phoneNumber"`
	Role        string      `json:"role"`
	Profile     profileView `json:"profile"`
}

func newUserView(a *auth.Account) *userView {
	skills := a.Profile.Skills
	if skills == nil {
		skills = []string{}
	}
	return &userView{
		ID:          a.ID.String(),
		Fullname:    a.Fullname,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Role:        a.Role.String(),
		Profile:     profileView{Bio: a.Profile.Bio, Skills: skills},
	}
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	json.NewEncoder(w).Encode(body)
}

var (
	// errBadBody marks undecodable or oversized request bodies.
	errBadBody = errors.New("bad request body")
	// errUnsupportedMedia marks bodies in a format the API does not read.
	errUnsupportedMedia = errors.New("unsupported content type")
)

// formRequest is a request body that can also be read from an HTML form.
type formRequest interface {
	fromForm(v url.Values)
}

// decodeBody reads a JSON or urlencoded form body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formRequest) error {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return oops.Code("HTTP_BAD_REQUEST").Wrapf(errBadBody, "decode json body: %v", err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return oops.Code("HTTP_BAD_REQUEST").Wrapf(errBadBody, "decode form body: %v", err)
		}
		dst.fromForm(r.PostForm)
	default:
		return oops.Code("HTTP_UNSUPPORTED_MEDIA_TYPE").
			With("content_type", contentType).
			Wrap(errUnsupportedMedia)
	}
	return nil
}

// classify maps an error to its HTTP status and client message. internal
// reports whether the error is a server fault the client must not see.
func classify(err error) (status int, message string, internal bool) {
	if errors.Is(err, errBadBody) {
		return http.StatusBadRequest, msgBadRequest, false
	}
	if errors.Is(err, errUnsupportedMedia) {
		return http.StatusUnsupportedMediaType, msgUnsupportedMedia, false
	}
	switch errutil.Code(err) {
	case auth.CodeMissingFields:
		return http.StatusBadRequest, auth.MsgMissingFields, false
	case auth.CodeInvalidRole:
		return http.StatusBadRequest, auth.MsgInvalidRole, false
	case auth.CodeDuplicateAccount:
		return http.StatusBadRequest, auth.MsgDuplicateAccount, false
	case auth.CodeRoleMismatch:
		return http.StatusBadRequest, auth.MsgRoleMismatch, false
	case auth.CodeInvalidCredentials:
		return http.StatusUnauthorized, auth.MsgInvalidCredentials, false
	case auth.CodeUnauthenticated:
		return http.StatusUnauthorized, auth.MsgUnauthenticated, false
	case auth.CodeInvalidToken:
		return http.StatusUnauthorized, auth.MsgInvalidToken, false
	case auth.CodeAccountNotFound:
		return http.StatusNotFound, auth.MsgAccountNotFound, false
	}
	return http.StatusInternalServerError, "", true
}
