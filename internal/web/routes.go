// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

// Package web exposes the account API over HTTP and provides the session
// gate that protects authenticated routes.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// BasePath is the mount point of the account API.
const BasePath = "/api/v1/user"

// Routes returns the router for the account API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger, h.metrics))
	r.Use(recoverer(h.logger))
	if h.corsOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{h.corsOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, response{Message: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, response{Message: "Method not allowed"})
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.tokens, h.metrics, h.logger))
			r.Post("/profile/update", h.updateProfile)
			r.Get("/me", h.me)
		})
	})

	return r
}
