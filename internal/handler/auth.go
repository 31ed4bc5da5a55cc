// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dataaqu/weforward/internal/auth"
	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates email/password credentials and establishes a
// session. Invalid email and invalid password produce the same response
// so the endpoint cannot be used to enumerate accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"email and password are required", nil)
		return
	}

	if locked, remaining := h.login.IsAccountLocked(email); locked {
		slog.Warn("login attempt on locked account", "category", "auth", "email", email)
		middleware.WriteAPIError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Account temporarily locked. Try again in %d minutes.",
				int(remaining.Minutes())+1), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, err)
			return
		}
		h.failLogin(w, email)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, email)
		return
	}

	h.login.RecordSuccessfulLogin(email)

	// Transparent hash upgrade when parameters have changed.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			_ = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now().UTC(),
				ID:           user.ID,
			})
		}
	}

	_ = h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		ID:          user.ID,
	})

	// Renew the token to prevent session fixation.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "category", "auth", "email", email)

	middleware.WriteAPIResponse(w, http.StatusOK, model.Principal{
		Email: user.Email,
		Name:  user.Name,
		Admin: h.cfg.IsAdminEmail(user.Email),
	})
}

func (h *Handler) failLogin(w http.ResponseWriter, email string) {
	locked, duration := h.login.RecordFailedAttempt(email)
	slog.Warn("failed login attempt", "category", "auth", "email", email)

	if locked {
		middleware.WriteAPIError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.",
				int(duration.Minutes())), nil)
		return
	}
	middleware.WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials",
		"invalid email or password", nil)
}

// Logout destroys the current session. Safe to call without one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteAPIResponse(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Me returns the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthenticated",
			model.ErrUnauthenticated.Error(), nil)
		return
	}
	middleware.WriteAPIResponse(w, http.StatusOK, principal)
}
