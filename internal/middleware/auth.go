// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/dataaqu/weforward/internal/config"
	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal carries the authenticated caller.
const ContextKeyPrincipal ContextKey = "principal"

// SessionKeyUserID is the session key holding the authenticated user id.
const SessionKeyUserID = "user_id"

// Auth creates middleware that requires an authenticated session.
// API clients get a JSON 401, never a redirect.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetInt64(r.Context(), SessionKeyUserID) == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthenticated",
					model.ErrUnauthenticated.Error(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadPrincipal creates middleware that resolves the session user into a
// Principal in the request context. A session pointing at a deleted user
// is destroyed and rejected. Use after Auth.
func LoadPrincipal(sm *scs.SessionManager, db *sql.DB, cfg *config.Config) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				WriteAPIError(w, http.StatusUnauthorized, "unauthenticated",
					model.ErrUnauthenticated.Error(), nil)
				return
			}

			principal := model.Principal{
				Email: user.Email,
				Name:  user.Name,
				Admin: cfg.IsAdminEmail(user.Email),
			}
			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated caller from the request
// context, or nil when the request is anonymous.
func GetPrincipal(r *http.Request) *model.Principal {
	p, ok := r.Context().Value(ContextKeyPrincipal).(model.Principal)
	if !ok {
		return nil
	}
	return &p
}

// RequireAdmin creates middleware that restricts a route to principals
// on the admin allow-list. A signed-in non-admin gets 403, not 401.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r)
			if principal == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthenticated",
					model.ErrUnauthenticated.Error(), nil)
				return
			}
			if !principal.Admin {
				WriteAPIError(w, http.StatusForbidden, "forbidden",
					model.ErrForbidden.Error(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
