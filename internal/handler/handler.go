// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP API: public post reads, admin
// content management, authentication and media upload.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/dataaqu/weforward/internal/blog"
	"github.com/dataaqu/weforward/internal/config"
	"github.com/dataaqu/weforward/internal/media"
	"github.com/dataaqu/weforward/internal/metrics"
	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/store"
)

// Handler bundles the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg       *config.Config
	sessions  *scs.SessionManager
	queries   *store.Queries
	repo      *blog.Repository
	media     *media.Store
	collector *metrics.Collector
	login     *middleware.LoginProtection
}

// New creates a Handler.
func New(
	cfg *config.Config,
	sessions *scs.SessionManager,
	queries *store.Queries,
	repo *blog.Repository,
	mediaStore *media.Store,
	collector *metrics.Collector,
	login *middleware.LoginProtection,
) *Handler {
	return &Handler{
		cfg:       cfg,
		sessions:  sessions,
		queries:   queries,
		repo:      repo,
		media:     mediaStore,
		collector: collector,
		login:     login,
	}
}

// decodeJSON parses a request body, rejecting unknown fields so typos in
// the admin UI surface as errors instead of silently dropped data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeError maps a domain error to the API error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		middleware.WriteValidationError(w, verr)
		return
	}

	var serr *model.StorageError
	if errors.As(err, &serr) {
		middleware.WriteAPIError(w, http.StatusServiceUnavailable,
			"storage_"+serr.Cause, serr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, model.ErrUnauthenticated):
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", err.Error(), nil)
	case errors.Is(err, model.ErrForbidden):
		middleware.WriteAPIError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}
