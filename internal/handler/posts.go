// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/model"
)

// ListPublishedPosts serves the public blog listing: published posts
// only, newest publication first. An optional limit query parameter
// truncates the listing.
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
				"limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	posts, err := h.repo.GetPublished(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []model.BlogPost{}
	}
	middleware.WriteAPIResponse(w, http.StatusOK, posts)
}

// GetPostBySlug serves one published post for the public article page.
// Unpublished posts are indistinguishable from missing ones.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if post == nil {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "post not found", nil)
		return
	}
	middleware.WriteAPIResponse(w, http.StatusOK, post)
}
