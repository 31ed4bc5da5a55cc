// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dataaqu/weforward/internal/blog"
	"github.com/dataaqu/weforward/internal/media"
	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/seo"
)

// createPostRequest is the admin create payload. ConfirmPublish lets
// the author publish past a mediocre audit score after seeing it.
type createPostRequest struct {
	blog.CreatePostData
	ConfirmPublish bool `json:"confirmPublish"`
}

type updatePostRequest struct {
	blog.UpdatePostData
	ConfirmPublish bool `json:"confirmPublish"`
}

// CreatePost stores a new post. Publishing is gated on the SEO audit:
// a poor score blocks, a mediocre one requires explicit confirmation.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	if req.Published {
		draft := draftFromCreate(req.CreatePostData)
		if !h.gatePublish(w, &draft, req.ConfirmPublish) {
			return
		}
	}

	post, err := h.repo.Create(r.Context(), req.CreatePostData)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("post created", "category", "content",
		"id", post.ID, "slug", post.Slug, "published", post.Published)
	middleware.WriteAPIResponse(w, http.StatusCreated, post)
}

// UpdatePost merges a patch into a post. The audit gate applies when
// the resulting state is published, whether it was before or not.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "post not found", nil)
		return
	}

	if merged := blog.Merged(*existing, req.UpdatePostData); merged.Published {
		if !h.gatePublish(w, &merged, req.ConfirmPublish) {
			return
		}
	}

	post, err := h.repo.Update(r.Context(), id, req.UpdatePostData)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("post updated", "category", "content",
		"id", post.ID, "slug", post.Slug, "published", post.Published)
	middleware.WriteAPIResponse(w, http.StatusOK, post)
}

// DeletePost removes a post unconditionally. The featured and inline
// images are left on disk: locators may be shared between posts.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteAPIResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GetPost returns one post by id, drafts included.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := h.repo.GetByID(r.Context(), id)
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

// ListAllPosts returns every post for the admin dashboard, drafts
// included, newest created first.
func (h *Handler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []model.BlogPost{}
	}
	middleware.WriteAPIResponse(w, http.StatusOK, posts)
}

// AuditPost runs the SEO audit against an unsaved draft payload so the
// editor can show live scoring without persisting anything. It accepts
// the create request shape so the editor can submit the same payload to
// both endpoints; confirmPublish is irrelevant here and ignored.
func (h *Handler) AuditPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	draft := draftFromCreate(req.CreatePostData)
	result := seo.Audit(&draft)
	h.collector.RecordAudit()
	middleware.WriteAPIResponse(w, http.StatusOK, result)
}

// UploadImage accepts one multipart image and returns its locator.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadSize + 1024*1024); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"invalid multipart body", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			`multipart field "image" is required`, nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.media.Upload(file, header)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.collector.RecordImageUploaded()
	middleware.WriteAPIResponse(w, http.StatusCreated, result)
}

// gatePublish audits the prospective post state and enforces the
// publish gate. Returns false when a response has been written.
func (h *Handler) gatePublish(w http.ResponseWriter, post *model.BlogPost, confirmed bool) bool {
	result := seo.Audit(post)
	h.collector.RecordAudit()

	details := map[string]string{
		"score":  strconv.Itoa(result.Score),
		"status": result.Status,
	}

	switch seo.GateForPublish(true, result.Score) {
	case seo.GateBlock:
		middleware.WriteAPIError(w, http.StatusUnprocessableEntity, "seo_blocked",
			"SEO score is too low to publish; fix the critical issues first", details)
		return false
	case seo.GateConfirm:
		if !confirmed {
			middleware.WriteAPIError(w, http.StatusConflict, "seo_confirm_required",
				"SEO score needs improvement; resubmit with confirmPublish to publish anyway", details)
			return false
		}
	}
	return true
}

// draftFromCreate builds the post state a create payload would persist,
// with placeholders expanded, for auditing.
func draftFromCreate(data blog.CreatePostData) model.BlogPost {
	return model.BlogPost{
		Title:             data.Title,
		TitleKa:           data.TitleKa,
		Content:           blog.ExpandPlaceholders(data.Content, data.Images),
		ContentKa:         blog.ExpandPlaceholders(data.ContentKa, data.Images),
		Excerpt:           data.Excerpt,
		ExcerptKa:         data.ExcerptKa,
		FeaturedImage:     data.FeaturedImage,
		Tags:              data.Tags,
		TagsKa:            data.TagsKa,
		Published:         data.Published,
		MetaDescription:   data.MetaDescription,
		MetaDescriptionKa: data.MetaDescriptionKa,
	}
}

// pathID parses the {id} route parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
