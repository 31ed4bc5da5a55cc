// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blog implements the content repository: CRUD and publication
// queries for bilingual blog posts, slug generation, read-time
// estimation and image placeholder expansion.
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dataaqu/weforward/internal/cache"
	"github.com/dataaqu/weforward/internal/metrics"
	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/store"
	"github.com/dataaqu/weforward/internal/util"
)

// Repository provides blog post operations over the store. Reads report
// absence as (nil, nil); only mutations on missing rows are errors.
type Repository struct {
	queries   *store.Queries
	posts     *cache.Posts
	collector *metrics.Collector
}

// NewRepository creates a Repository. posts and collector may be nil.
func NewRepository(queries *store.Queries, posts *cache.Posts, collector *metrics.Collector) *Repository {
	return &Repository{queries: queries, posts: posts, collector: collector}
}

// CreatePostData carries author input for a new post. Slug is an
// optional override; when empty it is derived from the English title.
// Images are the uploaded locators used for placeholder expansion.
type CreatePostData struct {
	Title             string   `json:"title"`
	TitleKa           string   `json:"titleKa"`
	Content           string   `json:"content"`
	ContentKa         string   `json:"contentKa"`
	Excerpt           string   `json:"excerpt"`
	ExcerptKa         string   `json:"excerptKa"`
	Author            string   `json:"author"`
	AuthorKa          string   `json:"authorKa"`
	FeaturedImage     string   `json:"featuredImage"`
	Category          string   `json:"category"`
	CategoryKa        string   `json:"categoryKa"`
	Tags              []string `json:"tags"`
	TagsKa            []string `json:"tagsKa"`
	Published         bool     `json:"published"`
	Featured          bool     `json:"featured"`
	Slug              string   `json:"slug"`
	MetaDescription   string   `json:"metaDescription"`
	MetaDescriptionKa string   `json:"metaDescriptionKa"`
	Images            []string `json:"images"`
}

// UpdatePostData is a patch: nil fields are left unchanged. Images, when
// non-nil, supply the locators for re-expanding placeholders in any
// content field being set.
type UpdatePostData struct {
	Title             *string  `json:"title"`
	TitleKa           *string  `json:"titleKa"`
	Content           *string  `json:"content"`
	ContentKa         *string  `json:"contentKa"`
	Excerpt           *string  `json:"excerpt"`
	ExcerptKa         *string  `json:"excerptKa"`
	Author            *string  `json:"author"`
	AuthorKa          *string  `json:"authorKa"`
	FeaturedImage     *string  `json:"featuredImage"`
	Category          *string  `json:"category"`
	CategoryKa        *string  `json:"categoryKa"`
	Tags              []string `json:"tags"`
	TagsKa            []string `json:"tagsKa"`
	Published         *bool    `json:"published"`
	Featured          *bool    `json:"featured"`
	Slug              *string  `json:"slug"`
	MetaDescription   *string  `json:"metaDescription"`
	MetaDescriptionKa *string  `json:"metaDescriptionKa"`
	Images            []string `json:"images"`
}

// Create validates and stores a new post. Timestamps are assigned here,
// never taken from the caller. PublishedAt is set only when the post is
// created already published.
func (r *Repository) Create(ctx context.Context, data CreatePostData) (*model.BlogPost, error) {
	if err := validateRequired(data); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(data.Slug)
	if slug == "" {
		slug = util.Slugify(data.Title)
	}
	if !util.IsValidSlug(slug) {
		return nil, model.NewValidationError("slug", "cannot derive a valid slug; provide one explicitly")
	}

	content := ExpandPlaceholders(data.Content, data.Images)
	contentKa := ExpandPlaceholders(data.ContentKa, data.Images)

	now := time.Now().UTC()
	var publishedAt sql.NullTime
	if data.Published {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	id, err := r.queries.CreatePost(ctx, store.CreatePostParams{
		Slug:              slug,
		Title:             data.Title,
		TitleKa:           data.TitleKa,
		Content:           content,
		ContentKa:         contentKa,
		Excerpt:           data.Excerpt,
		ExcerptKa:         data.ExcerptKa,
		Author:            data.Author,
		AuthorKa:          data.AuthorKa,
		FeaturedImage:     data.FeaturedImage,
		Category:          data.Category,
		CategoryKa:        data.CategoryKa,
		Tags:              data.Tags,
		TagsKa:            data.TagsKa,
		Published:         data.Published,
		Featured:          data.Featured,
		PublishedAt:       publishedAt,
		MetaDescription:   data.MetaDescription,
		MetaDescriptionKa: data.MetaDescriptionKa,
		ReadTime:          CalculateReadTime(content),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		if isSlugConflict(err) {
			return nil, model.NewValidationError("slug", fmt.Sprintf("slug %q is already in use", slug))
		}
		return nil, fmt.Errorf("creating post: %w", err)
	}

	r.invalidate(ctx)
	if r.collector != nil {
		r.collector.RecordPostCreated()
		if data.Published {
			r.collector.RecordPostPublished()
		}
	}

	post, err := r.queries.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading back post %d: %w", id, err)
	}
	return &post, nil
}

// Update merges a patch into an existing post. UpdatedAt is always
// refreshed. PublishedAt is written exactly once, on the first
// transition to published; it is never overwritten or cleared, so it
// survives unpublish/republish cycles as the original publication date.
func (r *Repository) Update(ctx context.Context, id int64, data UpdatePostData) (*model.BlogPost, error) {
	existing, err := r.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("loading post %d: %w", id, err)
	}

	merged := Merged(existing, data)

	if data.Slug != nil && !util.IsValidSlug(merged.Slug) {
		return nil, model.NewValidationError("slug", fmt.Sprintf("slug %q is not valid", merged.Slug))
	}
	if verr := validateMerged(&merged); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	firstPublish := merged.Published && existing.PublishedAt == nil
	if firstPublish {
		t := now
		merged.PublishedAt = &t
	}

	var publishedAt sql.NullTime
	if merged.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *merged.PublishedAt, Valid: true}
	}

	err = r.queries.UpdatePost(ctx, store.UpdatePostParams{
		ID:                id,
		Slug:              merged.Slug,
		Title:             merged.Title,
		TitleKa:           merged.TitleKa,
		Content:           merged.Content,
		ContentKa:         merged.ContentKa,
		Excerpt:           merged.Excerpt,
		ExcerptKa:         merged.ExcerptKa,
		Author:            merged.Author,
		AuthorKa:          merged.AuthorKa,
		FeaturedImage:     merged.FeaturedImage,
		Category:          merged.Category,
		CategoryKa:        merged.CategoryKa,
		Tags:              merged.Tags,
		TagsKa:            merged.TagsKa,
		Published:         merged.Published,
		Featured:          merged.Featured,
		PublishedAt:       publishedAt,
		MetaDescription:   merged.MetaDescription,
		MetaDescriptionKa: merged.MetaDescriptionKa,
		ReadTime:          merged.ReadTime,
		UpdatedAt:         now,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, model.ErrNotFound)
		}
		if isSlugConflict(err) {
			return nil, model.NewValidationError("slug", fmt.Sprintf("slug %q is already in use", merged.Slug))
		}
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}

	r.invalidate(ctx)
	if firstPublish && r.collector != nil {
		r.collector.RecordPostPublished()
	}

	post, err := r.queries.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading back post %d: %w", id, err)
	}
	return &post, nil
}

// Delete removes a post unconditionally, published or not. Deleting a
// missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.queries.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	r.invalidate(ctx)
	if r.collector != nil {
		r.collector.RecordPostDeleted()
	}
	return nil
}

// GetByID fetches a post regardless of publication state. Absence is
// (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id int64) (*model.BlogPost, error) {
	post, err := r.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading post %d: %w", id, err)
	}
	return &post, nil
}

// GetBySlug fetches a published post by slug. Unpublished posts are not
// reachable here, and absence is (nil, nil).
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := r.queries.GetPublishedPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading post %q: %w", slug, err)
	}
	return &post, nil
}

// GetAll returns every post, drafts included, newest created first.
func (r *Repository) GetAll(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := r.queries.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetPublished returns published posts ordered by publication time,
// newest first, truncated to limit after sorting. limit <= 0 means all.
// The ordering is applied here, in memory, not in the store query.
func (r *Repository) GetPublished(ctx context.Context, limit int) ([]model.BlogPost, error) {
	if limit < 0 {
		limit = 0
	}
	if r.posts != nil {
		if cached, ok := r.posts.GetPublished(ctx, limit); ok {
			return cached, nil
		}
	}

	posts, err := r.queries.ListPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return publicationTime(posts[i]).After(publicationTime(posts[j]))
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	if r.posts != nil {
		r.posts.SetPublished(ctx, limit, posts)
	}
	return posts, nil
}

func publicationTime(p model.BlogPost) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return time.Time{}
}

func (r *Repository) invalidate(ctx context.Context) {
	if r.posts != nil {
		r.posts.Invalidate(ctx)
	}
}

// validateRequired checks the bilingual fields a post cannot exist
// without, itemized per field.
func validateRequired(data CreatePostData) error {
	fields := map[string]string{}
	if strings.TrimSpace(data.Title) == "" {
		fields["title"] = "English title is required"
	}
	if strings.TrimSpace(data.TitleKa) == "" {
		fields["titleKa"] = "Georgian title is required"
	}
	if strings.TrimSpace(data.Content) == "" {
		fields["content"] = "English content is required"
	}
	if strings.TrimSpace(data.ContentKa) == "" {
		fields["contentKa"] = "Georgian content is required"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// validateMerged guards against a patch blanking a required field.
func validateMerged(p *model.BlogPost) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "English title is required"
	}
	if strings.TrimSpace(p.TitleKa) == "" {
		fields["titleKa"] = "Georgian title is required"
	}
	if strings.TrimSpace(p.Content) == "" {
		fields["content"] = "English content is required"
	}
	if strings.TrimSpace(p.ContentKa) == "" {
		fields["contentKa"] = "Georgian content is required"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// Merged returns a copy of existing with the patch applied, content
// placeholders expanded and the read time recomputed. This is the exact
// state Update will persist, which makes it suitable for pre-save
// auditing as well.
func Merged(existing model.BlogPost, data UpdatePostData) model.BlogPost {
	merged := existing
	applyPatch(&merged, data)
	if data.Content != nil {
		merged.Content = ExpandPlaceholders(merged.Content, data.Images)
	}
	if data.ContentKa != nil {
		merged.ContentKa = ExpandPlaceholders(merged.ContentKa, data.Images)
	}
	merged.ReadTime = CalculateReadTime(merged.Content)
	return merged
}

func applyPatch(p *model.BlogPost, data UpdatePostData) {
	if data.Title != nil {
		p.Title = *data.Title
	}
	if data.TitleKa != nil {
		p.TitleKa = *data.TitleKa
	}
	if data.Content != nil {
		p.Content = *data.Content
	}
	if data.ContentKa != nil {
		p.ContentKa = *data.ContentKa
	}
	if data.Excerpt != nil {
		p.Excerpt = *data.Excerpt
	}
	if data.ExcerptKa != nil {
		p.ExcerptKa = *data.ExcerptKa
	}
	if data.Author != nil {
		p.Author = *data.Author
	}
	if data.AuthorKa != nil {
		p.AuthorKa = *data.AuthorKa
	}
	if data.FeaturedImage != nil {
		p.FeaturedImage = *data.FeaturedImage
	}
	if data.Category != nil {
		p.Category = *data.Category
	}
	if data.CategoryKa != nil {
		p.CategoryKa = *data.CategoryKa
	}
	if data.Tags != nil {
		p.Tags = data.Tags
	}
	if data.TagsKa != nil {
		p.TagsKa = data.TagsKa
	}
	if data.Published != nil {
		p.Published = *data.Published
	}
	if data.Featured != nil {
		p.Featured = *data.Featured
	}
	if data.Slug != nil {
		p.Slug = strings.TrimSpace(*data.Slug)
	}
	if data.MetaDescription != nil {
		p.MetaDescription = *data.MetaDescription
	}
	if data.MetaDescriptionKa != nil {
		p.MetaDescriptionKa = *data.MetaDescriptionKa
	}
}

// isSlugConflict detects the slug UNIQUE index rejection. The driver has
// no typed error for constraint names, so the message is matched.
func isSlugConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: blog_posts.slug")
}
