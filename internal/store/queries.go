// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access: connection management, embedded
// migrations and hand-written queries over database/sql.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dataaqu/weforward/internal/model"
)

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance for the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// encodeTags serializes a tag list to its TEXT column representation.
// nil and empty lists both encode as "[]" so the column is never NULL.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeTags parses the TEXT column representation back into a tag list.
func decodeTags(data string) []string {
	if data == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return []string{}
	}
	return tags
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.Name, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at, last_login_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at, last_login_at
		 FROM users WHERE email = ?`, email))
}

func (q *Queries) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// UpdateUserPasswordParams holds the fields for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserLastLoginParams holds the fields for UpdateUserLastLogin.
type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateUserLastLogin records a successful login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`,
		arg.LastLoginAt, arg.ID)
	return err
}

const postColumns = `id, slug, title, title_ka, content, content_ka, excerpt, excerpt_ka,
	author, author_ka, featured_image, category, category_ka, tags, tags_ka,
	published, featured, published_at, meta_description, meta_description_ka,
	read_time, created_at, updated_at`

// CreatePostParams holds the fields for CreatePost. Timestamps are
// assigned by the repository, not the caller.
type CreatePostParams struct {
	Slug              string
	Title             string
	TitleKa           string
	Content           string
	ContentKa         string
	Excerpt           string
	ExcerptKa         string
	Author            string
	AuthorKa          string
	FeaturedImage     string
	Category          string
	CategoryKa        string
	Tags              []string
	TagsKa            []string
	Published         bool
	Featured          bool
	PublishedAt       sql.NullTime
	MetaDescription   string
	MetaDescriptionKa string
	ReadTime          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreatePost inserts a new blog post and returns its id.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO blog_posts (slug, title, title_ka, content, content_ka,
			excerpt, excerpt_ka, author, author_ka, featured_image,
			category, category_ka, tags, tags_ka, published, featured,
			published_at, meta_description, meta_description_ka, read_time,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Slug, arg.Title, arg.TitleKa, arg.Content, arg.ContentKa,
		arg.Excerpt, arg.ExcerptKa, arg.Author, arg.AuthorKa, arg.FeaturedImage,
		arg.Category, arg.CategoryKa, encodeTags(arg.Tags), encodeTags(arg.TagsKa),
		arg.Published, arg.Featured, arg.PublishedAt,
		arg.MetaDescription, arg.MetaDescriptionKa, arg.ReadTime,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePostParams holds the full row state written by UpdatePost. The
// repository merges the caller's patch with the existing row first;
// last-write-wins is the accepted concurrency policy.
type UpdatePostParams struct {
	ID                int64
	Slug              string
	Title             string
	TitleKa           string
	Content           string
	ContentKa         string
	Excerpt           string
	ExcerptKa         string
	Author            string
	AuthorKa          string
	FeaturedImage     string
	Category          string
	CategoryKa        string
	Tags              []string
	TagsKa            []string
	Published         bool
	Featured          bool
	PublishedAt       sql.NullTime
	MetaDescription   string
	MetaDescriptionKa string
	ReadTime          int
	UpdatedAt         time.Time
}

// UpdatePost rewrites a blog post row. Returns sql.ErrNoRows when the id
// does not resolve.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE blog_posts SET slug = ?, title = ?, title_ka = ?, content = ?,
			content_ka = ?, excerpt = ?, excerpt_ka = ?, author = ?, author_ka = ?,
			featured_image = ?, category = ?, category_ka = ?, tags = ?, tags_ka = ?,
			published = ?, featured = ?, published_at = ?, meta_description = ?,
			meta_description_ka = ?, read_time = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Slug, arg.Title, arg.TitleKa, arg.Content, arg.ContentKa,
		arg.Excerpt, arg.ExcerptKa, arg.Author, arg.AuthorKa, arg.FeaturedImage,
		arg.Category, arg.CategoryKa, encodeTags(arg.Tags), encodeTags(arg.TagsKa),
		arg.Published, arg.Featured, arg.PublishedAt,
		arg.MetaDescription, arg.MetaDescriptionKa, arg.ReadTime, arg.UpdatedAt,
		arg.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePost removes a blog post. Deleting a missing id is not an error.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	return err
}

// GetPostByID fetches a post by primary key regardless of publication state.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.BlogPost, error) {
	return scanPostRow(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, id))
}

// GetPublishedPostBySlug fetches a post by slug, restricted to published
// posts. Slug lookup is the only public-facing path, so unpublished posts
// are unreachable through it.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	return scanPostRow(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = ? AND published = 1`, slug))
}

// ListPosts returns all posts ordered by creation time descending.
func (q *Queries) ListPosts(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// ListPublishedPosts returns published posts in store order (creation
// time descending). Ordering by publication time is done by the
// repository in application memory.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE published = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (model.BlogPost, error) {
	var (
		p           model.BlogPost
		tags        string
		tagsKa      string
		publishedAt sql.NullTime
	)
	err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.TitleKa, &p.Content, &p.ContentKa,
		&p.Excerpt, &p.ExcerptKa, &p.Author, &p.AuthorKa, &p.FeaturedImage,
		&p.Category, &p.CategoryKa, &tags, &tagsKa, &p.Published, &p.Featured,
		&publishedAt, &p.MetaDescription, &p.MetaDescriptionKa, &p.ReadTime,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.BlogPost{}, err
	}
	p.Tags = decodeTags(tags)
	p.TagsKa = decodeTags(tagsKa)
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return p, nil
}

func scanPostRow(row *sql.Row) (model.BlogPost, error) {
	return scanPost(row)
}

func scanPosts(rows *sql.Rows) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		ID:        id,
		Level:     arg.Level,
		Category:  arg.Category,
		Message:   arg.Message,
		UserID:    arg.UserID,
		Metadata:  arg.Metadata,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListRecentEvents returns the newest audit log entries up to limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
