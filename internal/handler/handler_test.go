// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataaqu/weforward/internal/auth"
	"github.com/dataaqu/weforward/internal/blog"
	"github.com/dataaqu/weforward/internal/config"
	"github.com/dataaqu/weforward/internal/media"
	"github.com/dataaqu/weforward/internal/metrics"
	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/session"
	"github.com/dataaqu/weforward/internal/store"
	"github.com/dataaqu/weforward/internal/testutil"
)

type testEnv struct {
	handler *Handler
	db      *sql.DB
	repo    *blog.Repository
	queries *store.Queries
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	queries := store.New(db)
	collector := metrics.NewCollector()
	repo := blog.NewRepository(queries, nil, collector)

	cfg := &config.Config{
		SessionSecret: "Uv7#kPz9$mQ2wXr5tY8bN1cL4eJ6hG3d",
		UploadsDir:    t.TempDir(),
		PublicBaseURL: "http://localhost:8080",
		AdminEmails:   []string{"admin@weforward.ge"},
		Env:           "development",
	}

	h := New(
		cfg,
		session.New(db, 24*time.Hour, true),
		queries,
		repo,
		media.NewStore(cfg.UploadsDir, cfg.PublicBaseURL),
		collector,
		middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
	)

	return &testEnv{handler: h, db: db, repo: repo, queries: queries}
}

func (e *testEnv) createUser(t *testing.T, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	_, err = e.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email: email, PasswordHash: hash, Name: "Test User",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

func goodPostData(title string) blog.CreatePostData {
	return blog.CreatePostData{
		Title:     title,
		TitleKa:   "ქართული სათაური",
		Content:   "<p>" + strings.Repeat("word ", 50) + "</p>",
		ContentKa: "<p>ქართული ტექსტი</p>",
	}
}

func decodeData(t *testing.T, body *bytes.Buffer, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func decodeError(t *testing.T, body *bytes.Buffer) middleware.APIErrorBody {
	t.Helper()
	var envelope middleware.APIErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	return envelope.Error
}

func TestListPublishedPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := goodPostData("Draft Post")
	_, err := env.repo.Create(ctx, draft)
	require.NoError(t, err)

	live := goodPostData("Live Post")
	live.Published = true
	_, err = env.repo.Create(ctx, live)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	rec := httptest.NewRecorder()
	env.handler.ListPublishedPosts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var posts []map[string]any
	decodeData(t, rec.Body, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "live-post", posts[0]["slug"])
}

func TestListPublishedPostsBadLimit(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=nope", nil)
	rec := httptest.NewRecorder()
	env.handler.ListPublishedPosts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPostBySlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	live := goodPostData("Findable Post")
	live.Published = true
	_, err := env.repo.Create(ctx, live)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Get("/api/v1/posts/{slug}", env.handler.GetPostBySlug)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/findable-post", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var post map[string]any
	decodeData(t, rec.Body, &post)
	assert.Equal(t, "Findable Post", post["title"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePostDraftSkipsGate(t *testing.T) {
	env := newTestEnv(t)

	body, err := json.Marshal(goodPostData("Low Scoring Draft"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/posts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.CreatePost(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreatePostPublishGate(t *testing.T) {
	env := newTestEnv(t)

	// Short titles, no meta, thin content: well below the publish floor.
	blocked := goodPostData("Poor")
	blocked.Content = "<p>short text</p>"
	blocked.Published = true

	body, err := json.Marshal(blocked)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/posts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.CreatePost(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "seo_blocked", decodeError(t, rec.Body).Code)
}

func TestCreatePostConfirmFlow(t *testing.T) {
	env := newTestEnv(t)

	// Mediocre score: good title and meta, thin content. Lands in the
	// confirm band.
	data := goodPostData("This Title Is Long Enough To Pass The Check")
	data.TitleKa = "საკმარისად გრძელი ქართული სათაური"
	data.MetaDescription = strings.Repeat("m", 140)
	data.MetaDescriptionKa = strings.Repeat("მ", 120)
	data.Content = "<p>short text</p>"
	data.ContentKa = "<p>მოკლე ტექსტი</p>"
	data.Published = true

	payload := map[string]any{}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/posts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.CreatePost(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	apiErr := decodeError(t, rec.Body)
	assert.Equal(t, "seo_confirm_required", apiErr.Code)
	assert.NotEmpty(t, apiErr.Details["score"])

	// Resubmitting with confirmation publishes.
	payload["confirmPublish"] = true
	body, err = json.Marshal(payload)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/posts", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	env.handler.CreatePost(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post map[string]any
	decodeData(t, rec.Body, &post)
	assert.Equal(t, true, post["published"])
	assert.NotEmpty(t, post["publishedAt"])
}

func TestUpdatePostNotFound(t *testing.T) {
	env := newTestEnv(t)

	router := chi.NewRouter()
	router.Put("/api/v1/admin/posts/{id}", env.handler.UpdatePost)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/posts/999",
		strings.NewReader(`{"excerpt":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.repo.Create(context.Background(), goodPostData("Doomed"))
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Delete("/api/v1/admin/posts/{id}", env.handler.DeletePost)

	req := httptest.NewRequest(http.MethodDelete,
		"/api/v1/admin/posts/"+strconv.FormatInt(post.ID, 10), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuditEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// The editor submits the same payload shape it sends to create,
	// confirmPublish included.
	payload := map[string]any{}
	raw, err := json.Marshal(goodPostData("Audit Me Please Without Saving Anything"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["confirmPublish"] = false
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/posts/audit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.AuditPost(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]any
	decodeData(t, rec.Body, &result)
	assert.Contains(t, result, "score")
	assert.Contains(t, result, "status")
	assert.Contains(t, result, "checks")

	// Nothing was persisted.
	posts, err := env.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@weforward.ge", "s3cret-pass")

	login := env.handler.sessions.LoadAndSave(http.HandlerFunc(env.handler.Login))

	body := `{"email":"admin@weforward.ge","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies(), "login must set a session cookie")

	var principal map[string]any
	decodeData(t, rec.Body, &principal)
	assert.Equal(t, "admin@weforward.ge", principal["email"])
	assert.Equal(t, true, principal["admin"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin@weforward.ge", "s3cret-pass")

	login := env.handler.sessions.LoadAndSave(http.HandlerFunc(env.handler.Login))

	body := `{"email":"admin@weforward.ge","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rec.Body).Code)
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	env := newTestEnv(t)

	login := env.handler.sessions.LoadAndSave(http.HandlerFunc(env.handler.Login))

	body := `{"email":"ghost@weforward.ge","password":"whatever"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rec.Body).Code)
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)

	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 3, 2))))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.UploadImage(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result map[string]any
	decodeData(t, rec.Body, &result)
	assert.Contains(t, result["url"], "/uploads/blog/")
	assert.Equal(t, float64(3), result["width"])
	assert.Equal(t, float64(2), result["height"])
}

func TestUploadImageMissingField(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

