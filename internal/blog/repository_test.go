// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/store"
	"github.com/dataaqu/weforward/internal/testutil"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	db := testutil.TestDB(t)
	return NewRepository(store.New(db), nil, nil)
}

func validCreateData(title string) CreatePostData {
	return CreatePostData{
		Title:     title,
		TitleKa:   "ქართული სათაური",
		Content:   "<p>" + strings.Repeat("word ", 50) + "</p>",
		ContentKa: "<p>ქართული შინაარსი</p>",
		Author:    "Test Author",
		Tags:      []string{"logistics"},
	}
}

func TestCreateDerivesSlugAndTimestamps(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, validCreateData("Hello, World!  Shipping"))
	require.NoError(t, err)

	assert.Equal(t, "hello-world-shipping", post.Slug)
	assert.Equal(t, 1, post.ReadTime)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt, "draft must not carry a publication time")
	assert.False(t, post.CreatedAt.IsZero())
	assert.False(t, post.UpdatedAt.IsZero())
}

func TestCreatePublishedSetsPublishedAt(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	data := validCreateData("Published Right Away")
	data.Published = true

	post, err := repo.Create(ctx, data)
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.Published)
}

func TestCreateSlugConflict(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, validCreateData("Same Title"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, validCreateData("Same Title"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "slug")
}

func TestCreateMissingRequiredFields(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, CreatePostData{Title: "Only English"})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "titleKa")
	assert.Contains(t, verr.Fields, "content")
	assert.Contains(t, verr.Fields, "contentKa")
	assert.NotContains(t, verr.Fields, "title")
}

func TestCreateExpandsPlaceholders(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	data := validCreateData("With Images")
	data.Content = "<p>intro</p><image1>"
	data.Images = []string{"/uploads/blog/1_a.jpg"}

	post, err := repo.Create(ctx, data)
	require.NoError(t, err)
	assert.Contains(t, post.Content, `class="blog-content-image"`)
	assert.NotContains(t, post.Content, "<image1>")
}

func TestUpdateFirstPublishStampSurvivesUnpublish(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, validCreateData("Publication Lifecycle"))
	require.NoError(t, err)
	require.Nil(t, post.PublishedAt)

	publish := true
	post, err = repo.Update(ctx, post.ID, UpdatePostData{Published: &publish})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	firstPublished := *post.PublishedAt

	unpublish := false
	post, err = repo.Update(ctx, post.ID, UpdatePostData{Published: &unpublish})
	require.NoError(t, err)
	assert.False(t, post.Published)
	require.NotNil(t, post.PublishedAt, "unpublishing must not clear the publication time")
	assert.True(t, post.PublishedAt.Equal(firstPublished))

	time.Sleep(10 * time.Millisecond)
	post, err = repo.Update(ctx, post.ID, UpdatePostData{Published: &publish})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(firstPublished),
		"republishing must keep the original publication time")
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, validCreateData("Touch Me"))
	require.NoError(t, err)
	before := post.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	excerpt := "short summary"
	post, err = repo.Update(ctx, post.ID, UpdatePostData{Excerpt: &excerpt})
	require.NoError(t, err)

	assert.True(t, post.UpdatedAt.After(before))
	assert.Equal(t, "short summary", post.Excerpt)
}

func TestUpdateRecomputesReadTime(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, validCreateData("Read Time"))
	require.NoError(t, err)
	require.Equal(t, 1, post.ReadTime)

	long := "<p>" + strings.Repeat("word ", 400) + "</p>"
	post, err = repo.Update(ctx, post.ID, UpdatePostData{Content: &long})
	require.NoError(t, err)
	assert.Equal(t, 2, post.ReadTime)
}

func TestUpdateMissingPost(t *testing.T) {
	repo := testRepository(t)

	title := "nope"
	_, err := repo.Update(context.Background(), 9999, UpdatePostData{Title: &title})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestDeleteIsUnconditional(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	data := validCreateData("To Be Deleted")
	data.Published = true
	post, err := repo.Create(ctx, data)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing id is not an error.
	assert.NoError(t, repo.Delete(ctx, post.ID))
}

func TestGetByIDAbsent(t *testing.T) {
	repo := testRepository(t)

	post, err := repo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestGetBySlugPublishedOnly(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	draft, err := repo.Create(ctx, validCreateData("Hidden Draft"))
	require.NoError(t, err)

	got, err := repo.GetBySlug(ctx, draft.Slug)
	require.NoError(t, err)
	assert.Nil(t, got, "unpublished post must be invisible by slug")

	publish := true
	_, err = repo.Update(ctx, draft.ID, UpdatePostData{Published: &publish})
	require.NoError(t, err)

	got, err = repo.GetBySlug(ctx, draft.Slug)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, draft.ID, got.ID)
}

func TestGetAllNewestCreatedFirst(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	for _, title := range []string{"First Post", "Second Post", "Third Post"} {
		_, err := repo.Create(ctx, validCreateData(title))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	posts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "third-post", posts[0].Slug)
	assert.Equal(t, "first-post", posts[2].Slug)
}

func TestGetPublishedOrderedByPublicationTime(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	// Creation order: A, B, C. Publication order: C, A, B.
	ids := make(map[string]int64)
	for _, title := range []string{"Post A", "Post B", "Post C"} {
		post, err := repo.Create(ctx, validCreateData(title))
		require.NoError(t, err)
		ids[title] = post.ID
		time.Sleep(5 * time.Millisecond)
	}

	publish := true
	for _, title := range []string{"Post C", "Post A", "Post B"} {
		_, err := repo.Update(ctx, ids[title], UpdatePostData{Published: &publish})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	posts, err := repo.GetPublished(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post-b", posts[0].Slug)
	assert.Equal(t, "post-a", posts[1].Slug)
	assert.Equal(t, "post-c", posts[2].Slug)

	limited, err := repo.GetPublished(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "post-b", limited[0].Slug)
	assert.Equal(t, "post-a", limited[1].Slug)
}

func TestGetPublishedExcludesDrafts(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, validCreateData("Draft Only"))
	require.NoError(t, err)

	posts, err := repo.GetPublished(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
