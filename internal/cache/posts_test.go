// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dataaqu/weforward/internal/model"
)

func TestPostsRoundTrip(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	posts := NewPosts(c, time.Minute)
	ctx := context.Background()

	if _, ok := posts.GetPublished(ctx, 5); ok {
		t.Fatal("expected miss on empty cache")
	}

	listing := []model.BlogPost{
		{ID: 1, Slug: "first", Title: "First"},
		{ID: 2, Slug: "second", Title: "Second"},
	}
	posts.SetPublished(ctx, 5, listing)

	got, ok := posts.GetPublished(ctx, 5)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 2 || got[0].Slug != "first" || got[1].Slug != "second" {
		t.Errorf("unexpected listing: %+v", got)
	}

	// A different limit is a different key.
	if _, ok := posts.GetPublished(ctx, 3); ok {
		t.Error("limit 3 should miss when only limit 5 is cached")
	}
}

func TestPostsInvalidateDropsAllLimits(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	posts := NewPosts(c, time.Minute)
	ctx := context.Background()

	posts.SetPublished(ctx, 0, []model.BlogPost{{ID: 1}})
	posts.SetPublished(ctx, 3, []model.BlogPost{{ID: 1}})

	posts.Invalidate(ctx)

	if _, ok := posts.GetPublished(ctx, 0); ok {
		t.Error("limit 0 listing survived invalidation")
	}
	if _, ok := posts.GetPublished(ctx, 3); ok {
		t.Error("limit 3 listing survived invalidation")
	}
}
