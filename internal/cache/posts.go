// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dataaqu/weforward/internal/model"
)

// publishedKey builds the cache key for a published-posts listing.
// limit 0 means "all published posts".
func publishedKey(limit int) string {
	return fmt.Sprintf("posts:published:%d", limit)
}

// Posts is a typed view over a Cache for published post listings. It is
// strictly best-effort: every error degrades to a miss or a no-op so the
// database stays the source of truth.
type Posts struct {
	cache Cache
	ttl   time.Duration
}

// NewPosts creates a published-posts cache with the given TTL.
func NewPosts(cache Cache, ttl time.Duration) *Posts {
	return &Posts{cache: cache, ttl: ttl}
}

// GetPublished returns a cached listing, or (nil, false) on any miss.
func (p *Posts) GetPublished(ctx context.Context, limit int) ([]model.BlogPost, bool) {
	data, err := p.cache.Get(ctx, publishedKey(limit))
	if err != nil {
		return nil, false
	}
	var posts []model.BlogPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

// SetPublished stores a listing.
func (p *Posts) SetPublished(ctx context.Context, limit int, posts []model.BlogPost) {
	data, err := json.Marshal(posts)
	if err != nil {
		return
	}
	_ = p.cache.Set(ctx, publishedKey(limit), data, p.ttl)
}

// Invalidate drops every cached listing. Called on any post mutation;
// listings for all limits are affected, so the whole cache is cleared.
func (p *Posts) Invalidate(ctx context.Context) {
	_ = p.cache.Clear(ctx)
}
