// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including BlogPost, User and event structures.
package model

import "time"

// MaxPostImages is the maximum number of inline images per post.
const MaxPostImages = 4

// BlogPost is the system of record for a bilingual (English/Georgian)
// blog entry. JSON field names are the external contract consumed by the
// site frontend and must not change.
type BlogPost struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	TitleKa           string     `json:"titleKa"`
	Content           string     `json:"content"`
	ContentKa         string     `json:"contentKa"`
	Excerpt           string     `json:"excerpt"`
	ExcerptKa         string     `json:"excerptKa"`
	Author            string     `json:"author"`
	AuthorKa          string     `json:"authorKa"`
	FeaturedImage     string     `json:"featuredImage"`
	Category          string     `json:"category"`
	CategoryKa        string     `json:"categoryKa"`
	Tags              []string   `json:"tags"`
	TagsKa            []string   `json:"tagsKa"`
	Published         bool       `json:"published"`
	Featured          bool       `json:"featured"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
	Slug              string     `json:"slug"`
	MetaDescription   string     `json:"metaDescription"`
	MetaDescriptionKa string     `json:"metaDescriptionKa"`
	ReadTime          int        `json:"readTime"`
}

// IsDraft returns true if the post has never been published or has been
// taken offline. PublishedAt is deliberately not consulted: it records
// the first publication and survives unpublishing.
func (p *BlogPost) IsDraft() bool {
	return !p.Published
}
