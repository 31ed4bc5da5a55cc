// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every element and attribute, leaving text content.
var stripPolicy = bluemonday.StrictPolicy()

// StripTags removes all HTML markup from content, returning plain text
// with entities decoded. Used for word counting and text analysis, never
// for rendering.
func StripTags(content string) string {
	return html.UnescapeString(stripPolicy.Sanitize(content))
}

// CountWords returns the number of whitespace-separated words in the
// content after markup is stripped.
func CountWords(content string) int {
	return len(strings.Fields(StripTags(content)))
}
