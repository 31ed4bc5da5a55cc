// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import "github.com/dataaqu/weforward/internal/util"

// wordsPerMinute is the reading speed assumed for the read-time badge.
const wordsPerMinute = 200

// CalculateReadTime estimates reading time in whole minutes for HTML
// content. Markup is stripped first so tags never count as words. Always
// at least 1 so the badge never shows "0 min read".
func CalculateReadTime(content string) int {
	words := util.CountWords(content)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
