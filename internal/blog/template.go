// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"fmt"
	"strings"

	"github.com/dataaqu/weforward/internal/model"
)

// Placeholder syntax for inline images, written by authors directly in
// post content:
//
//	<image2>                     full-width image
//	<image1-half>text</image1-half>  image left, text right
//
// Indexes are 1-based and refer to the post's uploaded image list.
// Expansion runs once at save time; the stored content is final HTML.

type segmentKind int

const (
	segText segmentKind = iota
	segFull
	segHalf
)

// segment is one tokenized span of content. raw holds the original text
// so an out-of-range placeholder can be left exactly as written.
type segment struct {
	kind  segmentKind
	raw   string
	index int
	inner string
}

// ExpandPlaceholders replaces image placeholders in one language's
// content with HTML, using the given image locators. A placeholder whose
// index has no uploaded image is left verbatim so the author can upload
// the image later and re-save. Repeated placeholders expand identically.
func ExpandPlaceholders(content string, images []string) string {
	if !strings.Contains(content, "<image") {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, seg := range tokenize(content) {
		switch seg.kind {
		case segFull:
			if seg.index >= 1 && seg.index <= len(images) {
				b.WriteString(fullImageHTML(images[seg.index-1], seg.index))
			} else {
				b.WriteString(seg.raw)
			}
		case segHalf:
			if seg.index >= 1 && seg.index <= len(images) {
				b.WriteString(halfImageHTML(images[seg.index-1], seg.index, seg.inner))
			} else {
				b.WriteString(seg.raw)
			}
		default:
			b.WriteString(seg.raw)
		}
	}
	return b.String()
}

// tokenize splits content into literal text and placeholder segments.
// Anything that looks like a placeholder but does not parse (bad index,
// missing close tag) stays literal text.
func tokenize(content string) []segment {
	var (
		segs  []segment
		start int
		pos   int
	)
	for pos < len(content) {
		open := strings.Index(content[pos:], "<image")
		if open < 0 {
			break
		}
		open += pos

		seg, end, ok := parsePlaceholder(content, open)
		if !ok {
			pos = open + len("<image")
			continue
		}
		if open > start {
			segs = append(segs, segment{kind: segText, raw: content[start:open]})
		}
		segs = append(segs, seg)
		start, pos = end, end
	}
	if start < len(content) {
		segs = append(segs, segment{kind: segText, raw: content[start:]})
	}
	return segs
}

// parsePlaceholder parses a placeholder beginning at open ("<image...").
// Returns the segment and the offset just past it.
func parsePlaceholder(content string, open int) (segment, int, bool) {
	rest := content[open+len("<image"):]

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return segment{}, 0, false
	}
	index := 0
	for _, c := range rest[:digits] {
		index = index*10 + int(c-'0')
	}
	if index < 1 || index > model.MaxPostImages {
		return segment{}, 0, false
	}
	rest = rest[digits:]

	// Full-width form: <imageN>
	if strings.HasPrefix(rest, ">") {
		end := open + len("<image") + digits + 1
		return segment{kind: segFull, raw: content[open:end], index: index}, end, true
	}

	// Split form: <imageN-half>inner</imageN-half>
	if !strings.HasPrefix(rest, "-half>") {
		return segment{}, 0, false
	}
	innerStart := open + len("<image") + digits + len("-half>")
	closeTag := fmt.Sprintf("</image%d-half>", index)
	rel := strings.Index(content[innerStart:], closeTag)
	if rel < 0 {
		return segment{}, 0, false
	}
	end := innerStart + rel + len(closeTag)
	return segment{
		kind:  segHalf,
		raw:   content[open:end],
		index: index,
		inner: content[innerStart : innerStart+rel],
	}, end, true
}

func fullImageHTML(src string, n int) string {
	return fmt.Sprintf(`<img src="%s" alt="Blog image %d" class="blog-content-image" />`, src, n)
}

// halfImageHTML renders the two-column block: image in the left column,
// the author's text verbatim in an indented paragraph on the right.
func halfImageHTML(src string, n int, inner string) string {
	return fmt.Sprintf(
		`<div class="blog-image-split">`+
			`<img src="%s" alt="Blog image %d" class="blog-split-image" />`+
			`<div class="blog-split-text"><p>%s</p></div>`+
			`</div>`,
		src, n, inner)
}
