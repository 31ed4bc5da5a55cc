// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo scores draft posts against a fixed set of bilingual
// content-quality checks and advises the publish flow. The audit is
// pure: same input, same result, no clock, no store.
package seo

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dataaqu/weforward/internal/model"
	"github.com/dataaqu/weforward/internal/util"
)

// Character and word thresholds. Georgian runs shorter than English for
// the same meaning, so its ranges are lower throughout.
const (
	titleMinEN = 30
	titleMaxEN = 60
	titleMinKA = 20
	titleMaxKA = 50

	metaMinEN = 120
	metaMaxEN = 160
	metaMinKA = 100
	metaMaxKA = 140

	contentMinWordsEN  = 300
	contentMinWordsKA  = 250
	contentThinWords   = 100
	maxSentenceWordsEN = 20
	maxSentenceWordsKA = 25
)

// Score bands for the overall status label.
const (
	scoreExcellent = 90
	scoreGood      = 75
	scoreFair      = 50
)

// Status labels.
const (
	StatusExcellent        = "excellent"
	StatusGood             = "good"
	StatusNeedsImprovement = "needs-improvement"
	StatusPoor             = "poor"
)

// Check is the outcome of one audit rule.
type Check struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Score   int    `json:"score"`
}

// Checks holds the seven audit rules. The set is fixed: a struct rather
// than a map so every consumer sees the same named checks.
type Checks struct {
	TitleLength     Check `json:"titleLength"`
	MetaDescription Check `json:"metaDescription"`
	ContentLength   Check `json:"contentLength"`
	Headings        Check `json:"headings"`
	Keywords        Check `json:"keywords"`
	Readability     Check `json:"readability"`
	Images          Check `json:"images"`
}

// AuditResult is the full audit outcome for one post.
type AuditResult struct {
	Score           int      `json:"score"`
	Status          string   `json:"status"`
	Checks          Checks   `json:"checks"`
	Recommendations []string `json:"recommendations"`
	CriticalIssues  []string `json:"criticalIssues"`
}

// Audit runs every check against the post and aggregates an overall
// score as the unweighted mean of the seven check scores.
func Audit(post *model.BlogPost) AuditResult {
	checks := Checks{
		TitleLength:     checkTitleLength(post),
		MetaDescription: checkMetaDescription(post),
		ContentLength:   checkContentLength(post),
		Headings:        checkHeadings(post),
		Keywords:        checkKeywords(post),
		Readability:     checkReadability(post),
		Images:          checkImages(post),
	}

	all := []Check{
		checks.TitleLength, checks.MetaDescription, checks.ContentLength,
		checks.Headings, checks.Keywords, checks.Readability, checks.Images,
	}

	sum := 0
	for _, c := range all {
		sum += c.Score
	}
	score := int(math.Round(float64(sum) / float64(len(all))))

	var recommendations, critical []string
	for i, c := range all {
		if c.Score < 80 {
			recommendations = append(recommendations, recommendationFor(i))
		}
		if c.Score < 50 {
			critical = append(critical, c.Message)
		}
	}

	return AuditResult{
		Score:           score,
		Status:          statusFor(score),
		Checks:          checks,
		Recommendations: recommendations,
		CriticalIssues:  critical,
	}
}

func statusFor(score int) string {
	switch {
	case score >= scoreExcellent:
		return StatusExcellent
	case score >= scoreGood:
		return StatusGood
	case score >= scoreFair:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// Check order in the aggregate slice, for fixed recommendation text.
func recommendationFor(check int) string {
	switch check {
	case 0:
		return "Adjust title lengths: 30-60 characters in English, 20-50 in Georgian."
	case 1:
		return "Write meta descriptions of 120-160 characters in English and 100-140 in Georgian."
	case 2:
		return "Expand the article: aim for at least 300 English and 250 Georgian words."
	case 3:
		return "Structure both versions with one H1 and at least one H2 heading."
	case 4:
		return "Use 2-4 focused tags and repeat them in the title and body."
	case 5:
		return "Shorten sentences: under 20 words in English, under 25 in Georgian."
	default:
		return "Add a featured image and at least one more image in the article body."
	}
}

func checkTitleLength(post *model.BlogPost) Check {
	enLen := utf8.RuneCountInString(strings.TrimSpace(post.Title))
	kaLen := utf8.RuneCountInString(strings.TrimSpace(post.TitleKa))

	if enLen == 0 || kaLen == 0 {
		var missing []string
		if enLen == 0 {
			missing = append(missing, "English")
		}
		if kaLen == 0 {
			missing = append(missing, "Georgian")
		}
		return Check{
			Message: fmt.Sprintf("Title is missing in %s", strings.Join(missing, " and ")),
		}
	}

	enOK := enLen >= titleMinEN && enLen <= titleMaxEN
	kaOK := kaLen >= titleMinKA && kaLen <= titleMaxKA
	if enOK && kaOK {
		return Check{Passed: true, Message: "Title length is optimal in both languages", Score: 100}
	}

	var issues []string
	if !enOK {
		issues = append(issues, fmt.Sprintf("English title should be %d-%d characters (currently %d)",
			titleMinEN, titleMaxEN, enLen))
	}
	if !kaOK {
		issues = append(issues, fmt.Sprintf("Georgian title should be %d-%d characters (currently %d)",
			titleMinKA, titleMaxKA, kaLen))
	}
	return Check{Message: strings.Join(issues, "; "), Score: 50}
}

func checkMetaDescription(post *model.BlogPost) Check {
	enLen := utf8.RuneCountInString(strings.TrimSpace(post.MetaDescription))
	kaLen := utf8.RuneCountInString(strings.TrimSpace(post.MetaDescriptionKa))

	if enLen == 0 || kaLen == 0 {
		var missing []string
		if enLen == 0 {
			missing = append(missing, "English")
		}
		if kaLen == 0 {
			missing = append(missing, "Georgian")
		}
		return Check{
			Message: fmt.Sprintf("Meta description is missing in %s", strings.Join(missing, " and ")),
		}
	}

	enOK := enLen >= metaMinEN && enLen <= metaMaxEN
	kaOK := kaLen >= metaMinKA && kaLen <= metaMaxKA
	if enOK && kaOK {
		return Check{Passed: true, Message: "Meta description length is optimal in both languages", Score: 100}
	}

	var issues []string
	if !enOK {
		issues = append(issues, fmt.Sprintf("English meta description should be %d-%d characters (currently %d)",
			metaMinEN, metaMaxEN, enLen))
	}
	if !kaOK {
		issues = append(issues, fmt.Sprintf("Georgian meta description should be %d-%d characters (currently %d)",
			metaMinKA, metaMaxKA, kaLen))
	}
	return Check{Message: strings.Join(issues, "; "), Score: 50}
}

func checkContentLength(post *model.BlogPost) Check {
	enWords := util.CountWords(post.Content)
	kaWords := util.CountWords(post.ContentKa)

	if enWords >= contentMinWordsEN && kaWords >= contentMinWordsKA {
		return Check{
			Passed:  true,
			Message: fmt.Sprintf("Content length is good (%d English / %d Georgian words)", enWords, kaWords),
			Score:   100,
		}
	}

	msg := fmt.Sprintf("Content is short: %d English words (target %d) and %d Georgian words (target %d)",
		enWords, contentMinWordsEN, kaWords, contentMinWordsKA)
	if enWords > contentThinWords || kaWords > contentThinWords {
		return Check{Message: msg, Score: 60}
	}
	return Check{Message: msg, Score: 20}
}

func checkHeadings(post *model.BlogPost) Check {
	var missing []string
	for _, lang := range []struct {
		name    string
		content string
	}{
		{"English", post.Content},
		{"Georgian", post.ContentKa},
	} {
		lower := strings.ToLower(lang.content)
		if !strings.Contains(lower, "<h1") {
			missing = append(missing, lang.name+" H1")
		}
		if !strings.Contains(lower, "<h2") {
			missing = append(missing, lang.name+" H2")
		}
	}

	if len(missing) == 0 {
		return Check{Passed: true, Message: "Both languages use H1 and H2 headings", Score: 100}
	}
	return Check{
		Message: "Missing headings: " + strings.Join(missing, ", "),
		Score:   50,
	}
}

func checkKeywords(post *model.BlogPost) Check {
	keywords := mergeKeywords(post.Tags, post.TagsKa)

	switch {
	case len(keywords) == 0:
		return Check{Message: "No tags set; search engines have no keywords to index"}
	case len(keywords) == 1:
		return Check{Message: "Only one tag set; use 2-4 focused tags", Score: 40}
	case len(keywords) > 4:
		return Check{
			Message: fmt.Sprintf("%d tags dilute keyword focus; use 2-4", len(keywords)),
			Score:   60,
		}
	}

	titles := strings.ToLower(post.Title + " " + post.TitleKa)
	body := strings.ToLower(util.StripTags(post.Content) + " " + util.StripTags(post.ContentKa))

	inTitle := false
	inBody := 0
	for _, kw := range keywords {
		if strings.Contains(titles, kw) {
			inTitle = true
		}
		if strings.Contains(body, kw) {
			inBody++
		}
	}

	if inTitle && float64(inBody) >= 0.7*float64(len(keywords)) {
		return Check{Passed: true, Message: "Keywords appear in the title and throughout the content", Score: 100}
	}
	return Check{
		Message: "Tags are set but underused: repeat them in the title and body text",
		Score:   60,
	}
}

// mergeKeywords combines both tag lists into lowercase keywords,
// dropping blanks. Duplicates across the lists are kept: the count
// bands measure tag volume, not distinct terms, so a tag repeated in
// both languages counts twice.
func mergeKeywords(tags, tagsKa []string) []string {
	var keywords []string
	for _, t := range append(append([]string{}, tags...), tagsKa...) {
		kw := strings.ToLower(strings.TrimSpace(t))
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
	}
	return keywords
}

func checkReadability(post *model.BlogPost) Check {
	var offending []string
	if avgSentenceWords(post.Content) > maxSentenceWordsEN {
		offending = append(offending, "English")
	}
	if avgSentenceWords(post.ContentKa) > maxSentenceWordsKA {
		offending = append(offending, "Georgian")
	}

	if len(offending) == 0 {
		return Check{Passed: true, Message: "Sentence length is comfortable in both languages", Score: 100}
	}
	return Check{
		Message: fmt.Sprintf("Sentences run long in %s; shorter sentences read better",
			strings.Join(offending, " and ")),
		Score: 70,
	}
}

// avgSentenceWords computes average words per sentence over stripped
// text, splitting on sentence-ending punctuation.
func avgSentenceWords(content string) float64 {
	text := util.StripTags(content)
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var count int
	var words int
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if n == 0 {
			continue
		}
		count++
		words += n
	}
	if count == 0 {
		return 0
	}
	return float64(words) / float64(count)
}

func checkImages(post *model.BlogPost) Check {
	total := strings.Count(strings.ToLower(post.Content), "<img")
	if post.FeaturedImage != "" {
		total++
	}

	switch {
	case post.FeaturedImage == "":
		return Check{Message: "No featured image set; listings and social previews will be blank", Score: 30}
	case total == 0:
		return Check{Message: "Post has no images", Score: 20}
	case total >= 2:
		return Check{
			Passed:  true,
			Message: fmt.Sprintf("Post has %d images", total),
			Score:   100,
		}
	default:
		return Check{Message: "Only the featured image is present; add images to the body", Score: 70}
	}
}
