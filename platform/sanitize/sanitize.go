// Package sanitize provides text sanitization utilities for user-provided
// free text stored in documents.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	).Replace(result)
	// Entities may have hidden tags.
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML and collapses runs of spaces. Line breaks are kept so
// notes and special instructions keep their paragraphs.
func Text(s string) string {
	return whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
}

// Lines sanitizes every entry and drops the ones that end up empty.
func Lines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, line := range in {
		if cleaned := Text(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
