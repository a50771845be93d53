// Package textnorm cleans raw PDF text before scoring.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// \w is ASCII in RE2, so letters, marks and digits are spelled out to keep accented names
	disallowed    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s.,;:!?\-()\[\]]`)
	dotRun        = regexp.MustCompile(`\.{2,}`)
	dashRun       = regexp.MustCompile(`-{2,}`)
	spaceBefore   = regexp.MustCompile(`\s+([.,:;!?])`)
	spaceAfter    = regexp.MustCompile(`([.,:;!?])\s+`)
	pageMarker    = regexp.MustCompile(`\bpage \d+\b`)
	slashDate     = regexp.MustCompile(`\b\d+/\d+/\d+\b`)
)

// maxPasses bounds the fixed-point loop; real input settles in two passes
const maxPasses = 8

// Normalize collapses whitespace, strips non-essential punctuation and PDF
// artifacts, and lowercases. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := whitespaceRun.ReplaceAllString(raw, " ")
	text = disallowed.ReplaceAllString(text, " ")

	// Removing an artifact can leave punctuation or words next to each other
	// that form a new one, so the tail runs until nothing changes.
	for range maxPasses {
		next := tidy(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func tidy(text string) string {
	text = dotRun.ReplaceAllString(text, ".")
	text = dashRun.ReplaceAllString(text, "-")
	text = spaceBefore.ReplaceAllString(text, "$1")
	text = spaceAfter.ReplaceAllString(text, "$1 ")
	text = strings.ToLower(text)
	text = pageMarker.ReplaceAllString(text, "")
	text = slashDate.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
