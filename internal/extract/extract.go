// Package extract pulls structured signals out of resume text.
package extract

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumatch/internal/knowledge"
	"resumatch/internal/textnorm"
	"resumatch/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	// tried in order, first pattern with a hit wins
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	}
	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/in/[\w\-]+`)
	githubPattern   = regexp.MustCompile(`(?i)github\.com/[\w\-]+`)

	experiencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(\d+)\+?\s*years?\s*in\s*\w+`),
		regexp.MustCompile(`experience\s*:\s*(\d+)\+?\s*years?`),
	}
	yearToken = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

const (
	maxEducationEntries   = 3
	educationContinuation = 100
	minEducationEntry     = 10
	minYearTokens         = 4
	maxExperienceYears    = 50
)

// ExtractContact returns the first match of each contact pattern
func ExtractContact(text string) types.Contact {
	var c types.Contact
	c.Email = emailPattern.FindString(text)
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			c.Phone = m
			break
		}
	}
	c.LinkedIn = linkedinPattern.FindString(text)
	c.GitHub = githubPattern.FindString(text)
	return c
}

// ExtractSkills finds vocabulary terms as whole words and returns them
// title-cased, in vocabulary order, without duplicates.
func ExtractSkills(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	seen := make(map[string]struct{})

	for _, term := range vocabulary {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if containsWord(lower, key) {
			seen[key] = struct{}{}
			found = append(found, TitleCase(key))
		}
	}
	return found
}

// containsWord reports whether term occurs in s with no word character
// directly before or after it. Terms like "c++" and "node.js" work because
// only the neighbours are checked, not the term's own edge characters.
func containsWord(s, term string) bool {
	for offset := 0; offset < len(s); {
		idx := strings.Index(s[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TitleCase upper-cases every letter that follows a non-letter, so
// "node.js" becomes "Node.Js" and "power bi" becomes "Power Bi".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// ExtractEducation captures lines that mention an education keyword. A short
// following line is appended since degree entries often wrap.
func ExtractEducation(text string, keywords []string) []string {
	lines := strings.Split(text, "\n")
	entries := make([]string, 0, maxEducationEntries)

	for i, line := range lines {
		if !containsAny(strings.ToLower(line), keywords) {
			continue
		}
		entry := strings.TrimSpace(line)
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if utf8.RuneCountInString(next) < educationContinuation {
				entry = strings.TrimSpace(entry + " " + next)
			}
		}
		if utf8.RuneCountInString(entry) > minEducationEntry {
			entries = append(entries, entry)
			if len(entries) == maxEducationEntries {
				break
			}
		}
	}
	return entries
}

// EstimateExperienceYears looks for an explicit "N years experience" phrase
// and otherwise estimates from the spread of four-digit years.
func EstimateExperienceYears(text string) (int, bool) {
	lower := strings.ToLower(text)
	for _, p := range experiencePatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			if years, err := strconv.Atoi(m[1]); err == nil {
				return years, true
			}
		}
	}

	tokens := yearToken.FindAllString(text, -1)
	if len(tokens) < minYearTokens {
		return 0, false
	}
	years := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		y, _ := strconv.Atoi(tok)
		years = append(years, y)
	}
	return min(slices.Max(years)-slices.Min(years), maxExperienceYears), true
}

// BuildRecord runs the normalizer and every extractor over one document
func BuildRecord(raw string, kb *knowledge.Base) types.ResumeRecord {
	record := types.ResumeRecord{
		RawText:           raw,
		CleanedText:       textnorm.Normalize(raw),
		Contact:           ExtractContact(raw),
		Skills:            ExtractSkills(raw, kb.SkillVocabulary()),
		EducationMentions: ExtractEducation(raw, kb.EducationKeywords()),
	}
	if years, ok := EstimateExperienceYears(raw); ok {
		record.ExperienceYears = &years
	}
	return record
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
