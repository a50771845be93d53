package ai

import (
	stderrors "errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNoSections is returned when a response contains none of the expected headers
var ErrNoSections = stderrors.New("no recognized section headers")

// SectionParser splits free-text model output into labelled sections.
//
// Grammar, matched case-insensitively:
//
//	section := header ':' body
//	header  := one of the configured names at the start of the text or
//	           after any character that is not a letter, digit or "_",
//	           optionally wrapped in markdown emphasis or "#" markers;
//	           "_" and " " are interchangeable inside a name
//	body    := everything up to the next header or end of text
//
// Only the first occurrence of a header counts. List bodies are split on
// "-", "•" or "*" markers standing alone between whitespace, or glued to
// the first word of a line ("-Python").
type SectionParser struct {
	headers []string
	pattern *regexp.Regexp
}

// NewSectionParser builds a parser for the given header names
func NewSectionParser(headers ...string) *SectionParser {
	alternatives := make([]string, len(headers))
	for i, h := range headers {
		words := strings.FieldsFunc(h, func(r rune) bool { return r == '_' || r == ' ' })
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		alternatives[i] = strings.Join(words, `[_ ]`)
	}

	pattern := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])([ \t#*_]*)(` + strings.Join(alternatives, "|") + `)[ \t*_]*:[*_]*`)
	return &SectionParser{headers: headers, pattern: pattern}
}

// Sections maps canonical header names to their raw bodies
type Sections map[string]string

// Parse returns the body of every header found. It fails with ErrNoSections
// when no header is present.
func (p *SectionParser) Parse(text string) (Sections, error) {
	matches := p.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, ErrNoSections
	}

	// m[2] is where a header's decoration starts, m[4]:m[5] is its name
	sections := make(Sections, len(matches))
	for i, m := range matches {
		name := p.canonical(text[m[4]:m[5]])
		if _, seen := sections[name]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][2]
		}
		sections[name] = strings.TrimSpace(text[m[1]:end])
	}
	return sections, nil
}

func (p *SectionParser) canonical(found string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(found, " ", "_"))
	for _, h := range p.headers {
		if strings.ToUpper(strings.ReplaceAll(h, " ", "_")) == normalized {
			return h
		}
	}
	return normalized
}

// Scalar returns the first line of a section body
func (s Sections) Scalar(name string) (string, bool) {
	body, ok := s[name]
	if !ok {
		return "", false
	}
	line, _, _ := strings.Cut(body, "\n")
	line = strings.TrimSpace(line)
	return line, line != ""
}

// List returns the bullet items of a section body. ok is false when the
// section is absent or holds no items.
func (s Sections) List(name string) ([]string, bool) {
	body, ok := s[name]
	if !ok {
		return nil, false
	}
	items := SplitBullets(body)
	return items, len(items) > 0
}

func isBulletMarker(r rune) bool {
	return r == '-' || r == '•' || r == '*'
}

// SplitBullets splits a body into bullet items. A marker is a "-", "•" or
// "*" token on its own, or one glued to the first word of a line. Hyphens
// inside words ("scikit-learn") never split. Items are whitespace-collapsed
// and empty ones, including the text before a leading marker, are dropped.
func SplitBullets(body string) []string {
	items := make([]string, 0)
	var current []string
	flush := func() {
		if len(current) > 0 {
			items = append(items, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(body, "\n") {
		for i, tok := range strings.Fields(line) {
			first, size := utf8.DecodeRuneInString(tok)
			if !isBulletMarker(first) {
				current = append(current, tok)
				continue
			}
			if size == len(tok) {
				flush()
				continue
			}
			if i == 0 {
				flush()
				current = append(current, tok[size:])
				continue
			}
			current = append(current, tok)
		}
	}
	flush()
	return items
}

// ScanSections is the line-oriented parser used by the narrower advice
// operations. A line whose upper-cased form contains "HEADER:" switches the
// active section; a line starting with "-" appends to it. Bullets before the
// first header are dropped. Every header gets an entry, possibly empty.
func ScanSections(text string, headers []string) map[string][]string {
	result := make(map[string][]string, len(headers))
	for _, h := range headers {
		result[h] = []string{}
	}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switched := false
		for _, h := range headers {
			if strings.Contains(upper, h+":") {
				current = h
				switched = true
				break
			}
		}
		if switched {
			continue
		}

		if strings.HasPrefix(line, "-") && current != "" {
			result[current] = append(result[current], strings.TrimSpace(line[1:]))
		}
	}
	return result
}
