package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// keywords that end a measure, column or partition block
	childKeywords = []string{"measure", "column", "partition", "annotation"}
	// keywords that end a relationship block
	relationshipKeywords = []string{"relationship"}

	fencePattern = regexp.MustCompile("(?s)```(.*?)```")
)

// blockEnd returns the index at which a block starting at start ends: the first
// newline followed, after optional whitespace, by one of keywords or by the
// end of text. Without such a newline the block runs to the end of text.
func blockEnd(text string, start int, keywords []string) int {
	for i := start; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		rest := strings.TrimLeftFunc(text[i+1:], unicode.IsSpace)
		if rest == "" || hasAnyPrefix(rest, keywords) {
			return i
		}
	}
	return len(text)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// block is one header match plus the body that follows it.
type block struct {
	groups []string // submatches of the header pattern, index 0 unused
	body   string   // trimmed block text after the header
}

// scanBlocks finds every non-overlapping header match in text and pairs it
// with the body that runs to the next block boundary.
func scanBlocks(text string, header *regexp.Regexp, keywords []string) []block {
	var blocks []block
	pos := 0
	for pos < len(text) {
		loc := header.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		bodyStart := pos + loc[1]
		end := blockEnd(text, bodyStart, keywords)

		groups := make([]string, len(loc)/2)
		for i := 1; i < len(groups); i++ {
			if loc[2*i] >= 0 {
				groups[i] = text[pos+loc[2*i] : pos+loc[2*i+1]]
			}
		}
		blocks = append(blocks, block{
			groups: groups,
			body:   strings.TrimSpace(text[bodyStart:end]),
		})
		pos = end
	}
	return blocks
}

// firstGroup returns the first non-empty submatch, trimmed.
// Header patterns use one group per quoting style for the name.
func firstGroup(groups []string, indexes ...int) string {
	for _, i := range indexes {
		if i < len(groups) && groups[i] != "" {
			return strings.TrimSpace(groups[i])
		}
	}
	return ""
}

// propertyPattern builds the matcher for a "key: value" line.
func propertyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(key) + `:\s*([^\r\n]+)`)
}

// property returns the trimmed value of the first match of pattern in body.
func property(body string, pattern *regexp.Regexp) string {
	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// flag reports whether body contains the literal "key: true".
// Only that exact spelling counts; no boolean parsing is attempted.
func flag(body, key string) bool {
	return strings.Contains(body, key+": true")
}

// expression returns the fenced expression of a block, or its first line.
func expression(body string) string {
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	first, _, _ := strings.Cut(body, "\n")
	return strings.TrimSpace(first)
}
