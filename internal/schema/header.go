package schema

import (
	"regexp"
	"strings"
)

var bracketed = regexp.MustCompile(`\[.*?\]`)

// NormalizeHeader turns a raw column header into the key used for all header
// comparisons. Bracketed annotations, whitespace, '.' and '_' are dropped and
// the result is upper-cased, so "SESSION ID [ASPD]" and "Session_Id" collapse
// to the same key.
func NormalizeHeader(raw string) string {
	s := bracketed.ReplaceAllString(raw, "")
	s = strings.Join(strings.Fields(s), "")
	s = strings.Map(func(r rune) rune {
		if r == '.' || r == '_' {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeHeaders normalizes every header in order.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = NormalizeHeader(h)
	}
	return out
}
