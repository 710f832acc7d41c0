package dataset

import (
	"sort"
	"strings"
	"unicode"
)

// NormalizeName prepares a full name for exact-equality comparison: case-fold,
// strip punctuation, collapse runs of whitespace, and sort the remaining
// tokens so word order is ignored. Both candidate names and reference records
// pass through this before matching, so "POWELL, James T." and
// "james t powell" compare equal even though exclusion lists publish names
// surname-first.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
