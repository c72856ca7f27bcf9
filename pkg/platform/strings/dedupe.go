// Package strings normalizes user-supplied string lists.
package strings

import "strings"

// FoldUnique trims and lower-cases each value, drops blanks and keeps the
// first occurrence of every result in input order. Hex identifiers compare
// case-insensitively, so this is the canonical form of an address list.
// Empty input is returned as is.
func FoldUnique(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
