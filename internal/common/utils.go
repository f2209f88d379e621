package common

import "strings"

// SplitList splits s on sep, trims every entry and drops the ones left empty.
// The order of the remaining entries is preserved.
func SplitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EqualFoldAny reports whether s matches any of opts, ignoring case and
// surrounding whitespace.
func EqualFoldAny(s string, opts ...string) bool {
	s = strings.TrimSpace(s)
	for _, o := range opts {
		if strings.EqualFold(s, o) {
			return true
		}
	}
	return false
}
