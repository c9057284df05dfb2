package enrich

import "strings"

// FirstNonEmpty returns the first value that is not blank, in precedence
// order, or "" when all are blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// FirstNonNil returns the first non-nil pointer that satisfies nonEmpty.
// A nil nonEmpty accepts any non-nil value.
func FirstNonNil[T any](nonEmpty func(*T) bool, vals ...*T) *T {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if nonEmpty == nil || nonEmpty(v) {
			return v
		}
	}
	return nil
}

// orEmpty returns s, or an empty non-nil slice.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
