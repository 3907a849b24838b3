package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake converts a type name to snake_case using ASCII-aware rules. The
// implementation stays local so punctuation from reflected type names
// (pointers, generic suffixes) is stripped aggressively; leaving it in would
// corrupt the entity segment of cache keys and the tag namespace.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	pendingSep := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				if pendingSep {
					b.WriteByte('_')
				} else {
					prev := runes[i-1]
					nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
					if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
						b.WriteByte('_')
					}
				}
			}
			b.WriteRune(unicode.ToLower(r))
			pendingSep = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false

		default:
			// Underscores, dashes, spaces and any other punctuation collapse
			// into a single separator.
			pendingSep = true
		}
	}

	return strings.Trim(b.String(), "_")
}
