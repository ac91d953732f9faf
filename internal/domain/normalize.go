package domain

import (
	"strings"
)

// NormalizeName prepares an item name or nick for storage and comparison:
//   - trims leading/trailing whitespace
//   - compresses runs of whitespace into one space
//
// Case is preserved: nicks and item names are compared exactly.
func NormalizeName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
