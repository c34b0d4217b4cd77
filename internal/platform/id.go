package platform

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

func NewID() string {
	return uuid.New().String()
}

// SafeName reduces s to a lowercase filename fragment made of letters,
// digits, dashes and underscores. Runs of other characters collapse to a
// single underscore.
func SafeName(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
