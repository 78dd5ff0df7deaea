package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EncodeForDisplay rewrites text so it prints cleanly in an ASCII-only
// terminal: runes outside the ASCII range become backslash escapes, the
// rest pass through untouched.
func EncodeForDisplay(text string) string {
	ascii := true
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return text
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r > 0xFFFF:
			fmt.Fprintf(&b, "\\U%08x", r)
		default:
			fmt.Fprintf(&b, "\\u%04x", r)
		}
	}
	return b.String()
}
