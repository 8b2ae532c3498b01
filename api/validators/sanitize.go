package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeNotes trims free-text order and session notes, drops control
// characters other than newlines and tabs, and caps the result at maxRunes
// runes. Blank input yields nil so the column stays NULL.
func SanitizeNotes(input *string, maxRunes int) *string {
	if input == nil {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return -1
		}
		return r
	}, *input)
	cleaned = strings.TrimSpace(cleaned)
	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:maxRunes]))
	}
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
