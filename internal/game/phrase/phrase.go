// Package phrase provides the puzzle value type and the letter-classification
// helpers shared by the match state machine and the storage layer.
package phrase

import (
	"strings"
	"unicode"
)

// Phrase is one puzzle: the text to guess and the category it belongs to.
type Phrase struct {
	Text     string
	Category string
}

// Normalize uppercases s and collapses all interior whitespace runs to single
// spaces, so that phrase comparisons ignore case and spacing.
//
// Postcondition: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// IsLetter reports whether r is an ASCII letter, the rune class the mask
// hides. Digits, spaces, and punctuation are always shown.
func IsLetter(r rune) bool {
	r = unicode.ToUpper(r)
	return r >= 'A' && r <= 'Z'
}

// IsVowel reports whether r is one of AEIOU, case-insensitively.
func IsVowel(r rune) bool {
	switch unicode.ToUpper(r) {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// Letters returns the set of distinct letters occurring in text, uppercased.
func Letters(text string) map[rune]bool {
	out := make(map[rune]bool)
	for _, r := range text {
		if IsLetter(r) {
			out[unicode.ToUpper(r)] = true
		}
	}
	return out
}
