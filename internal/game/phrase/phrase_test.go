package phrase_test

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/z26games/wof/internal/game/phrase"
)

// TestNormalize verifies case folding and whitespace collapsing.
func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello world", "HELLO WORLD"},
		{"  Hello   World  ", "HELLO WORLD"},
		{"a\tb\nc", "A B C"},
		{"", ""},
		{"ALREADY NORMAL", "ALREADY NORMAL"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, phrase.Normalize(c.in), "Normalize(%q)", c.in)
	}
}

// TestNormalize_Idempotent verifies the postcondition for arbitrary strings.
func TestNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		once := phrase.Normalize(s)
		assert.Equal(rt, once, phrase.Normalize(once))
	})
}

// TestIsLetter_IsVowel verifies the rune classification used by the mask.
func TestIsLetter_IsVowel(t *testing.T) {
	assert.True(t, phrase.IsLetter('a'))
	assert.True(t, phrase.IsLetter('Z'))
	assert.False(t, phrase.IsLetter(' '))
	assert.False(t, phrase.IsLetter('7'))
	assert.False(t, phrase.IsLetter('\''))

	assert.True(t, phrase.IsVowel('e'))
	assert.True(t, phrase.IsVowel('O'))
	assert.False(t, phrase.IsVowel('t'))
	assert.False(t, phrase.IsVowel(' '))
}

// TestLetters verifies the distinct uppercase letter set.
func TestLetters(t *testing.T) {
	got := phrase.Letters("Go Gopher!")
	want := map[rune]bool{'G': true, 'O': true, 'P': true, 'H': true, 'E': true, 'R': true}
	assert.Equal(t, want, got)
}

// TestLetters_Property verifies that every returned letter occurs in the text
// and is uppercase.
func TestLetters_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9 ',!-]{0,40}`).Draw(rt, "s")
		for r := range phrase.Letters(s) {
			assert.True(rt, phrase.IsLetter(r))
			assert.Equal(rt, unicode.ToUpper(r), r)
		}
	})
}
