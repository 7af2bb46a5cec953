package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents folds accented characters to their base Latin letter
// (é -> e, ü -> u) by dropping combining marks after NFD decomposition.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips accents without touching structure.
// Used for normalized skill keys and pattern building.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Normalize prepares free text for skill matching: lowercase, accents folded,
// punctuation replaced by single spaces, whitespace collapsed. Characters
// that carry meaning inside tech tokens (. - + #) are preserved so "c++",
// "c#", "react.js" and ".net" survive. Deterministic and side-effect free;
// non-Latin letters pass through case-folded.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded := Fold(text)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '+' || r == '#':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
