// Package resolve maps free-text chat queries onto speedrun.com catalog
// entities: a game, a category (with level when required), and subcategory
// variable selections. Matching is heuristic and catalog-driven; every stage
// compares normalized text so that spelling, casing, punctuation and
// diacritics do not matter.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "Pokémon"
// compares equal to "Pokemon".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases s, strips diacritics and removes everything outside
// [a-z0-9]. It is pure and idempotent; all resolver stages use it so that
// "Skyward Sword", "skyward-sword" and "SKYWARDSWORD" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
