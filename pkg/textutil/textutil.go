package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// foldAccents returns a new transformer on every call, a transform.Chain
// keeps state and must not be shared between goroutines.
func foldAccents() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}

// NormalizeName lowercases a name, strips accents and removes all whitespace
// so that "Van  Der Berg" and "vanderberg" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(foldAccents(), name)
	if err == nil {
		name = folded
	}
	return whitespaceRegex.ReplaceAllString(name, "")
}

// MatchName reports whether the normalized name contains the normalized query.
func MatchName(name, query string) bool {
	return strings.Contains(NormalizeName(name), NormalizeName(query))
}
