// Package slug builds URL slugs for catalog entities.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9-]+`)
	dashesRe     = regexp.MustCompile(`-{2,}`)
)

// Make lowercases value, folds diacritics, turns whitespace into dashes and
// drops anything outside [a-z0-9-]. It may return an empty string.
func Make(value string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		folded = value
	}
	out := strings.ToLower(strings.TrimSpace(folded))
	out = whitespaceRe.ReplaceAllString(out, "-")
	out = invalidRe.ReplaceAllString(out, "")
	out = dashesRe.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Join prefixes child with the parent slug, the convention used for subcategories.
func Join(parent, child string) string {
	parent, child = Make(parent), Make(child)
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + "-" + child
	}
}
