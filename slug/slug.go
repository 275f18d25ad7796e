// Package slug builds URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make lowercases s, folds accents to ASCII, drops anything that is not a
// letter, digit, underscore, space or hyphen, and joins words with hyphens.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
	ascii = nonWord.ReplaceAllString(strings.ToLower(ascii), "")
	ascii = separators.ReplaceAllString(strings.TrimSpace(ascii), "-")
	return strings.Trim(ascii, "-_")
}

// WithID appends "-<id>" so that equal names still produce distinct slugs.
func WithID(name string, id uint) string {
	base := Make(name)
	suffix := strconv.FormatUint(uint64(id), 10)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
