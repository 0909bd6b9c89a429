package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s$*_+~.()'"!\-:@]+`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`--+`)
)

// SafeSlugify turns a heading or tag name into an id fragment. Case is
// preserved. When nothing survives the character filter a lower-cased
// fallback keeps the original characters.
func SafeSlugify(value string) string {
	if slug := slugify(value); slug != "" {
		return slug
	}

	s := strings.ToLower(value)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "&", "-and-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func slugify(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, value)
	if err != nil {
		plain = value
	}

	plain = strings.ReplaceAll(plain, "&", " and ")
	plain = slugDisallowed.ReplaceAllString(plain, "")
	plain = strings.TrimSpace(plain)
	return slugSpaces.ReplaceAllString(plain, "-")
}
