package samples

import (
	"strings"

	"github.com/moamenhredeen/oasdoc/internal/jsonhtml"
)

// Example is a rendered example payload.
type Example struct {
	// HTML is set for JSON-like media types.
	HTML string
	// Source is set for every other media type.
	Source string
	Lang   string
}

// IsJSONLike reports whether the media type carries JSON.
func IsJSONLike(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "json")
}

// IsTextPlainLike reports whether the media type is plain text.
func IsTextPlainLike(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "text/plain")
}

// IsXMLLike reports whether the media type carries XML.
func IsXMLLike(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "xml")
}

// LangFromMime returns the highlighting language for a media type.
func LangFromMime(mimeType string) string {
	switch {
	case IsJSONLike(mimeType):
		return "json"
	case IsXMLLike(mimeType):
		return "xml"
	case strings.Contains(mimeType, "html"):
		return "html"
	}
	return "text"
}

// JSONToTextPlain renders a value for text/plain display. Strings are kept,
// everything else is shown as indented JSON.
func JSONToTextPlain(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, err := MarshalIndent(value, "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// ExampleValue renders value according to mimeType. JSON-like media types use
// the collapsible JSON viewer with containers deeper than expandLevel
// collapsed.
func ExampleValue(value any, mimeType string, expandLevel int) Example {
	if IsJSONLike(mimeType) {
		return Example{HTML: jsonhtml.JSONToHTML(value, expandLevel), Lang: "json"}
	}

	lang := LangFromMime(mimeType)
	if IsTextPlainLike(mimeType) {
		return Example{Source: JSONToTextPlain(value), Lang: lang}
	}

	if s, ok := value.(string); ok {
		return Example{Source: s, Lang: lang}
	}
	b, err := MarshalIndent(value, "  ")
	if err != nil {
		return Example{Lang: lang}
	}
	return Example{Source: string(b), Lang: lang}
}
