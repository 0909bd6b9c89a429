package parser

import "strings"

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// CompilePointer builds an RFC 6901 JSON pointer from raw tokens.
func CompilePointer(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(t))
	}
	return b.String()
}

// PointerTokens splits a JSON pointer into unescaped tokens. A leading '#'
// is ignored.
func PointerTokens(pointer string) []string {
	pointer = strings.TrimPrefix(pointer, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	parts := strings.Split(pointer, "/")
	for i, p := range parts {
		parts[i] = pointerUnescaper.Replace(p)
	}
	return parts
}

// PointerBaseName returns the n-th token from the end of the pointer, 1 being
// the last token.
func PointerBaseName(pointer string, n int) string {
	tokens := PointerTokens(pointer)
	if n <= 0 || n > len(tokens) {
		return ""
	}
	return tokens[len(tokens)-n]
}
