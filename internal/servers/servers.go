// Package servers normalizes the server list of an operation into absolute
// URLs that can be shown next to it.
package servers

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Server is a normalized server entry.
type Server struct {
	URL         string              `json:"url"`
	Description string              `json:"description"`
	Variables   map[string]Variable `json:"variables,omitempty"`
}

// Variable is a server URL template variable.
type Variable struct {
	Default string `json:"default"`
	// HasDefault is set when the document declares a default, even an
	// empty one.
	HasDefault  bool     `json:"-"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

var (
	variablePlaceholder = regexp.MustCompile(`{(\w+)}`)
	absoluteURL         = regexp.MustCompile(`(?i)(?:^[a-z][a-z0-9+.-]*:|//)`)
)

// FromSpec converts libopenapi servers into Server values without normalizing
// them.
func FromSpec(in []*v3.Server) []Server {
	out := make([]Server, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		srv := Server{URL: s.URL, Description: s.Description}
		if s.Variables != nil && s.Variables.Len() > 0 {
			srv.Variables = make(map[string]Variable, s.Variables.Len())
			for pair := s.Variables.First(); pair != nil; pair = pair.Next() {
				v := pair.Value()
				if v == nil {
					continue
				}
				srv.Variables[pair.Key()] = Variable{
					Default:     v.Default,
					HasDefault:  v.Default != "" || (v.GoLow() != nil && v.GoLow().Default.ValueNode != nil),
					Enum:        v.Enum,
					Description: v.Description,
				}
			}
		}
		out = append(out, srv)
	}
	return out
}

// Normalize expands variables and resolves every server URL against specURL.
// An empty list yields a single server pointing at specURL.
func Normalize(specURL string, in []Server) []Server {
	baseURL := specURL

	if len(in) == 0 {
		return []Server{{URL: baseURL}}
	}

	specProtocol := ""
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" {
		specProtocol = u.Scheme + ":"
	}

	normalizeURL := func(u string) string {
		if !IsAbsoluteURL(u) {
			u = joinPaths(baseURL, u)
		}
		if strings.HasPrefix(u, "//") {
			u = specProtocol + u
		}
		return StripTrailingSlash(u)
	}

	out := make([]Server, 0, len(in))
	for _, s := range in {
		s.URL = normalizeURL(ExpandVariables(s.URL, s.Variables))
		out = append(out, s)
	}
	return out
}

// ExpandVariables substitutes {name} placeholders whose variable declares a
// default value.
func ExpandVariables(u string, variables map[string]Variable) string {
	if variables == nil {
		return u
	}
	return variablePlaceholder.ReplaceAllStringFunc(u, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := variables[name]; ok && (v.HasDefault || v.Default != "") {
			return v.Default
		}
		return m
	})
}

// IsAbsoluteURL reports whether u has a scheme or is protocol relative.
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// StripTrailingSlash removes a single trailing slash.
func StripTrailingSlash(p string) string {
	return strings.TrimSuffix(p, "/")
}

// ResolveURL resolves to against base without breaking on template fragments
// such as "http://test.com:{port}".
func ResolveURL(base, to string) string {
	var res string
	switch {
	case strings.HasPrefix(to, "//"):
		scheme := ""
		if u, err := url.Parse(base); err == nil && u.Scheme != "" {
			scheme = u.Scheme + ":"
		}
		res = scheme + to
	case IsAbsoluteURL(to):
		res = to
	case !strings.HasPrefix(to, "/"):
		res = StripTrailingSlash(base) + "/" + to
	default:
		res = replacePath(base, to)
	}
	return StripTrailingSlash(res)
}

// BasePath returns the path component of a server URL.
func BasePath(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil {
		return ""
	}
	return u.Path
}

// joinPaths appends p to base with path.Join semantics, keeping the scheme
// and authority of base intact.
func joinPaths(base, p string) string {
	if base == "" {
		if p == "" {
			return ""
		}
		return path.Clean(p)
	}
	idx := strings.Index(base, "://")
	if idx < 0 {
		return path.Join(base, p)
	}
	rest := base[idx+3:]
	authority, basePath := rest, "/"
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		authority, basePath = rest[:slash], rest[slash:]
	}
	return base[:idx+3] + authority + path.Join(basePath, p)
}

// replacePath swaps the path of base for p, keeping scheme and authority.
func replacePath(base, p string) string {
	idx := strings.Index(base, "://")
	if idx < 0 {
		return p
	}
	rest := base[idx+3:]
	if slash := strings.IndexAny(rest, "/?#"); slash >= 0 {
		rest = rest[:slash]
	}
	return base[:idx+3] + rest + p
}
