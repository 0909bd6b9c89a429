package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Part is either rendered HTML or a reference to a component that the store
// renders in its place.
type Part struct {
	HTML      string
	Component string
}

// ComponentRenderer renders components injected into markdown.
type ComponentRenderer interface {
	RenderComponent(name string) (string, error)
}

// InjectMarker returns the markdown comment that injects a component.
func InjectMarker(name string) string {
	return "<!-- ReDoc-Inject: <" + name + "> -->"
}

func componentRegexp(allowed []string) *regexp.Regexp {
	names := make([]string, len(allowed))
	for i, name := range allowed {
		names[i] = regexp.QuoteMeta(name)
	}
	alt := strings.Join(names, "|")
	return regexp.MustCompile(`(?m)^ {0,3}(?:<!-- ReDoc-Inject:\s+?<(` + alt + `)[^>]*?/?>\s+?-->|<(` + alt + `)\s*/>)[ \t]*$`)
}

// ContainsComponent reports whether src already injects the named component.
func ContainsComponent(src, name string) bool {
	return componentRegexp([]string{name}).MatchString(src)
}

// SplitComponents splits src on component markers of the allowed names and
// renders the markdown between them.
func (r *Renderer) SplitComponents(src string, allowed []string) ([]Part, error) {
	if len(allowed) == 0 {
		html, err := r.RenderMd(src)
		if err != nil {
			return nil, err
		}
		return []Part{{HTML: html}}, nil
	}

	var parts []Part
	addMd := func(md string) error {
		if strings.TrimSpace(md) == "" {
			return nil
		}
		html, err := r.RenderMd(md)
		if err != nil {
			return err
		}
		parts = append(parts, Part{HTML: html})
		return nil
	}

	re := componentRegexp(allowed)
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(src, -1) {
		if err := addMd(src[last:loc[0]]); err != nil {
			return nil, err
		}
		name := ""
		switch {
		case loc[2] >= 0:
			name = src[loc[2]:loc[3]]
		case loc[4] >= 0:
			name = src[loc[4]:loc[5]]
		}
		parts = append(parts, Part{Component: name})
		last = loc[1]
	}
	if err := addMd(src[last:]); err != nil {
		return nil, err
	}

	return parts, nil
}

// RenderMdWithComponents renders src, replacing component markers with the
// output of store.
func (r *Renderer) RenderMdWithComponents(src string, allowed []string, store ComponentRenderer) (string, error) {
	if store == nil {
		return "", ErrMissingStore
	}

	parts, err := r.SplitComponents(src, allowed)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, part := range parts {
		if part.Component == "" {
			b.WriteString(part.HTML)
			continue
		}
		html, err := store.RenderComponent(part.Component)
		if err != nil {
			return "", fmt.Errorf("failed to render component %s: %w", part.Component, err)
		}
		b.WriteString(html)
	}
	return b.String(), nil
}
