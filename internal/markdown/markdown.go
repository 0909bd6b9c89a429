// Package markdown renders description fields and extracts the heading
// structure used to build documentation sections.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ErrMissingStore is returned when markdown with embedded components is
// rendered without a store that can render them.
var ErrMissingStore = errors.New("markdown components require a store")

// SectionPrefix prefixes the ids of sections extracted from top level
// descriptions.
const SectionPrefix = "section"

// Heading is a markdown heading together with the text below it.
type Heading struct {
	ID          string
	Name        string
	Level       int
	Description string
	Items       []*Heading
}

// Renderer converts markdown into HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a GFM renderer. Raw HTML inside the markdown is kept
// unless untrusted is set.
func NewRenderer(untrusted bool) *Renderer {
	var rendererOpts []goldmark.Option
	if !untrusted {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	opts := append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
		),
	}, rendererOpts...)

	return &Renderer{md: goldmark.New(opts...)}
}

// RenderMd renders markdown source into HTML.
func (r *Renderer) RenderMd(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ExtractHeadings returns the headings up to maxDepth found at the top level
// of the document. Level 2 headings are nested under the preceding level 1
// heading. Headings deeper than maxDepth stay part of the description.
func (r *Renderer) ExtractHeadings(src string, maxDepth int, parentID string) []*Heading {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	type mark struct {
		heading *Heading
		start   int // offset of the heading line
		body    int // offset of the text after the heading
	}

	var marks []mark
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > maxDepth || h.Lines().Len() == 0 {
			continue
		}

		first := h.Lines().At(0)

		var name strings.Builder
		for i := 0; i < h.Lines().Len(); i++ {
			seg := h.Lines().At(i)
			if i > 0 {
				name.WriteByte(' ')
			}
			name.Write(bytes.TrimSpace(seg.Value(source)))
		}

		start := lineStart(source, first.Start)
		body := lineEnd(source, first.Start)
		// setext headings end with their underline
		if !bytes.HasPrefix(bytes.TrimLeft(source[start:], " "), []byte("#")) {
			for body < len(source) {
				next := lineEnd(source, body)
				line := bytes.TrimSpace(source[body:next])
				body = next
				if len(line) > 0 && len(bytes.Trim(line, "=-")) == 0 {
					break
				}
			}
		}

		marks = append(marks, mark{
			heading: &Heading{Name: name.String(), Level: h.Level},
			start:   start,
			body:    body,
		})
	}

	var (
		result  []*Heading
		current *Heading
	)
	for i, m := range marks {
		end := len(source)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		if m.body < end {
			m.heading.Description = strings.TrimSpace(string(source[m.body:end]))
		}

		if m.heading.Level == 1 || current == nil {
			m.heading.ID = headingID(parentID, m.heading.Name)
			result = append(result, m.heading)
			if m.heading.Level == 1 {
				current = m.heading
			}
			continue
		}

		m.heading.ID = headingID(current.ID, m.heading.Name)
		current.Items = append(current.Items, m.heading)
	}

	return result
}

// TextBeforeFirstHeading returns the markdown that precedes the first heading
// up to maxDepth.
func (r *Renderer) TextBeforeFirstHeading(src string, maxDepth int) string {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > maxDepth || h.Lines().Len() == 0 {
			continue
		}
		return strings.TrimSpace(string(source[:lineStart(source, h.Lines().At(0).Start)]))
	}
	return strings.TrimSpace(src)
}

func headingID(parentID, name string) string {
	if parentID == "" {
		parentID = SectionPrefix
	}
	return parentID + "/" + SafeSlugify(name)
}

func lineStart(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	if i := bytes.LastIndexByte(src[:offset], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

func lineEnd(src []byte, offset int) int {
	if offset >= len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
		return offset + i + 1
	}
	return len(src)
}

// AppendToMdHeading appends content to the section under heading, adding the
// heading at the end of md when it is missing.
func AppendToMdHeading(md, heading, content string) string {
	quoted := regexp.QuoteMeta(heading)
	testRe := regexp.MustCompile(`(?i)(^|\n)#\s?` + quoted + `\s*\n`)
	replaceRe := regexp.MustCompile(`(?i)((\n|^)#\s*` + quoted + `\s*(\n|$)(?:.|\n)*?)(\n#|$)`)

	if testRe.MatchString(md) {
		loc := replaceRe.FindStringSubmatchIndex(md)
		if loc == nil {
			return md
		}
		section := md[loc[2]:loc[3]]
		next := ""
		if loc[8] >= 0 {
			next = md[loc[8]:loc[9]]
		}
		return md[:loc[0]] + section + "\n\n" + content + "\n" + next + md[loc[1]:]
	}

	br := "\n\n"
	switch {
	case md == "" || strings.HasSuffix(md, "\n\n"):
		br = ""
	case strings.HasSuffix(md, "\n"):
		br = "\n"
	}
	return md + br + "# " + heading + "\n\n" + content
}
