package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = `Intro text.

# Introduction
Welcome to the API.

## Versioning
We use semver.

### Details
Deep heading stays in the body.

# Pagination
Use cursors.
`

func TestExtractHeadings(t *testing.T) {
	r := NewRenderer(false)
	headings := r.ExtractHeadings(description, 2, "")

	require.Len(t, headings, 2)
	assert.Equal(t, "section/Introduction", headings[0].ID)
	assert.Equal(t, "Introduction", headings[0].Name)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Welcome to the API.", headings[0].Description)

	require.Len(t, headings[0].Items, 1)
	sub := headings[0].Items[0]
	assert.Equal(t, "section/Introduction/Versioning", sub.ID)
	assert.Equal(t, 2, sub.Level)
	assert.Contains(t, sub.Description, "We use semver.")
	assert.Contains(t, sub.Description, "### Details")

	assert.Equal(t, "section/Pagination", headings[1].ID)
	assert.Equal(t, "Use cursors.", headings[1].Description)
}

func TestExtractHeadingsParent(t *testing.T) {
	r := NewRenderer(false)
	headings := r.ExtractHeadings("Tag text\n\n# Usage\nCall it.\n", 2, "tag/pet")
	require.Len(t, headings, 1)
	assert.Equal(t, "tag/pet/Usage", headings[0].ID)
}

func TestExtractHeadingsSetext(t *testing.T) {
	r := NewRenderer(false)
	headings := r.ExtractHeadings("Title\n=====\nBody here.\n", 2, "")
	require.Len(t, headings, 1)
	assert.Equal(t, "Title", headings[0].Name)
	assert.Equal(t, "Body here.", headings[0].Description)
}

func TestTextBeforeFirstHeading(t *testing.T) {
	r := NewRenderer(false)
	assert.Equal(t, "Intro text.", r.TextBeforeFirstHeading(description, 2))
	assert.Equal(t, "No headings", r.TextBeforeFirstHeading("No headings\n", 2))
}

func TestRenderMd(t *testing.T) {
	html, err := NewRenderer(false).RenderMd("**bold** <b>raw</b>\n\n| a |\n|---|\n| 1 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<b>raw</b>")
	assert.Contains(t, html, "<table>")

	html, err = NewRenderer(true).RenderMd("<b>raw</b>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>raw</b>")
}

type fakeStore struct{}

func (fakeStore) RenderComponent(name string) (string, error) {
	return "<div class=\"" + name + "\"></div>", nil
}

func TestRenderMdWithComponents(t *testing.T) {
	r := NewRenderer(false)
	src := "Before\n\n" + InjectMarker("security-definitions") + "\n\nAfter\n"

	parts, err := r.SplitComponents(src, []string{"security-definitions"})
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "security-definitions", parts[1].Component)

	html, err := r.RenderMdWithComponents(src, []string{"security-definitions"}, fakeStore{})
	require.NoError(t, err)
	assert.True(t, strings.Index(html, "Before") < strings.Index(html, `<div class="security-definitions">`))
	assert.True(t, strings.Index(html, `<div class="security-definitions">`) < strings.Index(html, "After"))
}

func TestContainsComponent(t *testing.T) {
	assert.True(t, ContainsComponent("Intro\n\n"+InjectMarker("security-definitions")+"\n", "security-definitions"))
	assert.True(t, ContainsComponent("<security-definitions />", "security-definitions"))
	assert.False(t, ContainsComponent("Intro", "security-definitions"))
}

func TestRenderMdWithComponentsMissingStore(t *testing.T) {
	_, err := NewRenderer(false).RenderMdWithComponents("text", []string{"security-definitions"}, nil)
	assert.True(t, errors.Is(err, ErrMissingStore))
}

func TestAppendToMdHeading(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"empty", "", "# Authentication\n\nX"},
		{"no trailing newline", "Intro", "Intro\n\n# Authentication\n\nX"},
		{"single trailing newline", "Intro\n", "Intro\n\n# Authentication\n\nX"},
		{"existing heading", "# Authentication\nUse keys\n# Next\n", "# Authentication\nUse keys\n\nX\n\n# Next\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppendToMdHeading(tt.md, "Authentication", "X"))
		})
	}
}

func TestSafeSlugify(t *testing.T) {
	tests := map[string]string{
		"Introduction":     "Introduction",
		"Pets & Owners":    "Pets-and-Owners",
		"Café crème":       "Cafe-creme",
		"  spaced   out  ": "spaced-out",
		"日本語":              "日本語",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeSlugify(in), in)
	}
}
