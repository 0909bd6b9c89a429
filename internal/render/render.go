// Package render turns the content tree into HTML pages using embedded
// templates.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/markdown"
	"github.com/moamenhredeen/oasdoc/internal/models"
	"github.com/moamenhredeen/oasdoc/internal/samples"
)

//go:embed templates/*.html templates/*.css
var templateFS embed.FS

// ErrUnknownItemType is returned for content items of a type the renderer
// does not know. It aborts the page.
var ErrUnknownItemType = errors.New("unknown content item type")

// SecurityDefinitions is the markdown component listing security schemes.
const SecurityDefinitions = "security-definitions"

var allowedComponents = []string{SecurityDefinitions}

// Renderer renders pages and page fragments.
type Renderer struct {
	opts *config.Options
	md   *markdown.Renderer
	tmpl *template.Template
	css  *texttemplate.Template
}

// Page is everything a documentation page shows.
type Page struct {
	Info  *models.APIInfo
	Items []models.ContentItem
	// Components renders components injected into section descriptions.
	Components markdown.ComponentRenderer
	// SpecPath is the link of the download button.
	SpecPath string
}

type pageView struct {
	Page
	Title           string
	InfoDescription template.HTML
	Content         template.HTML
	Stylesheet      template.CSS
	Options         *config.Options
}

// New parses the embedded templates.
func New(opts *config.Options) (*Renderer, error) {
	r := &Renderer{
		opts: opts,
		md:   markdown.NewRenderer(opts.UntrustedSpec),
	}

	tmpl, err := template.New("").Funcs(r.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tmpl = tmpl

	css, err := texttemplate.New("").Funcs(texttemplate.FuncMap{
		"darken":  Darken,
		"lighten": Lighten,
	}).ParseFS(templateFS, "templates/*.css")
	if err != nil {
		return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	r.css = css

	return r, nil
}

// RenderPage writes the full documentation page.
func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	content, err := r.RenderItems(page.Items, page.Components)
	if err != nil {
		return err
	}

	css, err := r.Stylesheet()
	if err != nil {
		return err
	}

	view := pageView{
		Page:       page,
		Content:    content,
		Stylesheet: template.CSS(css),
		Options:    r.opts,
	}
	if page.Info != nil {
		view.Title = page.Info.Title
		desc, err := r.md.RenderMd(page.Info.Description)
		if err != nil {
			return err
		}
		view.InfoDescription = template.HTML(desc)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", view); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderItems renders content items and their children in order.
func (r *Renderer) RenderItems(items []models.ContentItem, components markdown.ComponentRenderer) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.renderItems(&buf, items, components); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) renderItems(buf *bytes.Buffer, items []models.ContentItem, components markdown.ComponentRenderer) error {
	for _, item := range items {
		if err := r.renderItem(buf, item, components); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderItem(buf *bytes.Buffer, item models.ContentItem, components markdown.ComponentRenderer) error {
	m := item.Item()
	fmt.Fprintf(buf, `<div data-section-id="%s" id="%s">`, html.EscapeString(m.ID), html.EscapeString(m.ID))

	switch m.Type {
	case models.TypeGroup:
	case models.TypeTag, models.TypeSection:
		group, ok := item.(*models.GroupModel)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnknownItemType, item)
		}
		if err := r.renderSection(buf, group, components); err != nil {
			return err
		}
	case models.TypeOperation:
		op, ok := item.(*models.OperationModel)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnknownItemType, item)
		}
		if err := r.tmpl.ExecuteTemplate(buf, "operation", op); err != nil {
			return fmt.Errorf("failed to render operation %s: %w", op.ID, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownItemType, m.Type)
	}

	buf.WriteString("</div>\n")
	return r.renderItems(buf, m.Items, components)
}

type sectionView struct {
	*models.GroupModel
	DescriptionHTML template.HTML
}

func (r *Renderer) renderSection(buf *bytes.Buffer, group *models.GroupModel, components markdown.ComponentRenderer) error {
	desc, err := r.md.RenderMdWithComponents(group.Description, allowedComponents, components)
	if err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(buf, "section", sectionView{GroupModel: group, DescriptionHTML: template.HTML(desc)}); err != nil {
		return fmt.Errorf("failed to render section %s: %w", group.ID, err)
	}
	return nil
}

// SecurityDefinitions renders the table of security schemes.
func (r *Renderer) SecurityDefinitions(schemes []*models.SecuritySchemeModel) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "security-definitions", schemes); err != nil {
		return "", fmt.Errorf("failed to render security definitions: %w", err)
	}
	return buf.String(), nil
}

// Stylesheet renders the CSS for the configured theme.
func (r *Renderer) Stylesheet() (string, error) {
	var buf bytes.Buffer
	if err := r.css.ExecuteTemplate(&buf, "style.css", r.opts.Theme); err != nil {
		return "", fmt.Errorf("failed to render stylesheet: %w", err)
	}
	return buf.String(), nil
}

// schemaView is a schema together with how it is displayed.
type schemaView struct {
	Schema *models.SchemaModel
	// Mode is "request", "response" or empty. Requests hide readOnly
	// properties, responses hide writeOnly ones.
	Mode                  string
	HideObjectTitle       bool
	HideObjectDescription bool
	HideSchemaTitles      bool
}

// fieldView is a property or parameter row. View carries the field schema.
type fieldView struct {
	Field *models.FieldModel
	View  schemaView
}

func (r *Renderer) schemaView(s *models.SchemaModel, mode string) schemaView {
	return schemaView{
		Schema:                s,
		Mode:                  mode,
		HideObjectTitle:       r.opts.HideObjectTitle,
		HideObjectDescription: r.opts.HideObjectDescription,
		HideSchemaTitles:      r.opts.HideSchemaTitles,
	}
}

var schemeTypes = map[string]string{
	"oauth2":        "OAuth2",
	"apiKey":        "API Key",
	"http":          "HTTP",
	"openIdConnect": "OpenID Connect",
}

func schemeType(t string) string {
	if name, ok := schemeTypes[t]; ok {
		return name
	}
	return t
}

// titleize creates a Caser per call since casers are not safe for
// concurrent use.
func titleize(s string) string {
	return cases.Title(language.English).String(s)
}

// anchor links to the element with the given id. Ids keep their '/'
// separators, which html/template would escape inside a plain fragment.
func anchor(id string) template.URL {
	return template.URL("#" + id)
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"md": func(src string) (template.HTML, error) {
			out, err := r.md.RenderMd(src)
			return template.HTML(out), err
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"json":  toJSON,
		"example": func(ex *models.ExampleModel) template.HTML {
			return r.example(ex)
		},
		"schema": r.schemaView,
		"child": func(v schemaView, s *models.SchemaModel) schemaView {
			v.Schema = s
			return v
		},
		"field": func(f *models.FieldModel, mode string) fieldView {
			return fieldView{Field: f, View: r.schemaView(f.Schema, mode)}
		},
		"fieldOf": func(parent schemaView, f *models.FieldModel) fieldView {
			parent.Schema = f.Schema
			return fieldView{Field: f, View: parent}
		},
		"present":      func(v any) bool { return v != nil },
		"anchor":       anchor,
		"schemeType":   schemeType,
		"titleize":     titleize,
		"fields":       visibleFields,
		"expandable":   expandable,
		"enumValues":   r.enumValues,
		"hiddenEnum":   r.hiddenEnum,
		"itemsRange":   itemsRange,
		"hasExamples":  hasExamples,
		"payload":      payloadContent,
		"showPath":     func() bool { return r.opts.PathInMiddlePanel },
		"extensions":   func() bool { return r.opts.ShowExtensions },
		"downloadable": func() bool { return !r.opts.HideDownloadButton },
		"searchable":   func() bool { return !r.opts.DisableSearch },
	}
}

func (r *Renderer) example(ex *models.ExampleModel) template.HTML {
	if ex == nil {
		return ""
	}
	if ex.Value == nil && ex.ExternalValue != "" {
		return template.HTML(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(ex.ExternalValue), html.EscapeString(ex.ExternalValue)))
	}
	out := samples.ExampleValue(ex.Value, ex.MimeType, r.opts.JSONSampleExpandLevel)
	if out.HTML != "" {
		return template.HTML(out.HTML)
	}
	return template.HTML(fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, out.Lang, html.EscapeString(out.Source)))
}

// enumValues returns the enum values shown for a schema, as JSON.
func (r *Renderer) enumValues(s *models.SchemaModel) []string {
	values := s.Enum
	if max := r.opts.MaxDisplayedEnumValues; max > 0 && len(values) > max {
		values = values[:max]
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, toJSON(v))
	}
	return out
}

func (r *Renderer) hiddenEnum(s *models.SchemaModel) int {
	if max := r.opts.MaxDisplayedEnumValues; max > 0 && len(s.Enum) > max {
		return len(s.Enum) - max
	}
	return 0
}

// visibleFields drops the properties hidden in the view mode.
func visibleFields(v schemaView) []*models.FieldModel {
	if v.Schema == nil {
		return nil
	}
	out := make([]*models.FieldModel, 0, len(v.Schema.Fields))
	for _, f := range v.Schema.Fields {
		if f.Schema != nil {
			if v.Mode == "request" && f.Schema.ReadOnly {
				continue
			}
			if v.Mode == "response" && f.Schema.WriteOnly {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// expandable reports whether a field schema has nested content to show.
func expandable(s *models.SchemaModel) bool {
	if s == nil || s.IsCircular {
		return false
	}
	return len(s.Fields) > 0 || len(s.OneOf) > 0 || (s.Items != nil && !s.Items.IsPrimitive)
}

// itemsRange is the label of an array schema: "Array" followed by its
// length bounds when it has any.
func itemsRange(s *models.SchemaModel) string {
	if r := models.HumanizeItemsRange(s.MinItems, s.MaxItems); r != "" {
		return "Array (" + r + ")"
	}
	return "Array"
}

func hasExamples(content *models.MediaContentModel) bool {
	return content.HasSample()
}

// payloadContent returns the request body content of the payload sample.
func payloadContent(op *models.OperationModel) *models.MediaContentModel {
	if s, ok := op.PayloadSample(); ok {
		return s.RequestBodyContent
	}
	return nil
}

func toJSON(v any) string {
	b, err := samples.MarshalIndent(v, "")
	if err != nil {
		b, err = json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
	}
	return string(b)
}
