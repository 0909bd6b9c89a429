package models

import (
	"sort"
	"strconv"
	"strings"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/moamenhredeen/oasdoc/internal/samples"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	"github.com/pb33f/libopenapi/orderedmap"
)

// SchemaModel is a flattened view of a schema.
type SchemaModel struct {
	Pointer string

	Type        string
	Types       []string
	DisplayType string
	// TypePrefix is "Array of " once per array level.
	TypePrefix  string
	Title       string
	Description string
	Format      string
	Pattern     string

	Enum    []any
	Default any
	Example any
	Const   any

	Nullable   bool
	Deprecated bool
	ReadOnly   bool
	WriteOnly  bool

	Constraints []string
	IsCircular  bool
	IsPrimitive bool

	Fields []*FieldModel
	Items  *SchemaModel
	// MinItems and MaxItems are kept for the array label.
	MinItems *int64
	MaxItems *int64

	OneOf     []*SchemaModel
	OneOfType string

	ExternalDocs *ExternalDocs
	Extensions   map[string]any
}

// NewSchemaModel builds the view of a schema. Recursion stops at references
// already visited on the current path.
func NewSchemaModel(proxy *base.SchemaProxy, pointer string, opts *config.Options) *SchemaModel {
	return newSchemaModel(proxy, pointer, opts, nil)
}

func newSchemaModel(proxy *base.SchemaProxy, pointer string, opts *config.Options, stack []string) *SchemaModel {
	if proxy == nil {
		return &SchemaModel{Pointer: pointer, DisplayType: "any", IsPrimitive: true}
	}

	if proxy.IsReference() {
		ref := proxy.GetReference()
		for _, seen := range stack {
			if seen == ref {
				name := parser.PointerBaseName(ref, 1)
				return &SchemaModel{
					Pointer:     ref,
					Title:       name,
					Type:        "object",
					DisplayType: name,
					IsCircular:  true,
				}
			}
		}
		stack = push(stack, ref)
		pointer = ref
	}

	schema := proxy.Schema()
	if schema == nil {
		return &SchemaModel{Pointer: pointer, DisplayType: "any", IsPrimitive: true}
	}

	m := schemaFromBase(schema, pointer, opts, stack)
	if m.Title == "" && proxy.IsReference() && m.Type == "object" {
		m.Title = parser.PointerBaseName(proxy.GetReference(), 1)
	}
	return m
}

func schemaFromBase(schema *base.Schema, pointer string, opts *config.Options, stack []string) *SchemaModel {
	m := &SchemaModel{
		Pointer:      pointer,
		Title:        schema.Title,
		Description:  schema.Description,
		Format:       schema.Format,
		Pattern:      schema.Pattern,
		Nullable:     flag(schema.Nullable),
		Deprecated:   flag(schema.Deprecated),
		ReadOnly:     flag(schema.ReadOnly),
		WriteOnly:    flag(schema.WriteOnly),
		Constraints:  HumanizeConstraints(schema),
		ExternalDocs: newExternalDocs(schema.ExternalDocs),
		Default:      samples.NodeValue(schema.Default),
		Const:        samples.NodeValue(schema.Const),
	}

	for _, t := range schema.Type {
		if t == "null" {
			m.Nullable = true
			continue
		}
		m.Types = append(m.Types, t)
	}
	if len(m.Types) == 0 {
		if t := samples.SchemaType(schema); t != "" {
			m.Types = []string{t}
		}
	}
	if len(m.Types) > 0 {
		m.Type = m.Types[0]
	}

	for _, e := range schema.Enum {
		m.Enum = append(m.Enum, samples.NodeValue(e))
	}
	if schema.Example != nil {
		m.Example = samples.NodeValue(schema.Example)
	} else if len(schema.Examples) > 0 {
		m.Example = samples.NodeValue(schema.Examples[0])
	}

	if opts.ShowExtensions {
		m.Extensions = extensionValues(schema.Extensions)
	}

	if len(schema.AllOf) > 0 {
		mergeAllOf(m, schema, opts, stack)
	}

	switch {
	case len(schema.OneOf) > 0:
		m.OneOfType = "One of"
		m.OneOf = variants(schema.OneOf, pointer+"/oneOf", opts, stack)
	case len(schema.AnyOf) > 0:
		m.OneOfType = "Any of"
		m.OneOf = variants(schema.AnyOf, pointer+"/anyOf", opts, stack)
	}

	switch m.Type {
	case "object":
		if len(schema.AllOf) == 0 {
			m.Fields = buildFields(schema.Properties, schema.Required, schema.AdditionalProperties, pointer, opts, stack)
		}
	case "array":
		m.MinItems, m.MaxItems = schema.MinItems, schema.MaxItems
		if schema.Items != nil && schema.Items.IsA() {
			m.Items = newSchemaModel(schema.Items.A, pointer+"/items", opts, stack)
			m.TypePrefix = m.Items.TypePrefix + "Array of "
			m.DisplayType = pluralizeType(m.Items.DisplayType)
			if m.Title == "" {
				m.Title = m.Items.Title
			}
			m.IsPrimitive = m.Items.IsPrimitive
			if m.Example == nil && m.Items.Example != nil {
				m.Example = []any{m.Items.Example}
			}
			if m.Items.IsPrimitive && len(m.Enum) == 0 {
				m.Enum = m.Items.Enum
			}
		}
	}

	if m.DisplayType == "" {
		m.DisplayType = strings.Join(m.Types, " or ")
		if m.DisplayType == "" {
			m.DisplayType = "any"
		}
	}
	if m.Type != "array" {
		m.IsPrimitive = m.Type != "object" && len(m.OneOf) == 0
	}

	return m
}

// mergeAllOf folds allOf members into m. Properties keep member order, later
// members override earlier ones.
func mergeAllOf(m *SchemaModel, schema *base.Schema, opts *config.Options, stack []string) {
	props := orderedmap.New[string, *base.SchemaProxy]()
	required := map[string]bool{}
	var additional *base.DynamicValue[*base.SchemaProxy, bool]
	fieldStack := stack

	var collect func(s *base.Schema, stack []string)
	collect = func(s *base.Schema, stack []string) {
		for _, member := range s.AllOf {
			if member == nil {
				continue
			}
			memberStack := stack
			if member.IsReference() {
				ref := member.GetReference()
				if contains(stack, ref) {
					m.IsCircular = true
					continue
				}
				memberStack = push(memberStack, ref)
				fieldStack = push(fieldStack, ref)
			}
			sub := member.Schema()
			if sub == nil {
				continue
			}
			if m.Type == "" {
				for _, t := range sub.Type {
					if t != "null" {
						m.Type = t
						m.Types = []string{t}
						break
					}
				}
				if m.Type == "" && sub.Properties != nil && sub.Properties.Len() > 0 {
					m.Type = "object"
					m.Types = []string{"object"}
				}
			}
			if m.Title == "" && sub.Title != "" {
				m.Title = sub.Title
			}
			if m.Description == "" {
				m.Description = sub.Description
			}
			if m.Format == "" {
				m.Format = sub.Format
			}
			m.Constraints = append(m.Constraints, HumanizeConstraints(sub)...)
			collect(sub, memberStack)
		}
		if s.Properties != nil {
			for pair := s.Properties.First(); pair != nil; pair = pair.Next() {
				props.Set(pair.Key(), pair.Value())
			}
		}
		for _, r := range s.Required {
			required[r] = true
		}
		if s.AdditionalProperties != nil {
			additional = s.AdditionalProperties
		}
	}
	collect(schema, stack)

	if props.Len() > 0 && m.Type == "" {
		m.Type = "object"
		m.Types = []string{"object"}
	}
	if m.Type != "object" {
		return
	}

	req := make([]string, 0, len(required))
	for r := range required {
		req = append(req, r)
	}
	sort.Strings(req)
	m.Fields = buildFields(props, req, additional, m.Pointer, opts, fieldStack)
}

func variants(proxies []*base.SchemaProxy, pointer string, opts *config.Options, stack []string) []*SchemaModel {
	out := make([]*SchemaModel, 0, len(proxies))
	for i, proxy := range proxies {
		v := newSchemaModel(proxy, pointer+"/"+strconv.Itoa(i), opts, stack)
		if v.Title == "" && proxy != nil && proxy.IsReference() {
			v.Title = parser.PointerBaseName(proxy.GetReference(), 1)
		}
		out = append(out, v)
	}
	return out
}

func buildFields(props *orderedmap.Map[string, *base.SchemaProxy], required []string, additional *base.DynamicValue[*base.SchemaProxy, bool], pointer string, opts *config.Options, stack []string) []*FieldModel {
	var fields []*FieldModel
	if props != nil {
		for pair := props.First(); pair != nil; pair = pair.Next() {
			name := pair.Key()
			schema := newSchemaModel(pair.Value(), pointer+"/properties/"+name, opts, stack)
			fields = append(fields, &FieldModel{
				Kind:        FieldKindField,
				Name:        name,
				Required:    contains(required, name),
				Description: schema.Description,
				Deprecated:  schema.Deprecated,
				Example:     schema.Example,
				Schema:      schema,
			})
		}
	}

	if opts.SortPropsAlphabetically {
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	}
	if opts.RequiredPropsFirst {
		SortByRequired(fields)
	}

	if additional != nil && additional.IsA() && additional.A != nil {
		schema := newSchemaModel(additional.A, pointer+"/additionalProperties", opts, stack)
		fields = append(fields, &FieldModel{
			Kind:        FieldKindAdditionalProperties,
			Name:        "property name*",
			Description: schema.Description,
			Schema:      schema,
		})
	}

	return fields
}

// pluralizeType turns "string" into "strings" and "string or integer" into
// "strings or integers".
func pluralizeType(displayType string) string {
	parts := strings.Split(displayType, " or ")
	for i, p := range parts {
		parts[i] = pluralize(p)
	}
	return strings.Join(parts, " or ")
}

func pluralize(word string) string {
	switch {
	case word == "" || word == "any":
		return word
	case strings.HasSuffix(word, "s"):
		return word
	case strings.HasSuffix(word, "y") && len(word) > 1 && !strings.ContainsRune("aeiou", rune(word[len(word)-2])):
		return word[:len(word)-1] + "ies"
	}
	return word + "s"
}

// push returns a copy of stack with ref appended.
func push(stack []string, ref string) []string {
	out := make([]string, len(stack), len(stack)+1)
	copy(out, stack)
	return append(out, ref)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
