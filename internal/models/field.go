package models

import (
	"sort"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/samples"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
)

// FieldKind tells object properties apart from the additionalProperties
// entry.
type FieldKind string

const (
	FieldKindField                FieldKind = "field"
	FieldKindAdditionalProperties FieldKind = "additionalProperties"
)

// FieldModel is a parameter, a header or an object property.
type FieldModel struct {
	Kind        FieldKind
	Name        string
	In          string
	Required    bool
	Description string
	Deprecated  bool
	Example     any
	Examples    []*ExampleModel
	Schema      *SchemaModel

	Style   string
	Explode bool
	// SerializationMime is set when the parameter is described through
	// content instead of schema.
	SerializationMime string

	Extensions map[string]any
}

// NewParameterField builds the field of a parameter.
func NewParameterField(param *v3.Parameter, pointer string, opts *config.Options) *FieldModel {
	f := &FieldModel{
		Kind:     FieldKindField,
		Name:     param.Name,
		In:       param.In,
		Required: flag(param.Required),
		Style:    param.Style,
	}

	schemaProxy := param.Schema
	if schemaProxy == nil && param.Content != nil {
		if pair := param.Content.First(); pair != nil && pair.Value() != nil {
			f.SerializationMime = pair.Key()
			schemaProxy = pair.Value().Schema
		}
	}
	f.Schema = NewSchemaModel(schemaProxy, pointer, opts)

	f.Description = param.Description
	if f.Description == "" {
		f.Description = f.Schema.Description
	}

	f.Example = samples.NodeValue(param.Example)
	if f.Example == nil {
		f.Example = f.Schema.Example
	}
	f.Examples = newExamples(param.Examples, "")

	f.Deprecated = flag(param.Deprecated) || f.Schema.Deprecated

	if f.Style == "" {
		f.Style = defaultStyle(param.In)
	}
	if explode, set := flagSet(param.Explode); set {
		f.Explode = explode
	} else {
		f.Explode = f.Style == "form"
	}

	if opts.ShowExtensions {
		f.Extensions = extensionValues(param.Extensions)
	}
	return f
}

// NewHeaderField builds the field of a response header.
func NewHeaderField(name string, header *v3.Header, opts *config.Options) *FieldModel {
	f := &FieldModel{
		Kind:     FieldKindField,
		Name:     name,
		In:       "header",
		Required: flag(header.Required),
		Style:    header.Style,
	}

	f.Schema = NewSchemaModel(header.Schema, "", opts)
	f.Description = header.Description
	if f.Description == "" {
		f.Description = f.Schema.Description
	}
	f.Example = samples.NodeValue(header.Example)
	if f.Example == nil {
		f.Example = f.Schema.Example
	}
	f.Examples = newExamples(header.Examples, "")
	f.Deprecated = flag(header.Deprecated) || f.Schema.Deprecated

	if f.Style == "" {
		f.Style = "simple"
	}
	if explode, set := flagSet(header.Explode); set {
		f.Explode = explode
	}

	if opts.ShowExtensions {
		f.Extensions = extensionValues(header.Extensions)
	}
	return f
}

func defaultStyle(in string) string {
	switch in {
	case "query", "cookie":
		return "form"
	}
	return "simple"
}

// MergeParams returns the path level parameters not overridden by the
// operation, followed by the operation parameters.
func MergeParams(pathParams, operationParams []*v3.Parameter) []*v3.Parameter {
	overridden := make(map[string]bool, len(operationParams))
	for _, p := range operationParams {
		if p != nil {
			overridden[p.Name+"_"+p.In] = true
		}
	}

	merged := make([]*v3.Parameter, 0, len(pathParams)+len(operationParams))
	for _, p := range pathParams {
		if p != nil && !overridden[p.Name+"_"+p.In] {
			merged = append(merged, p)
		}
	}
	for _, p := range operationParams {
		if p != nil {
			merged = append(merged, p)
		}
	}
	return merged
}

// SortByRequired moves required fields to the front, keeping relative order.
func SortByRequired(fields []*FieldModel) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Required && !fields[j].Required
	})
}

// ExampleModel is a named example of a media type or parameter.
type ExampleModel struct {
	Name          string
	Summary       string
	Description   string
	Value         any
	ExternalValue string
	MimeType      string
}

func newExamples(examples *orderedmap.Map[string, *base.Example], mimeType string) []*ExampleModel {
	if examples == nil {
		return nil
	}
	var out []*ExampleModel
	for pair := examples.First(); pair != nil; pair = pair.Next() {
		ex := pair.Value()
		if ex == nil {
			continue
		}
		out = append(out, &ExampleModel{
			Name:          pair.Key(),
			Summary:       ex.Summary,
			Description:   ex.Description,
			Value:         samples.NodeValue(ex.Value),
			ExternalValue: ex.ExternalValue,
			MimeType:      mimeType,
		})
	}
	return out
}

// flagSet reads an optional boolean keyword. Plain bools only count as set
// when true.
func flagSet(v any) (value, set bool) {
	switch b := v.(type) {
	case bool:
		return b, b
	case *bool:
		if b == nil {
			return false, false
		}
		return *b, true
	}
	return false, false
}
