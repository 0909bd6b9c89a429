// Package samples builds example payloads from OpenAPI schemas.
package samples

import (
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	"github.com/pb33f/libopenapi/orderedmap"
)

// DefaultMaxDepth bounds nesting of generated values.
const DefaultMaxDepth = 8

// Options controls which properties end up in a sample.
type Options struct {
	// SkipReadOnly drops readOnly properties, used for request payloads.
	SkipReadOnly bool
	// SkipWriteOnly drops writeOnly properties, used for response payloads.
	SkipWriteOnly bool
	MaxDepth      int
}

// Generator generates sample values from OpenAPI schemas. Output is
// deterministic for a given schema.
type Generator struct {
	opts Options
}

// NewGenerator creates a new generator instance
func NewGenerator(opts Options) *Generator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Generator{opts: opts}
}

// GenerateValue generates a sample value based on a schema
func (g *Generator) GenerateValue(schema *base.Schema) (any, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	return g.value(schema, nil, 0), nil
}

// ProxyValue resolves proxy and generates a sample for it.
func (g *Generator) ProxyValue(proxy *base.SchemaProxy) (any, error) {
	if proxy == nil {
		return nil, fmt.Errorf("schema proxy is nil")
	}
	schema := proxy.Schema()
	if schema == nil {
		if err := proxy.GetBuildError(); err != nil {
			return nil, fmt.Errorf("failed to build schema: %w", err)
		}
		return nil, fmt.Errorf("schema %s could not be resolved", proxy.GetReference())
	}

	var stack []string
	if proxy.IsReference() {
		stack = append(stack, proxy.GetReference())
	}
	return g.value(schema, stack, 0), nil
}

func (g *Generator) proxy(proxy *base.SchemaProxy, stack []string, depth int) (any, bool) {
	if proxy == nil {
		return nil, false
	}
	if proxy.IsReference() {
		ref := proxy.GetReference()
		for _, seen := range stack {
			if seen == ref {
				return nil, false
			}
		}
		stack = append(stack, ref)
	}
	schema := proxy.Schema()
	if schema == nil {
		return nil, false
	}
	return g.value(schema, stack, depth), true
}

func (g *Generator) value(schema *base.Schema, stack []string, depth int) any {
	// Check for example value first
	if schema.Example != nil {
		return NodeValue(schema.Example)
	}
	if len(schema.Examples) > 0 && schema.Examples[0] != nil {
		return NodeValue(schema.Examples[0])
	}

	// Check for default value
	if schema.Default != nil {
		return NodeValue(schema.Default)
	}
	if schema.Const != nil {
		return NodeValue(schema.Const)
	}
	if len(schema.Enum) > 0 && schema.Enum[0] != nil {
		return NodeValue(schema.Enum[0])
	}

	if depth >= g.opts.MaxDepth {
		return nil
	}

	if len(schema.AllOf) > 0 {
		return g.allOf(schema, stack, depth)
	}
	if len(schema.OneOf) > 0 {
		if v, ok := g.proxy(schema.OneOf[0], stack, depth); ok {
			return v
		}
	}
	if len(schema.AnyOf) > 0 {
		if v, ok := g.proxy(schema.AnyOf[0], stack, depth); ok {
			return v
		}
	}

	switch SchemaType(schema) {
	case "string":
		return generateString(schema)
	case "integer":
		return generateInteger(schema)
	case "number":
		return generateNumber(schema)
	case "boolean":
		return true
	case "array":
		return g.generateArray(schema, stack, depth)
	case "object":
		return g.generateObject(schema, stack, depth)
	}

	return nil
}

// SchemaType returns the first non-null type of the schema, inferring one
// from its keywords when the type is omitted.
func SchemaType(schema *base.Schema) string {
	for _, t := range schema.Type {
		if t != "null" {
			return t
		}
	}
	switch {
	case schema.Properties != nil && schema.Properties.Len() > 0:
		return "object"
	case schema.AdditionalProperties != nil:
		return "object"
	case schema.Items != nil:
		return "array"
	case schema.Format != "" || schema.Pattern != "" || schema.MinLength != nil || schema.MaxLength != nil:
		return "string"
	case schema.Minimum != nil || schema.Maximum != nil || schema.MultipleOf != nil:
		return "number"
	}
	return ""
}

func (g *Generator) allOf(schema *base.Schema, stack []string, depth int) any {
	merged := orderedmap.New[string, any]()
	var last any
	for _, member := range schema.AllOf {
		v, ok := g.proxy(member, stack, depth)
		if !ok {
			continue
		}
		obj, isObj := v.(*orderedmap.Map[string, any])
		if !isObj {
			last = v
			continue
		}
		for pair := obj.First(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key(), pair.Value())
		}
	}

	if schema.Properties != nil && schema.Properties.Len() > 0 {
		own, _ := g.generateObject(schema, stack, depth).(*orderedmap.Map[string, any])
		for pair := own.First(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key(), pair.Value())
		}
	}

	if merged.Len() == 0 && last != nil {
		return last
	}
	return merged
}

// generateString generates a string value based on schema constraints
func generateString(schema *base.Schema) string {
	value := "string"
	if schema.Format != "" {
		value = generateFromFormat(schema.Format)
	}

	if schema.MinLength != nil && int64(len(value)) < *schema.MinLength {
		value = strings.Repeat(value, int(*schema.MinLength)/len(value)+1)[:*schema.MinLength]
	}
	if schema.MaxLength != nil && int64(len(value)) > *schema.MaxLength {
		value = value[:*schema.MaxLength]
	}
	return value
}

func generateInteger(schema *base.Schema) int64 {
	return int64(generateNumber(schema))
}

// generateNumber picks the smallest allowed value, or zero when zero fits
func generateNumber(schema *base.Schema) float64 {
	var value float64

	if schema.Minimum != nil {
		value = *schema.Minimum
		if flag(schema.ExclusiveMinimum) {
			value++
		}
	} else if schema.ExclusiveMinimum != nil && schema.ExclusiveMinimum.IsB() {
		value = schema.ExclusiveMinimum.B + 1
	}

	if schema.Maximum != nil && value > *schema.Maximum {
		value = *schema.Maximum
		if flag(schema.ExclusiveMaximum) {
			value--
		}
	} else if schema.ExclusiveMaximum != nil && schema.ExclusiveMaximum.IsB() && value >= schema.ExclusiveMaximum.B {
		value = schema.ExclusiveMaximum.B - 1
	}

	return value
}

// generateArray generates an array value
func (g *Generator) generateArray(schema *base.Schema, stack []string, depth int) []any {
	count := 1
	if schema.MinItems != nil && *schema.MinItems > 1 {
		count = int(*schema.MinItems)
	}

	if schema.Items == nil || !schema.Items.IsA() || schema.Items.A == nil {
		return []any{}
	}

	item, ok := g.proxy(schema.Items.A, stack, depth+1)
	if !ok {
		return []any{}
	}

	result := make([]any, count)
	for i := range result {
		result[i] = item
	}
	return result
}

// generateObject generates an object value keeping property order
func (g *Generator) generateObject(schema *base.Schema, stack []string, depth int) any {
	result := orderedmap.New[string, any]()

	if schema.Properties != nil {
		for pair := schema.Properties.First(); pair != nil; pair = pair.Next() {
			propName := pair.Key()
			propProxy := pair.Value()
			if propProxy == nil {
				continue
			}

			propSchema := propProxy.Schema()
			if propSchema == nil {
				continue
			}
			if g.opts.SkipReadOnly && flag(propSchema.ReadOnly) {
				continue
			}
			if g.opts.SkipWriteOnly && flag(propSchema.WriteOnly) {
				continue
			}

			val, ok := g.proxy(propProxy, stack, depth+1)
			if !ok {
				// circular reference
				continue
			}
			result.Set(propName, val)
		}
	}

	if result.Len() == 0 && schema.AdditionalProperties != nil && schema.AdditionalProperties.IsA() {
		if val, ok := g.proxy(schema.AdditionalProperties.A, stack, depth+1); ok {
			result.Set("property1", val)
			result.Set("property2", val)
		}
	}

	return result
}

// generateFromFormat generates a value based on format
func generateFromFormat(format string) string {
	switch format {
	case "date":
		return "2019-08-24"
	case "date-time":
		return "2019-08-24T14:15:22Z"
	case "time":
		return "14:15:22Z"
	case "email":
		return "user@example.com"
	case "uri", "url":
		return "http://example.com"
	case "hostname":
		return "example.com"
	case "ipv4":
		return "192.168.0.1"
	case "ipv6":
		return "2001:0db8:85a3:0000:0000:8a2e:0370:7334"
	case "uuid":
		return "095be615-a8ad-4c33-8e9c-c7612fbf6c9f"
	case "password":
		return "pa$$word"
	case "byte":
		return "U3RyaW5n"
	case "binary":
		return "<binary>"
	default:
		return "string"
	}
}

// flag reads boolean schema keywords that libopenapi exposes either as bool,
// *bool or as a bool/number dynamic value.
func flag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		return b != nil && *b
	case *base.DynamicValue[bool, float64]:
		return b != nil && b.IsA() && b.A
	}
	return false
}
