package samples

import (
	"strings"
	"testing"

	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	"github.com/pb33f/libopenapi/orderedmap"
)

func componentSchema(t *testing.T, name string) *base.SchemaProxy {
	t.Helper()

	p, err := parser.ParseFile("../../testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	proxy, ok := p.Model().Components.Schemas.Get(name)
	if !ok {
		t.Fatalf("Schema %s not found", name)
	}
	return proxy
}

func TestGenerateString(t *testing.T) {
	g := NewGenerator(Options{})

	val, err := g.GenerateValue(&base.Schema{Type: []string{"string"}})
	if err != nil {
		t.Fatalf("Failed to generate value: %v", err)
	}

	if val != "string" {
		t.Errorf("Expected string, got %v", val)
	}
}

func TestGenerateStringConstraints(t *testing.T) {
	g := NewGenerator(Options{})

	minLen, maxLen := int64(8), int64(3)
	val, _ := g.GenerateValue(&base.Schema{Type: []string{"string"}, MinLength: &minLen})
	if s, _ := val.(string); len(s) != 8 {
		t.Errorf("Expected 8 characters, got %q", s)
	}

	val, _ = g.GenerateValue(&base.Schema{Type: []string{"string"}, MaxLength: &maxLen})
	if val != "str" {
		t.Errorf("Expected truncated string, got %v", val)
	}
}

func TestGenerateFormats(t *testing.T) {
	tests := map[string]string{
		"email":     "user@example.com",
		"date-time": "2019-08-24T14:15:22Z",
		"uuid":      "095be615-a8ad-4c33-8e9c-c7612fbf6c9f",
		"unknown":   "string",
	}
	g := NewGenerator(Options{})
	for format, want := range tests {
		val, _ := g.GenerateValue(&base.Schema{Type: []string{"string"}, Format: format})
		if val != want {
			t.Errorf("Format %s: expected %s, got %v", format, want, val)
		}
	}
}

func TestGenerateNumbers(t *testing.T) {
	g := NewGenerator(Options{})

	val, _ := g.GenerateValue(&base.Schema{Type: []string{"integer"}})
	if val != int64(0) {
		t.Errorf("Expected 0, got %v (%T)", val, val)
	}

	minimum := 5.0
	val, _ = g.GenerateValue(&base.Schema{Type: []string{"number"}, Minimum: &minimum})
	if val != 5.0 {
		t.Errorf("Expected 5, got %v", val)
	}

	maximum := -3.0
	val, _ = g.GenerateValue(&base.Schema{Type: []string{"integer"}, Maximum: &maximum})
	if val != int64(-3) {
		t.Errorf("Expected -3, got %v", val)
	}
}

func TestGenerateBoolean(t *testing.T) {
	g := NewGenerator(Options{})

	val, err := g.GenerateValue(&base.Schema{Type: []string{"boolean"}})
	if err != nil {
		t.Fatalf("Failed to generate value: %v", err)
	}

	if val != true {
		t.Errorf("Expected true, got %v", val)
	}
}

func TestGenerateNilSchema(t *testing.T) {
	g := NewGenerator(Options{})
	if _, err := g.GenerateValue(nil); err == nil {
		t.Error("Expected error for nil schema")
	}
}

func firstItem(t *testing.T, opts Options) *orderedmap.Map[string, any] {
	t.Helper()

	val, err := NewGenerator(opts).ProxyValue(componentSchema(t, "Pets"))
	if err != nil {
		t.Fatalf("Failed to generate value: %v", err)
	}
	items, ok := val.([]any)
	if !ok || len(items) == 0 {
		t.Fatalf("Expected array sample, got %v", val)
	}
	obj, ok := items[0].(*orderedmap.Map[string, any])
	if !ok {
		t.Fatalf("Expected ordered map, got %T", items[0])
	}
	return obj
}

func TestGenerateObjectOrderAndReadOnly(t *testing.T) {
	obj := firstItem(t, Options{SkipWriteOnly: true})

	var keys []string
	for pair := obj.First(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key())
	}
	// secret is writeOnly, parent is circular
	if strings.Join(keys, ",") != "id,name,tag" {
		t.Errorf("Unexpected keys %v", keys)
	}

	tag, _ := obj.Get("tag")
	if tag != "dog" {
		t.Errorf("Expected first enum value, got %v", tag)
	}

	obj = firstItem(t, Options{SkipReadOnly: true})
	if _, ok := obj.Get("id"); ok {
		t.Error("Expected readOnly id to be skipped")
	}
	if _, ok := obj.Get("secret"); !ok {
		t.Error("Expected writeOnly secret in request sample")
	}
}

func TestGenerateAllOf(t *testing.T) {
	val, err := NewGenerator(Options{SkipReadOnly: true}).ProxyValue(componentSchema(t, "NewPet"))
	if err != nil {
		t.Fatalf("Failed to generate value: %v", err)
	}
	obj, ok := val.(*orderedmap.Map[string, any])
	if !ok {
		t.Fatalf("Expected ordered map, got %T", val)
	}
	if _, ok := obj.Get("name"); !ok {
		t.Error("Expected name from allOf member")
	}
	if v, _ := obj.Get("callbackUrl"); v != "http://example.com" {
		t.Errorf("Expected uri sample, got %v", v)
	}
}

func TestMarshalIndentKeepsOrder(t *testing.T) {
	m := orderedmap.New[string, any]()
	m.Set("z", int64(1))
	m.Set("a", []any{"x", 2.5})

	b, err := MarshalIndent(m, "  ")
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	want := "{\n  \"z\": 1,\n  \"a\": [\n    \"x\",\n    2.5\n  ]\n}"
	if string(b) != want {
		t.Errorf("Unexpected output:\n%s", b)
	}
}

func TestExampleValue(t *testing.T) {
	ex := ExampleValue(map[string]any{"a": 1}, "application/json", 2)
	if !strings.HasPrefix(ex.HTML, `<div class="redoc-json">`) {
		t.Errorf("Expected JSON viewer markup, got %q", ex.HTML)
	}

	ex = ExampleValue("Rex the dog", "text/plain", 2)
	if ex.Source != "Rex the dog" || ex.Lang != "text" {
		t.Errorf("Unexpected text example %+v", ex)
	}

	ex = ExampleValue(map[string]any{"a": 1}, "application/xml", 2)
	if ex.Source != "{\n  \"a\": 1\n}" || ex.Lang != "xml" {
		t.Errorf("Unexpected xml example %+v", ex)
	}
}
