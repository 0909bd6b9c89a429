package jsonhtml

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pb33f/libopenapi/orderedmap"
)

func TestJSONToHTMLScalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"null", nil, `<span class="token keyword">null</span>`},
		{"bool", true, `<span class="token boolean">true</span>`},
		{"int", 42, `<span class="token number">42</span>`},
		{"float", 1.5, `<span class="token number">1.5</span>`},
		{"string", `say "hi" <b>`, `<span class="token string">&quot;say \&quot;hi\&quot; &lt;b&gt;&quot;</span>`},
		{"link", "https://example.com/a", `<span class="token string">&quot;</span><a href="https://example.com/a">https://example.com/a</a><span class="token string">&quot;</span>`},
		{"empty array", []any{}, `<span class="token punctuation">[ ]</span>`},
		{"empty object", map[string]any{}, `<span class="token punctuation">{ }</span>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSONToHTML(tt.value, 2)
			want := `<div class="redoc-json">` + tt.want + `</div>`
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("JSONToHTML mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONToHTMLArray(t *testing.T) {
	got := JSONToHTML([]any{1, "a"}, 2)
	want := `<div class="redoc-json">` +
		`<div class="collapser"></div><span class="token punctuation">[</span><span class="ellipsis"></span><ul class="array collapsible">` +
		`<li><div class="hoverable "><span class="token number">1</span>,</div></li>` +
		`<li><div class="hoverable "><span class="token string">&quot;a&quot;</span></div></li>` +
		`</ul><span class="token punctuation">]</span></div>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSONToHTML mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONToHTMLOrderedObject(t *testing.T) {
	m := orderedmap.New[string, any]()
	m.Set("b", 1)
	m.Set("a", nil)

	got := JSONToHTML(m, 2)
	want := `<div class="redoc-json">` +
		`<div class="collapser"></div><span class="token punctuation">{</span><span class="ellipsis"></span><ul class="obj collapsible">` +
		`<li><div class="hoverable "><span class="property token string">"b"</span>: <span class="token number">1</span><span class="token punctuation">,</span></div></li>` +
		`<li><div class="hoverable "><span class="property token string">"a"</span>: <span class="token keyword">null</span></div></li>` +
		`</ul><span class="token punctuation">}</span></div>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSONToHTML mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONToHTMLCollapseLevel(t *testing.T) {
	value := map[string]any{
		"outer": map[string]any{
			"inner": []any{map[string]any{"deep": true}},
		},
	}

	// levels: outer object 2, nested object 3, array 4, deepest object 5
	got := JSONToHTML(value, 3)
	if c := strings.Count(got, `hoverable collapsed`); c != 2 {
		t.Errorf("Expected 2 collapsed entries, got %d in %s", c, got)
	}
	if c := strings.Count(got, `hoverable "`); c != 2 {
		t.Errorf("Expected 2 expanded entries, got %d in %s", c, got)
	}
}

func TestJSONToHTMLSortedMapKeys(t *testing.T) {
	got := JSONToHTML(map[string]any{"z": 1, "a": 2}, 2)
	if strings.Index(got, `"a"`) > strings.Index(got, `"z"`) {
		t.Errorf("Expected sorted keys, got %s", got)
	}
}

func TestJSONToHTMLConcurrent(t *testing.T) {
	value := []any{[]any{[]any{1}}}
	want := JSONToHTML(value, 1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := JSONToHTML(value, 1); got != want {
				t.Errorf("Concurrent output differs")
			}
		}()
	}
	wg.Wait()
}
