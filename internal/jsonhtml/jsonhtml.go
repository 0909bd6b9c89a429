// Package jsonhtml prints JSON values as collapsible HTML markup.
package jsonhtml

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pb33f/libopenapi/orderedmap"
)

var (
	linkPattern = regexp.MustCompile(`^(http|https)://[^\s]+$`)

	htmlEncoder = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"<", "&lt;",
		">", "&gt;",
	)
	literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// JSONToHTML renders value as HTML. Containers nested deeper than
// maxCollapseLevel start collapsed.
func JSONToHTML(value any, maxCollapseLevel int) string {
	p := &printer{level: 1, maxCollapseLevel: maxCollapseLevel}

	var b strings.Builder
	b.WriteString(`<div class="redoc-json">`)
	p.value(&b, value)
	b.WriteString(`</div>`)
	return b.String()
}

// printer holds the nesting level of a single JSONToHTML call.
type printer struct {
	level            int
	maxCollapseLevel int
}

func htmlEncode(s string) string {
	return htmlEncoder.Replace(s)
}

func decorate(b *strings.Builder, value, class string) {
	b.WriteString(`<span class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(htmlEncode(value))
	b.WriteString(`</span>`)
}

func punctuation(val string) string {
	return `<span class="token punctuation">` + val + `</span>`
}

func (p *printer) value(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		decorate(b, "null", "token keyword")
	case bool:
		decorate(b, strconv.FormatBool(v), "token boolean")
	case string:
		p.str(b, v)
	case json.Number:
		decorate(b, v.String(), "token number")
	case float64:
		decorate(b, formatFloat(v), "token number")
	case float32:
		decorate(b, formatFloat(float64(v)), "token number")
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		decorate(b, fmt.Sprint(v), "token number")
	case time.Time:
		decorate(b, `"`+v.UTC().Format("2006-01-02T15:04:05.000Z")+`"`, "token string")
	case []any:
		p.level++
		p.array(b, v)
		p.level--
	case *orderedmap.Map[string, any]:
		p.level++
		p.object(b, orderedEntries(v))
		p.level--
	case map[string]any:
		p.level++
		p.object(b, sortedEntries(v))
		p.level--
	default:
		p.reflected(b, value)
	}
}

func (p *printer) str(b *strings.Builder, v string) {
	if linkPattern.MatchString(v) {
		decorate(b, `"`, "token string")
		b.WriteString(`<a href="`)
		b.WriteString(htmlEncode(v))
		b.WriteString(`">`)
		b.WriteString(htmlEncode(literalEscaper.Replace(v)))
		b.WriteString(`</a>`)
		decorate(b, `"`, "token string")
		return
	}
	decorate(b, `"`+literalEscaper.Replace(v)+`"`, "token string")
}

// reflected handles typed slices and maps by converting them to the generic
// shapes.
func (p *printer) reflected(b *strings.Builder, value any) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			p.value(b, nil)
			return
		}
		p.value(b, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		p.value(b, items)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		p.value(b, m)
	default:
		p.str(b, fmt.Sprint(value))
	}
}

func (p *printer) collapsed() string {
	if p.level > p.maxCollapseLevel {
		return "collapsed"
	}
	return ""
}

func (p *printer) array(b *strings.Builder, items []any) {
	if len(items) == 0 {
		b.WriteString(punctuation("[ ]"))
		return
	}

	collapsed := p.collapsed()
	b.WriteString(`<div class="collapser"></div>`)
	b.WriteString(punctuation("["))
	b.WriteString(`<span class="ellipsis"></span><ul class="array collapsible">`)
	for i, item := range items {
		b.WriteString(`<li><div class="hoverable ` + collapsed + `">`)
		p.value(b, item)
		if i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString(`</div></li>`)
	}
	b.WriteString(`</ul>`)
	b.WriteString(punctuation("]"))
}

type entry struct {
	key   string
	value any
}

func orderedEntries(m *orderedmap.Map[string, any]) []entry {
	if m == nil {
		return nil
	}
	entries := make([]entry, 0, m.Len())
	for pair := m.First(); pair != nil; pair = pair.Next() {
		entries = append(entries, entry{pair.Key(), pair.Value()})
	}
	return entries
}

func sortedEntries(m map[string]any) []entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{k, m[k]})
	}
	return entries
}

func (p *printer) object(b *strings.Builder, entries []entry) {
	if len(entries) == 0 {
		b.WriteString(punctuation("{ }"))
		return
	}

	collapsed := p.collapsed()
	b.WriteString(`<div class="collapser"></div>`)
	b.WriteString(punctuation("{"))
	b.WriteString(`<span class="ellipsis"></span><ul class="obj collapsible">`)
	for i, e := range entries {
		b.WriteString(`<li><div class="hoverable ` + collapsed + `">`)
		b.WriteString(`<span class="property token string">"` + htmlEncode(e.key) + `"</span>: `)
		p.value(b, e.value)
		if i < len(entries)-1 {
			b.WriteString(punctuation(","))
		}
		b.WriteString(`</div></li>`)
	}
	b.WriteString(`</ul>`)
	b.WriteString(punctuation("}"))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
