package samples

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

// NodeValue converts a YAML node into plain values. Mappings become ordered
// maps so that the document key order survives.
func NodeValue(node *yaml.Node) any {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return NodeValue(node.Content[0])
	case yaml.AliasNode:
		return NodeValue(node.Alias)
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			items = append(items, NodeValue(c))
		}
		return items
	case yaml.MappingNode:
		m := orderedmap.New[string, any]()
		for i := 0; i+1 < len(node.Content); i += 2 {
			m.Set(node.Content[i].Value, NodeValue(node.Content[i+1]))
		}
		return m
	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return nil
}

func scalarValue(node *yaml.Node) any {
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(strings.ToLower(node.Value)); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
			return i
		}
	case "!!float":
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return f
		}
	}
	return node.Value
}

// MarshalIndent encodes v as indented JSON keeping ordered map key order.
func MarshalIndent(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, indent, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any, indent string, level int) error {
	newline := func(l int) {
		if indent == "" {
			return
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, l))
	}
	sep := ":"
	if indent != "" {
		sep = ": "
	}

	switch val := v.(type) {
	case *orderedmap.Map[string, any]:
		if val == nil || val.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		first := true
		for pair := val.First(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			newline(level + 1)
			key, _ := json.Marshal(pair.Key())
			buf.Write(key)
			buf.WriteString(sep)
			if err := writeJSON(buf, pair.Value(), indent, level+1); err != nil {
				return err
			}
		}
		newline(level)
		buf.WriteByte('}')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := orderedmap.New[string, any]()
		for _, k := range keys {
			m.Set(k, val[k])
		}
		return writeJSON(buf, m, indent, level)
	case []any:
		if len(val) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(level + 1)
			if err := writeJSON(buf, item, indent, level+1); err != nil {
				return err
			}
		}
		newline(level)
		buf.WriteByte(']')
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			buf.WriteString("null")
			return nil
		}
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			buf.WriteString(strconv.FormatInt(int64(val), 10))
			return nil
		}
	}

	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return writeJSON(buf, items, indent, level)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}
	buf.Write(b)
	return nil
}
