package models

import (
	"github.com/moamenhredeen/oasdoc/internal/samples"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

// extensionValues converts x-* extensions into plain values.
func extensionValues(ext *orderedmap.Map[string, *yaml.Node]) map[string]any {
	if ext == nil || ext.Len() == 0 {
		return nil
	}
	out := make(map[string]any, ext.Len())
	for pair := ext.First(); pair != nil; pair = pair.Next() {
		out[pair.Key()] = samples.NodeValue(pair.Value())
	}
	return out
}

// Extension returns the node of a single extension.
func Extension(ext *orderedmap.Map[string, *yaml.Node], name string) *yaml.Node {
	if ext == nil {
		return nil
	}
	node, ok := ext.Get(name)
	if !ok {
		return nil
	}
	return node
}

// ExtensionString returns a scalar extension value.
func ExtensionString(ext *orderedmap.Map[string, *yaml.Node], name string) string {
	if node := Extension(ext, name); node != nil && node.Kind == yaml.ScalarNode {
		return node.Value
	}
	return ""
}

// ExtensionBool reports whether a boolean extension is true.
func ExtensionBool(ext *orderedmap.Map[string, *yaml.Node], name string) bool {
	v, ok := samples.NodeValue(Extension(ext, name)).(bool)
	return ok && v
}
