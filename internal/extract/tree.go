// Package extract flattens arbitrary CTI records into a pruned, normalized tree.
package extract

import (
	"sort"
	"strconv"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/normalize"
)

// Node is one surviving value of an extracted record.
type Node struct {
	Key  string // object key; empty for array elements and the root
	Path string // dotted for keys, bracketed for indices, e.g. "objects[0].name"
	Kind ctijson.Kind

	// Scalar holds the leaf value; strings are already normalized.
	Scalar ctijson.Value

	Children []*Node
}

// IsContainer reports whether n is an object or array node.
func (n *Node) IsContainer() bool {
	return n.Kind == ctijson.Object || n.Kind == ctijson.Array
}

// Child returns the direct child stored under key, or nil.
func (n *Node) Child(key string) *Node {
	if n == nil || n.Kind != ctijson.Object {
		return nil
	}
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Value rebuilds the plain value the node represents.
func (n *Node) Value() ctijson.Value {
	if n == nil {
		return ctijson.NullValue()
	}
	switch n.Kind {
	case ctijson.Object:
		fields := make([]ctijson.Field, 0, len(n.Children))
		for _, c := range n.Children {
			fields = append(fields, ctijson.Field{Key: c.Key, Value: c.Value()})
		}
		return ctijson.ObjectValue(fields...)
	case ctijson.Array:
		items := make([]ctijson.Value, 0, len(n.Children))
		for _, c := range n.Children {
			items = append(items, c.Value())
		}
		return ctijson.ArrayValue(items...)
	}
	return n.Scalar
}

// Extract walks rec and returns the pruned tree. Nulls, empty strings and
// containers that end up empty are dropped at every depth. Numbers and
// booleans are kept as they are, 0 and false included. A nil result means
// nothing survived.
func Extract(rec ctijson.Value) *Node {
	return walk(rec, "", "")
}

func walk(v ctijson.Value, key, path string) *Node {
	switch v.Kind() {
	case ctijson.Null:
		return nil
	case ctijson.String:
		if v.Str() == "" {
			return nil
		}
		return &Node{Key: key, Path: path, Kind: ctijson.String, Scalar: ctijson.StringValue(normalize.Text(v.Str()))}
	case ctijson.Number, ctijson.Bool:
		return &Node{Key: key, Path: path, Kind: v.Kind(), Scalar: v}
	case ctijson.Array:
		n := &Node{Key: key, Path: path, Kind: ctijson.Array}
		for i, item := range v.Items() {
			if c := walk(item, "", indexPath(path, i)); c != nil {
				n.Children = append(n.Children, c)
			}
		}
		if len(n.Children) == 0 {
			return nil
		}
		return n
	case ctijson.Object:
		n := &Node{Key: key, Path: path, Kind: ctijson.Object}
		for _, f := range v.Fields() {
			if c := walk(f.Value, f.Key, keyPath(path, f.Key)); c != nil {
				n.Children = append(n.Children, c)
			}
		}
		if len(n.Children) == 0 {
			return nil
		}
		return n
	}
	return nil
}

// KeyPaths lists every key and index path present in rec, pruned or not,
// sorted and without duplicates.
func KeyPaths(rec ctijson.Value) []string {
	seen := make(map[string]struct{})
	var visit func(v ctijson.Value, path string)
	visit = func(v ctijson.Value, path string) {
		switch v.Kind() {
		case ctijson.Array:
			for i, item := range v.Items() {
				p := indexPath(path, i)
				seen[p] = struct{}{}
				visit(item, p)
			}
		case ctijson.Object:
			for _, f := range v.Fields() {
				p := keyPath(path, f.Key)
				seen[p] = struct{}{}
				visit(f.Value, p)
			}
		}
	}
	visit(rec, "")

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func keyPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
