// Package document models structured specification documents as a generic
// tree of maps, sequences, and scalars. Map keys are ordered and unique,
// so a parsed document serializes back deterministically. Nodes are
// immutable once constructed; transformations build new nodes and may
// share unchanged subtrees.
package document

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindScalar is a leaf value: string, number, boolean, or null.
	KindScalar Kind = iota
	// KindMap is an ordered collection of unique keys mapping to child nodes.
	KindMap
	// KindSequence is an ordered list of child nodes.
	KindSequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// Node is one node of a document tree.
type Node struct {
	kind     Kind
	keys     []string
	children map[string]*Node
	items    []*Node
	value    any
}

// Pair is one (key, value) entry of a map node.
type Pair struct {
	Key   string
	Value *Node
}

// Scalar constructs a leaf node holding the given value.
// Supported values are strings, numbers, booleans, and nil.
func Scalar(value any) *Node {
	return &Node{kind: KindScalar, value: value}
}

// Map constructs a map node from the given pairs, preserving their order.
// A duplicate key replaces the earlier value but keeps its original position.
// Pairs with a nil value are dropped.
func Map(pairs ...Pair) *Node {
	n := &Node{kind: KindMap, children: make(map[string]*Node, len(pairs))}
	for _, p := range pairs {
		if p.Value == nil {
			continue
		}
		if _, exists := n.children[p.Key]; !exists {
			n.keys = append(n.keys, p.Key)
		}
		n.children[p.Key] = p.Value
	}
	return n
}

// Sequence constructs a sequence node from the given items, dropping nils.
func Sequence(items ...*Node) *Node {
	n := &Node{kind: KindSequence}
	for _, item := range items {
		if item != nil {
			n.items = append(n.items, item)
		}
	}
	return n
}

// Kind returns the variant of this node.
func (n *Node) Kind() Kind {
	return n.kind
}

// Value returns the scalar value, or nil for container nodes.
func (n *Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Keys returns a copy of the map keys in insertion order.
// Returns nil for non-map nodes.
func (n *Node) Keys() []string {
	if n.kind != KindMap {
		return nil
	}
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

// Get returns the child node for a map key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != KindMap {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Items returns a copy of the sequence items.
// Returns nil for non-sequence nodes.
func (n *Node) Items() []*Node {
	if n.kind != KindSequence {
		return nil
	}
	items := make([]*Node, len(n.items))
	copy(items, n.items)
	return items
}

// Item returns the sequence item at the given index.
func (n *Node) Item(i int) (*Node, bool) {
	if n.kind != KindSequence || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// Len returns the number of children for containers, zero for scalars.
func (n *Node) Len() int {
	switch n.kind {
	case KindMap:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Equal reports whether two trees are structurally identical: same variant
// kinds, same key order, same item order, and equal scalar values.
// Numeric scalars compare by value regardless of integer/float representation.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindScalar:
		return ScalarEqual(n.value, other.value)
	case KindMap:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for i, key := range n.keys {
			if other.keys[i] != key {
				return false
			}
			if !n.children[key].Equal(other.children[key]) {
				return false
			}
		}
		return true
	default:
		if len(n.items) != len(other.items) {
			return false
		}
		for i, item := range n.items {
			if !item.Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
}

// String renders a compact single-line representation, useful for logs
// and change snapshots.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.kind {
	case KindScalar:
		return FormatScalar(n.value)
	case KindMap:
		parts := make([]string, 0, len(n.keys))
		for _, key := range n.keys {
			parts = append(parts, fmt.Sprintf("%s: %s", key, n.children[key].String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		parts := make([]string, 0, len(n.items))
		for _, item := range n.items {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}

// ScalarEqual compares two scalar values, normalizing numeric types so a
// value survives a serialize/parse round trip without spuriously differing.
func ScalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return a == b
}

// FormatScalar renders a scalar value the way it appears in serialized form.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
