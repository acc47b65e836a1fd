package document

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/specsync/pkg/errors"
)

// Parse decodes structured YAML text into a document tree. Map key order is
// preserved from the input. Empty input parses to an empty map root.
func Parse(data []byte) (*Node, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if raw == nil {
		return Map(), nil
	}
	return fromYAML(raw)
}

// ParseString decodes structured YAML text into a document tree.
func ParseString(data string) (*Node, error) {
	return Parse([]byte(data))
}

// Marshal serializes a document tree to YAML. Output is deterministic:
// identical trees always serialize to byte-identical text, with map keys in
// insertion order, two-space indentation, and normalized scalar formatting.
func Marshal(n *Node) ([]byte, error) {
	if n == nil {
		return nil, errors.NewParseError("yaml", "", "cannot marshal nil document", nil)
	}
	out, err := yaml.MarshalWithOptions(toYAML(n),
		yaml.Indent(2),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return out, nil
}

// fromYAML converts a decoded YAML value into a Node.
func fromYAML(raw any) (*Node, error) {
	switch v := raw.(type) {
	case yaml.MapSlice:
		pairs := make([]Pair, 0, len(v))
		for _, item := range v {
			child, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: keyString(item.Key), Value: child})
		}
		return Map(pairs...), nil
	case []any:
		items := make([]*Node, 0, len(v))
		for _, raw := range v {
			child, err := fromYAML(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return Sequence(items...), nil
	case map[string]any:
		// Decoding with ordered maps should never produce an unordered map,
		// but reject it explicitly rather than lose key order silently.
		return nil, errors.NewParseError("yaml", "", "unordered map in decoded document", nil)
	default:
		return Scalar(v), nil
	}
}

// toYAML converts a Node back to the value shape goccy/go-yaml serializes.
func toYAML(n *Node) any {
	switch n.kind {
	case KindMap:
		out := make(yaml.MapSlice, 0, len(n.keys))
		for _, key := range n.keys {
			out = append(out, yaml.MapItem{Key: key, Value: toYAML(n.children[key])})
		}
		return out
	case KindSequence:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			out = append(out, toYAML(item))
		}
		return out
	default:
		return n.value
	}
}

// keyString normalizes a decoded map key to a string. YAML allows non-string
// keys; the document model does not.
func keyString(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}
