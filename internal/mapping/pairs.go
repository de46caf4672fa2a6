package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pair is one key/value entry of a YAML mapping.
type Pair struct {
	Key   string
	Value string
}

// Pairs is a YAML mapping of scalars kept in document order. Keys are taken
// verbatim, so numeric account numbers such as 40817 decode to "40817".
type Pairs []Pair

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	seen := make(map[string]struct{}, len(node.Content)/2)
	out := make(Pairs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected scalar key and value", k.Line)
		}
		if _, dup := seen[k.Value]; dup {
			return fmt.Errorf("line %d: duplicate key '%s'", k.Line, k.Value)
		}
		seen[k.Value] = struct{}{}
		out = append(out, Pair{Key: k.Value, Value: v.Value})
	}
	*p = out
	return nil
}

// Keys returns the keys in document order.
func (p Pairs) Keys() []string {
	keys := make([]string, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

// Map returns the pairs as a lookup map.
func (p Pairs) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, pair := range p {
		m[pair.Key] = pair.Value
	}
	return m
}
