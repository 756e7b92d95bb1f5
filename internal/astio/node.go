package astio

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// node is a view of one YAML mapping in a tree dump.
type node struct {
	y      *yaml.Node
	fields map[string]*yaml.Node
}

func wrap(y *yaml.Node) node {
	n := node{y: y, fields: map[string]*yaml.Node{}}
	if y == nil {
		return n
	}
	if y.Kind == yaml.DocumentNode && len(y.Content) > 0 {
		y = y.Content[0]
		n.y = y
	}
	if y.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(y.Content); i += 2 {
			n.fields[y.Content[i].Value] = y.Content[i+1]
		}
	}
	return n
}

func (n node) valid() bool { return n.y != nil }

// scalar reports whether the node is written in shorthand as a bare value.
func (n node) scalar() bool { return n.y != nil && n.y.Kind == yaml.ScalarNode }

func (n node) kind() string { return n.str("kind") }

func (n node) has(key string) bool {
	_, ok := n.fields[key]
	return ok
}

func (n node) str(key string) string {
	if v, ok := n.fields[key]; ok && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func (n node) boolean(key string) bool {
	if v, ok := n.fields[key]; ok && v.Kind == yaml.ScalarNode {
		b, err := strconv.ParseBool(v.Value)
		return err == nil && b
	}
	return false
}

func (n node) child(key string) (node, bool) {
	v, ok := n.fields[key]
	if !ok || v.Tag == "!!null" {
		return node{}, false
	}
	return wrap(v), true
}

func (n node) list(key string) []node {
	v, ok := n.fields[key]
	if !ok || v.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]node, len(v.Content))
	for i, c := range v.Content {
		out[i] = wrap(c)
	}
	return out
}

func (n node) strs(key string) []string {
	var out []string
	for _, c := range n.list(key) {
		if c.scalar() {
			out = append(out, c.y.Value)
		}
	}
	return out
}

func (n node) ints(key string) []int {
	var out []int
	for _, c := range n.list(key) {
		if !c.scalar() {
			return nil
		}
		i, err := strconv.Atoi(c.y.Value)
		if err != nil {
			return nil
		}
		out = append(out, i)
	}
	return out
}
