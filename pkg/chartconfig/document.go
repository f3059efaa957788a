package chartconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Shape classifies the runtime shape of a configuration value. The merge
// only distinguishes these three classes; scalar subtypes (string, int,
// bool) never conflict with each other.
type Shape int

const (
	// ShapeScalar is a leaf value.
	ShapeScalar Shape = iota

	// ShapeMapping is a key/value mapping.
	ShapeMapping

	// ShapeSequence is an ordered list.
	ShapeSequence
)

// String returns the shape name used in conflict messages.
func (s Shape) String() string {
	switch s {
	case ShapeMapping:
		return "mapping"
	case ShapeSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// Document is one parsed chart configuration: a YAML mapping whose key order
// is preserved through merge and serialization.
type Document struct {
	root *yaml.Node
}

// Load reads and parses the configuration file at path.
// It returns a NotFoundError if the file is absent and a ParseError if the
// content cannot be decoded into a top-level mapping.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Cause: err}
		}
		return nil, fmt.Errorf("reading chart config %q: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes a configuration document from raw YAML bytes.
func Parse(data []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, &ParseError{Message: "invalid YAML", Cause: err}
	}
	root := documentRoot(&n)
	if root == nil {
		// Empty input is a valid, empty configuration.
		return &Document{root: emptyMapping()}, nil
	}
	root = resolveAlias(root)
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "top level must be a mapping"}
	}
	return &Document{root: root}, nil
}

// NewDocument returns an empty configuration document.
func NewDocument() *Document {
	return &Document{root: emptyMapping()}
}

// Clone returns a deep copy of the document. Anchors are dereferenced, so the
// copy is fully independent of the original.
func (d *Document) Clone() *Document {
	return &Document{root: cloneNode(d.root)}
}

// Bytes serializes the document to YAML with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encoding chart config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding chart config: %w", err)
	}
	return buf.Bytes(), nil
}

// Get returns the value node for a top-level key, or nil.
func (d *Document) Get(key string) *yaml.Node {
	return mappingValue(d.root, key)
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.root.Content)/2)
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		keys = append(keys, d.root.Content[i].Value)
	}
	return keys
}

// Decode unmarshals the document into out, typically a typed config struct
// or a map[string]any view.
func (d *Document) Decode(out any) error {
	if err := d.root.Decode(out); err != nil {
		return &ParseError{Message: "decoding document", Cause: err}
	}
	return nil
}

// documentRoot unwraps the DocumentNode produced by yaml.Unmarshal.
func documentRoot(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	if n.Kind == 0 {
		return nil
	}
	return n
}

// resolveAlias follows an alias node to its anchor target.
func resolveAlias(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

// shapeOf classifies a node. Null scalars count as scalars.
func shapeOf(n *yaml.Node) Shape {
	switch resolveAlias(n).Kind {
	case yaml.MappingNode:
		return ShapeMapping
	case yaml.SequenceNode:
		return ShapeSequence
	default:
		return ShapeScalar
	}
}

// cloneNode deep-copies a node tree. Aliases are replaced by copies of their
// anchor targets so the clone never shares structure with the source.
func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return cloneNode(n.Alias)
	}
	c := *n
	c.Anchor = ""
	c.Alias = nil
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	return &c
}

// mappingValue returns the value node for key inside a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	m = resolveAlias(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

// setMappingValue replaces the value for key, or appends the pair if absent.
func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, scalarNode(key), value)
}

// deleteMappingKey removes a key/value pair from a mapping node and returns
// the removed value, or nil when the key is absent.
func deleteMappingKey(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			value := resolveAlias(m.Content[i+1])
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return value
		}
	}
	return nil
}

// scalarNode builds a plain string scalar.
func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// boolNode builds a boolean scalar.
func boolNode(value bool) *yaml.Node {
	v := "false"
	if value {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}

// emptyMapping builds an empty mapping node.
func emptyMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// scalarValue returns the string value of a scalar node, or "" and false when
// the node is not a scalar.
func scalarValue(n *yaml.Node) (string, bool) {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}
