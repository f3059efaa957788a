package chartconfig

import (
	"gopkg.in/yaml.v3"
)

// layersKey is the only top-level key merged by name reconciliation instead
// of the shape rules.
const layersKey = "layers"

// Merge merges the child document current into the base document target and
// returns the result as a new document. Neither input is modified.
//
// The direction matters: target's keys survive unless current overrides
// them. For each key of current: absent in target means the value is copied
// in; the top-level layers key is reconciled by name whatever representation
// either side uses; differing shapes conflict; same-shaped mappings merge
// recursively; any other same-shaped pair is replaced by current's value.
func Merge(current, target *Document) (*Document, error) {
	out := target.Clone()
	if err := mergeMapping(current.root, out.root, true); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeMapping merges the entries of current into target, which is owned by
// the caller and safe to mutate. current is only read; every value taken
// from it is cloned before insertion.
func mergeMapping(current, target *yaml.Node, topLevel bool) error {
	for i := 0; i+1 < len(current.Content); i += 2 {
		key := current.Content[i].Value
		value := resolveAlias(current.Content[i+1])
		existing := mappingValue(target, key)
		if existing == nil {
			setMappingValue(target, key, cloneNode(value))
			continue
		}
		if topLevel && key == layersKey {
			merged, err := mergeLayers(value, existing)
			if err != nil {
				return err
			}
			setMappingValue(target, key, merged)
			continue
		}
		cs, ts := shapeOf(value), shapeOf(existing)
		if cs != ts {
			return &MergeConflictError{Key: key, CurrentShape: cs, TargetShape: ts}
		}
		if cs == ShapeMapping {
			if err := mergeMapping(value, existing, false); err != nil {
				return err
			}
			continue
		}
		setMappingValue(target, key, cloneNode(value))
	}
	return nil
}

// layerEntry is the canonical internal representation of one layer: its name
// and its body mapping, order-preserving. Both external representations
// (sequence of named mappings, name-keyed mapping) normalize to a slice of
// these.
type layerEntry struct {
	name string
	body *yaml.Node
}

// layerEntries normalizes a layers node into the canonical ordered list.
// In strict mode a sequence entry without a name is an error; otherwise it
// is dropped, which is what the mapping extraction wants.
func layerEntries(n *yaml.Node, strict bool) ([]layerEntry, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.SequenceNode:
		entries := make([]layerEntry, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				return nil, &MergeConflictError{Key: layersKey, Message: "layer list entries must be mappings"}
			}
			name, ok := scalarValue(mappingValue(item, "name"))
			if !ok || name == "" {
				if strict {
					return nil, &MergeConflictError{Key: layersKey, Message: "missing name in layer list entry"}
				}
				continue
			}
			entries = append(entries, layerEntry{name: name, body: item})
		}
		return entries, nil
	case yaml.MappingNode:
		entries := make([]layerEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			body := resolveAlias(n.Content[i+1])
			if body.Kind != yaml.MappingNode {
				return nil, &MergeConflictError{Key: layersKey, Message: "layer entries must be mappings"}
			}
			entries = append(entries, layerEntry{name: n.Content[i].Value, body: body})
		}
		return entries, nil
	default:
		return nil, &MergeConflictError{Key: layersKey, Message: "layers must be a sequence or a mapping"}
	}
}

// mergeLayers reconciles two layers values by name. Entries present on both
// sides have the child's body merged into the base's (child fields win,
// shared mappings recurse); names only the child knows append in the
// child's order; the base's other entries survive untouched. The result is
// always the sequence representation, each entry carrying its name field.
//
// target belongs to the merge output and may be mutated; current is only
// read.
func mergeLayers(current, target *yaml.Node) (*yaml.Node, error) {
	cur, err := layerEntries(current, true)
	if err != nil {
		return nil, err
	}
	tgt, err := layerEntries(target, true)
	if err != nil {
		return nil, err
	}

	merged := make([]layerEntry, len(tgt))
	index := make(map[string]int, len(tgt))
	for i, e := range tgt {
		merged[i] = e
		index[e.name] = i
	}
	for _, e := range cur {
		if i, ok := index[e.name]; ok {
			if err := mergeMapping(e.body, merged[i].body, false); err != nil {
				return nil, err
			}
			continue
		}
		index[e.name] = len(merged)
		merged = append(merged, layerEntry{name: e.name, body: cloneNode(e.body)})
	}

	return layerSequence(merged), nil
}

// layerSequence converts the canonical list back to the sequence
// representation, injecting each entry's name into its body. The bodies are
// owned by the caller.
func layerSequence(entries []layerEntry) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, e := range entries {
		setMappingValue(e.body, "name", scalarNode(e.name))
		seq.Content = append(seq.Content, e.body)
	}
	return seq
}
