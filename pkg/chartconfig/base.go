package chartconfig

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// baseKey names the extension keyword: a string or list of strings pointing
// at ancestor documents, resolved relative to the including file's
// directory.
const baseKey = "base"

// ResolveBases resolves the document's base chain and returns the fully
// merged result as a new document. The input is not modified.
//
// Each base entry is loaded, its own bases resolved recursively, and the
// working document merged into it; the merge result becomes the working
// document for the next entry. Absolute base paths are skipped without
// error; only paths relative to baseDir take part in the chain.
func ResolveBases(doc *Document, baseDir string) (*Document, error) {
	return resolveBases(doc, baseDir, nil)
}

func resolveBases(doc *Document, baseDir string, active []string) (*Document, error) {
	out := doc.Clone()
	baseNode := deleteMappingKey(out.root, baseKey)
	if baseNode == nil {
		return out, nil
	}
	paths, err := basePaths(baseNode)
	if err != nil {
		return nil, err
	}

	working := out
	for _, p := range paths {
		if filepath.IsAbs(p) {
			continue
		}
		basePath := filepath.Join(baseDir, p)
		baseDoc, err := loadBase(basePath, active)
		if err != nil {
			return nil, err
		}
		working, err = Merge(working, baseDoc)
		if err != nil {
			return nil, err
		}
	}
	return working, nil
}

// loadBase loads one ancestor document and resolves its own chain, guarding
// against a document that reaches itself through its ancestry.
func loadBase(path string, active []string) (*Document, error) {
	cleaned := filepath.Clean(path)
	for _, seen := range active {
		if seen == cleaned {
			return nil, &ParseError{
				Path:    path,
				Message: "circular base chain: " + strings.Join(append(active, cleaned), " -> "),
			}
		}
	}
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return resolveBases(doc, filepath.Dir(path), append(active, cleaned))
}

// basePaths reads the base keyword's value: one path or a list of paths.
func basePaths(n *yaml.Node) ([]string, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		paths := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			v, ok := scalarValue(item)
			if !ok {
				return nil, &ParseError{Message: "base entries must be strings"}
			}
			paths = append(paths, v)
		}
		return paths, nil
	default:
		return nil, &ParseError{Message: "base must be a string or a list of strings"}
	}
}
