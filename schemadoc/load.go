package schemadoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/validreducer/internal/jsontree"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("schemadoc: unsupported file format")

// ParseJSON decodes a single JSON object document.
func ParseJSON(data []byte) (Document, error) {
	v, err := jsontree.Decode(data)
	if err != nil {
		return nil, err
	}
	return asDocument(v)
}

// ParseYAML decodes the first YAML document in data. The result is a pure JSON
// tree: mapping keys are stringified and scalars such as timestamps are
// converted to their JSON form.
func ParseYAML(data []byte) (Document, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return asDocument(v)
}

// DecodeYAML decodes the first YAML document in data into a JSON tree of any
// shape.
func DecodeYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("schemadoc: empty YAML document")
		}
		return nil, fmt.Errorf("schemadoc: decode YAML: %w", err)
	}
	return jsontree.Canonical(yamlNormalizeValue(node))
}

// LoadFile reads a schema document from path, choosing the decoder by
// extension (.json, .yaml, .yml).
func LoadFile(path string) (Document, error) {
	v, err := LoadValue(path)
	if err != nil {
		return nil, err
	}
	doc, err := asDocument(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadValue reads any JSON or YAML value from path (used for state documents,
// whose root need not be an object).
func LoadValue(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err := jsontree.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	case ".yaml", ".yml":
		v, err := DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadDir loads every JSON/YAML file directly inside dir into a registry map.
// A document is keyed by its declared identifier, or by its file name without
// extension when it declares none. Two files claiming the same key must hold
// equal documents.
func LoadDir(dir string) (map[string]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSchemaFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make(map[string]Document, len(names))
	from := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		key := CanonicalID(ID(doc))
		if key == "" {
			key = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if prev, ok := out[key]; ok && !Equal(prev, doc) {
			return nil, fmt.Errorf("schemadoc: %s: identifier %q already defined by %s", path, key, from[key])
		}
		out[key] = doc
		from[key] = path
	}
	return out, nil
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func asDocument(v any) (Document, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return doc, nil
}

// yamlNormalizeValue converts map[any]any produced for non-string YAML keys
// into map[string]any, recursively.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return v
	}
}
