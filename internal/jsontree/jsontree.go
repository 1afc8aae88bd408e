// Package jsontree converts Go values into the generic JSON tree
// (map[string]any, []any, string, json.Number, bool, nil) understood by the
// schema engine.
package jsontree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"
)

// Normalize returns v as a JSON tree. Values that already are trees are
// returned as-is without copying; anything else (structs, typed maps, typed
// slices, pointers) is round-tripped through JSON. v itself is never modified.
func Normalize(v any) (any, error) {
	if isTree(v) {
		return v, nil
	}
	return Canonical(v)
}

// Canonical always round-trips v through JSON so that two values with the
// same JSON encoding produce deeply equal trees (numbers become json.Number).
func Canonical(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsontree: marshal %T: %w", v, err)
	}
	return Decode(b)
}

// Decode parses a single JSON value from data, keeping numbers exact.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("jsontree: decode: %w", err)
	}
	// trailing garbage after the first value
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("jsontree: decode: unexpected data after top-level value")
	}
	return out, nil
}

// Marshal encodes a tree (or any JSON-marshalable value) to bytes.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsontree: marshal %T: %w", v, err)
	}
	return b, nil
}

func isTree(v any) bool {
	switch t := v.(type) {
	case nil, bool, string, json.Number:
		return true
	case float64:
		// NaN and infinities have no JSON form; Canonical reports them.
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case map[string]any:
		for _, e := range t {
			if !isTree(e) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range t {
			if !isTree(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
