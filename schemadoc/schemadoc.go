// Package schemadoc handles schema documents as plain JSON trees: identifier
// lookup, structural comparison, and decoding from JSON or YAML.
//
// The JSON Schema vocabulary is deliberately not modelled as Go types; a
// Document is data handed to the validation engine.
package schemadoc

import (
	"errors"
	"reflect"
	"strings"

	"github.com/reoring/validreducer/internal/jsontree"
)

// Document is a schema document decoded into a generic tree.
type Document = map[string]any

// ErrNotObject is returned when a decoded document root is not a JSON object.
var ErrNotObject = errors.New("schemadoc: document root is not an object")

// ID returns the identifier a document declares for itself: "$id" when it is a
// non-empty string, else draft-04 "id", else "".
func ID(doc Document) string {
	if s, ok := doc["$id"].(string); ok && s != "" {
		return s
	}
	if s, ok := doc["id"].(string); ok {
		return s
	}
	return ""
}

// CanonicalID trims the empty fragment some drafts append to identifiers
// ("http://x/y#" and "http://x/y" name the same schema).
func CanonicalID(id string) string {
	return strings.TrimSuffix(id, "#")
}

// WithID returns a shallow copy of doc whose declared identifier keys are set to
// id. Keys that are absent stay absent.
func WithID(doc Document, id string) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	if s, ok := doc["$id"].(string); ok && s != "" {
		out["$id"] = id
	}
	if _, ok := doc["id"].(string); ok {
		out["id"] = id
	}
	return out
}

// Equal reports whether a and b have the same JSON content. Numbers compare by
// their JSON text, so 1 built in Go and "1" decoded from a file are equal.
func Equal(a, b Document) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(ca, cb)
}

// Canonical returns the round-tripped JSON tree of doc, suitable for deep
// comparison.
func Canonical(doc Document) (any, error) {
	return jsontree.Canonical(doc)
}
