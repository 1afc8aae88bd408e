package validreducer

import (
	"github.com/reoring/validreducer/schemadoc"
)

type refKind int

const (
	_refNone refKind = iota
	_refInline
	_refNamed
)

// SchemaRef names the schema a reducer is checked against: either an inline
// document or the identifier of a registry entry. Build one with Inline or
// Named; the zero value is rejected.
type SchemaRef struct {
	kind refKind
	doc  schemadoc.Document
	id   string
}

// Inline references a schema document directly. If the document declares an
// identifier that the registry also holds, both must be structurally equal.
func Inline(doc schemadoc.Document) SchemaRef {
	return SchemaRef{kind: _refInline, doc: doc}
}

// Named references a registry entry by key or by declared identifier.
func Named(id string) SchemaRef {
	return SchemaRef{kind: _refNamed, id: id}
}

// IsInline reports whether r carries a document.
func (r SchemaRef) IsInline() bool { return r.kind == _refInline }

// IsNamed reports whether r is an identifier.
func (r SchemaRef) IsNamed() bool { return r.kind == _refNamed }

// String returns the identifier the reference resolves under.
func (r SchemaRef) String() string {
	switch r.kind {
	case _refNamed:
		return r.id
	case _refInline:
		return schemadoc.ID(r.doc)
	default:
		return ""
	}
}
