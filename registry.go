package validreducer

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/validreducer/schemadoc"
)

const (
	// resourceBase is the in-memory location relative identifiers resolve
	// against, so "$ref": "foo" finds the registry entry "foo".
	resourceBase = "mem://schemas/"
	// anonymousURL holds an inline document that declares no identifier. Keys
	// are path-escaped, so none of them can produce a query.
	anonymousURL = resourceBase + "?inline"
)

// registry is the identifier namespace of a single Wrap/Compile call. Every
// entry claims its map key and its declared identifier; two claims on one
// identifier must carry structurally equal documents. A key naming a document
// that declares another identifier is an alias of that identifier, so the
// document keeps its declared base URL for relative $refs.
type registry struct {
	docs  map[string]schemadoc.Document
	canon map[string]any
	alias map[string]string
	order []string
	anon  schemadoc.Document
}

func newRegistry() *registry {
	return &registry{
		docs:  map[string]schemadoc.Document{},
		canon: map[string]any{},
		alias: map[string]string{},
	}
}

// claim binds id to doc, or to target when target is not empty.
func (r *registry) claim(id string, doc schemadoc.Document, target string) error {
	c, err := schemadoc.Canonical(doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchema, id, err)
	}
	if prev, ok := r.canon[id]; ok {
		if !reflect.DeepEqual(prev, c) {
			return fmt.Errorf("%w: %q", ErrSchemaConflict, id)
		}
		return nil
	}
	r.docs[id] = doc
	r.canon[id] = c
	if target != "" {
		r.alias[id] = target
	}
	r.order = append(r.order, id)
	return nil
}

// addEntries registers the secondary schemas in key order.
func (r *registry) addEntries(schemas map[string]schemadoc.Document) error {
	keys := make([]string, 0, len(schemas))
	for k := range schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc := schemas[k]
		if doc == nil {
			return fmt.Errorf("%w: %s: nil document", ErrInvalidSchema, k)
		}
		key := schemadoc.CanonicalID(k)
		if key == "" {
			return fmt.Errorf("%w: empty registry key", ErrInvalidSchema)
		}
		id := schemadoc.CanonicalID(schemadoc.ID(doc))
		if id == "" || id == key {
			if err := r.claim(key, doc, ""); err != nil {
				return err
			}
			continue
		}
		if err := r.claim(id, doc, ""); err != nil {
			return err
		}
		if err := r.claim(key, doc, id); err != nil {
			return err
		}
	}
	return nil
}

// resolve returns the identifier of the primary schema, claiming inline
// documents on the way. An anonymous inline document resolves to "".
func (r *registry) resolve(ref SchemaRef) (string, error) {
	switch ref.kind {
	case _refNamed:
		id := schemadoc.CanonicalID(ref.id)
		if id == "" {
			return "", ErrEmptyRef
		}
		if _, ok := r.docs[id]; !ok {
			return "", fmt.Errorf("%w: %q", ErrSchemaNotFound, id)
		}
		return id, nil
	case _refInline:
		if ref.doc == nil {
			return "", fmt.Errorf("%w: nil document", ErrInvalidSchema)
		}
		id := schemadoc.CanonicalID(schemadoc.ID(ref.doc))
		if id == "" {
			if _, err := schemadoc.Canonical(ref.doc); err != nil {
				return "", fmt.Errorf("%w: %w", ErrInvalidSchema, err)
			}
			r.anon = ref.doc
			return "", nil
		}
		if err := r.claim(id, ref.doc, ""); err != nil {
			return "", err
		}
		return id, nil
	default:
		return "", ErrEmptyRef
	}
}

// location returns the URL the document claimed by id is compiled from.
// Aliases point at their target; "" is the anonymous inline document.
func (r *registry) location(id string) string {
	if id == "" {
		return anonymousURL
	}
	if target, ok := r.alias[id]; ok {
		return resourceURL(target)
	}
	return resourceURL(id)
}

// resource returns the document registered at resourceURL(id). Aliases are
// registered as a bare $ref to their target.
func (r *registry) resource(id string) schemadoc.Document {
	if target, ok := r.alias[id]; ok {
		return schemadoc.Document{"$ref": resourceURL(target)}
	}
	return schemadoc.WithID(r.docs[id], resourceURL(id))
}

// resourceURL maps an identifier to the absolute location it is registered at.
// Absolute identifiers are kept; relative ones live under resourceBase.
func resourceURL(id string) string {
	if u, err := url.Parse(id); err == nil && u.IsAbs() {
		return id
	}
	p := (&url.URL{Path: strings.TrimPrefix(id, "/")}).EscapedPath()
	return resourceBase + p
}
