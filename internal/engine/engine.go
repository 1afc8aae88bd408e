package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/validreducer/internal/jsontree"
)

// Draft selects the JSON Schema dialect assumed for documents without $schema.
type Draft int

const (
	Draft4 Draft = iota
	Draft6
	Draft7
	Draft2019
	Draft2020
)

func (d Draft) String() string {
	switch d {
	case Draft4:
		return "draft-04"
	case Draft6:
		return "draft-06"
	case Draft7:
		return "draft-07"
	case Draft2019:
		return "2019-09"
	case Draft2020:
		return "2020-12"
	default:
		return fmt.Sprintf("Draft(%d)", int(d))
	}
}

func (d Draft) dialect() *jsonschema.Draft {
	switch d {
	case Draft6:
		return jsonschema.Draft6
	case Draft7:
		return jsonschema.Draft7
	case Draft2019:
		return jsonschema.Draft2019
	case Draft2020:
		return jsonschema.Draft2020
	default:
		return jsonschema.Draft4
	}
}

// ErrUnresolved reports that compilation needed a resource that was never
// registered. Nothing is ever fetched from disk or network.
var ErrUnresolved = errors.New("engine: unresolved reference")

// Compiler is an isolated schema compiler. Each Compiler owns its resources;
// nothing is shared between instances.
type Compiler struct {
	c      *jsonschema.Compiler
	misses []string
}

// NewCompiler returns a Compiler that never loads resources it was not given.
func NewCompiler(d Draft) *Compiler {
	c := &Compiler{c: jsonschema.NewCompiler()}
	c.c.Draft = d.dialect()
	c.c.LoadURL = func(s string) (io.ReadCloser, error) {
		c.misses = append(c.misses, s)
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, s)
	}
	return c
}

// AddResource registers doc at the absolute url.
func (c *Compiler) AddResource(url string, doc any) error {
	b, err := jsontree.Marshal(doc)
	if err != nil {
		return err
	}
	if err := c.c.AddResource(url, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("engine: add %s: %w", url, err)
	}
	return nil
}

// Compile compiles the resource at url together with everything it references.
// When a reference could not be resolved the returned error wraps ErrUnresolved.
func (c *Compiler) Compile(url string) (*Schema, error) {
	c.misses = c.misses[:0]
	s, err := c.c.Compile(url)
	if err != nil {
		if len(c.misses) > 0 {
			missing := unique(c.misses)
			return nil, fmt.Errorf("%w: %s: %w", ErrUnresolved, strings.Join(missing, ", "), err)
		}
		return nil, fmt.Errorf("engine: compile %s: %w", url, err)
	}
	return &Schema{s: s, url: url}, nil
}

// Schema is a compiled schema. It is read-only and safe for concurrent use.
type Schema struct {
	s   *jsonschema.Schema
	url string
}

// URL returns the absolute location the schema was compiled from.
func (s *Schema) URL() string { return s.url }

// Violation is one leaf failure reported by the engine.
type Violation struct {
	InstanceLocation        string // JSON Pointer into the value; "" is the root.
	KeywordLocation         string // evaluation path through the schema.
	AbsoluteKeywordLocation string
	Message                 string
}

// Keyword returns the last segment of the keyword location (e.g. "required").
func (v Violation) Keyword() string {
	loc := v.KeywordLocation
	if i := strings.LastIndexByte(loc, '/'); i >= 0 {
		return loc[i+1:]
	}
	return loc
}

// Validate checks a JSON tree. It returns nil when v is valid and every leaf
// violation otherwise, in the order the engine reported them.
func (s *Schema) Validate(v any) ([]Violation, error) {
	err := s.s.Validate(v)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("engine: validate: %w", err)
	}
	var out []Violation
	collect(ve, &out)
	return out, nil
}

func collect(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{
			InstanceLocation:        ve.InstanceLocation,
			KeywordLocation:         ve.KeywordLocation,
			AbsoluteKeywordLocation: ve.AbsoluteKeywordLocation,
			Message:                 ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
