package validreducer

import (
	"errors"
	"fmt"

	"github.com/reoring/validreducer/internal/engine"
	"github.com/reoring/validreducer/internal/jsontree"
)

// keywordEncoding marks issues raised because a state could not be turned
// into JSON at all.
const keywordEncoding = "encoding"

// Validator is a compiled schema together with everything it references. It is
// immutable; Check and Validate may be called concurrently.
type Validator struct {
	id        string
	schema    *engine.Schema
	separator string
}

// Compile resolves ref against the registry given by WithSchemas and compiles
// it. Failures are returned as *ResolutionError.
func Compile(ref SchemaRef, opts ...Option) (*Validator, error) {
	return compile(ref, newConfig(opts))
}

func compile(ref SchemaRef, cfg *config) (*Validator, error) {
	fail := func(err error) (*Validator, error) {
		return nil, &ResolutionError{Ref: ref.String(), Err: err}
	}

	reg := newRegistry()
	if err := reg.addEntries(cfg.schemas); err != nil {
		return fail(err)
	}
	root, err := reg.resolve(ref)
	if err != nil {
		return fail(err)
	}

	c := engine.NewCompiler(cfg.draft)
	for _, id := range reg.order {
		if err := c.AddResource(resourceURL(id), reg.resource(id)); err != nil {
			return fail(fmt.Errorf("%w: %s: %w", ErrInvalidSchema, id, err))
		}
	}
	if reg.anon != nil {
		if err := c.AddResource(anonymousURL, reg.anon); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrInvalidSchema, err))
		}
	}
	s, err := c.Compile(reg.location(root))
	if err != nil {
		if errors.Is(err, engine.ErrUnresolved) {
			return fail(fmt.Errorf("%w: %w", ErrUnresolvedRef, err))
		}
		return fail(fmt.Errorf("%w: %w", ErrInvalidSchema, err))
	}

	cfg.logger.Debug("schema compiled",
		"schema", root,
		"url", s.URL(),
		"identifiers", len(reg.order),
		"draft", cfg.draft.String(),
	)
	return &Validator{id: root, schema: s, separator: cfg.separator}, nil
}

// ID returns the identifier the validator was resolved under.
func (v *Validator) ID() string { return v.id }

// Check reports whether value satisfies the schema.
func (v *Validator) Check(value any) bool {
	return v.Validate(value) == nil
}

// Validate returns nil when value satisfies the schema and a *ValidationError
// listing every violation otherwise. Values that are not JSON trees are
// converted through their JSON encoding first; value is never modified.
func (v *Validator) Validate(value any) error {
	tree, err := jsontree.Normalize(value)
	if err != nil {
		return v.reject(Issues{{Path: "/", Keyword: keywordEncoding, Message: err.Error()}})
	}
	vs, err := v.schema.Validate(tree)
	if err != nil {
		return v.reject(Issues{{Path: "/", Keyword: keywordEncoding, Message: err.Error()}})
	}
	if len(vs) == 0 {
		return nil
	}
	iss := make(Issues, 0, len(vs))
	for _, vi := range vs {
		iss = append(iss, Issue{
			Path:       pointer(vi.InstanceLocation),
			Keyword:    vi.Keyword(),
			SchemaPath: vi.AbsoluteKeywordLocation,
			Message:    vi.Message,
		})
	}
	return v.reject(iss)
}

func (v *Validator) reject(iss Issues) *ValidationError {
	return &ValidationError{Schema: v.id, Message: iss.Join(v.separator), Issues: iss}
}

func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
