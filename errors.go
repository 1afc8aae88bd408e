package validreducer

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution failures. A *ResolutionError always wraps exactly one of these.
var (
	ErrEmptyRef       = errors.New("validreducer: empty schema reference")
	ErrSchemaNotFound = errors.New("validreducer: schema not found in registry")
	ErrSchemaConflict = errors.New("validreducer: conflicting schemas share an identifier")
	ErrUnresolvedRef  = errors.New("validreducer: unresolved $ref")
	ErrInvalidSchema  = errors.New("validreducer: invalid schema")
)

// Issue is a single schema violation found in a state.
type Issue struct {
	Path       string // JSON Pointer into the state (for example: /items/2/price).
	Keyword    string // Failing schema keyword (required, type, additionalProperties, ...).
	SchemaPath string // Absolute keyword location inside the schema.
	Message    string
}

// String renders the issue as "<path>: <message>".
func (it Issue) String() string {
	return it.Path + ": " + it.Message
}

// Issues is a collection of violations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /foobar
		fmt.Fprintf(b, "%s at %s", it.Keyword, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Join renders every issue in order, separated by sep.
func (iss Issues) Join(sep string) string {
	parts := make([]string, len(iss))
	for i, it := range iss {
		parts[i] = it.String()
	}
	return strings.Join(parts, sep)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ValidationError is returned by a wrapped reducer when the state produced by
// the inner reducer does not satisfy the schema. Message lists every violation.
type ValidationError struct {
	Schema  string // identifier of the schema that rejected the state
	Message string
	Issues  Issues
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap exposes Issues to errors.As.
func (e *ValidationError) Unwrap() error { return e.Issues }

// ResolutionError is returned at wrap time when the schema reference cannot be
// resolved or compiled. No reducer is produced alongside it.
type ResolutionError struct {
	Ref string // the reference being resolved ("" for anonymous inline schemas)
	Err error
}

func (e *ResolutionError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("validreducer: resolve schema: %v", e.Err)
	}
	return fmt.Sprintf("validreducer: resolve schema %q: %v", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsResolutionError extracts a *ResolutionError from err.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
