// Package validreducer guards a state reducer with a JSON Schema.
//
// Wrap compiles the schema once and returns a reducer of the same shape that
// rejects any state the schema does not accept:
//
//	reducer, err := validreducer.Wrap(inner, validreducer.Named("appState"),
//	    validreducer.WithSchemas(map[string]schemadoc.Document{
//	        "appState": appState,
//	        "user":     user, // referenced from appState via "$ref": "user"
//	    }))
//	next, err := reducer(state, action)
//	if ve, ok := validreducer.AsValidationError(err); ok {
//	    // ve.Message lists every violation; ve.Issues carries them one by one.
//	}
//
// Errors:
//   - *ResolutionError at wrap time (unknown identifier, unresolved $ref,
//     conflicting documents under one identifier, invalid schema).
//   - *ValidationError at call time.
//   - Errors returned by the inner reducer pass through unchanged.
//
// Schemas follow JSON Schema draft-04 unless they declare another $schema or
// WithDraft says otherwise. Validation is delegated to
// github.com/santhosh-tekuri/jsonschema/v5; each Wrap call gets its own
// compiler, so registries never leak between reducers.
package validreducer
