package validreducer

// Reducer computes the next state from the current state and an action. A
// non-nil error means the transition failed inside the reducer itself.
type Reducer[S, A any] func(state S, action A) (S, error)

// Pure adapts a reducer that cannot fail.
func Pure[S, A any](f func(state S, action A) S) Reducer[S, A] {
	return func(state S, action A) (S, error) {
		return f(state, action), nil
	}
}

// Wrap returns a reducer with the same signature that checks every state
// produced by reducer against the schema named by ref.
//
// The schema and the registry from WithSchemas are resolved and compiled once,
// here. A string reference missing from the registry, an unresolved $ref, or an
// inline document conflicting with a registry entry of the same identifier all
// yield a *ResolutionError and no reducer.
//
// On each call the inner reducer runs first; its error, if any, is returned
// untouched. A valid state is returned as produced. An invalid one is replaced
// by the zero S and a *ValidationError listing every violation.
func Wrap[S, A any](reducer Reducer[S, A], ref SchemaRef, opts ...Option) (Reducer[S, A], error) {
	v, err := Compile(ref, opts...)
	if err != nil {
		return nil, err
	}
	return func(state S, action A) (S, error) {
		next, err := reducer(state, action)
		if err != nil {
			return next, err
		}
		if err := v.Validate(next); err != nil {
			var zero S
			return zero, err
		}
		return next, nil
	}, nil
}

// MustWrap is like Wrap but panics with the *ResolutionError. It simplifies
// package-level reducer declarations.
func MustWrap[S, A any](reducer Reducer[S, A], ref SchemaRef, opts ...Option) Reducer[S, A] {
	r, err := Wrap(reducer, ref, opts...)
	if err != nil {
		panic(err)
	}
	return r
}
