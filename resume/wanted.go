package resume

import "reflect"

// Wanted is implemented by generated generator types that delegate to a
// sub-generator via yield-from or return-from. It lets an external
// dispatcher interrogate a composed chain for its current demand without
// knowing the concrete type of whichever sub-generator is active.
type Wanted interface {
	// Wanted returns the value most recently produced by the active
	// sub-generator, or nil if none is active.
	Wanted() any
	// WantedType returns the static type produced by the active
	// sub-generator, or nil if none is active.
	WantedType() reflect.Type
}

// Initializer is a move-only-by-convention wrapper around a generated
// type's capture record. It defers construction of the generator itself
// to the point where it is handed to its eventual owner — the Go
// realization of spec's initializer holder. Go has no move semantics, so
// the convention is: call Build at most once, then discard the
// Initializer.
type Initializer[T any] struct {
	build func() T
}

// NewInitializer wraps a factory function producing the generator value.
func NewInitializer[T any](build func() T) Initializer[T] {
	return Initializer[T]{build: build}
}

// Build constructs the generator. Calling it more than once on the same
// Initializer produces independent, freshly-constructed generators from
// the same captures; callers that need move-once semantics must enforce
// that themselves, same as the original's "moved-from" discipline.
func (i Initializer[T]) Build() T {
	return i.build()
}

// LambdaT projects an Initializer (or any wrapper) back to the underlying
// generator type, mirroring spec's lambda_t<T> trait.
type LambdaT[T any] interface {
	Build() T
}
