// Package resume supplies the extension vocabulary that resumablegen
// recognizes and rewrites, plus the small runtime surface generated code
// depends on.
//
// Every function here is a real, type-checking stand-in: a resumable
// lambda's source compiles on its own, with these calls behaving as
// inert placeholders, before resumablegen ever sees it. Translation
// replaces every call site with generated control flow; none of these
// bodies execute in translated output.
package resume

// Generator is the interface every generated resumable-lambda type
// satisfies. T is the type produced by yield and return-from sites.
type Generator[T any] interface {
	// Next advances the coroutine one step. ok is false once the
	// generator has reached its terminal state.
	Next() (value T, ok bool)
	IsInitial() bool
	IsTerminal() bool
	// Close abandons the generator without resuming it to completion,
	// unwinding every live local exactly once. Safe to call on an
	// already-terminal generator.
	Close() error
}

// This is the placeholder for lambda_this: a marker value, never
// constructed, that the analyzer recognizes structurally and the code
// generator rewrites to the captured enclosing receiver.
var This struct{}

// Yield is the pre-translation stand-in for "yield E". It is dead code
// after translation; the zero value lets callers treat it as an
// ordinary (if unreachable) expression.
func Yield[T any](v T) T {
	var zero T
	return zero
}

// YieldFrom is the pre-translation stand-in for "yield from G".
func YieldFrom[T any](g Generator[T]) T {
	var zero T
	return zero
}

// ReturnFrom is the pre-translation stand-in for "return from G".
func ReturnFrom[T any](g Generator[T]) T {
	var zero T
	return zero
}

// Suspend is the pre-translation stand-in for co_yield / break_resumable:
// a value-less suspension point.
func Suspend() {}
