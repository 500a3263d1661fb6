// Package model holds the data model built and consumed by the
// translation pipeline: the translation-unit context and the per-lambda
// scope/yield/local model described by spec §3.
package model

import "sync/atomic"

// Context is process-wide state shared across one run of the translator:
// a monotonic lambda-id counter, the verbose/line-directive flags, and
// the sandbox root. It is created once per invocation and threaded
// through every component that needs it.
type Context struct {
	// Verbose enables the -v syntax-tree and lambda-model trace.
	Verbose bool
	// LineDirectives enables -l //line directive emission.
	LineDirectives bool
	// SandboxRoot is the -p allow-listed path prefix, or "" when unset.
	SandboxRoot string
	// Reachability enables the -r cross-function reachability oracle.
	Reachability bool

	nextLambdaID int64
}

// NewContext creates a Context seeded at lambda id 0.
func NewContext() *Context {
	return &Context{}
}

// NewLambdaID returns the next monotonic lambda id, starting at 0.
func (c *Context) NewLambdaID() int {
	return int(atomic.AddInt64(&c.nextLambdaID, 1) - 1)
}
