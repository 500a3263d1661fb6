package model

import "go/ast"

// YieldKind enumerates the five yield-point shapes spec §3 names.
type YieldKind int

const (
	// YieldLocal is a declaration-with-nontrivial-initialization of a local.
	YieldLocal YieldKind = iota
	// YieldValue is a plain "yield E" suspension.
	YieldValue
	// YieldFromStart is the first of the two yield ids a materialized
	// "yield from G" delegation consumes: the state at which the
	// synthesized sub-generator local becomes live.
	YieldFromStart
	// YieldFromResume is the resumption point after each value the
	// sub-generator produces.
	YieldFromResume
	// ReturnFromYield is the tail-delegation "return from G".
	ReturnFromYield
	// Suspend is a value-less co_yield/break_resumable suspension.
	Suspend
)

func (k YieldKind) String() string {
	switch k {
	case YieldLocal:
		return "local"
	case YieldValue:
		return "yield"
	case YieldFromStart:
		return "yield-from-start"
	case YieldFromResume:
		return "yield-from-resume"
	case ReturnFromYield:
		return "return-from"
	case Suspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// Yield is one entry of a lambda's totally ordered yield-point sequence.
// Ids start at 1; id 0 means "not yet started" and id -1 means
// "terminated" (spec §3 invariant 1).
type Yield struct {
	ID        int       `yaml:"id"`
	Kind      YieldKind `yaml:"kind"`
	PriorID   int       `yaml:"priorId"`
	ScopePath []int     `yaml:"scopePath"`

	// LocalQualifiedName is set when Kind == YieldLocal or YieldFromStart:
	// the local (for YieldFromStart, the synthesized sub-generator local)
	// that becomes live at this state.
	LocalQualifiedName string `yaml:"local,omitempty"`

	// SubGeneratorExpr is the source text of the delegated-to generator
	// expression, set for YieldFromStart/YieldFromResume/ReturnFromYield.
	SubGeneratorExpr string `yaml:"subGenerator,omitempty"`
	// SubGeneratorInline records whether the sub-generator expression
	// materializes a temporary stored as a synthesized local (true) or
	// references an existing l-value generator (false).
	SubGeneratorInline bool `yaml:"subGeneratorInline,omitempty"`

	// Reachable lists, in ascending order, every yield id reachable from
	// this one through forward control flow — including transitively
	// through nested scopes. Computed by the analyzer's reachability
	// pass (spec §4.3).
	Reachable []int `yaml:"reachable,omitempty"`

	// ValueExpr holds the yielded value expression for YieldValue, and the
	// delegated-to generator expression for YieldFromStart/
	// YieldFromResume/ReturnFromYield — whichever expression the code
	// generator needs the original AST for, to rewrite captured-name
	// references by identity rather than by re-parsing SubGeneratorExpr's
	// rendered text.
	ValueExpr ast.Expr `yaml:"-"`
	// Stmt is the source statement this yield point corresponds to,
	// used by the code generator to locate where to splice suspend code
	// and resume labels.
	Stmt ast.Stmt `yaml:"-"`
}
