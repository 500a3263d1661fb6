package model

import "go/ast"

// Lambda is the full scope-and-yield model built for one resumable
// func literal by the analyzer, and consumed exactly once by the code
// generator (spec §3 Lifecycle).
type Lambda struct {
	ID        int       `yaml:"id"`
	Captures  []Capture `yaml:"captures"`
	Signature Signature `yaml:"signature"`
	ScopeRoot *Scope    `yaml:"scopes"`
	Locals    []*Local  `yaml:"locals"`
	Yields    []*Yield  `yaml:"yields"`

	Node *ast.FuncLit `yaml:"-"`
}

// YieldByID returns the yield with the given id, or nil.
func (l *Lambda) YieldByID(id int) *Yield {
	for _, y := range l.Yields {
		if y.ID == id {
			return y
		}
	}
	return nil
}

// LocalByQualifiedName returns the local with the given qualified name,
// or nil.
func (l *Lambda) LocalByQualifiedName(name string) *Local {
	for _, loc := range l.Locals {
		if loc.QualifiedName == name {
			return loc
		}
	}
	return nil
}

// LocalAt returns the local (if any) that becomes live at the given
// yield id.
func (l *Lambda) LocalAt(yieldID int) *Local {
	for _, loc := range l.Locals {
		if loc.YieldID == yieldID {
			return loc
		}
	}
	return nil
}

// PriorChain walks the prior-yield relation from the given state toward
// the root (yield 0), inclusive of start, exclusive of the terminal 0.
// This is the forest walk spec §3 invariant 3 describes: it gives the
// correct LIFO stack of destruction.
func (l *Lambda) PriorChain(state int) []int {
	var chain []int
	for state > 0 {
		chain = append(chain, state)
		y := l.YieldByID(state)
		if y == nil {
			break
		}
		state = y.PriorID
	}
	return chain
}

// Copyable reports whether every local's static type is recognized as
// copyable by the given predicate — the Go realization of spec §3
// invariant 4's copy-constructibility conjunction.
func (l *Lambda) Copyable(isCopyable func(typeText string) bool) bool {
	for _, loc := range l.Locals {
		if !isCopyable(loc.TypeText) {
			return false
		}
	}
	return true
}
