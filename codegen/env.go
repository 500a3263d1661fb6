package codegen

import "github.com/coroutil/resumablegen/keyword"

// binding describes how a free name inside the lambda body resolves in
// generated code: a field on the receiver, reached either directly
// (byValue/init/param/local) or through a pointer dereference
// (byReference captures, which mirror Go's native closure-by-reference
// semantics).
type binding struct {
	fieldExpr string // e.g. "g.captures.n" or "g.__s0_1_n"
	deref     bool
}

// scopeEnv is a cactus-stack symbol table mirroring the lambda's lexical
// scope nesting, so that two locals named identically in disjoint
// branches resolve to their own distinct struct field.
type scopeEnv struct {
	parent *scopeEnv
	names  map[string]binding
	imp    *keyword.Importer // set only on the root env
	this   *binding          // resume.This's binding, set only on the root env
}

func newScopeEnv(parent *scopeEnv) *scopeEnv {
	return &scopeEnv{parent: parent, names: map[string]binding{}}
}

func (e *scopeEnv) bind(name string, b binding) {
	e.names[name] = b
}

func (e *scopeEnv) lookup(name string) (binding, bool) {
	for s := e; s != nil; s = s.parent {
		if b, ok := s.names[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (e *scopeEnv) root() *scopeEnv {
	s := e
	for s.parent != nil {
		s = s.parent
	}
	return s
}

func (e *scopeEnv) importer() *keyword.Importer {
	return e.root().imp
}

func (e *scopeEnv) bindThis(b binding) {
	r := e.root()
	r.this = &b
}

func (e *scopeEnv) lookupThis() (binding, bool) {
	r := e.root()
	if r.this == nil {
		return binding{}, false
	}
	return *r.this, true
}
