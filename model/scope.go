package model

import "go/ast"

// Scope is one node of the lambda's lexical scope tree. Compound
// statements open a scope; for/while/if open a scope for their header
// (init/test) and, inside it, one or two sibling scopes for their
// body/branches, so that header-declared locals survive across
// iterations the way spec §4.3 requires.
type Scope struct {
	ID       int       `yaml:"id"`
	ParentID int       `yaml:"parentId"`
	Kind     string    `yaml:"kind"`
	Children []*Scope  `yaml:"children,omitempty"`
	Parent   *Scope    `yaml:"-"`
	Node     ast.Node  `yaml:"-"`
	HasLocal bool      `yaml:"hasLocal"`
}

// Scope kinds.
const (
	ScopeBody      = "body"
	ScopeBlock     = "block"
	ScopeForInit   = "for-init"
	ScopeForBody   = "for-body"
	ScopeIfCond    = "if-cond"
	ScopeIfThen    = "if-then"
	ScopeIfElse    = "if-else"
	ScopeSwitchHdr = "switch-init"
	ScopeSwitchBdy = "switch-body"
)

// Path returns the sequence of scope ids from the lambda body (exclusive)
// down to this scope, the "scope path" of spec §3.
func (s *Scope) Path() []int {
	if s == nil || s.Parent == nil {
		return nil
	}
	return append(s.Parent.Path(), s.ID)
}

// NewChild allocates a new child scope with an id unique among its
// siblings and links it into the tree.
func (s *Scope) NewChild(kind string, node ast.Node) *Scope {
	child := &Scope{
		ID:       len(s.Children),
		ParentID: s.ID,
		Kind:     kind,
		Parent:   s,
		Node:     node,
	}
	s.Children = append(s.Children, child)
	return child
}
