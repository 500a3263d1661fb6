package analyzer

import (
	"go/ast"

	"github.com/coroutil/resumablegen/model"
)

// walkAssign handles ":=" declarations. Every non-blank name on the left
// of a ":=" allocates a yield id (spec §4.3), including a name the ":="
// redeclares; plain "=" and the other assignment forms never do. Type text is not statically resolvable
// without go/types wired per-lambda (the oracle is the only component
// that loads go/types, for cross-function reachability, not per-local
// inference), so ":="-declared locals get the field type "any" — a
// recorded, deliberate narrowing from spec §4.3's full type propagation;
// "var x T = E" forms keep their explicit, precise type text.
func (w *walker) walkAssign(s *ast.AssignStmt, scope *model.Scope, current *int) {
	w.walkExprs(s.Rhs, scope, current)
	if s.Tok.String() != ":=" {
		return
	}
	for _, lhs := range s.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		w.registerLocal(ident.Name, "any", ident, s, scope, current)
	}
}

// walkDecl handles "var x T = E" / "var x T" declaration statements.
func (w *walker) walkDecl(s *ast.DeclStmt, scope *model.Scope, current *int) {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok {
		return
	}
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		typeText := exprText(vs.Type)
		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			if i < len(vs.Values) {
				w.walkExprs([]ast.Expr{vs.Values[i]}, scope, current)
			}
			// Uninitialized "var x T" still allocates a yield: the field
			// becomes live, zero-valued, at this state, so the generated
			// struct always has storage for it whether execution reaches
			// it through a fresh construction or a repeated loop
			// iteration (spec §4.3's "becomes live").
			w.registerLocal(name.Name, typeText, name, s, scope, current)
		}
	}
}

func (w *walker) registerLocal(name, typeText string, decl ast.Node, stmt ast.Stmt, scope *model.Scope, current *int) {
	typeText = model.StripTypeKeyword(typeText)
	if typeText == "" {
		typeText = "any"
	}
	y := w.allocYield(model.YieldLocal, scope, current)
	y.Stmt = stmt
	local := &model.Local{
		Name:          name,
		TypeText:      typeText,
		ScopePath:     scope.Path(),
		QualifiedName: model.QualifyName(scope.Path(), name),
		YieldID:       y.ID,
	}
	local.Decl = decl
	y.LocalQualifiedName = local.QualifiedName
	w.lambda.Locals = append(w.lambda.Locals, local)
	scope.HasLocal = true
}
