// Package analyzer builds the per-lambda scope-and-yield model spec §3
// and §4.3 describe: a tree of lexical scopes, a totally ordered sequence
// of yield points, and a mapping from every local variable to its scope
// path and to the yield point at which it becomes live.
//
// The walk mirrors inspector/golang's go/ast-driven traversal style and
// analyzer/node.go's switch-on-node-type dispatch, redirected from
// building a lineage graph to building a coroutine lowering model.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)

// walker accumulates a Lambda model across one func literal's body.
type walker struct {
	lambda      *model.Lambda
	imp         *keyword.Importer
	fset        *token.FileSet
	nextYieldID int
	err         error
}

// containsYieldCall reports whether n's subtree (not descending into
// nested func literals) contains any resume.* keyword call. The code
// generator renders range loops natively rather than flattening them
// into goto-addressable state, since their header locals have no
// statically known type to give them field storage (spec §4.3's type
// inference is deliberately narrowed to skip go/types); a yield point
// inside a range body has nowhere to resume into and is rejected here
// rather than silently mishandled.
func containsYieldCall(n ast.Node, imp *keyword.Importer) bool {
	found := false
	ast.Inspect(n, func(node ast.Node) bool {
		if found {
			return false
		}
		if _, ok := node.(*ast.FuncLit); ok {
			return false
		}
		if call, ok := node.(*ast.CallExpr); ok && imp.ClassifyCall(call) != keyword.NotAKeyword {
			found = true
			return false
		}
		return true
	})
	return found
}

// Analyze builds the scope-and-yield model for one resumable func
// literal. ctx supplies the lambda id.
func Analyze(lit *ast.FuncLit, fset *token.FileSet, file *ast.File, imp *keyword.Importer, ctx *model.Context) (*model.Lambda, error) {
	lam := &model.Lambda{
		ID:        ctx.NewLambdaID(),
		Signature: buildSignature(lit.Type),
		Node:      lit,
	}
	lam.ScopeRoot = &model.Scope{ID: 0, ParentID: -1, Kind: model.ScopeBody, Node: lit.Body}

	spec, _ := keyword.FindDirective(lit, fset, file.Comments)
	lam.Captures = inferCaptures(lit, spec, imp, file)

	w := &walker{lambda: lam, imp: imp, fset: fset, nextYieldID: 1}
	w.walkBlock(lit.Body, lam.ScopeRoot, 0)
	if w.err != nil {
		return nil, w.err
	}

	computeReachability(lam)
	return lam, nil
}

func yieldCallError(fset *token.FileSet, pos token.Pos) error {
	return fmt.Errorf("%s: a range loop cannot contain a resumable yield point", fset.Position(pos))
}

func buildSignature(ft *ast.FuncType) model.Signature {
	sig := model.Signature{}
	if ft.Params != nil {
		for _, f := range ft.Params.List {
			typeText := exprText(f.Type)
			if len(f.Names) == 0 {
				sig.Params = append(sig.Params, model.Param{TypeText: typeText})
				continue
			}
			for _, n := range f.Names {
				sig.Params = append(sig.Params, model.Param{Name: n.Name, TypeText: typeText})
			}
		}
	}
	if ft.Results != nil && len(ft.Results.List) > 0 {
		sig.ReturnType = exprText(ft.Results.List[0].Type)
	}
	return sig
}

func exprText(e ast.Expr) string {
	return renderExpr(e)
}

// allocYield assigns the next dense yield id, wiring its prior id to the
// scope's current cursor and advancing that cursor.
func (w *walker) allocYield(kind model.YieldKind, scope *model.Scope, current *int) *model.Yield {
	y := &model.Yield{
		ID:        w.nextYieldID,
		Kind:      kind,
		PriorID:   *current,
		ScopePath: scope.Path(),
	}
	w.nextYieldID++
	w.lambda.Yields = append(w.lambda.Yields, y)
	*current = y.ID
	return y
}

// walkBlock processes a statement list within scope, using a cursor
// seeded from (but independent of) the enclosing scope's own cursor —
// the scoped "current enclosing yield" variable spec §4.3 describes,
// restored (by simply never writing back) when the scope exits.
func (w *walker) walkBlock(block *ast.BlockStmt, scope *model.Scope, inherited int) {
	current := inherited
	w.walkStmts(block.List, scope, &current)
}

func (w *walker) walkStmts(stmts []ast.Stmt, scope *model.Scope, current *int) {
	for _, stmt := range stmts {
		w.walkStmt(stmt, scope, current)
	}
}

func (w *walker) walkStmt(stmt ast.Stmt, scope *model.Scope, current *int) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		child := scope.NewChild(model.ScopeBlock, s)
		w.walkBlock(s, child, *current)
	case *ast.AssignStmt:
		w.walkAssign(s, scope, current)
	case *ast.DeclStmt:
		w.walkDecl(s, scope, current)
	case *ast.ExprStmt:
		w.walkExprStmt(s, scope, current)
	case *ast.ReturnStmt:
		w.walkReturn(s, scope, current)
	case *ast.ForStmt:
		w.walkFor(s, scope, current)
	case *ast.RangeStmt:
		w.walkRange(s, scope, current)
	case *ast.IfStmt:
		w.walkIf(s, scope, current)
	case *ast.SwitchStmt:
		w.walkSwitch(s, scope, current)
	case *ast.IncDecStmt, *ast.BranchStmt:
		// no yield points possible
	default:
		// statements not recognized above (labeled statements, select,
		// type switch, ...) are not walked: no local or yield point
		// inside them is registered.
	}
}
