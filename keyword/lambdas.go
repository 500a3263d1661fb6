package keyword

import (
	"go/ast"
	"go/token"
)

// FindResumableLambdas walks file and returns every func literal carrying
// the //resumable directive, in source order.
func FindResumableLambdas(file *ast.File, fset *token.FileSet) []*ast.FuncLit {
	var found []*ast.FuncLit
	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.FuncLit)
		if !ok {
			return true
		}
		if HasResumableDirective(lit, fset, file.Comments) {
			found = append(found, lit)
		}
		return true
	})
	return found
}

// ContainsSuspend reports whether a function body directly contains a
// resume.Suspend() call without descending into nested func literals —
// the test the reachability oracle uses to classify a function as
// resumable per spec §4.2.
func ContainsSuspend(body *ast.BlockStmt, imp *Importer) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if ok && imp.ClassifyCall(call) == KindSuspend {
			found = true
			return false
		}
		return true
	})
	return found
}
