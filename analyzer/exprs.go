package analyzer

import (
	"go/ast"

	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)

// walkExprs scans a list of expressions for resume.* keyword calls
// anywhere in their subtree, registering a yield point for each one
// found, in left-to-right, outer-to-inner order.
func (w *walker) walkExprs(exprs []ast.Expr, scope *model.Scope, current *int) {
	for _, e := range exprs {
		w.walkExpr(e, scope, current)
	}
}

func (w *walker) walkExpr(e ast.Expr, scope *model.Scope, current *int) {
	ast.Inspect(e, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		switch w.imp.ClassifyCall(call) {
		case keyword.KindYield:
			w.allocYield(model.YieldValue, scope, current).ValueExpr = call.Args[0]
		case keyword.KindYieldFrom:
			w.registerYieldFrom(call, nil, scope, current)
		case keyword.KindSuspend:
			w.allocYield(model.Suspend, scope, current)
		}
		return true
	})
}

// walkExprStmt handles a bare expression statement: the common shape for
// "yield E", "yield from G" and "co_yield"/"break_resumable".
func (w *walker) walkExprStmt(s *ast.ExprStmt, scope *model.Scope, current *int) {
	call, ok := s.X.(*ast.CallExpr)
	if !ok {
		w.walkExpr(s.X, scope, current)
		return
	}
	switch w.imp.ClassifyCall(call) {
	case keyword.KindYield:
		y := w.allocYield(model.YieldValue, scope, current)
		y.ValueExpr = call.Args[0]
		y.Stmt = s
	case keyword.KindYieldFrom:
		w.registerYieldFrom(call, s, scope, current)
	case keyword.KindSuspend:
		w.allocYield(model.Suspend, scope, current).Stmt = s
	default:
		w.walkExpr(s.X, scope, current)
	}
}

// walkReturn handles "return E" and the "return from G" tail-delegation.
func (w *walker) walkReturn(s *ast.ReturnStmt, scope *model.Scope, current *int) {
	if len(s.Results) == 1 {
		if call, ok := s.Results[0].(*ast.CallExpr); ok && w.imp.ClassifyCall(call) == keyword.KindReturnFrom {
			w.registerReturnFrom(call, s, scope, current)
			return
		}
	}
	w.walkExprs(s.Results, scope, current)
}

// generatorTypeText names the concrete resume.Generator[T] a synthesized
// yield-from/return-from local gets, T being the enclosing lambda's own
// yield/return type — matching resume.YieldFrom/ReturnFrom's generic
// signature. A bare "any" field has no method set, so calling .Next() on
// it is a compile error; typing the field this way is what makes that
// call legal.
func generatorTypeText(retType string) string {
	if retType == "" {
		retType = "any"
	}
	return "resume.Generator[" + retType + "]"
}

// maybeSynthesizeSubGeneratorLocal allocates the YieldFromStart bookkeeping
// yield and a cached local for genExpr when it materializes a temporary
// (a call or composite literal) rather than naming an existing l-value
// generator — shared by registerYieldFrom and registerReturnFrom so both
// "yield from G" and the tail-position "return from G" cache the
// constructed generator once instead of re-evaluating genExpr (and so
// reconstructing and restarting it) on every resumption.
func (w *walker) maybeSynthesizeSubGeneratorLocal(genExpr ast.Expr, genText string, stmt ast.Stmt, scope *model.Scope, current *int) *model.Yield {
	if !isMaterializing(genExpr) {
		return nil
	}
	start := w.allocYield(model.YieldFromStart, scope, current)
	start.SubGeneratorExpr = genText
	start.SubGeneratorInline = true
	start.ValueExpr = genExpr
	start.Stmt = stmt

	local := &model.Local{
		Name:      synthName(start.ID),
		TypeText:  generatorTypeText(w.lambda.Signature.ReturnType),
		Synthetic: true,
		ScopePath: scope.Path(),
		YieldID:   start.ID,
	}
	local.QualifiedName = model.QualifyName(scope.Path(), local.Name)
	start.LocalQualifiedName = local.QualifiedName
	w.lambda.Locals = append(w.lambda.Locals, local)
	scope.HasLocal = true
	return start
}

// registerYieldFrom registers the one or two yield ids a "yield from G"
// delegation consumes, per spec §4.3: one if G is an existing l-value
// generator, two if G materializes a temporary that must be stored in a
// synthesized local. stmt is nil when the delegation is discovered nested
// inside another expression rather than as its own statement.
func (w *walker) registerYieldFrom(call *ast.CallExpr, stmt ast.Stmt, scope *model.Scope, current *int) {
	genExpr := call.Args[0]
	genText := renderExpr(genExpr)
	start := w.maybeSynthesizeSubGeneratorLocal(genExpr, genText, stmt, scope, current)

	resumeYield := w.allocYield(model.YieldFromResume, scope, current)
	resumeYield.SubGeneratorExpr = genText
	resumeYield.SubGeneratorInline = start != nil
	resumeYield.ValueExpr = genExpr
	resumeYield.Stmt = stmt
}

// registerReturnFrom mirrors registerYieldFrom for the tail-position
// "return from G": a materializing G gets the same cached-local treatment
// so the delegated sequence resumes from where it left off instead of
// restarting on every dispatch into this return's resume label.
func (w *walker) registerReturnFrom(call *ast.CallExpr, stmt ast.Stmt, scope *model.Scope, current *int) {
	genExpr := call.Args[0]
	genText := renderExpr(genExpr)
	start := w.maybeSynthesizeSubGeneratorLocal(genExpr, genText, stmt, scope, current)

	y := w.allocYield(model.ReturnFromYield, scope, current)
	y.SubGeneratorExpr = genText
	y.SubGeneratorInline = start != nil
	y.ValueExpr = genExpr
	y.Stmt = stmt
}

func synthName(yieldID int) string {
	return "__gen" + itoa(yieldID)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// isMaterializing reports whether expr produces a temporary (a call or
// composite literal) rather than referencing an existing l-value
// generator (a plain identifier or selector).
func isMaterializing(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		return false
	default:
		return true
	}
}
