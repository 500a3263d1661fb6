package analyzer

import (
	"go/ast"

	"github.com/coroutil/resumablegen/model"
)

// walkFor handles for/while (Go's for covers both): a header scope for
// init/cond/post so loop-header locals survive across iterations, and a
// nested body scope, per spec §4.3.
func (w *walker) walkFor(s *ast.ForStmt, scope *model.Scope, current *int) {
	header := scope.NewChild(model.ScopeForInit, s)
	headerCur := *current
	if s.Init != nil {
		w.walkStmt(s.Init, header, &headerCur)
	}
	if s.Cond != nil {
		w.walkExpr(s.Cond, header, &headerCur)
	}

	body := header.NewChild(model.ScopeForBody, s.Body)
	w.walkBlock(s.Body, body, headerCur)

	if s.Post != nil {
		w.walkStmt(s.Post, header, &headerCur)
	}
	// The loop as a whole does not leak its internal progression back to
	// the enclosing scope's cursor.
}

// walkRange handles "for k, v := range x { ... }". The code generator
// emits range loops as native Go range statements (spec §9/DESIGN.md);
// a resumable yield inside one has no addressable resume state, so it
// is rejected here rather than silently mishandled.
func (w *walker) walkRange(s *ast.RangeStmt, scope *model.Scope, current *int) {
	if containsYieldCall(s.Body, w.imp) {
		if w.err == nil {
			w.err = yieldCallError(w.fset, s.Pos())
		}
		return
	}
	w.walkExpr(s.X, scope, current)
	// A yield-free range body's key/value and any locals it declares are
	// never live across a suspension, so the code generator renders the
	// whole statement as a native Go range loop rather than modeling its
	// interior — it is still given a scope node so -v's structural dump
	// reflects it, but carries no locals of its own.
	scope.NewChild(model.ScopeForBody, s.Body)
}

// walkIf handles if/else: a condition scope, and two sibling body scopes
// (then sub-id 0, else sub-id 1) that both inherit the same prior yield
// — the "re-used yield counter restart" spec §4.3/§9 describes, so that
// either arm's locals chain back to the same prior regardless of which
// arm actually executes at runtime.
func (w *walker) walkIf(s *ast.IfStmt, scope *model.Scope, current *int) {
	cond := scope.NewChild(model.ScopeIfCond, s)
	condCur := *current
	if s.Init != nil {
		w.walkStmt(s.Init, cond, &condCur)
	}
	w.walkExpr(s.Cond, cond, &condCur)

	then := cond.NewChild(model.ScopeIfThen, s.Body)
	w.walkBlock(s.Body, then, condCur)

	if s.Else == nil {
		return
	}
	els := cond.NewChild(model.ScopeIfElse, s.Else)
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		w.walkBlock(e, els, condCur)
	case *ast.IfStmt:
		w.walkIf(e, els, &condCur)
	}
}

// walkSwitch handles switch statements: every case body is a sibling
// scope re-using the switch header's prior yield, the same pattern as
// if/else's two arms generalized to N arms.
func (w *walker) walkSwitch(s *ast.SwitchStmt, scope *model.Scope, current *int) {
	hdr := scope.NewChild(model.ScopeSwitchHdr, s)
	hdrCur := *current
	if s.Init != nil {
		w.walkStmt(s.Init, hdr, &hdrCur)
	}
	if s.Tag != nil {
		w.walkExpr(s.Tag, hdr, &hdrCur)
	}
	for _, stmt := range s.Body.List {
		cc, ok := stmt.(*ast.CaseClause)
		if !ok {
			continue
		}
		caseScope := hdr.NewChild(model.ScopeSwitchBdy, cc)
		caseCur := hdrCur
		w.walkStmts(cc.Body, caseScope, &caseCur)
	}
}
