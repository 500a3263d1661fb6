package codegen

import (
	"fmt"
	"go/ast"

	"github.com/coroutil/resumablegen/model"
)

// tempField is a codegen-introduced struct field with no counterpart in
// the analyzed model: a place to park a value that must survive between
// two statements of the flattened body. Go's goto statement may not
// jump forward across a ":="/"var" declaration into its scope (The Go
// Programming Language Specification, "Goto statements"), and every
// dispatch-switch case in the generated Next() method is exactly such a
// jump, so the flattened body never declares a variable — every value
// that needs to live past one statement is a pre-declared struct field,
// assigned with "=", never ":=".
type tempField struct {
	name     string
	typeText string
}

// bodyGen flattens one lambda's statement list into the single
// sequence of labelled, field-assignment-only statements the generated
// Next() method's body is built from.
type bodyGen struct {
	lam        *model.Lambda
	retType    string
	yieldsBy   map[ast.Stmt][]*model.Yield
	lines      []string
	labelNum   int
	tempNum    int
	tempFields []tempField
	breakLbl   []string
	contLbl    []string
	err        error

	// valFieldByYield records, for every YieldFromResume yield, the temp
	// field its pulled value lands in — consulted by Generate to wire
	// resume.Wanted forwarding for composed generators.
	valFieldByYield map[int]string
}

func newBodyGen(lam *model.Lambda, retType string) *bodyGen {
	g := &bodyGen{lam: lam, retType: retType, yieldsBy: map[ast.Stmt][]*model.Yield{}, valFieldByYield: map[int]string{}}
	for _, y := range lam.Yields {
		if y.Stmt == nil {
			continue
		}
		g.yieldsBy[y.Stmt] = append(g.yieldsBy[y.Stmt], y)
	}
	return g
}

func (g *bodyGen) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

func (g *bodyGen) line(s string) { g.lines = append(g.lines, s) }
func (g *bodyGen) label(l string) { g.lines = append(g.lines, l+":") }

func (g *bodyGen) newLabel() string {
	g.labelNum++
	return "Lctrl" + itoaCodegen(g.labelNum)
}

func (g *bodyGen) newTempField(typeText string) string {
	g.tempNum++
	name := "__tmp" + itoaCodegen(g.tempNum)
	g.tempFields = append(g.tempFields, tempField{name: name, typeText: typeText})
	return "g." + name
}

func (g *bodyGen) zeroExpr(typeText string) string {
	if typeText == "" {
		typeText = "any"
	}
	return "*new(" + typeText + ")"
}

// Emit flattens stmts (the lambda body's top-level statement list),
// using env as the outermost binding scope (captures and parameters),
// and returns the generated Next() method body lines. cur tracks the
// deepest local currently live, the same cursor analyzer/control.go
// threads through its walk, so that normal completion unwinds every
// live local exactly once instead of only the panic-recovery path doing
// so.
func (g *bodyGen) Emit(stmts []ast.Stmt, env *scopeEnv) ([]string, error) {
	cur := 0
	g.emitStmts(stmts, newScopeEnv(env), &cur)
	g.line("g.unwindTo(0)")
	g.line("g.state = -1")
	g.line("return " + g.zeroExpr(g.retType) + ", false")
	return g.lines, g.err
}

func (g *bodyGen) emitStmts(stmts []ast.Stmt, env *scopeEnv, cur *int) {
	for _, s := range stmts {
		g.emitStmt(s, env, cur)
	}
}

func (g *bodyGen) emitStmt(s ast.Stmt, env *scopeEnv, cur *int) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		entry := *cur
		child := entry
		g.emitStmts(st.List, newScopeEnv(env), &child)
		g.line("g.unwindTo(" + itoaCodegen(entry) + ")")
	case *ast.AssignStmt:
		g.emitAssign(st, env, cur)
	case *ast.DeclStmt:
		g.emitDecl(st, env, cur)
	case *ast.ExprStmt:
		g.emitExprStmt(st, env, cur)
	case *ast.ReturnStmt:
		g.emitReturn(st, env, cur)
	case *ast.IncDecStmt:
		g.line(render(rewriteExpr(st.X, env)) + st.Tok.String())
	case *ast.IfStmt:
		g.emitIf(st, env, cur)
	case *ast.ForStmt:
		g.emitFor(st, env, cur)
	case *ast.RangeStmt:
		g.emitRange(st, env)
	case *ast.SwitchStmt:
		g.emitSwitch(st, env, cur)
	case *ast.BranchStmt:
		g.emitBranch(st)
	default:
		g.fail("codegen: unsupported statement kind %T inside a resumable lambda body", s)
	}
}

func (g *bodyGen) emitAssign(s *ast.AssignStmt, env *scopeEnv, cur *int) {
	rhs := make([]string, len(s.Rhs))
	for i, e := range s.Rhs {
		rhs[i] = render(rewriteExpr(e, env))
	}
	if s.Tok.String() != ":=" {
		lhs := make([]string, len(s.Lhs))
		for i, e := range s.Lhs {
			lhs[i] = render(rewriteExpr(e, env))
		}
		g.line(joinComma(lhs) + " " + s.Tok.String() + " " + joinComma(rhs))
		return
	}
	ys := g.yieldsBy[s]
	lhsOut := make([]string, len(s.Lhs))
	yi := 0
	for i, lx := range s.Lhs {
		ident, ok := lx.(*ast.Ident)
		if !ok || ident.Name == "_" {
			lhsOut[i] = "_"
			continue
		}
		if yi >= len(ys) {
			g.fail("codegen: no yield recorded for declared name %q", ident.Name)
			return
		}
		y := ys[yi]
		yi++
		loc := g.lam.LocalAt(y.ID)
		if loc == nil {
			g.fail("codegen: no local recorded for yield id %d", y.ID)
			return
		}
		fname := "g." + fieldName(loc.QualifiedName)
		lhsOut[i] = fname
		env.bind(ident.Name, binding{fieldExpr: fname})
	}
	g.line(joinComma(lhsOut) + " = " + joinComma(rhs))
	for _, y := range ys {
		g.line("g.state = " + itoaCodegen(y.ID))
		*cur = y.ID
	}
}

func (g *bodyGen) emitDecl(s *ast.DeclStmt, env *scopeEnv, cur *int) {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok {
		g.fail("codegen: unsupported declaration kind inside a resumable lambda body")
		return
	}
	ys := g.yieldsBy[s]
	yi := 0
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			if yi >= len(ys) {
				g.fail("codegen: no yield recorded for declared name %q", name.Name)
				return
			}
			y := ys[yi]
			yi++
			loc := g.lam.LocalAt(y.ID)
			fname := "g." + fieldName(loc.QualifiedName)
			if i < len(vs.Values) {
				g.line(fname + " = " + render(rewriteExpr(vs.Values[i], env)))
			} else {
				g.line(fname + " = " + g.zeroExpr(loc.TypeText))
			}
			env.bind(name.Name, binding{fieldExpr: fname})
			g.line("g.state = " + itoaCodegen(y.ID))
			*cur = y.ID
		}
	}
}

func (g *bodyGen) emitExprStmt(s *ast.ExprStmt, env *scopeEnv, cur *int) {
	ys := g.yieldsBy[s]
	if len(ys) == 0 {
		g.line(render(rewriteExpr(s.X, env)))
		return
	}
	switch ys[0].Kind {
	case model.YieldValue:
		y := ys[0]
		g.line("g.state = " + itoaCodegen(y.ID))
		*cur = y.ID
		g.line("return " + render(rewriteExpr(y.ValueExpr, env)) + ", true")
		g.label(stateLabel(y.ID))
	case model.Suspend:
		y := ys[0]
		g.line("g.state = " + itoaCodegen(y.ID))
		*cur = y.ID
		g.line("return " + g.zeroExpr(g.retType) + ", true")
		g.label(stateLabel(y.ID))
	case model.YieldFromStart, model.YieldFromResume:
		g.emitYieldFrom(ys, env, cur)
	default:
		g.fail("codegen: unexpected yield kind %v on expression statement", ys[0].Kind)
	}
}

// emitYieldFrom lowers "yield from G" into a pull loop: each resumption
// calls G.Next() again and forwards its value until G is exhausted
// (spec §4.4). The resume label sits directly on the pull step so a
// dispatch into it re-issues exactly that call.
func (g *bodyGen) emitYieldFrom(ys []*model.Yield, env *scopeEnv, cur *int) {
	var start, resume *model.Yield
	for _, y := range ys {
		switch y.Kind {
		case model.YieldFromStart:
			start = y
		case model.YieldFromResume:
			resume = y
		}
	}
	if resume == nil {
		g.fail("codegen: yield-from missing its resume yield")
		return
	}

	var genRef string
	if start != nil {
		loc := g.lam.LocalAt(start.ID)
		genField := "g." + fieldName(loc.QualifiedName)
		g.line(genField + " = " + render(rewriteExpr(start.ValueExpr, env)))
		g.line("g.state = " + itoaCodegen(start.ID))
		*cur = start.ID
		genRef = genField
	} else {
		genRef = render(rewriteExpr(resume.ValueExpr, env))
	}

	valField := g.newTempField(g.retType)
	okField := g.newTempField("bool")
	afterLabel := g.newLabel()

	g.valFieldByYield[resume.ID] = valField

	g.label(stateLabel(resume.ID))
	g.line(valField + ", " + okField + " = " + genRef + ".Next()")
	g.line("if !" + okField + " { goto " + afterLabel + " }")
	g.line("g.state = " + itoaCodegen(resume.ID))
	*cur = resume.ID
	g.line("return " + valField + ", true")
	g.label(afterLabel)
}

// emitReturn lowers a plain "return E" into an unconditional unwind-then-
// return, and a "return from G" tail delegation into the same pull-loop
// shape emitYieldFrom uses: when G materializes a temporary, the
// synthesized local caches it on first entry (start != nil) so every
// later dispatch into this return's resume label pulls the same
// instance instead of reconstructing (and restarting) it.
func (g *bodyGen) emitReturn(s *ast.ReturnStmt, env *scopeEnv, cur *int) {
	ys := g.yieldsBy[s]
	var start, ret *model.Yield
	for _, y := range ys {
		switch y.Kind {
		case model.YieldFromStart:
			start = y
		case model.ReturnFromYield:
			ret = y
		}
	}
	if ret != nil {
		var genRef string
		if start != nil {
			loc := g.lam.LocalAt(start.ID)
			genField := "g." + fieldName(loc.QualifiedName)
			g.line(genField + " = " + render(rewriteExpr(start.ValueExpr, env)))
			g.line("g.state = " + itoaCodegen(start.ID))
			*cur = start.ID
			genRef = genField
		} else {
			genRef = render(rewriteExpr(ret.ValueExpr, env))
		}

		valField := g.newTempField(g.retType)
		okField := g.newTempField("bool")
		g.valFieldByYield[ret.ID] = valField

		g.label(stateLabel(ret.ID))
		g.line(valField + ", " + okField + " = " + genRef + ".Next()")
		g.line("if !" + okField + " {")
		g.line("  g.unwindTo(0)")
		g.line("  g.state = -1")
		g.line("  return " + g.zeroExpr(g.retType) + ", false")
		g.line("}")
		g.line("g.state = " + itoaCodegen(ret.ID))
		*cur = ret.ID
		g.line("return " + valField + ", true")
		return
	}
	g.line("g.unwindTo(0)")
	g.line("g.state = -1")
	switch len(s.Results) {
	case 0:
		g.line("return " + g.zeroExpr(g.retType) + ", false")
	case 1:
		g.line("return " + render(rewriteExpr(s.Results[0], env)) + ", false")
	default:
		g.fail("codegen: multi-value return inside a resumable lambda body is not supported")
	}
}

// emitIf flattens an if/else into labelled basic blocks, mirroring
// analyzer/control.go's walkIf cursor threading exactly: the then and
// else bodies each get their own independent copy of the cond-scope
// cursor, neither leaking back to the caller's cur, and a single
// unwindTo call at the merge point tears down whatever the taken path
// (cond-scope init, then-scope, or else-scope) left live — the
// prior-yield chain walks back through as many nested levels as needed
// in one call.
func (g *bodyGen) emitIf(s *ast.IfStmt, env *scopeEnv, cur *int) {
	entryCur := *cur
	condEnv := newScopeEnv(env)
	condCur := entryCur
	if s.Init != nil {
		g.emitStmt(s.Init, condEnv, &condCur)
	}
	thenLabel := g.newLabel()
	elseLabel := g.newLabel()
	afterLabel := g.newLabel()

	g.line("if " + render(rewriteExpr(s.Cond, condEnv)) + " { goto " + thenLabel + " }")
	if s.Else != nil {
		g.line("goto " + elseLabel)
	} else {
		g.line("goto " + afterLabel)
	}

	g.label(thenLabel)
	thenCur := condCur
	g.emitStmts(s.Body.List, newScopeEnv(condEnv), &thenCur)
	g.line("goto " + afterLabel)

	if s.Else != nil {
		g.label(elseLabel)
		elseCur := condCur
		switch e := s.Else.(type) {
		case *ast.BlockStmt:
			g.emitStmts(e.List, newScopeEnv(condEnv), &elseCur)
		case *ast.IfStmt:
			g.emitIf(e, condEnv, &elseCur)
		}
		g.line("goto " + afterLabel)
	}
	g.label(afterLabel)
	g.line("g.unwindTo(" + itoaCodegen(entryCur) + ")")
}

// emitFor mirrors walkFor's header/body cursor split: the loop's post
// clause continues advancing the header cursor after the body runs, but
// the body's own locals never leak into it, and loop exit unwinds back
// to the cursor held before the statement so a body-declared
// Close()-backed local is torn down whichever way the loop ends.
func (g *bodyGen) emitFor(s *ast.ForStmt, env *scopeEnv, cur *int) {
	outer := newScopeEnv(env)
	entryCur := *cur
	headerCur := entryCur
	if s.Init != nil {
		g.emitStmt(s.Init, outer, &headerCur)
	}

	condLabel := g.newLabel()
	endLabel := g.newLabel()
	postLabel := condLabel
	if s.Post != nil {
		postLabel = g.newLabel()
	}

	g.breakLbl = append(g.breakLbl, endLabel)
	g.contLbl = append(g.contLbl, postLabel)

	g.label(condLabel)
	if s.Cond != nil {
		g.line("if !(" + render(rewriteExpr(s.Cond, outer)) + ") { goto " + endLabel + " }")
	}
	bodyCur := headerCur
	g.emitStmts(s.Body.List, newScopeEnv(outer), &bodyCur)
	if s.Post != nil {
		g.label(postLabel)
		g.emitStmt(s.Post, outer, &headerCur)
	}
	g.line("goto " + condLabel)
	g.label(endLabel)
	g.line("g.unwindTo(" + itoaCodegen(entryCur) + ")")

	g.breakLbl = g.breakLbl[:len(g.breakLbl)-1]
	g.contLbl = g.contLbl[:len(g.contLbl)-1]
}

// emitRange renders a yield-free range loop (analyzer.containsYieldCall
// already rejected any other kind) as a native Go range statement, with
// only the outer environment's capture/local references substituted —
// its own key/value/body locals stay ordinary Go automatic storage,
// since nothing inside ever needs to be addressed from the dispatch
// switch.
func (g *bodyGen) emitRange(s *ast.RangeStmt, env *scopeEnv) {
	g.line(nativeRender(s, env))
}

func (g *bodyGen) emitSwitch(s *ast.SwitchStmt, env *scopeEnv, cur *int) {
	hdrEnv := newScopeEnv(env)
	entryCur := *cur
	hdrCur := entryCur
	if s.Init != nil {
		g.emitStmt(s.Init, hdrEnv, &hdrCur)
	}

	tagField := ""
	if s.Tag != nil {
		tagField = g.newTempField("any")
		g.line(tagField + " = " + render(rewriteExpr(s.Tag, hdrEnv)))
	}

	var clauses []*ast.CaseClause
	for _, stmt := range s.Body.List {
		if cc, ok := stmt.(*ast.CaseClause); ok {
			clauses = append(clauses, cc)
		}
	}
	labels := make([]string, len(clauses))
	var defaultLabel string
	for i, cc := range clauses {
		labels[i] = g.newLabel()
		if cc.List == nil {
			defaultLabel = labels[i]
		}
	}

	endLabel := g.newLabel()
	g.breakLbl = append(g.breakLbl, endLabel)

	for i, cc := range clauses {
		if cc.List == nil {
			continue
		}
		var conds []string
		for _, ce := range cc.List {
			rendered := render(rewriteExpr(ce, hdrEnv))
			if tagField != "" {
				conds = append(conds, tagField+" == "+rendered)
			} else {
				conds = append(conds, rendered)
			}
		}
		g.line("if " + joinOr(conds) + " { goto " + labels[i] + " }")
	}
	if defaultLabel != "" {
		g.line("goto " + defaultLabel)
	} else {
		g.line("goto " + endLabel)
	}

	for i, cc := range clauses {
		g.label(labels[i])
		caseEnv := newScopeEnv(hdrEnv)
		caseCur := hdrCur
		g.emitStmts(cc.Body, caseEnv, &caseCur)
		g.line("goto " + endLabel)
	}
	g.label(endLabel)
	g.line("g.unwindTo(" + itoaCodegen(entryCur) + ")")

	g.breakLbl = g.breakLbl[:len(g.breakLbl)-1]
}

func (g *bodyGen) emitBranch(s *ast.BranchStmt) {
	switch s.Tok.String() {
	case "break":
		if len(g.breakLbl) == 0 {
			g.fail("codegen: break outside a loop or switch")
			return
		}
		g.line("goto " + g.breakLbl[len(g.breakLbl)-1])
	case "continue":
		if len(g.contLbl) == 0 {
			g.fail("codegen: continue outside a loop")
			return
		}
		g.line("goto " + g.contLbl[len(g.contLbl)-1])
	default:
		g.fail("codegen: unsupported branch %q inside a resumable lambda body", s.Tok.String())
	}
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}

func joinOr(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += " || "
		}
		out += it
	}
	return out
}
