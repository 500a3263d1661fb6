package codegen

import "go/ast"

// nativeRender renders a statement as ordinary nested Go source,
// substituting only references to names bound in env (outer captures,
// parameters and locals) — anything the subtree declares for itself
// shadows those names for its own extent. Used for subtrees codegen
// never flattens, namely yield-free range bodies (bodyGen.emitRange):
// since nothing inside ever needs a resume label, a goto never targets
// it, so ordinary Go declarations and nested blocks are safe here in a
// way they are not in the flattened Next() body.
func nativeRender(s ast.Stmt, env *scopeEnv) string {
	switch st := s.(type) {
	case *ast.BlockStmt:
		child := newScopeEnv(env)
		out := "{\n"
		for _, inner := range st.List {
			out += nativeRender(inner, child) + "\n"
		}
		out += "}"
		return out
	case *ast.AssignStmt:
		rhs := make([]string, len(st.Rhs))
		for i, e := range st.Rhs {
			rhs[i] = render(rewriteExpr(e, env))
		}
		if st.Tok.String() == ":=" {
			for _, lx := range st.Lhs {
				if id, ok := lx.(*ast.Ident); ok && id.Name != "_" {
					env.bind(id.Name, binding{fieldExpr: id.Name})
				}
			}
		}
		lhs := make([]string, len(st.Lhs))
		for i, e := range st.Lhs {
			if id, ok := e.(*ast.Ident); ok {
				if b, ok := env.lookup(id.Name); ok && !b.deref {
					lhs[i] = b.fieldExpr
					continue
				}
			}
			lhs[i] = render(rewriteExpr(e, env))
		}
		return joinComma(lhs) + " " + st.Tok.String() + " " + joinComma(rhs)
	case *ast.ExprStmt:
		return render(rewriteExpr(st.X, env))
	case *ast.IncDecStmt:
		return render(rewriteExpr(st.X, env)) + st.Tok.String()
	case *ast.IfStmt:
		condEnv := newScopeEnv(env)
		out := ""
		if st.Init != nil {
			out += nativeRender(st.Init, condEnv) + "\n"
		}
		out += "if " + render(rewriteExpr(st.Cond, condEnv)) + " " + nativeRender(st.Body, condEnv)
		if st.Else != nil {
			out += " else " + nativeRender(st.Else, condEnv)
		}
		return out
	case *ast.ForStmt:
		forEnv := newScopeEnv(env)
		header := ""
		if st.Init != nil {
			header += nativeRender(st.Init, forEnv)
		}
		header += ";"
		if st.Cond != nil {
			header += render(rewriteExpr(st.Cond, forEnv))
		}
		header += ";"
		if st.Post != nil {
			header += nativeRender(st.Post, forEnv)
		}
		return "for " + header + " " + nativeRender(st.Body, forEnv)
	case *ast.RangeStmt:
		rangeEnv := newScopeEnv(env)
		key, val := "_", ""
		if id, ok := st.Key.(*ast.Ident); ok {
			key = id.Name
			rangeEnv.bind(key, binding{fieldExpr: key})
		}
		if id, ok := st.Value.(*ast.Ident); ok {
			val = id.Name
			rangeEnv.bind(val, binding{fieldExpr: val})
		}
		header := "for " + key
		if val != "" {
			header += ", " + val
		}
		header += " := range " + render(rewriteExpr(st.X, env))
		return header + " " + nativeRender(st.Body, rangeEnv)
	case *ast.SwitchStmt:
		swEnv := newScopeEnv(env)
		out := "switch "
		if st.Init != nil {
			out += nativeRender(st.Init, swEnv) + "; "
		}
		if st.Tag != nil {
			out += render(rewriteExpr(st.Tag, swEnv)) + " "
		}
		out += "{\n"
		for _, stmt := range st.Body.List {
			cc, ok := stmt.(*ast.CaseClause)
			if !ok {
				continue
			}
			if cc.List == nil {
				out += "default:\n"
			} else {
				exprs := make([]string, len(cc.List))
				for i, e := range cc.List {
					exprs[i] = render(rewriteExpr(e, swEnv))
				}
				out += "case " + joinComma(exprs) + ":\n"
			}
			caseEnv := newScopeEnv(swEnv)
			for _, inner := range cc.Body {
				out += nativeRender(inner, caseEnv) + "\n"
			}
		}
		out += "}"
		return out
	case *ast.BranchStmt:
		if st.Label != nil {
			return st.Tok.String() + " " + st.Label.Name
		}
		return st.Tok.String()
	case *ast.DeclStmt:
		gd, ok := st.Decl.(*ast.GenDecl)
		if !ok {
			return renderNode(st)
		}
		out := ""
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			names := make([]string, len(vs.Names))
			for i, n := range vs.Names {
				names[i] = n.Name
				if n.Name != "_" {
					env.bind(n.Name, binding{fieldExpr: n.Name})
				}
			}
			line := "var " + joinComma(names)
			if vs.Type != nil {
				line += " " + render(vs.Type)
			}
			if len(vs.Values) > 0 {
				vals := make([]string, len(vs.Values))
				for i, v := range vs.Values {
					vals[i] = render(rewriteExpr(v, env))
				}
				line += " = " + joinComma(vals)
			}
			out += line + "\n"
		}
		return out
	default:
		return renderNode(s)
	}
}
