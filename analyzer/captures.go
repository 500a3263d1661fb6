package analyzer

import (
	"go/ast"
	"go/token"

	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)


var predeclared = map[string]bool{
	"true": true, "false": true, "nil": true, "iota": true,
	"len": true, "cap": true, "append": true, "make": true, "new": true,
	"panic": true, "recover": true, "print": true, "println": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "string": true, "bool": true,
	"byte": true, "rune": true, "error": true, "any": true, "uintptr": true,
	"complex64": true, "complex128": true,
}

// inferCaptures determines a resumable lambda's ordered capture sequence.
// Go closures capture every free variable by reference implicitly; this
// is the default (model.ByReference) for any free name not named in the
// //resumable directive's capture list. Names listed as "value" or
// "init(expr)" realize spec §3's by-value and init-capture kinds, which
// Go's capture-list-free closure syntax otherwise cannot express — a
// deliberate, documented Go-native substitute for C++'s explicit
// capture-list syntax (see DESIGN.md).
//
// file is the enclosing source file, consulted (go/ast only, no
// go/types — the same deliberately narrow inference decls.go documents
// for ordinary locals) to recover a real static type for each capture
// instead of boxing it as "any": a by-reference capture's field is a Go
// pointer, and a pointer-to-concrete-type is never assignable to a
// pointer-to-interface field, so a wrong or missing type here is a
// compile error in the generated struct literal, not a loss of
// precision.
func inferCaptures(lit *ast.FuncLit, spec keyword.DirectiveSpec, imp *keyword.Importer, file *ast.File) []model.Capture {
	bound := collectBoundNames(lit)
	for _, f := range lit.Type.Params.List {
		for _, n := range f.Names {
			bound[n.Name] = true
		}
	}
	// Package-level functions are not variables: they are referenced
	// directly, never captured.
	for _, d := range file.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Recv == nil {
			bound[fd.Name.Name] = true
		}
	}

	byName := map[string]keyword.CaptureMode{}
	for _, cm := range spec.Captures {
		byName[cm.Name] = cm
	}

	seen := map[string]bool{}
	var order []string
	hasThis := false

	ast.Inspect(lit.Body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.SelectorExpr:
			if imp.ClassifyIdent(node) == keyword.KindThis {
				hasThis = true
				return false
			}
			// Do not descend into the selector's field name.
			ast.Inspect(node.X, func(inner ast.Node) bool {
				recordFreeIdent(inner, bound, seen, &order)
				return true
			})
			return false
		case *ast.Ident:
			recordFreeIdent(node, bound, seen, &order)
		}
		return true
	})

	var caps []model.Capture
	if hasThis {
		caps = append(caps, model.Capture{Kind: model.ThisCapture, TypeText: resolveThisType(file, lit)})
	}
	for _, name := range order {
		cm, explicit := byName[name]
		typeText := resolveFreeType(file, lit, name)
		switch {
		case explicit && cm.InitExpr != "":
			caps = append(caps, model.Capture{Kind: model.InitCapture, Name: name, TypeText: typeText, InitText: cm.InitExpr})
		case explicit && cm.ByValue:
			caps = append(caps, model.Capture{Kind: model.ByValue, Name: name, TypeText: typeText})
		default:
			caps = append(caps, model.Capture{Kind: model.ByReference, Name: name, TypeText: typeText})
		}
	}
	return caps
}

// enclosingFunc finds the innermost *ast.FuncDecl or *ast.FuncLit in file
// whose range contains lit but is not lit itself — a smallest-enclosing-
// range scan, since go/ast carries no parent pointers. Returns the
// function's parameter list and, for a method, its receiver.
func enclosingFunc(file *ast.File, lit *ast.FuncLit) (params *ast.FieldList, recv *ast.FieldList) {
	var bestParams, bestRecv *ast.FieldList
	bestSize := -1
	consider := func(fl *ast.FuncType, fr *ast.FieldList, from, to ast.Node) {
		if from.Pos() == token.NoPos || to.End() == token.NoPos {
			return
		}
		if !(from.Pos() <= lit.Pos() && lit.End() <= to.End()) {
			return
		}
		if from == ast.Node(lit) {
			return
		}
		size := int(to.End() - from.Pos())
		if bestSize == -1 || size < bestSize {
			bestSize = size
			bestParams = fl.Params
			bestRecv = fr
		}
	}
	ast.Inspect(file, func(n ast.Node) bool {
		switch d := n.(type) {
		case *ast.FuncDecl:
			consider(d.Type, d.Recv, d, d)
		case *ast.FuncLit:
			if d != lit {
				consider(d.Type, nil, d, d)
			}
		}
		return true
	})
	return bestParams, bestRecv
}

// paramTypeText looks up name among fl's parameters (and, if recv is
// non-nil, the receiver), returning its declared type text.
func paramTypeText(fl, recv *ast.FieldList, name string) (string, bool) {
	for _, group := range []*ast.FieldList{recv, fl} {
		if group == nil {
			continue
		}
		for _, f := range group.List {
			for _, n := range f.Names {
				if n.Name == name {
					return exprText(f.Type), true
				}
			}
		}
	}
	return "", false
}

// localTypeText looks for a var/:=-declared local named name anywhere in
// the function body enclosing lit, preferring an explicit type (var x T)
// and falling back to a syntactically inferable initializer shape
// (composite literal, &composite literal, new(T), make(T, ...)).
func localTypeText(body ast.Node, name string) (string, bool) {
	found := ""
	ok := false
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.ValueSpec:
			for i, id := range s.Names {
				if id.Name != name {
					continue
				}
				if s.Type != nil {
					found, ok = exprText(s.Type), true
					return false
				}
				if i < len(s.Values) {
					if t, inferred := inferredLiteralType(s.Values[i]); inferred {
						found, ok = t, true
						return false
					}
				}
			}
		case *ast.AssignStmt:
			if s.Tok.String() != ":=" {
				break
			}
			for i, lhs := range s.Lhs {
				id, isIdent := lhs.(*ast.Ident)
				if !isIdent || id.Name != name || i >= len(s.Rhs) {
					continue
				}
				if t, inferred := inferredLiteralType(s.Rhs[i]); inferred {
					found, ok = t, true
					return false
				}
			}
		}
		return true
	})
	return found, ok
}

// inferredLiteralType recovers a concrete type text from the shape of an
// initializer expression, without go/types: a composite literal, a
// pointer to one, or a new(T)/make(T, ...) call all name their type
// directly in the syntax.
func inferredLiteralType(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.CompositeLit:
		if v.Type != nil {
			return exprText(v.Type), true
		}
	case *ast.UnaryExpr:
		if v.Op == token.AND {
			if t, ok := inferredLiteralType(v.X); ok {
				return "*" + t, true
			}
		}
	case *ast.CallExpr:
		if id, ok := v.Fun.(*ast.Ident); ok && len(v.Args) > 0 {
			switch id.Name {
			case "new":
				return "*" + exprText(v.Args[0]), true
			case "make":
				return exprText(v.Args[0]), true
			}
		}
	}
	return "", false
}

// packageLevelTypeText looks for a package-scope var/const named name.
func packageLevelTypeText(file *ast.File, name string) (string, bool) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || (gd.Tok != token.VAR && gd.Tok != token.CONST) {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, id := range vs.Names {
				if id.Name != name {
					continue
				}
				if vs.Type != nil {
					return exprText(vs.Type), true
				}
				if i < len(vs.Values) {
					if t, inferred := inferredLiteralType(vs.Values[i]); inferred {
						return t, true
					}
				}
			}
		}
	}
	return "", false
}

// resolveFreeType best-effort resolves a free name's static type by
// checking, in order, the enclosing function's parameters/receiver, its
// locals, and package-level declarations — falling back to "any" when
// none resolves, same as decls.go's own per-lambda local inference.
func resolveFreeType(file *ast.File, lit *ast.FuncLit, name string) string {
	params, recv := enclosingFunc(file, lit)
	if t, ok := paramTypeText(params, recv, name); ok {
		return t
	}
	if fn := enclosingFuncBody(file, lit); fn != nil {
		if t, ok := localTypeText(fn, name); ok {
			return t
		}
	}
	if t, ok := packageLevelTypeText(file, name); ok {
		return t
	}
	return "any"
}

// enclosingFuncBody returns the body of the same enclosing function
// enclosingFunc locates, for scanning local declarations.
func enclosingFuncBody(file *ast.File, lit *ast.FuncLit) ast.Node {
	var best ast.Node
	bestSize := -1
	ast.Inspect(file, func(n ast.Node) bool {
		var body ast.Node
		switch d := n.(type) {
		case *ast.FuncDecl:
			if d.Body == nil {
				return true
			}
			body = d.Body
		case *ast.FuncLit:
			if d == lit {
				return true
			}
			body = d.Body
		default:
			return true
		}
		if !(body.Pos() <= lit.Pos() && lit.End() <= body.End()) {
			return true
		}
		size := int(body.End() - body.Pos())
		if bestSize == -1 || size < bestSize {
			bestSize = size
			best = body
		}
		return true
	})
	return best
}

// resolveThisType recovers the receiver type of the method enclosing lit,
// for the synthesized resume.This capture field. Falls back to "any" for
// a plain function (no receiver) or when it cannot be resolved.
func resolveThisType(file *ast.File, lit *ast.FuncLit) string {
	_, recv := enclosingFunc(file, lit)
	if recv == nil || len(recv.List) == 0 {
		return "any"
	}
	return exprText(recv.List[0].Type)
}

func recordFreeIdent(n ast.Node, bound map[string]bool, seen map[string]bool, order *[]string) {
	ident, ok := n.(*ast.Ident)
	if !ok {
		return
	}
	name := ident.Name
	if name == "_" || name == "resume" || predeclared[name] || bound[name] {
		return
	}
	if !seen[name] {
		seen[name] = true
		*order = append(*order, name)
	}
}

// collectBoundNames walks a lambda body collecting every name introduced
// by a local declaration anywhere in the tree (including inside nested
// blocks). This is deliberately coarse with respect to shadowing: a name
// reused in a disjoint nested scope is still treated as bound everywhere,
// which only ever causes a capture to be dropped in favor of treating the
// name as a known local — never the reverse — so it cannot manufacture a
// spurious capture.
func collectBoundNames(lit *ast.FuncLit) map[string]bool {
	bound := map[string]bool{}
	ast.Inspect(lit.Body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.AssignStmt:
			if s.Tok.String() == ":=" {
				for _, lhs := range s.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						bound[id.Name] = true
					}
				}
			}
		case *ast.ValueSpec:
			for _, n := range s.Names {
				bound[n.Name] = true
			}
		case *ast.RangeStmt:
			if id, ok := s.Key.(*ast.Ident); ok {
				bound[id.Name] = true
			}
			if id, ok := s.Value.(*ast.Ident); ok {
				bound[id.Name] = true
			}
		case *ast.FuncLit:
			if s != lit {
				for _, f := range s.Type.Params.List {
					for _, n := range f.Names {
						bound[n.Name] = true
					}
				}
			}
		}
		return true
	})
	return bound
}
