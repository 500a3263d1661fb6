package codegen

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"

	"github.com/coroutil/resumablegen/keyword"
)

var emptyFset = token.NewFileSet()

// render prints an expression to Go source text.
func render(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return renderNode(e)
}

// renderNode prints any AST node to Go source text, used for subtrees
// codegen passes through natively instead of flattening (spec §9's
// range-loop restriction; see bodyGen.emitRange).
func renderNode(n ast.Node) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, emptyFset, n)
	return buf.String()
}

// rewriteExpr clones e, replacing every free identifier bound in env
// (a capture, parameter or local) with the field expression the struct
// realizes it as. Nodes outside the handful of expression kinds a
// resumable lambda body realistically contains (composite-literal map
// keys, nested func literals) are passed through unmodified rather than
// cloned.
func rewriteExpr(e ast.Expr, env *scopeEnv) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Ident:
		if b, ok := env.lookup(n.Name); ok {
			return bindingExpr(b)
		}
		return n
	case *ast.BasicLit:
		return n
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{X: rewriteExpr(n.X, env), Op: n.Op, Y: rewriteExpr(n.Y, env)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: n.Op, X: rewriteExpr(n.X, env)}
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: rewriteExpr(n.X, env)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: rewriteExpr(n.X, env)}
	case *ast.CallExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = rewriteExpr(a, env)
		}
		return &ast.CallExpr{Fun: rewriteExpr(n.Fun, env), Args: args, Ellipsis: n.Ellipsis}
	case *ast.SelectorExpr:
		if imp := env.importer(); imp != nil && imp.ClassifyIdent(n) == keyword.KindThis {
			if b, ok := env.lookupThis(); ok {
				return bindingExpr(b)
			}
		}
		return &ast.SelectorExpr{X: rewriteExpr(n.X, env), Sel: n.Sel}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: rewriteExpr(n.X, env), Index: rewriteExpr(n.Index, env)}
	case *ast.SliceExpr:
		return &ast.SliceExpr{
			X: rewriteExpr(n.X, env), Low: rewriteExpr(n.Low, env),
			High: rewriteExpr(n.High, env), Max: rewriteExpr(n.Max, env), Slice3: n.Slice3,
		}
	case *ast.TypeAssertExpr:
		return &ast.TypeAssertExpr{X: rewriteExpr(n.X, env), Type: n.Type}
	case *ast.CompositeLit:
		elts := make([]ast.Expr, len(n.Elts))
		for i, elt := range n.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				if _, keyIsIdent := kv.Key.(*ast.Ident); keyIsIdent {
					elts[i] = &ast.KeyValueExpr{Key: kv.Key, Value: rewriteExpr(kv.Value, env)}
					continue
				}
				elts[i] = &ast.KeyValueExpr{Key: rewriteExpr(kv.Key, env), Value: rewriteExpr(kv.Value, env)}
				continue
			}
			elts[i] = rewriteExpr(elt, env)
		}
		return &ast.CompositeLit{Type: n.Type, Elts: elts}
	default:
		return n
	}
}

func bindingExpr(b binding) ast.Expr {
	var e ast.Expr = &ast.Ident{Name: b.fieldExpr}
	if b.deref {
		e = &ast.StarExpr{X: e}
	}
	return e
}
