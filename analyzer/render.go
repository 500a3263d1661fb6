package analyzer

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
)

// renderExpr renders an expression back to source text, used to quote
// sub-generator expressions and capture initializers into the generated
// code the way spec §4.4 requires ("the text of the sub-generator
// expression"). A fresh FileSet is sufficient: printer.Fprint only needs
// one to resolve positions, and a standalone expression carries none that
// matter once detached from its original file.
func renderExpr(e ast.Expr) string {
	if e == nil {
		return ""
	}
	var buf bytes.Buffer
	fset := token.NewFileSet()
	if err := printer.Fprint(&buf, fset, e); err != nil {
		return ""
	}
	return buf.String()
}
