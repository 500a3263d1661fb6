package rewriter_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/rewriter"
)

const src = `package p

var countdown = func(n int) int {
	return n
}
`

func findFuncLit(t *testing.T, file *ast.File) *ast.FuncLit {
	t.Helper()
	var lit *ast.FuncLit
	ast.Inspect(file, func(n ast.Node) bool {
		if fl, ok := n.(*ast.FuncLit); ok {
			lit = fl
			return false
		}
		return true
	})
	require.NotNil(t, lit)
	return lit
}

func TestReplaceFuncLitSpan(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	lit := findFuncLit(t, file)
	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.Replace(lit.Pos(), lit.End(), "newL0(L0Captures{n: n})")

	out, err := buf.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "var countdown = newL0(L0Captures{n: n})")
	assert.NotContains(t, string(out), "func(n int) int")
}

func TestInsertBeforeAndAfterCompose(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.BeginStage()
	buf.InsertAfter(file.Name.End(), "\n\nimport \"github.com/coroutil/resumablegen/resume\"\n")
	buf.BeginStage()
	lit := findFuncLit(t, file)
	buf.Replace(lit.Pos(), lit.End(), "newL0(L0Captures{n: n})")

	out, err := buf.Bytes()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "import \"github.com/coroutil/resumablegen/resume\"")
	assert.Contains(t, s, "newL0(L0Captures{n: n})")
	assert.Less(t, strings.Index(s, "import"), strings.Index(s, "newL0"))
}

func TestOverlappingSameStageEditsFail(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	lit := findFuncLit(t, file)
	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.Replace(lit.Pos(), lit.End(), "first")
	buf.Replace(lit.Pos(), lit.End(), "second")

	_, err = buf.Bytes()
	assert.Error(t, err)
}

func TestLineDirectivesEmittedAfterReplace(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	lit := findFuncLit(t, file)
	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.SetLineDirectives(true)
	buf.Replace(lit.Pos(), lit.End(), "newL0(L0Captures{n: n})")

	out, err := buf.Bytes()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "//line src.go:5")
}

func TestLineDirectivesOffByDefault(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	lit := findFuncLit(t, file)
	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.Replace(lit.Pos(), lit.End(), "newL0(L0Captures{n: n})")

	out, err := buf.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "//line")
}

func TestUnresolvableSpanFails(t *testing.T) {
	fset := token.NewFileSet()
	buf := rewriter.NewBuffer(fset, []byte(src))
	buf.Replace(token.NoPos, token.NoPos, "x")

	_, err := buf.Bytes()
	assert.Error(t, err)
}
