package diagnostics_test

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/analyzer"
	"github.com/coroutil/resumablegen/diagnostics"
	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)

const src = `package p

var countdown = func(n int) int {
	return n
}
`

func TestDumpSyntaxTreeWritesNodeKinds(t *testing.T) {
	var buf bytes.Buffer
	err := diagnostics.DumpSyntaxTree(&buf, []byte(src))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "source_file")
	assert.Contains(t, buf.String(), "func_literal")
}

func TestDumpLambdaModelWritesYAML(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	var lit *ast.FuncLit
	ast.Inspect(file, func(n ast.Node) bool {
		if fl, ok := n.(*ast.FuncLit); ok {
			lit = fl
			return false
		}
		return true
	})
	require.NotNil(t, lit)

	imp := keyword.NewImporter(file)
	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lit, fset, file, imp, ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, diagnostics.DumpLambdaModel(&buf, lam))
	assert.Contains(t, buf.String(), "id:")
	assert.Contains(t, buf.String(), "signature:")
}
