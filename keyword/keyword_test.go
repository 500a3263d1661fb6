package keyword_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/keyword"
)

const src = `package p

import "github.com/coroutil/resumablegen/resume"

//resumable
var countdown = func(n int) int {
	for n > 1 {
		n--
		resume.Yield(n)
	}
	return n
}

var plain = func() int { return 1 }
`

func TestFindResumableLambdas(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)
}

func TestClassifyCallAndImporter(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	require.True(t, imp.ResolvesToRuntime("resume"))
	require.False(t, imp.ResolvesToRuntime("other"))

	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	var yieldCalls int
	ast.Inspect(lits[0].Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if imp.ClassifyCall(call) == keyword.KindYield {
			yieldCalls++
		}
		return true
	})
	require.Equal(t, 1, yieldCalls)
}

func TestContainsSuspend(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)
	require.False(t, keyword.ContainsSuspend(lits[0].Body, imp))
}
