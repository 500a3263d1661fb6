package analyzer_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/analyzer"
	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)

const byRefSrc = `package p

import "github.com/coroutil/resumablegen/resume"

type Counter struct{ n int }

func run() int {
	total := &Counter{n: 1}
	//resumable
	var step = func() int {
		total.n++
		resume.Yield(total.n)
		return total.n
	}
	_ = step
	return 0
}
`

func TestAnalyzeByReferenceCaptureResolvesConcreteType(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", byRefSrc, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lits[0], fset, file, imp, ctx)
	require.NoError(t, err)

	require.Len(t, lam.Captures, 1)
	capture := lam.Captures[0]
	require.Equal(t, model.ByReference, capture.Kind)
	require.Equal(t, "total", capture.Name)
	require.Equal(t, "*Counter", capture.TypeText)
}

const byValParamSrc = `package p

import "github.com/coroutil/resumablegen/resume"

func run(limit int) int {
	//resumable
	var step = func() int {
		resume.Yield(limit)
		return limit
	}
	_ = step
	return 0
}
`

func TestAnalyzeCaptureResolvesEnclosingParamType(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", byValParamSrc, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lits[0], fset, file, imp, ctx)
	require.NoError(t, err)

	require.Len(t, lam.Captures, 1)
	require.Equal(t, "int", lam.Captures[0].TypeText)
}
