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

const countdownSrc = `package p

import "github.com/coroutil/resumablegen/resume"

//resumable
var countdown = func(n int) int {
	for n > 1 {
		n--
		resume.Yield(n)
	}
	return n
}
`

func TestAnalyzeCountdownYieldDensity(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", countdownSrc, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lits[0], fset, file, imp, ctx)
	require.NoError(t, err)

	// Yield density: ids are contiguous 1..N.
	ids := map[int]bool{}
	for _, y := range lam.Yields {
		ids[y.ID] = true
	}
	for i := 1; i <= len(lam.Yields); i++ {
		require.True(t, ids[i], "missing yield id %d", i)
	}

	// Exactly one yield of kind YieldValue (the resume.Yield(n) call).
	var valueYields int
	for _, y := range lam.Yields {
		if y.Kind == model.YieldValue {
			valueYields++
		}
	}
	require.Equal(t, 1, valueYields)
}

func TestAnalyzeScopeTreeForLoop(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", countdownSrc, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lits[0], fset, file, imp, ctx)
	require.NoError(t, err)

	require.Equal(t, model.ScopeBody, lam.ScopeRoot.Kind)
	require.Len(t, lam.ScopeRoot.Children, 1)
	require.Equal(t, model.ScopeForInit, lam.ScopeRoot.Children[0].Kind)
	require.Len(t, lam.ScopeRoot.Children[0].Children, 1)
	require.Equal(t, model.ScopeForBody, lam.ScopeRoot.Children[0].Children[0].Kind)
}
