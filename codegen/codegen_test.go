package codegen_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/analyzer"
	"github.com/coroutil/resumablegen/codegen"
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

func analyzeFirst(t *testing.T, src string) (*model.Lambda, *keyword.Importer) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)
	require.Len(t, lits, 1)

	ctx := model.NewContext()
	lam, err := analyzer.Analyze(lits[0], fset, file, imp, ctx)
	require.NoError(t, err)
	return lam, imp
}

func TestGenerateCountdownShape(t *testing.T) {
	lam, imp := analyzeFirst(t, countdownSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "type L0Captures struct")
	require.Contains(t, src, "n int")
	require.Contains(t, src, "type L0 struct")
	require.Contains(t, src, "func newL0(captures L0Captures) *L0")
	require.Contains(t, src, "func NewL0(captures L0Captures) resume.Initializer[*L0]")
	require.Contains(t, src, "func (g *L0) Next() (int, bool)")
	require.Contains(t, src, "func (g *L0) IsInitial() bool")
	require.Contains(t, src, "func (g *L0) IsTerminal() bool")
	require.Contains(t, src, "func (g *L0) Clone() (*L0, bool)")
	require.Contains(t, src, "func (g *L0) Close() error")
	require.Contains(t, src, "func (g *L0) unwindTo(newState int)")

	// The single yield's state id dispatches to its resume label.
	require.Contains(t, src, "case 1:\n\t\tgoto state1")
	require.Contains(t, src, "state1:")

	// Captured parameter n is referenced through the capture record, not
	// as a bare identifier, everywhere in the flattened body.
	require.Contains(t, src, "g.captures.n")
	require.False(t, strings.Contains(src, "\tn--\n"), "bare parameter reference leaked into generated body")
}

const delegateSrc = `package p

import "github.com/coroutil/resumablegen/resume"

//resumable
var outer = func(sub resume.Generator[int]) int {
	resume.YieldFrom(sub)
	return 0
}
`

func TestGenerateDelegationWiresWanted(t *testing.T) {
	lam, imp := analyzeFirst(t, delegateSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "func (g *L0) Wanted() any")
	require.Contains(t, src, "func (g *L0) WantedType() reflect.Type")
	require.Contains(t, src, ".Next()")
}

const byRefCaptureSrc = `package p

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

func TestGenerateByReferenceCaptureFieldIsConcretePointer(t *testing.T) {
	lam, imp := analyzeFirst(t, byRefCaptureSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "*Counter")
	require.NotContains(t, src, "*any")
}

func TestGenerateUnwindsOnNormalScopeExitNotOnlyOnPanic(t *testing.T) {
	lam, imp := analyzeFirst(t, countdownSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	// One g.unwindTo call lives in the panic-recovery defer and one in
	// Close; the for loop's own endLabel merge point and the lambda's normal
	// completion path must each emit their own call too, so a generator that
	// never panics still tears its live locals down when Next() runs it to
	// completion.
	require.GreaterOrEqual(t, strings.Count(src, "g.unwindTo("), 4)
}

func TestGenerateCloneCopyableByDefault(t *testing.T) {
	lam, imp := analyzeFirst(t, countdownSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "clone := *g")
	require.Contains(t, src, "return &clone, true")
}

const pointerLocalSrc = `package p

import (
	"bytes"

	"github.com/coroutil/resumablegen/resume"
)

//resumable
var step = func() int {
	var f *bytes.Buffer
	resume.Yield(1)
	_ = f
	return 0
}
`

func TestGenerateCloneNonCopyableWhenLocalIsPointer(t *testing.T) {
	lam, imp := analyzeFirst(t, pointerLocalSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "func (g *L0) Clone() (*L0, bool) {\n\treturn nil, false\n}")
}

const materializingYieldFromSrc = `package p

import "github.com/coroutil/resumablegen/resume"

func makeSub() resume.Generator[int] {
	panic("unused")
}

//resumable
var outer = func() int {
	resume.YieldFrom(makeSub())
	return 0
}
`

func TestGenerateMaterializingYieldFromCachesTypedGenerator(t *testing.T) {
	lam, imp := analyzeFirst(t, materializingYieldFromSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, " resume.Generator[int]\n")
	require.Equal(t, 1, strings.Count(src, "makeSub()"), "the sub-generator must be constructed exactly once across resumptions")
}

const materializingReturnFromSrc = `package p

import "github.com/coroutil/resumablegen/resume"

func makeSub() resume.Generator[int] {
	panic("unused")
}

//resumable
var outer = func() int {
	return resume.ReturnFrom(makeSub())
}
`

func TestGenerateMaterializingReturnFromCachesAcrossResumptions(t *testing.T) {
	lam, imp := analyzeFirst(t, materializingReturnFromSrc)

	src, err := codegen.Generate(lam, imp)
	require.NoError(t, err)

	require.Contains(t, src, "resume.Generator[int]")
	require.Equal(t, 1, strings.Count(src, "makeSub()"), "return-from must cache the generator instead of reconstructing it on every resumption")
}
