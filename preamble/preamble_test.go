package preamble_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/preamble"
	"github.com/coroutil/resumablegen/rewriter"
)

const plainSrc = `package p

var countdown = func(n int) int {
	return n
}
`

const translatedSrc = `// Code generated by resumablegen. DO NOT EDIT.
// resumablegen:generated
package p

import "github.com/coroutil/resumablegen/resume"

var countdown = newL0(L0Captures{n: 3})
`

func TestInjectAddsMarkerAndImportOnce(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", plainSrc, parser.ParseComments)
	require.NoError(t, err)

	assert.False(t, preamble.AlreadyTranslated(file))
	assert.False(t, preamble.HasRuntimeImport(file))

	buf := rewriter.NewBuffer(fset, []byte(plainSrc))
	preamble.Inject(buf, fset, file)

	out, err := buf.Bytes()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "resumablegen:generated")
	assert.Contains(t, s, `import "github.com/coroutil/resumablegen/resume"`)
}

func TestInjectIsNoOpOnAlreadyTranslatedFile(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", translatedSrc, parser.ParseComments)
	require.NoError(t, err)

	assert.True(t, preamble.AlreadyTranslated(file))
	assert.True(t, preamble.HasRuntimeImport(file))

	buf := rewriter.NewBuffer(fset, []byte(translatedSrc))
	preamble.Inject(buf, fset, file)

	out, err := buf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, translatedSrc, string(out))
}

func TestContentHashIsStableAndSensitiveToInput(t *testing.T) {
	h1, err := preamble.ContentHash([]byte(plainSrc))
	require.NoError(t, err)
	h2, err := preamble.ContentHash([]byte(plainSrc))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := preamble.ContentHash([]byte(translatedSrc))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
