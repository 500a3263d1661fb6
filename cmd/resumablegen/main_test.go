package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestRunTranslatesResumableLambda(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countdown.go")
	require.NoError(t, os.WriteFile(path, []byte(countdownSrc), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "resumablegen:generated")
	assert.Contains(t, out, "NewL0(L0Captures{n: n}).Build()")
	assert.Contains(t, out, "type L0 struct")
	assert.Contains(t, out, "func (g *L0) Next() (int, bool)")
}

func TestRunIsNoOpOnAlreadyTranslatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countdown.go")
	require.NoError(t, os.WriteFile(path, []byte(countdownSrc), 0o644))

	var first bytes.Buffer
	var stderr bytes.Buffer
	code := run([]string{path}, &first, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	translatedPath := filepath.Join(dir, "countdown_translated.go")
	require.NoError(t, os.WriteFile(translatedPath, first.Bytes(), 0o644))

	var second bytes.Buffer
	stderr.Reset()
	code = run([]string{translatedPath}, &second, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Equal(t, first.String(), second.String())
}

func TestRunRejectsSandboxEscape(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "project")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	outside := filepath.Join(dir, "outside.go")
	require.NoError(t, os.WriteFile(outside, []byte(countdownSrc), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-p", sub, outside}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.NotEmpty(t, stderr.String())
}

func TestRunEmitsLineDirectivesWithFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countdown.go")
	require.NoError(t, os.WriteFile(path, []byte(countdownSrc), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-l", path}, &stdout, &stderr)

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "//line")
}

func TestRunMisuseMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
}
