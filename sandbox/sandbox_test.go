package sandbox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/sandbox"
)

func TestUnrestrictedRootAcceptsAnyCleanPath(t *testing.T) {
	root, err := sandbox.NewRoot("")
	require.NoError(t, err)
	assert.True(t, root.Unrestricted())
	assert.NoError(t, root.Validate("/tmp/whatever/file.go"))
}

func TestValidateRejectsDotDot(t *testing.T) {
	root, err := sandbox.NewRoot("")
	require.NoError(t, err)
	assert.ErrorIs(t, root.Validate("../escape/file.go"), sandbox.ErrSandboxViolation)
}

func TestValidateRejectsWhitespaceAndMetacharacters(t *testing.T) {
	root, err := sandbox.NewRoot("")
	require.NoError(t, err)
	assert.ErrorIs(t, root.Validate("file name.go"), sandbox.ErrSandboxViolation)
	assert.ErrorIs(t, root.Validate("file;rm.go"), sandbox.ErrSandboxViolation)
}

func TestValidateRejectsPathOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "allowed")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := sandbox.NewRoot(sub)
	require.NoError(t, err)

	outside := filepath.Join(dir, "outside.go")
	require.NoError(t, os.WriteFile(outside, []byte("package p\n"), 0o644))

	assert.ErrorIs(t, root.Validate(outside), sandbox.ErrSandboxViolation)

	inside := filepath.Join(sub, "inside.go")
	require.NoError(t, os.WriteFile(inside, []byte("package p\n"), 0o644))
	assert.NoError(t, root.Validate(inside))
}

func TestDetectModuleRoot(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/foo\n\ngo 1.23\n"), 0o644))

	root, modulePath, err := sandbox.DetectModuleRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.Equal(t, "example.com/foo", modulePath)
}

func TestDetectModuleRootFailsAboveAnyModule(t *testing.T) {
	_, _, err := sandbox.DetectModuleRoot(string(filepath.Separator))
	assert.Error(t, err)
}
