// Package sandbox validates the -p allow-list root the translator is
// confined to: every file the reachability oracle's go/packages load
// touches (and the single input path in the default, -r-less mode) must
// resolve inside it, grounded on inspector/repository/detector.go's
// marker-file walk to the nearest go.mod.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// ErrSandboxViolation is returned (wrapped with the offending path) for
// any path rejected by Root.Validate.
var ErrSandboxViolation = errors.New("sandbox violation")

// Root is an allow-list directory every validated path must resolve
// inside. The zero value (root == "") is unrestricted, matching
// spec.md's "-p omitted" default.
type Root struct {
	dir string
}

// NewRoot resolves dir to an absolute, symlink-free path. An empty dir
// yields an unrestricted Root.
func NewRoot(dir string) (Root, error) {
	if dir == "" {
		return Root{}, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("sandbox: resolving root %q: %w", dir, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Root{}, fmt.Errorf("sandbox: resolving root %q: %w", dir, err)
	}
	return Root{dir: real}, nil
}

// Unrestricted reports whether -p was never set.
func (r Root) Unrestricted() bool { return r.dir == "" }

// Validate rejects path if it contains "..", shell metacharacters,
// whitespace, or non-printable bytes, or if it resolves outside r. It is
// a no-op for an unrestricted Root other than the character-class checks,
// which always apply: every input path distrusts its own spelling
// regardless of whether -p was given.
func (r Root) Validate(path string) error {
	if err := validateSpelling(path); err != nil {
		return err
	}
	if r.Unrestricted() {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrSandboxViolation, path, err)
	}
	real := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		real = resolved
	}
	rel, err := filepath.Rel(r.dir, real)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes sandbox root %s", ErrSandboxViolation, path, r.dir)
	}
	return nil
}

func validateSpelling(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: %s: contains \"..\"", ErrSandboxViolation, path)
	}
	for _, r := range path {
		switch {
		case unicode.IsSpace(r):
			return fmt.Errorf("%w: %s: contains whitespace", ErrSandboxViolation, path)
		case !unicode.IsPrint(r):
			return fmt.Errorf("%w: %s: contains a non-printable byte", ErrSandboxViolation, path)
		case strings.ContainsRune(`;&|$` + "`" + `<>*?~(){}[]!#\"'`, r):
			return fmt.Errorf("%w: %s: contains shell metacharacter %q", ErrSandboxViolation, path, r)
		}
	}
	return nil
}

// DetectModuleRoot walks up from dir looking for the nearest go.mod,
// following inspector/repository/detector.go's findProjectRoot marker
// walk, and returns its directory and declared module path. The
// reachability oracle uses it to resolve its go/packages load pattern; an
// omitted -p is not defaulted from it and stays unrestricted.
func DetectModuleRoot(dir string) (root, modulePath string, err error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("sandbox: %w", err)
	}
	if info, statErr := os.Stat(cur); statErr == nil && !info.IsDir() {
		cur = filepath.Dir(cur)
	}
	for {
		goModPath := filepath.Join(cur, "go.mod")
		if _, statErr := os.Stat(goModPath); statErr == nil {
			modulePath, err := readModulePath(goModPath)
			if err != nil {
				return cur, "", err
			}
			return cur, modulePath, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", fmt.Errorf("sandbox: no go.mod found above %s", dir)
		}
		cur = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	fs := afs.New()
	content, err := fs.DownloadWithURL(context.Background(), goModPath)
	if err != nil || len(content) == 0 {
		content, err = os.ReadFile(goModPath)
		if err != nil {
			return "", fmt.Errorf("sandbox: reading %s: %w", goModPath, err)
		}
	}
	mod, err := modfile.Parse(goModPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("sandbox: parsing %s: %w", goModPath, err)
	}
	return mod.Module.Mod.Path, nil
}
