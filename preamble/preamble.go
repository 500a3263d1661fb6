// Package preamble injects the resume runtime import and a
// translation marker into a file about to be lowered, and detects when
// that has already happened so a second run is a no-op — realizing
// spec's idempotent-preamble contract (Testable Property 5) via Go's
// native import mechanism instead of the original's textual macro
// injection, grounded on inspector/graph/hash.go's highwayhash use.
package preamble

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/minio/highwayhash"

	"github.com/coroutil/resumablegen/rewriter"
)

// RuntimeImportPath is the resume package's import path, wired in by
// Inject whenever a file uses the extension vocabulary but has not yet
// imported it directly.
const RuntimeImportPath = "github.com/coroutil/resumablegen/resume"

// Marker is written once per translated file, immediately after the
// package clause, so a second run recognizes the file as already
// translated and inserts nothing a second time.
const Marker = "// Code generated by resumablegen. DO NOT EDIT.\n// resumablegen:generated\n"

var hashKey = []byte("resumablegen-0123456789ABCDEF012")

// AlreadyTranslated reports whether file already carries the generated
// marker in a comment ahead of its first declaration, the signal the
// translator uses to skip a file entirely (re-running on
// already-translated output is a no-op).
func AlreadyTranslated(file *ast.File) bool {
	for _, cg := range file.Comments {
		if len(file.Decls) > 0 && cg.Pos() > file.Decls[0].Pos() {
			break
		}
		for _, c := range cg.List {
			if c.Text == "// Code generated by resumablegen. DO NOT EDIT." {
				return true
			}
		}
	}
	return false
}

// HasRuntimeImport reports whether file already imports the resume
// package, so Inject never double-inserts it.
func HasRuntimeImport(file *ast.File) bool {
	for _, imp := range file.Imports {
		if unquote(imp.Path.Value) == RuntimeImportPath {
			return true
		}
	}
	return false
}

// Inject stages the generated-code marker (if AlreadyTranslated is
// false) and the resume import (if HasRuntimeImport is false) into buf,
// in a dedicated early stage so later codegen-stage edits never race
// with them.
func Inject(buf *rewriter.Buffer, fset *token.FileSet, file *ast.File) {
	buf.BeginStage()
	if !AlreadyTranslated(file) {
		buf.InsertAfter(file.Name.End(), "\n\n"+Marker)
	}
	if !HasRuntimeImport(file) {
		importText := fmt.Sprintf("\nimport %q\n", RuntimeImportPath)
		buf.InsertAfter(file.Name.End(), importText)
	}
}

// ContentHash returns a stable hash of src. The translator does not call
// it: L_k numbering comes from model.Context's counter, which starts at 0
// for every run, so unchanged input already reproduces identical names.
func ContentHash(src []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, fmt.Errorf("preamble: %w", err)
	}
	if _, err := h.Write(src); err != nil {
		return 0, fmt.Errorf("preamble: %w", err)
	}
	return h.Sum64(), nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
