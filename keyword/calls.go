package keyword

import (
	"go/ast"
)

// RuntimePackagePath is the import path of the resume package whose
// exported functions form the extension vocabulary's call encodings.
const RuntimePackagePath = "github.com/coroutil/resumablegen/resume"

// Kind enumerates the recognized resume.* call shapes.
type Kind int

const (
	// NotAKeyword is returned for calls that do not match the vocabulary.
	NotAKeyword Kind = iota
	KindYield
	KindYieldFrom
	KindReturnFrom
	KindSuspend
	KindThis
)

// Importer resolves a package-qualifier identifier used in a source file
// to its import path, built from that file's import declarations.
type Importer struct {
	aliasToPath map[string]string
}

// NewImporter builds an Importer from a parsed file's import specs.
func NewImporter(file *ast.File) *Importer {
	imp := &Importer{aliasToPath: map[string]string{}}
	for _, spec := range file.Imports {
		path := spec.Path.Value
		path = path[1 : len(path)-1] // strip quotes
		name := defaultPackageName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imp.aliasToPath[name] = path
	}
	return imp
}

func defaultPackageName(importPath string) string {
	idx := -1
	for i := len(importPath) - 1; i >= 0; i-- {
		if importPath[i] == '/' {
			idx = i
			break
		}
	}
	return importPath[idx+1:]
}

// ResolvesToRuntime reports whether the given package-qualifier
// identifier, as used in the file this Importer was built from, refers
// to the resume runtime package.
func (imp *Importer) ResolvesToRuntime(pkgIdent string) bool {
	return imp.aliasToPath[pkgIdent] == RuntimePackagePath
}

// ClassifyCall classifies a call expression against the resume.*
// vocabulary. It returns NotAKeyword for anything else, including calls
// through an identically-named but differently-imported package.
func (imp *Importer) ClassifyCall(call *ast.CallExpr) Kind {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return NotAKeyword
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok || !imp.ResolvesToRuntime(pkgIdent.Name) {
		return NotAKeyword
	}
	switch sel.Sel.Name {
	case "Yield":
		return KindYield
	case "YieldFrom":
		return KindYieldFrom
	case "ReturnFrom":
		return KindReturnFrom
	case "Suspend":
		return KindSuspend
	default:
		return NotAKeyword
	}
}

// ClassifyIdent classifies a bare identifier (selector) expression
// against resume.This.
func (imp *Importer) ClassifyIdent(sel *ast.SelectorExpr) Kind {
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok || !imp.ResolvesToRuntime(pkgIdent.Name) {
		return NotAKeyword
	}
	if sel.Sel.Name == "This" {
		return KindThis
	}
	return NotAKeyword
}
