// Package reachability implements the -r oracle: load the whole module
// graph with go/packages, build a reverse call graph with go/types, and
// propagate "calls into a resumable lambda" along it, the Go analogue of
// spec's cross-translation-unit call graph. Grounded on the
// rewrite-injector reference file's go/packages + go/types +
// golang.org/x/tools/go/ast/astutil usage.
package reachability

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
)

// ErrNonInlineCaller is returned by PropagateResumable when the
// resumable taint reaches an ordinary package-level function: such a
// function may be called from arbitrarily many unrelated sites, the Go
// analogue of spec's "the call graph reaches a non-inline, non-template
// function" hard error, since only a local closure or a generic
// function can legally be re-specialized per call site the way an
// inline/template function can in C++.
var ErrNonInlineCaller = errors.New("reachability: resumable lambda reached through a non-inline caller")

// Load loads every package reachable from the module containing dir,
// using go/packages with full type information and syntax trees, so the
// oracle can resolve every call site's callee across file boundaries.
func Load(dir, modulePath string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		return nil, fmt.Errorf("reachability: loading %s: %w", modulePath, err)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, errors.New(e.Error()))
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("reachability: %d package load error(s), first: %w", len(errs), errs[0])
	}
	return pkgs, nil
}

// FuncSite identifies one function declaration or function literal the
// call graph tracks as a node.
type FuncSite struct {
	Obj     types.Object // nil for a func literal with no enclosing *types.Func via Defs
	Node    ast.Node      // *ast.FuncDecl or *ast.FuncLit
	Pkg     *packages.Package
	IsLocal bool // true for a func literal or a function-local named func
	Generic bool // true if the declaration carries type parameters
}

// Graph is a reverse call graph: for every call site, the set of
// FuncSites whose body contains it.
type Graph struct {
	sites    []*FuncSite
	byObj    map[types.Object]*FuncSite
	byNode   map[ast.Node]*FuncSite
	callers  map[*FuncSite][]*FuncSite // callee -> its callers
}

// ClassifyDirect reports whether site is a valid resumable host per
// spec §4.2 carried over into Go: a local closure (func literal, or a
// function-local named func) or a generic function, as opposed to an
// ordinary package-level non-generic function that arbitrarily many
// unrelated call sites could reach.
func ClassifyDirect(site *FuncSite) bool {
	return site.IsLocal || site.Generic
}

// BuildCallGraph walks every function body in pkgs and records, for each
// call expression whose callee resolves to a known FuncSite, a
// caller->callee edge (stored reversed, callee->callers, since
// PropagateResumable walks from callees up to callers).
func BuildCallGraph(pkgs []*packages.Package) (*Graph, error) {
	g := &Graph{
		byObj:   map[types.Object]*FuncSite{},
		byNode:  map[ast.Node]*FuncSite{},
		callers: map[*FuncSite][]*FuncSite{},
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				switch fn := n.(type) {
				case *ast.FuncDecl:
					site := &FuncSite{Node: fn, Pkg: pkg, Generic: fn.Type.TypeParams != nil}
					if obj := pkg.TypesInfo.ObjectOf(fn.Name); obj != nil {
						site.Obj = obj
						g.byObj[obj] = site
					}
					g.byNode[fn] = site
					g.sites = append(g.sites, site)
				case *ast.FuncLit:
					site := &FuncSite{Node: fn, Pkg: pkg, IsLocal: true, Generic: fn.Type.TypeParams != nil}
					g.byNode[fn] = site
					g.sites = append(g.sites, site)
				}
				return true
			})
		}
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			var stack []*FuncSite
			astutil.Apply(file, func(c *astutil.Cursor) bool {
				switch n := c.Node().(type) {
				case *ast.FuncDecl:
					stack = append(stack, g.byNode[n])
				case *ast.FuncLit:
					stack = append(stack, g.byNode[n])
				case *ast.CallExpr:
					if len(stack) == 0 {
						return true
					}
					caller := stack[len(stack)-1]
					if caller == nil {
						return true
					}
					if callee := g.resolveCallee(pkg, n); callee != nil {
						g.callers[callee] = append(g.callers[callee], caller)
					}
				}
				return true
			}, func(c *astutil.Cursor) bool {
				switch c.Node().(type) {
				case *ast.FuncDecl, *ast.FuncLit:
					stack = stack[:len(stack)-1]
				}
				return true
			})
		}
	}

	return g, nil
}

func (g *Graph) resolveCallee(pkg *packages.Package, call *ast.CallExpr) *FuncSite {
	ident := calleeIdent(call.Fun)
	if ident == nil {
		return nil
	}
	obj := pkg.TypesInfo.Uses[ident]
	if obj == nil {
		return nil
	}
	return g.byObj[obj]
}

func calleeIdent(e ast.Expr) *ast.Ident {
	switch f := e.(type) {
	case *ast.Ident:
		return f
	case *ast.SelectorExpr:
		return f.Sel
	default:
		return nil
	}
}

// SiteAt returns the FuncSite recorded for a *ast.FuncDecl or
// *ast.FuncLit node, or nil if none was recorded (e.g. the node belongs
// to a package the loader didn't cover).
func (g *Graph) SiteAt(n ast.Node) *FuncSite { return g.byNode[n] }

// PropagateResumable marks every FuncSite that (transitively) calls one
// of seeds as resumable-tainted, and returns the full tainted set. It
// fails with ErrNonInlineCaller at the first tainted site that is
// neither a local closure nor generic, since propagation past such a
// site cannot be soundly resolved to a single call-graph edge the way
// spec's reachability oracle demands.
func PropagateResumable(g *Graph, fset *token.FileSet, seeds []*FuncSite) (map[*FuncSite]bool, error) {
	tainted := map[*FuncSite]bool{}
	var queue []*FuncSite
	for _, s := range seeds {
		if !tainted[s] {
			tainted[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, caller := range g.callers[cur] {
			if !ClassifyDirect(caller) {
				return tainted, fmt.Errorf("%w: at %s", ErrNonInlineCaller, fset.Position(caller.Node.Pos()))
			}
			if !tainted[caller] {
				tainted[caller] = true
				queue = append(queue, caller)
			}
		}
	}
	return tainted, nil
}
