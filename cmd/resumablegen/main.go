// Command resumablegen lowers resumable lambdas in a single Go source
// file into generated state-machine types, writing the rewritten file to
// stdout. See SPEC_FULL.md for the full external interface.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log"
	"os"

	"github.com/coroutil/resumablegen/analyzer"
	"github.com/coroutil/resumablegen/codegen"
	"github.com/coroutil/resumablegen/diagnostics"
	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
	"github.com/coroutil/resumablegen/preamble"
	"github.com/coroutil/resumablegen/reachability"
	"github.com/coroutil/resumablegen/rewriter"
	"github.com/coroutil/resumablegen/sandbox"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("resumablegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "dump the tree-sitter structural trace and the YAML lambda model to stderr")
	lineDirectives := fs.Bool("l", false, "emit //line file:no directives in the output")
	sandboxDir := fs.String("p", "", "sandbox root: reject any loaded file whose path escapes it")
	reachabilityFlag := fs.Bool("r", false, "enable the cross-function reachability oracle")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: resumablegen [-v] [-l] [-p dir] [-r] <file.go>")
		return 1
	}
	inputPath := fs.Arg(0)
	logger := log.New(stderr, "", 0)

	root, err := sandbox.NewRoot(*sandboxDir)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := root.Validate(inputPath); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(stderr, "resumablegen: reading %s: %s\n", inputPath, err)
		return 1
	}

	if *verbose {
		logger.Printf("entering %s", inputPath)
		if err := diagnostics.DumpSyntaxTree(stderr, src); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inputPath, src, parser.ParseComments)
	if err != nil {
		fmt.Fprintf(stderr, "resumablegen: parsing %s: %s\n", inputPath, err)
		return 1
	}

	if preamble.AlreadyTranslated(file) {
		if *verbose {
			logger.Printf("%s already translated, no-op", inputPath)
		}
		stdout.Write(src)
		return 0
	}

	imp := keyword.NewImporter(file)
	lits := keyword.FindResumableLambdas(file, fset)

	if *reachabilityFlag {
		if err := runReachabilityOracle(inputPath, root, stderr); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	ctx := model.NewContext()
	ctx.Verbose = *verbose
	ctx.LineDirectives = *lineDirectives
	ctx.SandboxRoot = *sandboxDir
	ctx.Reachability = *reachabilityFlag

	buf := rewriter.NewBuffer(fset, src)
	buf.SetLineDirectives(*lineDirectives)
	preamble.Inject(buf, fset, file)

	buf.BeginStage()
	for _, lit := range lits {
		lam, err := analyzer.Analyze(lit, fset, file, imp, ctx)
		if err != nil {
			fmt.Fprintf(stderr, "resumablegen: %s: %s\n", inputPath, err)
			return 1
		}
		if *verbose {
			if err := diagnostics.DumpLambdaModel(stderr, lam); err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
		}

		decls, err := codegen.Generate(lam, imp)
		if err != nil {
			fmt.Fprintf(stderr, "resumablegen: %s: %s\n", inputPath, err)
			return 1
		}

		replacement := fmt.Sprintf("NewL%d(%s).Build()", lam.ID, codegen.CaptureLiteral(lam))
		buf.Replace(lit.Pos(), lit.End(), replacement)
		buf.InsertAfter(file.End(), "\n\n"+decls)
	}

	out, err := buf.Bytes()
	if err != nil {
		fmt.Fprintf(stderr, "resumablegen: %s: %s\n", inputPath, err)
		return 1
	}

	stdout.Write(out)
	return 0
}

// runReachabilityOracle loads the whole module graph containing
// inputPath and fails if a resumable construct is reachable only through
// a non-inline, non-template caller (spec.md's exit-code-1 condition).
// Every Go file of the packages the load returns is re-validated against
// the sandbox root before the oracle trusts its contents.
func runReachabilityOracle(inputPath string, root sandbox.Root, stderr io.Writer) error {
	modRoot, modulePath, err := sandbox.DetectModuleRoot(inputPath)
	if err != nil {
		return err
	}
	pkgs, err := reachability.Load(modRoot, modulePath)
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		for _, f := range pkg.GoFiles {
			if err := root.Validate(f); err != nil {
				return err
			}
		}
	}
	graph, err := reachability.BuildCallGraph(pkgs)
	if err != nil {
		return err
	}

	var seeds []*reachability.FuncSite
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			imp := keyword.NewImporter(file)
			ast.Inspect(file, func(n ast.Node) bool {
				var body *ast.BlockStmt
				switch fn := n.(type) {
				case *ast.FuncLit:
					body = fn.Body
				case *ast.FuncDecl:
					body = fn.Body
				default:
					return true
				}
				lit, isLit := n.(*ast.FuncLit)
				if (isLit && keyword.HasResumableDirective(lit, pkg.Fset, file.Comments)) ||
					(body != nil && keyword.ContainsSuspend(body, imp)) {
					if site := graph.SiteAt(n); site != nil {
						seeds = append(seeds, site)
					}
				}
				return true
			})
		}
	}

	_, err = reachability.PropagateResumable(graph, pkgs[0].Fset, seeds)
	return err
}
