// Package diagnostics implements -v: an independent tree-sitter
// structural trace of the input, deliberately decoupled from the go/ast
// tree the real transform walks (mirroring the teacher's tree-sitter and
// go/ast inspectors living side by side), plus a YAML dump of the
// analyzed Lambda Model, both written to stderr.
package diagnostics

import (
	"context"
	"fmt"
	"io"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"gopkg.in/yaml.v3"

	"github.com/coroutil/resumablegen/model"
)

// DumpSyntaxTree parses src with tree-sitter's Go grammar and writes an
// indented node-kind trace to w, one line per node, following the
// teacher's node.go walk (node type name plus byte range).
func DumpSyntaxTree(w io.Writer, src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return fmt.Errorf("diagnostics: tree-sitter parse: %w", err)
	}
	dumpNode(w, tree.RootNode(), 0)
	return nil
}

func dumpNode(w io.Writer, n *sitter.Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "%s [%d,%d)\n", n.Type(), n.StartByte(), n.EndByte())
	for i := 0; i < int(n.ChildCount()); i++ {
		dumpNode(w, n.Child(i), depth+1)
	}
}

// DumpLambdaModel marshals lam to YAML and writes it to w, mirroring
// analyzer/linage's yaml-tagged model types.
func DumpLambdaModel(w io.Writer, lam *model.Lambda) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(lam); err != nil {
		return fmt.Errorf("diagnostics: marshaling lambda %d: %w", lam.ID, err)
	}
	return nil
}
