// Package keyword recognizes the extension vocabulary spec §2 encodes as
// ordinary Go constructs: the //resumable directive and calls against the
// resume package. Detection is structural (by resolved selector identity
// where possible, by directive regexp for the annotation), never by bare
// spelling, so a user's own unrelated identifiers are never mistaken for
// the extension keywords.
package keyword

import (
	"go/ast"
	"go/token"
	"regexp"
	"strings"
)

// directiveRe matches a bare //resumable directive, optionally followed
// by a colon and a comma-separated capture-mode list: names not listed
// default to by-reference, Go's native closure-capture semantics.
//
//	//resumable
//	//resumable: total=value, cfg=ref, items=init(len(src))
var directiveRe = regexp.MustCompile(`^//\s*resumable\s*(?::\s*(.*))?$`)

// CaptureMode is the capture mode named for one free variable in a
// //resumable directive's capture list.
type CaptureMode struct {
	Name     string
	ByValue  bool
	InitExpr string // non-empty for init-capture mode
}

// DirectiveSpec is the parsed form of one //resumable directive.
type DirectiveSpec struct {
	Captures []CaptureMode
}

// parseDirective parses a directive comment's text, returning ok=false
// if it is not a resumable directive at all.
func parseDirective(text string) (DirectiveSpec, bool) {
	m := directiveRe.FindStringSubmatch(strings.TrimRight(text, " \t"))
	if m == nil {
		return DirectiveSpec{}, false
	}
	spec := DirectiveSpec{}
	list := strings.TrimSpace(m[1])
	if list == "" {
		return spec, true
	}
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(entry[:eq])
		mode := strings.TrimSpace(entry[eq+1:])
		cm := CaptureMode{Name: name}
		switch {
		case mode == "value":
			cm.ByValue = true
		case mode == "ref":
			// default; nothing to set
		case strings.HasPrefix(mode, "init(") && strings.HasSuffix(mode, ")"):
			cm.InitExpr = mode[len("init(") : len(mode)-1]
		}
		spec.Captures = append(spec.Captures, cm)
	}
	return spec, true
}

// IsDirective reports whether a single comment's text is a resumable
// directive (with or without a capture list).
func IsDirective(c *ast.Comment) bool {
	_, ok := parseDirective(c.Text)
	return ok
}

// FindDirective reports whether a //resumable directive comment appears
// immediately above the given node, scanning backward over contiguous
// comment lines the way analyzer/meta.go's extractAnnotations walks
// backward over a node's preceding comments, and returns its parsed spec.
func FindDirective(node ast.Node, fset *token.FileSet, comments []*ast.CommentGroup) (DirectiveSpec, bool) {
	nodeLine := fset.Position(node.Pos()).Line
	var best *ast.CommentGroup
	for _, cg := range comments {
		endLine := fset.Position(cg.End()).Line
		if endLine <= nodeLine && (best == nil || cg.End() > best.End()) {
			best = cg
		}
	}
	if best == nil || fset.Position(best.End()).Line < nodeLine-1 {
		return DirectiveSpec{}, false
	}
	for _, c := range best.List {
		if spec, ok := parseDirective(c.Text); ok {
			return spec, true
		}
	}
	return DirectiveSpec{}, false
}

// HasResumableDirective reports whether a //resumable directive comment
// appears immediately above the given node.
func HasResumableDirective(node ast.Node, fset *token.FileSet, comments []*ast.CommentGroup) bool {
	_, ok := FindDirective(node, fset, comments)
	return ok
}
