package model

import (
	"fmt"
	"go/ast"
	"strings"
)

// Local is one automatic-storage local variable declared inside a
// resumable lambda's body. Locals are totally ordered by appearance
// (lexicographic by scope path), per spec §3.
type Local struct {
	Name          string   `yaml:"name"`
	TypeText      string   `yaml:"type"`
	QualifiedName string   `yaml:"qualifiedName"`
	ScopePath     []int    `yaml:"scopePath"`
	YieldID       int      `yaml:"yieldId"`
	Synthetic     bool     `yaml:"synthetic,omitempty"`
	Decl          ast.Node `yaml:"-"`
}

// QualifyName builds a local's qualified name __s{id1}.{id2}.….name from
// its scope path and the local's source name.
func QualifyName(scopePath []int, name string) string {
	b := &strings.Builder{}
	b.WriteString("__s")
	for i, id := range scopePath {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(b, "%d", id)
	}
	b.WriteByte('.')
	b.WriteString(name)
	return b.String()
}

// StripTypeKeyword removes a leading "class " or "struct " token from
// type text, mirroring spec §4.3's local-registration rule. Go type text
// never carries such a keyword, so this is normally a no-op; it exists so
// type text quoted verbatim out of ported C++ doc examples round-trips
// identically through tests.
func StripTypeKeyword(typeText string) string {
	for _, kw := range []string{"class ", "struct "} {
		if strings.HasPrefix(typeText, kw) {
			return typeText[len(kw):]
		}
	}
	return typeText
}
