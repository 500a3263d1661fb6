// Package codegen lowers a model.Lambda into the generated Go source for
// its replacement state-machine struct (spec §4.4, §8.4).
//
// Go rejects a goto that jumps into a block from outside it (the Go
// Programming Language Specification, "Goto statements"), so the
// classic Duff's-device rendering of a resumable function — a switch
// whose case labels are interleaved directly inside the original nested
// for/if statements — does not port. This generator instead flattens
// the lambda body into a single sequence of labelled top-level
// statements connected by "if cond { goto L }" branches, the explicit
// basic-block lowering spec's Design Notes name as the alternative for
// a host language that does not accept case labels inside nested
// constructs.
package codegen

import (
	"strings"

	"github.com/coroutil/resumablegen/model"
)

// fieldName turns a local's qualified name (__s0.1.n) into a valid Go
// identifier (__s0_1_n) usable as a struct field.
func fieldName(qualifiedName string) string {
	return strings.ReplaceAll(qualifiedName, ".", "_")
}

func stateLabel(yieldID int) string {
	return "state" + itoaCodegen(yieldID)
}

func itoaCodegen(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func typeName(lamID int) string {
	return "L" + itoaCodegen(lamID)
}

func capturesTypeName(lamID int) string {
	return typeName(lamID) + "Captures"
}

// CaptureLiteral builds the L<k>Captures{...} composite literal text the
// rewriter splices in place of the original lambda expression, sourcing
// each field from a same-named identifier in the scope that enclosed the
// lambda — spec §4.4's "trailing invocation passing the actual capture
// values from the surrounding scope," realized without a nested IIFE
// since Go cannot declare a method-bearing type inside a function body
// (documented in DESIGN.md): the factory call itself is the surrounding
// scope's only visible effect, so the generated types live at package
// scope instead of inside a local closure.
func CaptureLiteral(lam *model.Lambda) string {
	typ := capturesTypeName(lam.ID)
	var fields []string
	for _, p := range lam.Signature.Params {
		if p.Name == "" {
			continue
		}
		fields = append(fields, p.Name+": "+p.Name)
	}
	for _, c := range lam.Captures {
		switch c.Kind {
		case model.ByReference:
			fields = append(fields, c.FieldName()+": &"+c.Name)
		case model.InitCapture:
			fields = append(fields, c.FieldName()+": "+c.InitText)
		default:
			fields = append(fields, c.FieldName()+": "+c.Name)
		}
	}
	return typ + "{" + joinComma(fields) + "}"
}
