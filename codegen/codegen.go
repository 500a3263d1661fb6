package codegen

import (
	"fmt"
	"strings"

	"github.com/coroutil/resumablegen/keyword"
	"github.com/coroutil/resumablegen/model"
)

// Generate lowers one analyzed lambda into the Go source of its
// replacement: a capture record, the generated struct (one field per
// local plus whatever codegen-introduced temporaries the flattened body
// needed), a factory wired to resume.Initializer, and the Next/
// IsInitial/IsTerminal/Clone/Wanted methods spec §4.4/§8.4 name.
func Generate(lam *model.Lambda, imp *keyword.Importer) (string, error) {
	typ := typeName(lam.ID)
	capTyp := capturesTypeName(lam.ID)
	retType := lam.Signature.ReturnType
	if retType == "" {
		retType = "any"
	}

	env := newScopeEnv(nil)
	env.imp = imp
	var capFields []string
	for _, p := range lam.Signature.Params {
		if p.Name == "" {
			continue
		}
		fieldExpr := "g.captures." + p.Name
		env.bind(p.Name, binding{fieldExpr: fieldExpr})
		capFields = append(capFields, p.Name+" "+typeTextOrAny(p.TypeText))
	}
	for _, c := range lam.Captures {
		field := c.FieldName()
		typeText := typeTextOrAny(c.TypeText)
		switch c.Kind {
		case model.ByReference:
			env.bind(c.Name, binding{fieldExpr: "g.captures." + field, deref: true})
			capFields = append(capFields, field+" *"+typeText)
		case model.ThisCapture:
			env.bindThis(binding{fieldExpr: "g.captures." + field})
			capFields = append(capFields, field+" "+typeText)
		default: // ByValue, InitCapture
			env.bind(c.Name, binding{fieldExpr: "g.captures." + field})
			capFields = append(capFields, field+" "+typeText)
		}
	}

	bg := newBodyGen(lam, retType)
	bodyLines, err := bg.Emit(lam.Node.Body.List, env)
	if err != nil {
		return "", fmt.Errorf("lambda %d: %w", lam.ID, err)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "type %s struct {\n", capTyp)
	for _, f := range capFields {
		fmt.Fprintf(&b, "\t%s\n", f)
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "type %s struct {\n", typ)
	fmt.Fprintf(&b, "\tcaptures %s\n", capTyp)
	b.WriteString("\tstate int\n")
	for _, loc := range lam.Locals {
		fmt.Fprintf(&b, "\t%s %s\n", fieldName(loc.QualifiedName), typeTextOrAny(loc.TypeText))
	}
	for _, tf := range bg.tempFields {
		fmt.Fprintf(&b, "\t%s %s\n", tf.name, typeTextOrAny(tf.typeText))
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func new%s(captures %s) *%s {\n", typ, capTyp, typ)
	fmt.Fprintf(&b, "\treturn &%s{captures: captures, state: 0}\n}\n\n", typ)

	fmt.Fprintf(&b, "func New%s(captures %s) resume.Initializer[*%s] {\n", typ, capTyp, typ)
	fmt.Fprintf(&b, "\treturn resume.NewInitializer(func() *%s { return new%s(captures) })\n}\n\n", typ, typ)

	fmt.Fprintf(&b, "func (g *%s) IsInitial() bool { return g.state == 0 }\n", typ)
	fmt.Fprintf(&b, "func (g *%s) IsTerminal() bool { return g.state == -1 }\n\n", typ)

	writeClone(&b, typ, lam.Copyable(isCopyableType))

	writeUnwind(&b, lam, typ)
	fmt.Fprintf(&b, "func (g *%s) Close() error {\n\tg.unwindTo(0)\n\tg.state = -1\n\treturn nil\n}\n\n", typ)
	writeWanted(&b, lam, typ, retType, bg.valFieldByYield)

	fmt.Fprintf(&b, "func (g *%s) Next() (%s, bool) {\n", typ, retType)
	b.WriteString("\tdefer func() {\n")
	b.WriteString("\t\tif r := recover(); r != nil {\n")
	b.WriteString("\t\t\tg.unwindTo(0)\n")
	b.WriteString("\t\t\tg.state = -1\n")
	b.WriteString("\t\t\tpanic(r)\n")
	b.WriteString("\t\t}\n\t}()\n")

	b.WriteString("\tswitch g.state {\n")
	b.WriteString("\tcase 0:\n")
	for _, y := range lam.Yields {
		if !isSuspending(y.Kind) {
			continue
		}
		fmt.Fprintf(&b, "\tcase %d:\n\t\tgoto %s\n", y.ID, stateLabel(y.ID))
	}
	b.WriteString("\tcase -1:\n")
	fmt.Fprintf(&b, "\t\treturn %s, false\n", bg.zeroExpr(retType))
	b.WriteString("\t}\n\n")

	for _, line := range bodyLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	return b.String(), nil
}

func isSuspending(k model.YieldKind) bool {
	switch k {
	case model.YieldValue, model.Suspend, model.YieldFromResume, model.ReturnFromYield:
		return true
	default:
		return false
	}
}

func typeTextOrAny(t string) string {
	if t == "" {
		return "any"
	}
	return t
}

// isCopyableType reports whether a local's declared type is safe to
// shallow-copy. Go has no notion of a non-copy-constructible type;
// without go/types wired per lambda (decls.go keeps per-local type
// inference deliberately narrow) the nearest sound proxy is structural:
// a pointer-typed local is exactly the shape a Close()-backed resource
// handle takes, and copying *g (a plain struct copy) would alias that
// handle between the original and the clone, so a pointer-typed local
// makes the whole lambda non-copyable.
func isCopyableType(typeText string) bool {
	return !strings.HasPrefix(strings.TrimSpace(typeText), "*")
}

// writeClone emits Clone() (*L<k>, bool): false whenever the lambda has
// at least one non-copyable local, so a Close()-backed resource is never
// silently aliased between an original and its clone (spec §3 invariant
// 4, copy exists only when every local type is copy-constructible).
func writeClone(b *strings.Builder, typ string, copyable bool) {
	fmt.Fprintf(b, "func (g *%s) Clone() (*%s, bool) {\n", typ, typ)
	if !copyable {
		b.WriteString("\treturn nil, false\n}\n\n")
		return
	}
	b.WriteString("\tclone := *g\n\treturn &clone, true\n}\n\n")
}

// writeUnwind generates the LIFO destruction walk spec §3 invariant 3
// describes: from the current state back toward newState along the
// prior-yield chain, calling io.Closer.Close on any local that
// implements it (the closest Go has to a uniform destructor contract
// without generating bespoke per-type teardown) and then zeroing its
// field, so a local is never torn down twice.
func writeUnwind(b *strings.Builder, lam *model.Lambda, typ string) {
	fmt.Fprintf(b, "func (g *%s) unwindTo(newState int) {\n", typ)
	b.WriteString("\tfor g.state != newState && g.state > 0 {\n")
	b.WriteString("\t\tswitch g.state {\n")
	for _, y := range lam.Yields {
		fmt.Fprintf(b, "\t\tcase %d:\n", y.ID)
		if loc := lam.LocalAt(y.ID); loc != nil {
			field := "g." + fieldName(loc.QualifiedName)
			fmt.Fprintf(b, "\t\t\tif closer, ok := any(%s).(interface{ Close() error }); ok {\n", field)
			fmt.Fprintf(b, "\t\t\t\t_ = closer.Close()\n\t\t\t}\n")
			fmt.Fprintf(b, "\t\t\t%s = %s\n", field, "*new("+typeTextOrAny(loc.TypeText)+")")
		}
		fmt.Fprintf(b, "\t\t\tg.state = %d\n", y.PriorID)
	}
	b.WriteString("\t\tdefault:\n\t\t\tg.state = 0\n\t\t}\n\t}\n}\n\n")
}

// writeWanted forwards resume.Wanted when the lambda composes at least
// one sub-generator via yield-from or return-from, so an external dispatcher can read
// a composed chain's current demand without a type switch (spec §9).
func writeWanted(b *strings.Builder, lam *model.Lambda, typ, retType string, valFields map[int]string) {
	if len(valFields) == 0 {
		return
	}
	fmt.Fprintf(b, "func (g *%s) Wanted() any {\n\tswitch g.state {\n", typ)
	for id, field := range valFields {
		fmt.Fprintf(b, "\tcase %d:\n\t\treturn %s\n", id, field)
	}
	b.WriteString("\tdefault:\n\t\treturn nil\n\t}\n}\n\n")

	fmt.Fprintf(b, "func (g *%s) WantedType() reflect.Type {\n\tswitch g.state {\n", typ)
	for id := range valFields {
		fmt.Fprintf(b, "\tcase %d:\n\t\treturn reflect.TypeOf(%s)\n", id, "*new("+retType+")")
	}
	b.WriteString("\tdefault:\n\t\treturn nil\n\t}\n}\n\n")
}
