// Package rewriter splices generated text into a source file in place of
// the spans the analyzer and codegen stages identify, the way
// inspector/golang extracts a func body's text by byte offset rather than
// by re-printing the whole file through go/printer.
package rewriter

import (
	"fmt"
	"go/token"
	"sort"
)

// edit is one span replacement, addressed by byte offset into the
// original source. End is exclusive. pos/endPos retain the original
// token.Pos span (zero for a pure insertion) so a replacement that
// collapses multiple original lines into one can still name the source
// line the following, untouched text resumes at.
type edit struct {
	start, end int
	text       string
	order      int // stage ordering: analyzer-stage edits before codegen-stage edits
	pos, endPos token.Pos
	replace     bool
}

// Buffer accumulates edits against one source file and applies them in a
// single pass. Edits may be registered in any order; Bytes sorts them by
// original offset and copies the source front to back, splicing each
// edit's text in at its offset.
type Buffer struct {
	fset           *token.FileSet
	src            []byte
	edits          []edit
	stage          int
	failed         []error
	lineDirectives bool
}

// NewBuffer wraps src, whose positions fset resolves.
func NewBuffer(fset *token.FileSet, src []byte) *Buffer {
	return &Buffer{fset: fset, src: src}
}

// SetLineDirectives enables emitting a "//line file:no" directive after
// every span replacement, so a debugger or panic trace attributes the
// untouched source following a replaced span to its true original line
// instead of the line the replacement's own text shifted it to.
func (b *Buffer) SetLineDirectives(on bool) {
	b.lineDirectives = on
}

// BeginStage advances the ordering stage new edits are tagged with.
// Call once before registering analyzer-driven edits (marker and import
// insertion) and again before codegen-driven edits (the
// generated struct/method text replacing each resumable func literal),
// so that when two edits ever target the same offset — an insertion at
// a point a later replacement also touches — the earlier stage's edit
// is the one applied first.
func (b *Buffer) BeginStage() {
	b.stage++
}

// Replace substitutes the source span [start, end) with text.
func (b *Buffer) Replace(start, end token.Pos, text string) {
	b.addEdit(start, end, text, true)
}

// InsertBefore splices text immediately before pos, leaving the
// surrounding source untouched.
func (b *Buffer) InsertBefore(pos token.Pos, text string) {
	b.addEdit(pos, pos, text, false)
}

// InsertAfter splices text immediately after pos.
func (b *Buffer) InsertAfter(pos token.Pos, text string) {
	off := b.offset(pos)
	if off < 0 {
		return
	}
	b.edits = append(b.edits, edit{start: off, end: off, text: text, order: b.stage, pos: pos, endPos: pos})
}

func (b *Buffer) addEdit(start, end token.Pos, text string, replace bool) {
	so, eo := b.offset(start), b.offset(end)
	if so < 0 || eo < 0 {
		return
	}
	if so > eo {
		b.failed = append(b.failed, fmt.Errorf("rewriter: invalid span [%d, %d)", so, eo))
		return
	}
	b.edits = append(b.edits, edit{start: so, end: eo, text: text, order: b.stage, pos: start, endPos: end, replace: replace && end > start})
}

func (b *Buffer) offset(pos token.Pos) int {
	if pos == token.NoPos {
		b.failed = append(b.failed, fmt.Errorf("rewriter: cannot resolve token.NoPos"))
		return -1
	}
	position := b.fset.Position(pos)
	if position.Offset < 0 || position.Offset > len(b.src) {
		b.failed = append(b.failed, fmt.Errorf("rewriter: position %v resolves outside source (len %d)", position, len(b.src)))
		return -1
	}
	return position.Offset
}

// Bytes applies every registered edit and returns the rewritten source.
// It fails fatally (returns an error) if any edit could not be resolved
// to a valid offset, or if two edits from the same stage overlap —
// ordering across stages resolves ties at a shared boundary, but two
// same-stage edits clobbering one another means the caller computed
// overlapping spans, which is always a caller bug.
func (b *Buffer) Bytes() ([]byte, error) {
	if len(b.failed) > 0 {
		return nil, b.failed[0]
	}

	ordered := make([]edit, len(b.edits))
	copy(ordered, b.edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		// Ties at one offset: earlier stage (lower order) goes first, so an
		// analyzer-stage insertion lands before a codegen-stage insertion
		// at the same point rather than after it.
		if ordered[i].order != ordered[j].order {
			return ordered[i].order < ordered[j].order
		}
		return ordered[i].end < ordered[j].end
	})

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if prev.end > cur.start && prev.order == cur.order && prev.end > prev.start && cur.end > cur.start {
			return nil, fmt.Errorf("rewriter: overlapping edits in the same stage at offsets [%d,%d) and [%d,%d)",
				prev.start, prev.end, cur.start, cur.end)
		}
	}

	var out []byte
	cursor := 0
	for _, e := range ordered {
		if e.start < cursor {
			// A zero-width insertion at a point already passed by a prior
			// replacement's end; splice it in at the current cursor instead
			// of re-slicing backward.
			out = append(out, []byte(e.text)...)
			continue
		}
		out = append(out, b.src[cursor:e.start]...)
		out = append(out, []byte(e.text)...)
		cursor = e.end
		if b.lineDirectives && e.replace {
			out = append(out, []byte(b.lineDirective(e.endPos))...)
		}
	}
	out = append(out, b.src[cursor:]...)
	return out, nil
}

// lineDirective renders a "//line file:no" comment restoring the true
// original line number of the source that resumes at pos, for the text
// following a replacement whose own text collapsed that span onto fewer
// (or more) lines than the original.
func (b *Buffer) lineDirective(pos token.Pos) string {
	p := b.fset.Position(pos)
	return fmt.Sprintf("\n//line %s:%d\n", p.Filename, p.Line)
}
