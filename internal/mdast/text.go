package mdast

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// PlainText flattens the text content of n: inline markers are dropped, soft
// and hard line breaks become newlines, and block nodes with raw lines
// (code fences, HTML blocks) yield their line content verbatim.
func (t *Tree) PlainText(n ast.Node) string {
	var buf bytes.Buffer
	t.writePlainText(&buf, n)
	return buf.String()
}

func (t *Tree) writePlainText(buf *bytes.Buffer, n ast.Node) {
	switch v := n.(type) {
	case *ast.Text:
		buf.Write(v.Segment.Value(t.src))
		if v.SoftLineBreak() || v.HardLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.String:
		buf.Write(v.Value)
		return
	case *ast.RawHTML:
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			buf.Write(seg.Value(t.src))
		}
		return
	case *ast.AutoLink:
		buf.Write(v.URL(t.src))
		return
	}

	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		if lines := n.Lines(); lines != nil {
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(t.src))
			}
		}
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t.writePlainText(buf, c)
	}
}

// CollapseSpace trims s and collapses interior whitespace runs to single
// spaces, the normalization used for literal text comparison.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsBlankText reports whether n is a text node consisting only of whitespace,
// or a soft-break-only text node. Such nodes never count as structure.
func (t *Tree) IsBlankText(n ast.Node) bool {
	v, ok := n.(*ast.Text)
	if !ok {
		return false
	}
	return len(bytes.TrimSpace(v.Segment.Value(t.src))) == 0
}
