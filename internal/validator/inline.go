package validator

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/matcher"
	"github.com/dgallion1/mdvalidate/internal/mdast"
)

// renderInlineRange renders the siblings [from, stop) to a canonical text
// form for literal comparison: code spans keep their backticks, emphasis is
// rendered with "*" markers, links as [text](dest). Heading prefixes, list
// bullets, and fence delimiters never appear here; they are structural.
//
// escapes marks schema code spans whose "!" suffix must be consumed from the
// adjacent text (one "!" survives for the "!!" form). skipFirst drops that
// many bytes from the first text sibling, which is how a matcher's
// quantifier suffix is excluded from the literal tail.
func renderInlineRange(t *mdast.Tree, from, stop ast.Node, escapes map[ast.Node]*matcher.Directive, skipFirst int) string {
	ir := &inlineRenderer{tree: t, escapes: escapes, skip: skipFirst}
	for n := from; n != nil && n != stop; n = n.NextSibling() {
		ir.render(n)
	}
	return ir.b.String()
}

type inlineRenderer struct {
	tree    *mdast.Tree
	escapes map[ast.Node]*matcher.Directive
	b       strings.Builder
	skip    int
}

func (ir *inlineRenderer) render(n ast.Node) {
	src := ir.tree.Source()
	switch v := n.(type) {
	case *ast.Text:
		val := string(v.Segment.Value(src))
		if ir.skip > 0 {
			if ir.skip >= len(val) {
				ir.skip -= len(val)
				val = ""
			} else {
				val = val[ir.skip:]
				ir.skip = 0
			}
		}
		ir.b.WriteString(val)
		if v.SoftLineBreak() || v.HardLineBreak() {
			ir.b.WriteByte('\n')
		}
	case *ast.String:
		ir.b.Write(v.Value)
	case *ast.CodeSpan:
		ir.b.WriteByte('`')
		ir.b.WriteString(ir.tree.PlainText(n))
		ir.b.WriteByte('`')
		if d, ok := ir.escapes[n]; ok {
			ir.b.WriteString(strings.Repeat("!", d.EscapeLevel-1))
			ir.skip = d.SuffixLen
		}
	case *ast.Emphasis:
		marker := strings.Repeat("*", v.Level)
		ir.b.WriteString(marker)
		ir.renderChildren(n)
		ir.b.WriteString(marker)
	case *ast.Link:
		ir.b.WriteByte('[')
		ir.renderChildren(n)
		ir.b.WriteString("](")
		ir.b.Write(v.Destination)
		ir.b.WriteByte(')')
	case *ast.Image:
		ir.b.WriteString("![")
		ir.renderChildren(n)
		ir.b.WriteString("](")
		ir.b.Write(v.Destination)
		ir.b.WriteByte(')')
	case *ast.AutoLink:
		ir.b.Write(v.URL(src))
	case *ast.RawHTML:
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			ir.b.Write(seg.Value(src))
		}
	default:
		ir.renderChildren(n)
	}
}

func (ir *inlineRenderer) renderChildren(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		ir.render(c)
	}
}
