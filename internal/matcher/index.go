package matcher

import (
	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/mdast"
)

// Classification is the matcher-vs-literal decision for one schema node.
// It depends only on the node's own inline subtree plus the text adjacent
// to each code span, so it is computed once per node and memoized.
type Classification struct {
	// Directive is the node's single live directive; nil for literal nodes.
	Directive *Directive
	// Span is the code span the directive was parsed from.
	Span ast.Node
	// Count is the number of live directives found in the node. More than
	// one is a schema error surfaced at validation time.
	Count int
	// Escapes maps code spans that carry an escape suffix to their parsed
	// form; these spans validate literally.
	Escapes map[ast.Node]*Directive
	// Err records a malformed span (bad suffix, bad regex).
	Err error
}

// Index memoizes classification over one schema tree.
type Index struct {
	tree *mdast.Tree
	memo map[ast.Node]*Classification
}

func NewIndex(t *mdast.Tree) *Index {
	return &Index{tree: t, memo: make(map[ast.Node]*Classification)}
}

// Tree returns the schema tree the index classifies.
func (ix *Index) Tree() *mdast.Tree { return ix.tree }

// Classify inspects the inline content of a textual schema node (paragraph,
// heading, or list-item line) and returns its classification.
func (ix *Index) Classify(n ast.Node) *Classification {
	if c, ok := ix.memo[n]; ok {
		return c
	}
	c := &Classification{Escapes: make(map[ast.Node]*Directive)}
	ix.scan(n, c)
	ix.memo[n] = c
	return c
}

func (ix *Index) scan(n ast.Node, c *Classification) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Kind() == ast.KindList {
			continue
		}
		if child.Kind() != ast.KindCodeSpan {
			ix.scan(child, c)
			continue
		}

		content := ix.tree.PlainText(child)
		trailing := ""
		if next, ok := child.NextSibling().(*ast.Text); ok {
			trailing = string(next.Segment.Value(ix.tree.Source()))
		}

		d, err := ParseSpan(content, trailing)
		switch {
		case err != nil:
			if c.Err == nil {
				c.Err = err
			}
		case d == nil:
			// Plain literal code span.
		case d.EscapeLevel > 0:
			c.Escapes[child] = d
		default:
			c.Count++
			if c.Directive == nil {
				c.Directive = d
				c.Span = child
			}
		}
	}
}
