package mdast

import "github.com/yuin/goldmark/ast"

// EffectiveKind normalizes node kinds for structural comparison. Tight list
// items hold their text in a TextBlock while loose items use a Paragraph;
// the two are interchangeable for validation.
func EffectiveKind(n ast.Node) ast.NodeKind {
	if n.Kind() == ast.KindTextBlock {
		return ast.KindParagraph
	}
	return n.Kind()
}

// KindName returns a readable name for diagnostics.
func KindName(n ast.Node) string {
	return EffectiveKind(n).String()
}

// SameListKind reports whether two lists agree on bullet vs ordered.
func SameListKind(a, b *ast.List) bool {
	return a.IsOrdered() == b.IsOrdered()
}

// IsHTMLNode reports whether n is an HTML block or an inline raw-HTML run.
func IsHTMLNode(n ast.Node) bool {
	return n.Kind() == ast.KindHTMLBlock || n.Kind() == ast.KindRawHTML
}

// MaxListDepth returns the deepest list nesting within n. A node with no
// lists below it has depth 0; a single flat list has depth 1.
func MaxListDepth(n ast.Node) int {
	depth := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d := MaxListDepth(c)
		if c.Kind() == ast.KindList {
			d++
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}
