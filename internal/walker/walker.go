// Package walker provides paired cursors over the schema and input Markdown
// trees. Cursor operations are pure: they never mutate the trees.
package walker

import (
	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/mdast"
)

// Cursor points at one node of a tree.
type Cursor struct {
	tree *mdast.Tree
	node ast.Node
}

// NewCursor returns a cursor positioned at the tree root.
func NewCursor(t *mdast.Tree) *Cursor {
	return &Cursor{tree: t, node: t.Root()}
}

func (c *Cursor) Tree() *mdast.Tree { return c.tree }
func (c *Cursor) Node() ast.Node    { return c.node }

// Kind returns the normalized node kind at the cursor.
func (c *Cursor) Kind() ast.NodeKind { return mdast.EffectiveKind(c.node) }

// Text returns the flattened text of the current node.
func (c *Cursor) Text() string { return c.tree.PlainText(c.node) }

// Position returns the source position of the current node's start.
func (c *Cursor) Position() mdast.Position { return c.tree.NodePosition(c.node) }

// FirstChild moves to the first child, returning false at a leaf.
func (c *Cursor) FirstChild() bool {
	child := c.node.FirstChild()
	if child == nil {
		return false
	}
	c.node = child
	return true
}

// NextSibling moves to the next sibling, returning false at the last one.
func (c *Cursor) NextSibling() bool {
	sib := c.node.NextSibling()
	if sib == nil {
		return false
	}
	c.node = sib
	return true
}

// Parent moves up, returning false at the root.
func (c *Cursor) Parent() bool {
	p := c.node.Parent()
	if p == nil {
		return false
	}
	c.node = p
	return true
}

// Goto repositions the cursor at n, which must belong to the same tree.
func (c *Cursor) Goto(n ast.Node) { c.node = n }

// Clone returns an independent cursor at the same position.
func (c *Cursor) Clone() *Cursor {
	return &Cursor{tree: c.tree, node: c.node}
}

// DescendantsOfKind collects all descendants of the current node with the
// given kind, in document order.
func (c *Cursor) DescendantsOfKind(k ast.NodeKind) []ast.Node {
	var out []ast.Node
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if child.Kind() == k {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(c.node)
	return out
}

// Walker holds the paired cursors for one validation attempt.
type Walker struct {
	Schema *Cursor
	Input  *Cursor
}

// New returns a walker with both cursors at their roots.
func New(schema, input *mdast.Tree) *Walker {
	return &Walker{Schema: NewCursor(schema), Input: NewCursor(input)}
}

// ContentChildren returns n's children with whitespace-only text nodes
// dropped; these never count as structure on either side of the walk.
func ContentChildren(t *mdast.Tree, n ast.Node) []ast.Node {
	var out []ast.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t.IsBlankText(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
