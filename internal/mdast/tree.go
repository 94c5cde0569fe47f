// Package mdast wraps goldmark's Markdown AST with source-aware helpers:
// byte spans, line/column positions, flattened node text, and append-style
// re-parsing for a growing input buffer.
package mdast

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Tree is a parsed Markdown document together with its source buffer.
type Tree struct {
	src        []byte
	root       ast.Node
	lineStarts []int
}

// Parse parses src into a Tree.
func Parse(src []byte) *Tree {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))
	return &Tree{
		src:        src,
		root:       root,
		lineStarts: indexLines(src),
	}
}

// Extend re-parses with the full grown buffer. full must have the previous
// source as a prefix; the tree for the appended-to document replaces this one.
func (t *Tree) Extend(full []byte) *Tree {
	return Parse(full)
}

// Root returns the document node.
func (t *Tree) Root() ast.Node { return t.root }

// Source returns the source buffer the tree was parsed from.
func (t *Tree) Source() []byte { return t.src }

// Span returns the byte range [start, stop) of n in the source. Nodes with no
// source-backed content (e.g. empty containers) return (-1, -1).
func (t *Tree) Span(n ast.Node) (int, int) {
	switch v := n.(type) {
	case *ast.Text:
		return v.Segment.Start, v.Segment.Stop
	case *ast.RawHTML:
		if v.Segments.Len() > 0 {
			first := v.Segments.At(0)
			last := v.Segments.At(v.Segments.Len() - 1)
			return first.Start, last.Stop
		}
		return -1, -1
	}

	if n.Type() == ast.TypeBlock || n.Type() == ast.TypeDocument {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start, lines.At(lines.Len() - 1).Stop
		}
	}

	start, stop := -1, -1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cs, ce := t.Span(c)
		if cs < 0 {
			continue
		}
		if start < 0 || cs < start {
			start = cs
		}
		if ce > stop {
			stop = ce
		}
	}
	return start, stop
}

// Position is a location in a source buffer. Line and Column are 1-based.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// PositionAt converts a byte offset into a Position.
func (t *Tree) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.src) {
		offset = len(t.src)
	}
	line := sort.SearchInts(t.lineStarts, offset+1) - 1
	if line < 0 {
		line = 0
	}
	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - t.lineStarts[line] + 1,
	}
}

// NodePosition returns the position of the start of n.
func (t *Tree) NodePosition(n ast.Node) Position {
	start, _ := t.Span(n)
	if start < 0 {
		return t.PositionAt(len(t.src))
	}
	return t.PositionAt(start)
}

// EndOffset returns the offset just past the last non-whitespace byte of the
// source. Used to decide whether a node touches the end of the buffer.
func (t *Tree) EndOffset() int {
	return len(bytes.TrimRight(t.src, " \t\r\n"))
}

// AtEnd reports whether n extends to the end of the parsed content, i.e.
// appended bytes could still grow this node.
func (t *Tree) AtEnd(n ast.Node) bool {
	_, stop := t.Span(n)
	if stop < 0 {
		return true
	}
	return stop >= t.EndOffset()
}

func indexLines(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
