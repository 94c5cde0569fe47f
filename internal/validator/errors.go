package validator

import (
	"fmt"

	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/mdast"
)

// ErrKind classifies a validation failure.
type ErrKind string

const (
	LiteralMismatch        ErrKind = "literal_mismatch"
	NodeMismatch           ErrKind = "node_mismatch"
	MatcherMismatch        ErrKind = "matcher_mismatch"
	QuantifierUnderflow    ErrKind = "quantifier_underflow"
	QuantifierOverflow     ErrKind = "quantifier_overflow"
	DepthExceeded          ErrKind = "depth_exceeded"
	MultipleMatchersInNode ErrKind = "multiple_matchers_in_node"
	SchemaParseError       ErrKind = "schema_parse_error"
	IncompleteInput        ErrKind = "incomplete_input"
)

// Error is a single validation failure. It carries both positions so the
// renderer can point at the schema rule and the offending input.
type Error struct {
	Kind      ErrKind        `json:"kind"`
	InputPos  mdast.Position `json:"input_position"`
	SchemaPos mdast.Position `json:"schema_position"`
	Expected  string         `json:"expected,omitempty"`
	Found     string         `json:"found,omitempty"`
	Pattern   string         `json:"pattern,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s at input %d:%d (schema %d:%d)",
		e.Kind, e.InputPos.Line, e.InputPos.Column, e.SchemaPos.Line, e.SchemaPos.Column)
	if e.Expected != "" || e.Found != "" {
		msg += fmt.Sprintf(": expected %q, found %q", e.Expected, e.Found)
	}
	if e.Pattern != "" {
		msg += fmt.Sprintf(" (pattern %s)", e.Pattern)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// fragmentLimit bounds expected/found fragments for display.
const fragmentLimit = 48

func frag(s string) string {
	if len(s) <= fragmentLimit {
		return s
	}
	return s[:fragmentLimit-1] + "…"
}

// describeNode names a node for mismatch messages.
func describeNode(t *mdast.Tree, n ast.Node) string {
	switch v := n.(type) {
	case *ast.Heading:
		return fmt.Sprintf("heading (level %d)", v.Level)
	case *ast.List:
		if v.IsOrdered() {
			return "ordered list"
		}
		return "bullet list"
	}
	return mdast.KindName(n)
}

func (r *run) errAt(kind ErrKind, sn, in ast.Node) *Error {
	e := &Error{Kind: kind}
	if sn != nil {
		e.SchemaPos = r.schema.NodePosition(sn)
	}
	if in != nil {
		e.InputPos = r.input.NodePosition(in)
	} else {
		e.InputPos = r.input.PositionAt(r.input.EndOffset())
	}
	return e
}
