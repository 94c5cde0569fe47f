package validator

import (
	"fmt"

	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/capture"
	"github.com/dgallion1/mdvalidate/internal/matcher"
	"github.com/dgallion1/mdvalidate/internal/mdast"
	"github.com/dgallion1/mdvalidate/internal/walker"
)

// schemaItem is the analyzed form of one schema list item: its textual line,
// its directive (nil for literal items), its sublists, and its repetition
// bounds.
type schemaItem struct {
	node      ast.Node
	line      ast.Node
	cls       *matcher.Classification
	directive *matcher.Directive
	sublists  []ast.Node
	min, max  int
}

// label returns the capture label, or "" when nothing is captured.
func (it *schemaItem) label() string {
	if it.directive == nil || !it.directive.Capture() {
		return ""
	}
	return it.directive.Label
}

// objectMode reports whether matched items produce per-item objects. The
// shape is decided by the schema item's structure, never by the input. A
// suppressed label keeps object mode so its whole group is dropped together.
func (it *schemaItem) objectMode() bool {
	return len(it.sublists) > 0 && it.directive != nil
}

func (r *run) analyzeItem(sj ast.Node) (*schemaItem, *Error) {
	item := &schemaItem{node: sj, min: 1, max: 1}
	for _, c := range walker.ContentChildren(r.schema, sj) {
		if c.Kind() == ast.KindList {
			item.sublists = append(item.sublists, c)
			continue
		}
		if item.line == nil {
			item.line = c
		}
	}

	if item.line == nil {
		return item, nil
	}
	switch mdast.EffectiveKind(item.line) {
	case ast.KindParagraph, ast.KindHeading:
	default:
		return item, nil
	}

	cls := r.index.Classify(item.line)
	if cls.Err != nil {
		e := r.errAt(SchemaParseError, item.line, nil)
		e.Detail = cls.Err.Error()
		return nil, e
	}
	if cls.Count > 1 {
		e := r.errAt(MultipleMatchersInNode, item.line, nil)
		e.Detail = "a list item may contain at most one matcher directive"
		return nil, e
	}
	if cls.Count == 1 {
		item.cls = cls
		item.directive = cls.Directive
		item.min, item.max = cls.Directive.Min, cls.Directive.Max
		if cls.Directive.Optional {
			item.min = 0
		}
	}
	return item, nil
}

// validateList matches a schema list's items against a run of input items,
// enforcing each item's repetition bounds. Backtracking is limited to a
// single give-back step: when a schema item finds no home and its
// predecessor consumed more than its minimum, the last consumed input item
// is returned once and the failing item retried. Deeper search is
// deliberately excluded to keep validation linear in the input size.
func (r *run) validateList(sl, il ast.Node) (outcome, *Error) {
	S := walker.ContentChildren(r.schema, sl)
	I := walker.ContentChildren(r.input, il)

	p := 0
	var prev *schemaItem
	prevExtra := 0
	backtracked := false

	for j := 0; j < len(S); j++ {
		item, serr := r.analyzeItem(S[j])
		if serr != nil {
			return stepOK, serr
		}

		m := 0
		var lastErr *Error
		for (item.max == matcher.Unbounded || m < item.max) && p < len(I) {
			if item.directive != nil && item.directive.Depth > 0 {
				if mdast.MaxListDepth(I[p]) > item.directive.Depth {
					e := r.errAt(DepthExceeded, item.node, I[p])
					e.Pattern = item.directive.String()
					e.Detail = fmt.Sprintf("nested list depth exceeds d%d", item.directive.Depth)
					return stepOK, e
				}
			}

			obj, captured, out, err := r.matchListItem(item, I[p])
			if out == stepNeedMore {
				return stepNeedMore, nil
			}
			if err != nil {
				// Schema defects and depth violations are not item
				// mismatches; they abort the whole list branch.
				switch err.Kind {
				case SchemaParseError, MultipleMatchersInNode, DepthExceeded:
					return stepOK, err
				}
				lastErr = err
				break
			}
			r.commitItem(item, obj, captured)
			r.advance(I[p])
			p++
			m++
		}

		if m < item.min {
			if !r.gotEOF && (p >= len(I) || r.input.AtEnd(I[p])) {
				return stepNeedMore, nil
			}
			if !backtracked && prev != nil && prevExtra > 0 && m == 0 && p > 0 {
				r.uncommitLast(prev)
				p--
				backtracked = true
				j--
				continue
			}
			var at ast.Node
			if p < len(I) {
				at = I[p]
			}
			e := r.errAt(QuantifierUnderflow, item.node, at)
			e.Detail = fmt.Sprintf("matched %d item(s), schema requires at least %d", m, item.min)
			if item.directive != nil {
				e.Pattern = item.directive.String()
			}
			if lastErr != nil {
				e.Found = lastErr.Found
				e.Expected = lastErr.Expected
			}
			return stepOK, e
		}

		backtracked = false
		prev = item
		prevExtra = m - item.min
	}

	if p < len(I) {
		e := r.errAt(QuantifierOverflow, sl, I[p])
		e.Found = frag(mdast.CollapseSpace(r.input.PlainText(I[p])))
		e.Detail = "more list items than the schema allows"
		return stepOK, e
	}

	r.advance(il)
	return stepOK, nil
}

// matchListItem validates a single input item against a schema item with a
// provisional capture scope. Nothing is committed here; the caller commits
// on success so failed alternatives roll back cleanly.
func (r *run) matchListItem(item *schemaItem, ip ast.Node) (*capture.Value, string, outcome, *Error) {
	var ipLine ast.Node
	var ipSublists []ast.Node
	for _, c := range walker.ContentChildren(r.input, ip) {
		if c.Kind() == ast.KindList {
			ipSublists = append(ipSublists, c)
			continue
		}
		if ipLine == nil {
			ipLine = c
		}
	}

	// All trial captures land in a scratch scope; the caller merges or
	// appends it only once the item is accepted, so a failed alternative
	// rolls back by simply dropping the scope.
	scope := capture.Object()
	r.store.Push(scope)
	defer r.store.Pop()

	captured, out, err := r.matchItemLine(item, ip, ipLine)
	if err != nil || out == stepNeedMore {
		return nil, "", out, err
	}
	if item.objectMode() && captured != "" {
		r.store.Add(item.directive.Label, captured)
	}

	if len(item.sublists) == 0 && len(ipSublists) > 0 {
		e := r.errAt(NodeMismatch, item.node, ipSublists[0])
		e.Found = describeNode(r.input, ipSublists[0])
		e.Detail = "schema item does not allow a nested list"
		return nil, "", stepOK, e
	}

	// Pair sublists in order. A schema sublist with no counterpart in this
	// input item is vacuously satisfied; its bounds bind per occurrence.
	k := 0
	for _, ssub := range item.sublists {
		if k >= len(ipSublists) {
			continue
		}
		ssl := ssub.(*ast.List)
		isl := ipSublists[k].(*ast.List)
		if !mdast.SameListKind(ssl, isl) {
			continue
		}
		subOut, subErr := r.validateList(ssub, ipSublists[k])
		if subErr != nil || subOut == stepNeedMore {
			return nil, "", subOut, subErr
		}
		k++
	}
	if k < len(ipSublists) {
		e := r.errAt(NodeMismatch, item.node, ipSublists[k])
		e.Found = describeNode(r.input, ipSublists[k])
		e.Detail = "nested list not allowed by the schema item"
		return nil, "", stepOK, e
	}

	return scope, captured, stepOK, nil
}

// matchItemLine validates the textual line of an input item.
func (r *run) matchItemLine(item *schemaItem, ip, ipLine ast.Node) (string, outcome, *Error) {
	if item.line == nil {
		if ipLine != nil {
			e := r.errAt(NodeMismatch, item.node, ipLine)
			e.Found = describeNode(r.input, ipLine)
			e.Detail = "schema item has no line content"
			return "", stepOK, e
		}
		return "", stepOK, nil
	}
	if ipLine == nil {
		if r.frontier(ip) {
			return "", stepNeedMore, nil
		}
		e := r.errAt(NodeMismatch, item.line, ip)
		e.Expected = describeNode(r.schema, item.line)
		e.Detail = "input item has no line content"
		return "", stepOK, e
	}

	d := item.directive
	if d == nil {
		out, err := r.validateNode(item.line, ipLine)
		return "", out, err
	}

	switch d.Kind {
	case matcher.Ruler:
		if ipLine.Kind() == ast.KindThematicBreak {
			return "", stepOK, nil
		}
		if r.frontier(ipLine) {
			return "", stepNeedMore, nil
		}
		e := r.errAt(MatcherMismatch, item.line, ipLine)
		e.Pattern = d.String()
		e.Expected = "thematic break"
		e.Found = describeNode(r.input, ipLine)
		return "", stepOK, e
	case matcher.HTML:
		return r.htmlMatch(item.line, ipLine, d)
	}

	if out, err := r.checkTextualKind(item.line, ipLine); err != nil || out == stepNeedMore {
		return "", out, err
	}
	return r.matchDirectiveText(item.line, ipLine, item.cls)
}

func (r *run) commitItem(item *schemaItem, scope *capture.Value, captured string) {
	if item.objectMode() {
		r.store.Append(item.directive.Label, scope)
		return
	}
	if item.directive == nil {
		// Literal items group nothing; whatever their content captured
		// merges straight into the surrounding scope.
		scope.MergeInto(r.store.Scope())
		return
	}
	if item.directive.Kind == matcher.Ruler || item.label() == "" {
		return
	}
	r.store.Append(item.label(), capture.String(captured))
}

func (r *run) uncommitLast(item *schemaItem) {
	if label := item.label(); label != "" {
		r.store.Scope().RemoveLast(label)
	}
}
