package validator

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/capture"
	"github.com/dgallion1/mdvalidate/internal/matcher"
	"github.com/dgallion1/mdvalidate/internal/mdast"
	"github.com/dgallion1/mdvalidate/internal/walker"
)

// outcome signals how a binode step ended when no error was produced.
// stepNeedMore means the input ran out (or is still growing) before the
// schema was satisfied; the top level decides whether that is an error.
type outcome int

const (
	stepOK outcome = iota
	stepNeedMore
)

// run holds the state of one validation attempt.
type run struct {
	schema *mdast.Tree
	input  *mdast.Tree
	index  *matcher.Index
	store  *capture.Store
	gotEOF bool
	// farthest is the greatest input byte offset successfully advanced past.
	farthest int
}

// advance records that in was fully consumed.
func (r *run) advance(in ast.Node) {
	_, stop := r.input.Span(in)
	if stop > r.farthest {
		r.farthest = stop
	}
}

// frontier reports whether in touches the end of the growing buffer, i.e.
// appended bytes could still change the verdict for this node.
func (r *run) frontier(in ast.Node) bool {
	return !r.gotEOF && (in == nil || r.input.AtEnd(in))
}

// validateNode compares one schema node against one input node and recurses.
func (r *run) validateNode(sn, in ast.Node) (outcome, *Error) {
	switch mdast.EffectiveKind(sn) {
	case ast.KindDocument:
		return r.validateChildren(sn, in)

	case ast.KindParagraph, ast.KindHeading:
		cls := r.index.Classify(sn)
		if cls.Err != nil {
			e := r.errAt(SchemaParseError, sn, in)
			e.Detail = cls.Err.Error()
			return stepOK, e
		}
		if cls.Count > 1 {
			e := r.errAt(MultipleMatchersInNode, sn, in)
			e.Detail = "a node may contain at most one matcher directive"
			return stepOK, e
		}
		if cls.Count == 1 {
			return r.validateMatcherNode(sn, in, cls)
		}
		return r.validateLiteralTextual(sn, in, cls)

	case ast.KindList:
		il, ok := in.(*ast.List)
		if !ok || !mdast.SameListKind(sn.(*ast.List), il) {
			e := r.errAt(NodeMismatch, sn, in)
			e.Expected = describeNode(r.schema, sn)
			e.Found = describeNode(r.input, in)
			return stepOK, e
		}
		return r.validateList(sn, in)

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return r.validateCodeBlock(sn, in)

	case ast.KindThematicBreak:
		if in.Kind() != ast.KindThematicBreak {
			e := r.errAt(NodeMismatch, sn, in)
			e.Expected = "thematic break"
			e.Found = describeNode(r.input, in)
			return stepOK, e
		}
		r.advance(in)
		return stepOK, nil

	case ast.KindBlockquote:
		if mdast.EffectiveKind(in) != ast.KindBlockquote {
			e := r.errAt(NodeMismatch, sn, in)
			e.Expected = "block quote"
			e.Found = describeNode(r.input, in)
			return stepOK, e
		}
		return r.validateChildren(sn, in)

	case ast.KindHTMLBlock, ast.KindRawHTML:
		return r.validateHTMLLiteral(sn, in)
	}

	// Other block kinds compare structurally: same kind, then children.
	if mdast.EffectiveKind(sn) != mdast.EffectiveKind(in) {
		e := r.errAt(NodeMismatch, sn, in)
		e.Expected = describeNode(r.schema, sn)
		e.Found = describeNode(r.input, in)
		return stepOK, e
	}
	if sn.HasChildren() || in.HasChildren() {
		return r.validateChildren(sn, in)
	}
	r.advance(in)
	return stepOK, nil
}

// validateChildren walks the content children of both nodes in lockstep,
// skipping whitespace-only nodes and handing matching list pairs to the
// list validator.
func (r *run) validateChildren(sn, in ast.Node) (outcome, *Error) {
	ss := walker.ContentChildren(r.schema, sn)
	is := walker.ContentChildren(r.input, in)

	si, ii := 0, 0
	for si < len(ss) {
		sc := ss[si]

		if ii >= len(is) {
			if r.optionalNode(sc) {
				si++
				continue
			}
			if !r.gotEOF {
				return stepNeedMore, nil
			}
			e := r.errAt(IncompleteInput, sc, nil)
			e.Expected = describeNode(r.schema, sc)
			e.Detail = "input ended before the schema was satisfied"
			return stepOK, e
		}

		ic := is[ii]
		out, err := r.validateNode(sc, ic)
		if err != nil {
			if r.optionalNode(sc) {
				si++
				continue
			}
			if err.Kind == NodeMismatch && r.frontier(ic) &&
				mdast.CollapseSpace(r.input.PlainText(ic)) == "" {
				return stepNeedMore, nil
			}
			return stepOK, err
		}
		if out == stepNeedMore {
			return stepNeedMore, nil
		}
		si++
		ii++
	}

	if ii < len(is) {
		// Extra input at the growing edge of the buffer is deferred until
		// EOF; the final attempt turns it into a hard error.
		if r.frontier(is[len(is)-1]) {
			return stepNeedMore, nil
		}
		e := r.errAt(NodeMismatch, sn, is[ii])
		e.Found = describeNode(r.input, is[ii])
		e.Detail = "content after the schema was satisfied"
		return stepOK, e
	}
	return stepOK, nil
}

// optionalNode reports whether a schema node may be skipped entirely: a
// textual node whose single directive carries the "?" suffix.
func (r *run) optionalNode(sc ast.Node) bool {
	switch mdast.EffectiveKind(sc) {
	case ast.KindParagraph, ast.KindHeading:
	default:
		return false
	}
	cls := r.index.Classify(sc)
	return cls.Err == nil && cls.Count == 1 && cls.Directive.Optional
}

// validateMatcherNode handles a textual schema node classified as a matcher.
func (r *run) validateMatcherNode(sn, in ast.Node, cls *matcher.Classification) (outcome, *Error) {
	d := cls.Directive

	switch d.Kind {
	case matcher.Ruler:
		// Rulers assert structure only; they never capture.
		if in.Kind() == ast.KindThematicBreak {
			r.advance(in)
			return stepOK, nil
		}
		if r.frontier(in) {
			return stepNeedMore, nil
		}
		e := r.errAt(MatcherMismatch, sn, in)
		e.Pattern = d.String()
		e.Expected = "thematic break"
		e.Found = describeNode(r.input, in)
		return stepOK, e

	case matcher.HTML:
		fragment, out, err := r.htmlMatch(sn, in, d)
		if err != nil || out == stepNeedMore {
			return out, err
		}
		if d.Capture() {
			r.store.Add(d.Label, fragment)
		}
		r.advance(in)
		return stepOK, nil
	}

	// Text-shaped matcher: the input node must agree structurally with the
	// schema node carrying the directive.
	if out, err := r.checkTextualKind(sn, in); err != nil || out == stepNeedMore {
		return out, err
	}

	captured, out, err := r.matchDirectiveText(sn, in, cls)
	if err != nil || out == stepNeedMore {
		return out, err
	}
	if d.Capture() {
		r.store.Add(d.Label, captured)
	}
	r.advance(in)
	return stepOK, nil
}

// htmlMatch checks an html-shaped matcher against in and returns the raw
// fragment. It commits nothing; callers decide how to record the capture.
func (r *run) htmlMatch(sn, in ast.Node, d *matcher.Directive) (string, outcome, *Error) {
	if !r.isHTMLContent(in) {
		if r.frontier(in) {
			return "", stepNeedMore, nil
		}
		e := r.errAt(MatcherMismatch, sn, in)
		e.Pattern = d.String()
		e.Expected = "html"
		e.Found = describeNode(r.input, in)
		return "", stepOK, e
	}
	fragment := strings.TrimSpace(r.input.PlainText(in))
	if d.Depth > 0 {
		if depth := matcher.HTMLDepth(fragment); depth > d.Depth {
			e := r.errAt(DepthExceeded, sn, in)
			e.Pattern = d.String()
			e.Detail = "html element nesting exceeds the allowed depth"
			return "", stepOK, e
		}
	}
	return fragment, stepOK, nil
}

// isHTMLContent accepts html blocks and paragraphs that are raw inline HTML.
func (r *run) isHTMLContent(in ast.Node) bool {
	if mdast.IsHTMLNode(in) {
		return true
	}
	if mdast.EffectiveKind(in) != ast.KindParagraph {
		return false
	}
	sawHTML := false
	for _, c := range walker.ContentChildren(r.input, in) {
		switch c.Kind() {
		case ast.KindRawHTML:
			sawHTML = true
		case ast.KindText:
		default:
			return false
		}
	}
	return sawHTML
}

// checkTextualKind enforces kind (and heading level) agreement between a
// textual schema node and the input node.
func (r *run) checkTextualKind(sn, in ast.Node) (outcome, *Error) {
	if mdast.EffectiveKind(sn) != mdast.EffectiveKind(in) {
		e := r.errAt(NodeMismatch, sn, in)
		e.Expected = describeNode(r.schema, sn)
		e.Found = describeNode(r.input, in)
		return stepOK, e
	}
	if sh, ok := sn.(*ast.Heading); ok {
		ih := in.(*ast.Heading)
		if sh.Level != ih.Level {
			e := r.errAt(NodeMismatch, sn, in)
			e.Expected = describeNode(r.schema, sn)
			e.Found = describeNode(r.input, in)
			return stepOK, e
		}
	}
	return stepOK, nil
}

// matchDirectiveText validates the literal text surrounding the directive
// and evaluates the pattern against what remains of the input node's text.
// Unlike literal comparison, the matcher path only trims: interior
// whitespace reaches the pattern untouched, and the capture keeps the exact
// matched input text.
func (r *run) matchDirectiveText(sn, in ast.Node, cls *matcher.Classification) (string, outcome, *Error) {
	d := cls.Directive
	pre := strings.TrimSpace(renderInlineRange(r.schema, sn.FirstChild(), cls.Span, cls.Escapes, 0))
	post := strings.TrimSpace(renderInlineRange(r.schema, cls.Span.NextSibling(), nil, cls.Escapes, d.SuffixLen))
	found := strings.TrimSpace(r.input.PlainText(in))

	work := found
	if pre != "" {
		if !strings.HasPrefix(work, pre) {
			if r.frontier(in) && strings.HasPrefix(pre, work) {
				return "", stepNeedMore, nil
			}
			e := r.errAt(LiteralMismatch, sn, in)
			e.Expected = frag(pre)
			e.Found = frag(found)
			return "", stepOK, e
		}
		work = strings.TrimPrefix(work, pre)
	}
	if post != "" {
		if !strings.HasSuffix(work, post) {
			if r.frontier(in) {
				return "", stepNeedMore, nil
			}
			e := r.errAt(LiteralMismatch, sn, in)
			e.Expected = frag(post)
			e.Found = frag(found)
			return "", stepOK, e
		}
		work = strings.TrimSuffix(work, post)
	}

	captured, ok := d.Match(work)
	if !ok {
		if r.frontier(in) {
			return "", stepNeedMore, nil
		}
		e := r.errAt(MatcherMismatch, sn, in)
		e.Pattern = d.String()
		e.Found = frag(strings.TrimSpace(work))
		return "", stepOK, e
	}
	return captured, stepOK, nil
}

// validateLiteralTextual compares two textual nodes for literal equality
// under whitespace collapse.
func (r *run) validateLiteralTextual(sn, in ast.Node, cls *matcher.Classification) (outcome, *Error) {
	if out, err := r.checkTextualKind(sn, in); err != nil || out == stepNeedMore {
		return out, err
	}

	expected := mdast.CollapseSpace(renderInlineRange(r.schema, sn.FirstChild(), nil, cls.Escapes, 0))
	found := mdast.CollapseSpace(renderInlineRange(r.input, in.FirstChild(), nil, nil, 0))

	if expected == found {
		r.advance(in)
		return stepOK, nil
	}
	if r.frontier(in) && strings.HasPrefix(expected, found) {
		return stepNeedMore, nil
	}
	e := r.errAt(LiteralMismatch, sn, in)
	e.Expected = frag(expected)
	e.Found = frag(found)
	return stepOK, e
}

// validateCodeBlock compares fence language and verbatim content.
func (r *run) validateCodeBlock(sn, in ast.Node) (outcome, *Error) {
	if mdast.EffectiveKind(sn) != mdast.EffectiveKind(in) {
		e := r.errAt(NodeMismatch, sn, in)
		e.Expected = describeNode(r.schema, sn)
		e.Found = describeNode(r.input, in)
		return stepOK, e
	}
	if sf, ok := sn.(*ast.FencedCodeBlock); ok {
		inf := in.(*ast.FencedCodeBlock)
		slang := string(sf.Language(r.schema.Source()))
		ilang := string(inf.Language(r.input.Source()))
		if slang != ilang {
			e := r.errAt(LiteralMismatch, sn, in)
			e.Expected = slang
			e.Found = ilang
			e.Detail = "code fence language differs"
			return stepOK, e
		}
	}

	expected := strings.TrimRight(r.schema.PlainText(sn), "\n")
	found := strings.TrimRight(r.input.PlainText(in), "\n")
	if expected == found {
		r.advance(in)
		return stepOK, nil
	}
	if r.frontier(in) && strings.HasPrefix(expected, found) {
		return stepNeedMore, nil
	}
	e := r.errAt(LiteralMismatch, sn, in)
	e.Expected = frag(expected)
	e.Found = frag(found)
	return stepOK, e
}

// validateHTMLLiteral compares raw HTML content byte-for-byte modulo
// surrounding whitespace.
func (r *run) validateHTMLLiteral(sn, in ast.Node) (outcome, *Error) {
	if !mdast.IsHTMLNode(in) {
		e := r.errAt(NodeMismatch, sn, in)
		e.Expected = "html"
		e.Found = describeNode(r.input, in)
		return stepOK, e
	}
	expected := strings.TrimSpace(r.schema.PlainText(sn))
	found := strings.TrimSpace(r.input.PlainText(in))
	if expected == found {
		r.advance(in)
		return stepOK, nil
	}
	if r.frontier(in) && strings.HasPrefix(expected, found) {
		return stepNeedMore, nil
	}
	e := r.errAt(LiteralMismatch, sn, in)
	e.Expected = frag(expected)
	e.Found = frag(found)
	return stepOK, e
}
