package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, schema, input string, eof bool) *Report {
	t.Helper()
	return New([]byte(schema)).Validate([]byte(input), eof)
}

func capturesJSON(t *testing.T, rep *Report) string {
	t.Helper()
	b, err := rep.Value.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func requireValid(t *testing.T, rep *Report, msgAndArgs ...any) {
	t.Helper()
	if len(msgAndArgs) == 0 {
		msgAndArgs = []any{"expected no errors, got: %v", rep.Errors}
	}
	require.Empty(t, rep.Errors, msgAndArgs...)
}

func requireKind(t *testing.T, rep *Report, kind ErrKind) *Error {
	t.Helper()
	require.Len(t, rep.Errors, 1)
	require.Equal(t, kind, rep.Errors[0].Kind, "got: %v", rep.Errors[0])
	return rep.Errors[0]
}

func TestHeadingMatcher(t *testing.T) {
	rep := validate(t, "# Hi `name:/[A-Za-z]+/`", "# Hi Wolf", true)
	requireValid(t, rep)
	assert.Equal(t, `{"name":"Wolf"}`, capturesJSON(t, rep))
}

func TestHeadingMatcher_PatternRejected(t *testing.T) {
	rep := validate(t, "# Hi `name:/[A-Za-z]+/`", "# Hi 1234", true)
	e := requireKind(t, rep, MatcherMismatch)
	assert.Equal(t, "name:/[A-Za-z]+/", e.Pattern)
}

func TestHeadingLevelMismatch(t *testing.T) {
	rep := validate(t, "## Heading", "# Heading", true)
	e := requireKind(t, rep, NodeMismatch)
	assert.Contains(t, e.Expected, "level 2")
	assert.Contains(t, e.Found, "level 1")
}

func TestMultipleMatchersInOneNode(t *testing.T) {
	rep := validate(t, "`id:/test/` `id:/example/`", "anything", true)
	requireKind(t, rep, MultipleMatchersInNode)
}

func TestLiteralParagraph(t *testing.T) {
	rep := validate(t, "Hello World", "Hello World", true)
	requireValid(t, rep)
	assert.True(t, rep.Value.Empty())

	rep = validate(t, "Hello World", "Hello Wolf", true)
	requireKind(t, rep, LiteralMismatch)
}

func TestLiteralWhitespaceCollapses(t *testing.T) {
	rep := validate(t, "Hello    World", "Hello World", true)
	requireValid(t, rep)

	rep = validate(t, "Hello World", "Hello\nWorld", true)
	requireValid(t, rep, "a soft line break collapses to a space")
}

func TestSurroundingLiteralTextAroundMatcher(t *testing.T) {
	rep := validate(t, "Count: `n:number` items", "Count: 42 items", true)
	requireValid(t, rep)
	assert.Equal(t, `{"n":"42"}`, capturesJSON(t, rep))

	rep = validate(t, "Count: `n:number` items", "Total: 42 items", true)
	requireKind(t, rep, LiteralMismatch)

	rep = validate(t, "Count: `n:number` items", "Count: 42 things", true)
	requireKind(t, rep, LiteralMismatch)
}

func TestMatcherSeesExactInteriorWhitespace(t *testing.T) {
	// Matching trims the ends but never normalizes interior whitespace:
	// a single-space pattern must reject a double space, and a successful
	// capture keeps the input text exactly as written.
	schema := "`pair:/\\w+ \\w+/`"

	rep := validate(t, schema, "one two", true)
	requireValid(t, rep)
	assert.Equal(t, `{"pair":"one two"}`, capturesJSON(t, rep))

	rep = validate(t, schema, "one  two", true)
	requireKind(t, rep, MatcherMismatch)
}

func TestUnderscoreLabelSuppressed(t *testing.T) {
	rep := validate(t, "# Hi `_:/[A-Za-z]+/`", "# Hi Wolf", true)
	requireValid(t, rep)
	assert.True(t, rep.Value.Empty())
}

func TestEmptySchemaEmptyInput(t *testing.T) {
	rep := validate(t, "", "", true)
	requireValid(t, rep)
	assert.True(t, rep.Value.Empty())
}

func TestEmptyInputWithRequiredSchema(t *testing.T) {
	rep := validate(t, "# Required", "", true)
	requireKind(t, rep, IncompleteInput)

	rep = validate(t, "# Required", "", false)
	requireValid(t, rep)
	assert.True(t, rep.NeedMore)
}

func TestRulerMatcher(t *testing.T) {
	for _, input := range []string{"---", "***", "___"} {
		rep := validate(t, "`ruler`", input, true)
		requireValid(t, rep)
		assert.True(t, rep.Value.Empty())
	}

	rep := validate(t, "`ruler`", "not a ruler", true)
	requireKind(t, rep, MatcherMismatch)
}

func TestLiteralThematicBreak(t *testing.T) {
	rep := validate(t, "---", "***", true)
	requireValid(t, rep, "any thematic break matches a thematic break")

	rep = validate(t, "---", "a paragraph", true)
	requireKind(t, rep, NodeMismatch)
}

func TestEscapedSpanIsLiteral(t *testing.T) {
	rep := validate(t, "`name:/\\w+/`!", "`name:/\\w+/`", true)
	requireValid(t, rep)
	assert.True(t, rep.Value.Empty())

	rep = validate(t, "`name:/\\w+/`!", "some word", true)
	requireKind(t, rep, LiteralMismatch)
}

func TestDoubleEscapeKeepsOneBang(t *testing.T) {
	rep := validate(t, "`name:/\\w+/`!!", "`name:/\\w+/`!", true)
	requireValid(t, rep)
}

func TestOptionalMatcherNodeSkipped(t *testing.T) {
	schema := "`intro:/\\w+/`?\n\n# Title"

	rep := validate(t, schema, "# Title", true)
	requireValid(t, rep)
	assert.True(t, rep.Value.Empty())

	rep = validate(t, schema, "hello\n\n# Title", true)
	requireValid(t, rep)
	assert.Equal(t, `{"intro":"hello"}`, capturesJSON(t, rep))
}

func TestHTMLMatcher(t *testing.T) {
	rep := validate(t, "`frag:html`d2", "<div><span>hi</span></div>", true)
	requireValid(t, rep)
	assert.Equal(t, `{"frag":"<div><span>hi</span></div>"}`, capturesJSON(t, rep))
}

func TestHTMLMatcherDepthExceeded(t *testing.T) {
	rep := validate(t, "`frag:html`d1", "<div><span>hi</span></div>", true)
	requireKind(t, rep, DepthExceeded)
}

func TestHTMLMatcherDepthZeroUnbounded(t *testing.T) {
	rep := validate(t, "`frag:html`", "<div><span><b><i>x</i></b></span></div>", true)
	requireValid(t, rep)
}

func TestHTMLMatcherRejectsNonHTML(t *testing.T) {
	rep := validate(t, "`frag:html`", "just text", true)
	requireKind(t, rep, MatcherMismatch)
}

func TestCodeBlockLiteral(t *testing.T) {
	schema := "```go\nfmt.Println(x)\n```"

	rep := validate(t, schema, "```go\nfmt.Println(x)\n```", true)
	requireValid(t, rep)

	rep = validate(t, schema, "```go\nfmt.Println(y)\n```", true)
	requireKind(t, rep, LiteralMismatch)

	rep = validate(t, schema, "```rust\nfmt.Println(x)\n```", true)
	e := requireKind(t, rep, LiteralMismatch)
	assert.Contains(t, e.Detail, "language")
}

func TestSchemaParseErrorSurfaces(t *testing.T) {
	rep := validate(t, "`bad:/[unclosed/`", "anything", true)
	requireKind(t, rep, SchemaParseError)
}

func TestContentAfterSchemaEnd(t *testing.T) {
	rep := validate(t, "# A", "# A\n\nextra content", true)
	requireKind(t, rep, NodeMismatch)

	rep = validate(t, "# A", "# A\n\nextra content", false)
	requireValid(t, rep, "trailing content is deferred until EOF")
	assert.True(t, rep.NeedMore)
}

// Identity: any document used as a pure literal schema accepts itself.
func TestIdentityProperty(t *testing.T) {
	docs := []string{
		"# Title\n\nSome *styled* text with `code`.\n",
		"- one\n- two\n  - nested\n",
		"1. first\n2. second\n",
		"> quoted text\n",
		"# A\n\n---\n\npara\n\n```py\nprint(1)\n```\n",
		"A [link](https://example.com) here.\n",
	}
	for _, doc := range docs {
		rep := validate(t, doc, doc, true)
		require.Empty(t, rep.Errors, "doc %q should accept itself: %v", doc, rep.Errors)
		assert.True(t, rep.Value.Empty(), "identity validation must not capture")
	}
}

func TestStreamingLiteralPrefix(t *testing.T) {
	rep := validate(t, "Hello World", "Hello Wo", false)
	requireValid(t, rep)
	assert.True(t, rep.NeedMore)

	rep = validate(t, "Hello World", "Hello Wo", true)
	requireKind(t, rep, LiteralMismatch)
}

func TestStreamingMismatchIsImmediate(t *testing.T) {
	// "Hxllo" can never grow into "Hello ...": fail before EOF.
	rep := validate(t, "Hello World", "Hxllo", false)
	requireKind(t, rep, LiteralMismatch)
}

func TestMonotonicProgress(t *testing.T) {
	schema := "# Title\n\nfirst paragraph\n\nsecond paragraph\n"
	full := "# Title\n\nfirst paragraph\n\nsecond paragraph\n"

	v := New([]byte(schema))
	last := 0
	for cut := 0; cut <= len(full); cut += 7 {
		end := cut
		if end > len(full) {
			end = len(full)
		}
		rep := v.Validate([]byte(full[:end]), false)
		require.Empty(t, rep.Errors, "prefix %q", full[:end])
		assert.GreaterOrEqual(t, rep.Farthest.Offset, last,
			"farthest position must never decrease")
		last = rep.Farthest.Offset
	}
}

func TestCaptureStability(t *testing.T) {
	schema := "- `item:/[A-Z][a-z]+/`{2,2}\n  - `note:/\\w+/`{,2}\n"
	partial := "- Apples\n  - organic\n"
	full := "- Apples\n  - organic\n  - local\n- Bananas\n  - ripe\n"

	v := New([]byte(schema))

	rep1 := v.Validate([]byte(partial), false)
	requireValid(t, rep1)
	items := rep1.Value.Get("item")
	require.NotNil(t, items, "partial attempt should already hold the first item")
	require.Len(t, items.Items(), 1)
	assert.Equal(t, "Apples", items.Items()[0].Get("item").Str())

	rep2 := v.Validate([]byte(full), false)
	requireValid(t, rep2)
	items2 := rep2.Value.Get("item")
	require.NotNil(t, items2)
	require.Len(t, items2.Items(), 2)
	assert.Equal(t, "Apples", items2.Items()[0].Get("item").Str(),
		"captures from earlier attempts stay at the same path")
}

func TestDeterminism(t *testing.T) {
	schema := "# Hi `name:/[A-Za-z]+/`"
	input := "# Hi Wolf"

	a := validate(t, schema, input, true)
	b := validate(t, schema, input, true)

	assert.Equal(t, capturesJSON(t, a), capturesJSON(t, b))
	assert.Equal(t, a.Errors, b.Errors)
	assert.Equal(t, a.Farthest, b.Farthest)
}
