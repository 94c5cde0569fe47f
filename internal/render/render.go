// Package render pretty-prints validation errors for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/mdvalidate/internal/validator"
)

type styles struct {
	header    lipgloss.Style
	location  lipgloss.Style
	source    lipgloss.Style
	caret     lipgloss.Style
	expected  lipgloss.Style
	found     lipgloss.Style
	pattern   lipgloss.Style
	dim       lipgloss.Style
	plaintext bool
}

func colorStyles() styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		location: lipgloss.NewStyle().Bold(true),
		source:   lipgloss.NewStyle(),
		caret:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		expected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		found:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		pattern:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		dim:      lipgloss.NewStyle().Faint(true),
	}
}

func plainStyles() styles {
	s := styles{plaintext: true}
	return s
}

// Renderer formats validation reports for stderr.
type Renderer struct {
	st styles
}

// New returns a renderer. color disables all styling when false, which is
// also what non-TTY output uses.
func New(color bool) *Renderer {
	if color {
		return &Renderer{st: colorStyles()}
	}
	return &Renderer{st: plainStyles()}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.st.plaintext {
		return text
	}
	return s.Render(text)
}

// Report renders every error in rep against the input source. name is the
// display name of the input ("stdin" or a path).
func (r *Renderer) Report(name string, input []byte, rep *validator.Report) string {
	if rep.Valid() {
		return ""
	}
	var b strings.Builder
	for i, e := range rep.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		r.renderError(&b, name, input, e)
	}
	return b.String()
}

func (r *Renderer) renderError(b *strings.Builder, name string, input []byte, e *validator.Error) {
	loc := fmt.Sprintf("%s:%d:%d", name, e.InputPos.Line, e.InputPos.Column)
	fmt.Fprintf(b, "%s %s %s\n",
		r.style(r.st.header, "error:"),
		r.style(r.st.location, loc),
		kindMessage(e.Kind),
	)

	if line, ok := sourceLine(input, e.InputPos.Line); ok {
		fmt.Fprintf(b, "  %s %s\n", r.style(r.st.dim, "|"), r.style(r.st.source, line))
		caret := strings.Repeat(" ", e.InputPos.Column-1) + "^"
		fmt.Fprintf(b, "  %s %s\n", r.style(r.st.dim, "|"), r.style(r.st.caret, caret))
	}

	if e.Expected != "" {
		fmt.Fprintf(b, "  expected: %s\n", r.style(r.st.expected, e.Expected))
	}
	if e.Found != "" {
		fmt.Fprintf(b, "  found:    %s\n", r.style(r.st.found, e.Found))
	}
	if e.Pattern != "" {
		fmt.Fprintf(b, "  pattern:  %s\n", r.style(r.st.pattern, e.Pattern))
	}
	if e.Detail != "" {
		fmt.Fprintf(b, "  %s\n", r.style(r.st.dim, e.Detail))
	}
	fmt.Fprintf(b, "  %s\n",
		r.style(r.st.dim, fmt.Sprintf("schema rule at %d:%d", e.SchemaPos.Line, e.SchemaPos.Column)))
}

func kindMessage(k validator.ErrKind) string {
	switch k {
	case validator.LiteralMismatch:
		return "literal content does not match the schema"
	case validator.NodeMismatch:
		return "document structure does not match the schema"
	case validator.MatcherMismatch:
		return "content does not match the schema pattern"
	case validator.QuantifierUnderflow:
		return "too few list items for the schema"
	case validator.QuantifierOverflow:
		return "more list items than the schema allows"
	case validator.DepthExceeded:
		return "nesting exceeds the allowed depth"
	case validator.MultipleMatchersInNode:
		return "schema node contains more than one matcher"
	case validator.SchemaParseError:
		return "schema is malformed"
	case validator.IncompleteInput:
		return "input ended before the schema was satisfied"
	}
	return string(k)
}

func sourceLine(src []byte, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	lines := strings.Split(string(src), "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}
