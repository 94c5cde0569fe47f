// Package matcher recognizes schema inline-code spans as matcher directives
// and evaluates their patterns against input node text.
//
// A directive has the form `label:pattern` where pattern is /regex/, text,
// number, html, or ruler. Quantifier, depth, and escape suffixes are read
// from the literal text immediately following the span.
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the pattern kind of a directive.
type Kind int

const (
	Regex Kind = iota
	Text
	Number
	HTML
	Ruler
)

func (k Kind) String() string {
	switch k {
	case Regex:
		return "regex"
	case Text:
		return "text"
	case Number:
		return "number"
	case HTML:
		return "html"
	case Ruler:
		return "ruler"
	}
	return "unknown"
}

// Unbounded marks a count with no upper limit.
const Unbounded = -1

// Directive is a parsed matcher directive, or an escaped literal span
// (EscapeLevel > 0, in which case the pattern fields are meaningless).
type Directive struct {
	// Label keys the capture; "_" suppresses it. Empty only for ruler.
	Label string
	Kind  Kind
	// Pattern is the original pattern text, kept for diagnostics.
	Pattern string

	re *regexp.Regexp

	Optional bool
	// Min and Max bound repetition in list context. Max == Unbounded means
	// no upper limit. Without a count suffix both are 1.
	Min      int
	Max      int
	HasCount bool
	// Depth caps nested list (or HTML element) depth; 0 means uncapped.
	Depth int
	// EscapeLevel: 0 directive, 1 literal span, 2 literal span + trailing "!".
	EscapeLevel int
	// SuffixLen is the number of bytes the suffix consumed from the
	// adjacent text node.
	SuffixLen int
}

var directiveRe = regexp.MustCompile(
	`^(?:(_|[A-Za-z_][A-Za-z0-9_]*):)?(?:/((?:\\.|[^/\\])*)/|(text|number|html|ruler))$`)

var numberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseSpan decides whether a code span with the given content is a matcher
// directive. trailing is the raw text immediately following the span within
// the same paragraph or list-item line.
//
// Returns (nil, nil) when the span is not a directive and validates
// literally; a Directive with EscapeLevel > 0 when an escape suffix forces a
// literal span; and an error for malformed suffixes or patterns.
func ParseSpan(content, trailing string) (*Directive, error) {
	// Escape markers apply even to spans whose interior is not a valid
	// directive, so they are checked before anything else.
	if strings.HasPrefix(trailing, "!") {
		level := 1
		if strings.HasPrefix(trailing[1:], "!") {
			level = 2
		}
		return &Directive{EscapeLevel: level, SuffixLen: level}, nil
	}

	m := directiveRe.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil {
		return nil, nil
	}
	label, body, word := m[1], m[2], m[3]

	sfx, err := parseSuffix(trailing)
	if err != nil {
		return nil, err
	}

	d := &Directive{
		Label:    label,
		Optional: sfx.optional,
		Min:      sfx.min,
		Max:      sfx.max,
		HasCount: sfx.hasCount,
		Depth:    sfx.depth,
	}
	if !sfx.hasCount {
		d.Min, d.Max = 1, 1
	}
	d.SuffixLen = sfx.length

	switch {
	case word == "ruler":
		d.Kind = Ruler
		d.Pattern = "ruler"
	case word != "":
		// text, number, html all require a label.
		if label == "" {
			return nil, nil
		}
		d.Pattern = word
		switch word {
		case "text":
			d.Kind = Text
		case "number":
			d.Kind = Number
		case "html":
			d.Kind = HTML
		}
	default:
		if label == "" {
			return nil, nil
		}
		d.Kind = Regex
		d.Pattern = strings.ReplaceAll(body, `\/`, `/`)
		re, err := regexp.Compile(`^(?:` + d.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid matcher regex /%s/: %w", d.Pattern, err)
		}
		d.re = re
	}

	return d, nil
}

// Match evaluates a text-shaped pattern (regex, text, number) against the
// flattened text of an input node. The text is trimmed before matching; the
// returned capture is the trimmed matched text.
func (d *Directive) Match(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	switch d.Kind {
	case Regex:
		if d.re.MatchString(trimmed) {
			return trimmed, true
		}
		return "", false
	case Text:
		if trimmed != "" {
			return trimmed, true
		}
		return "", false
	case Number:
		if numberRe.MatchString(trimmed) {
			return trimmed, true
		}
		return "", false
	}
	return "", false
}

// Capture reports whether successful matches should be recorded.
func (d *Directive) Capture() bool {
	return d.Label != "" && d.Label != "_"
}

func (d *Directive) String() string {
	if d.Label == "" {
		return d.Pattern
	}
	if d.Kind == Regex {
		return d.Label + ":/" + d.Pattern + "/"
	}
	return d.Label + ":" + d.Pattern
}
