package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/mdvalidate/internal/matcher"
	"github.com/dgallion1/mdvalidate/internal/mdast"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <schema>",
		Short: "Print the classified schema tree",
		Long:  "Parses a schema and prints its node tree with matcher directives, quantifiers, and escapes resolved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return exitWrap(1, "read schema", err)
			}
			tree := mdast.Parse(src)
			index := matcher.NewIndex(tree)
			printNode(cmd, tree, index, tree.Root(), 0)
			return nil
		},
	}
}

func printNode(cmd *cobra.Command, tree *mdast.Tree, index *matcher.Index, n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	pos := tree.NodePosition(n)
	line := fmt.Sprintf("%s%s %d:%d", indent, mdast.KindName(n), pos.Line, pos.Column)

	switch mdast.EffectiveKind(n) {
	case ast.KindParagraph, ast.KindHeading:
		cls := index.Classify(n)
		switch {
		case cls.Err != nil:
			line += fmt.Sprintf("  !malformed: %v", cls.Err)
		case cls.Count > 1:
			line += fmt.Sprintf("  !%d matchers (only one allowed)", cls.Count)
		case cls.Count == 1:
			line += "  matcher " + describeDirective(cls.Directive)
		default:
			if text := mdast.CollapseSpace(tree.PlainText(n)); text != "" {
				line += fmt.Sprintf("  %q", truncateText(text))
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeInline {
			continue
		}
		printNode(cmd, tree, index, c, depth+1)
	}
}

func describeDirective(d *matcher.Directive) string {
	s := d.String()
	if d.Optional {
		s += " optional"
	}
	if d.HasCount {
		if d.Max == matcher.Unbounded {
			s += fmt.Sprintf(" {%d,}", d.Min)
		} else {
			s += fmt.Sprintf(" {%d,%d}", d.Min, d.Max)
		}
	}
	if d.Depth > 0 {
		s += fmt.Sprintf(" d%d", d.Depth)
	}
	return s
}

func truncateText(s string) string {
	if len(s) <= 40 {
		return s
	}
	return s[:39] + "…"
}
