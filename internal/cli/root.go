// Package cli wires the mdvalidate command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the mdvalidate root command. The root itself runs a
// validation so `mdvalidate schema.mds input.md` works without a subcommand.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("MDVALIDATE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "mdvalidate <schema> <input> [<output>]",
		Short: "Validate Markdown documents against Markdown schemas",
		Long: "mdvalidate checks a Markdown document against a Markdown Schema (MDS)\n" +
			"and extracts labeled captures as JSON. Use \"-\" for stdin or stdout.",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.fastFail, "fast-fail", "f", false, "stop at the first validation error")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress error rendering; exit code only")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON captures to this path (\"-\" for stdout)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the mdvalidate version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mdvalidate version %s\n", version)
		},
	})
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}
