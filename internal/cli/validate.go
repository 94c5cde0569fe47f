package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/dgallion1/mdvalidate/internal/config"
	"github.com/dgallion1/mdvalidate/internal/render"
	"github.com/dgallion1/mdvalidate/internal/stream"
	"github.com/dgallion1/mdvalidate/internal/validator"
)

type validateOptions struct {
	fastFail bool
	quiet    bool
	output   string
}

func runValidate(cmd *cobra.Command, opts *validateOptions, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return exitWrap(1, "invalid configuration", err)
	}

	schemaArg, inputArg := args[0], args[1]
	outputArg := opts.output
	if len(args) == 3 {
		if outputArg != "" {
			return exitErr(1, "output given both as positional and --output")
		}
		outputArg = args[2]
	}

	schemaSrc, err := readSource(schemaArg)
	if err != nil {
		return exitWrap(1, "read schema", err)
	}

	input, inputName, err := openInput(inputArg)
	if err != nil {
		return exitWrap(1, "open input", err)
	}
	defer input.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	v := validator.New(schemaSrc)
	driver := stream.New(v, stream.Options{
		BufferSize: cfg.BufferSize,
		FastFail:   opts.fastFail,
		Logger:     log,
	})

	report, err := driver.Run(cmd.Context(), input)
	if err != nil {
		return exitWrap(1, "validation aborted", err)
	}

	if !report.Valid() {
		if !opts.quiet {
			r := render.New(useColor(cfg))
			fmt.Fprint(os.Stderr, r.Report(inputName, report.Input, report))
		}
		return exitErr(1, "validation failed")
	}

	if err := writeCaptures(outputArg, report); err != nil {
		return exitWrap(1, "write captures", err)
	}
	return nil
}

func readSource(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func openInput(arg string) (io.ReadCloser, string, error) {
	if arg == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, "", err
	}
	return f, arg, nil
}

func writeCaptures(outputArg string, report *validator.Report) error {
	out := os.Stdout
	if outputArg != "" && outputArg != "-" {
		f, err := os.Create(outputArg)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report.Value)
}

// useColor decides whether error rendering may style output.
func useColor(cfg config.Config) bool {
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
