// Package stream drives repeated validation attempts over a growing input
// byte stream. The validator itself is synchronous and pure; the driver owns
// the read loop, the EOF decision, and the fast-fail exit.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dgallion1/mdvalidate/internal/validator"
)

// Options configure a Driver.
type Options struct {
	// BufferSize is the chunk size for each read. Zero uses 2048.
	BufferSize int
	// FastFail stops at the first attempt that reports errors.
	FastFail bool
	Logger   *slog.Logger
}

// Driver reads input incrementally and re-validates after each chunk.
type Driver struct {
	v        *validator.Validator
	bufSize  int
	fastFail bool
	log      *slog.Logger
}

func New(v *validator.Validator, opts Options) *Driver {
	size := opts.BufferSize
	if size <= 0 {
		size = 2048
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Driver{v: v, bufSize: size, fastFail: opts.FastFail, log: log}
}

// Run consumes r to EOF, validating after every chunk. The returned report
// is from the final attempt: either the first failing one under fast-fail,
// or the attempt made with EOF asserted.
func (d *Driver) Run(ctx context.Context, r io.Reader) (*validator.Report, error) {
	var input []byte
	buf := make([]byte, d.bufSize)
	farthest := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			input = append(input, buf[:n]...)

			report := d.v.Validate(input, false)
			if report.Farthest.Offset > farthest {
				farthest = report.Farthest.Offset
			}
			d.log.Debug("validation attempt",
				"bytes", len(input),
				"farthest", farthest,
				"errors", len(report.Errors),
			)
			if d.fastFail && !report.Valid() {
				return report, nil
			}
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return nil, readErr
			}
			break
		}
	}

	report := d.v.Validate(input, true)
	d.log.Debug("final validation",
		"bytes", len(input),
		"farthest", report.Farthest.Offset,
		"errors", len(report.Errors),
	)
	return report, nil
}
