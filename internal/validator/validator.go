// Package validator walks a Markdown schema tree and an input tree in
// lockstep, enforcing literal content, matcher patterns, and list
// quantifiers, and collecting labeled captures.
//
// A validation attempt is a pure function of (schema, input, gotEOF): it
// holds no mutable state between attempts beyond the farthest position the
// driver uses to measure streaming progress.
package validator

import (
	"github.com/dgallion1/mdvalidate/internal/capture"
	"github.com/dgallion1/mdvalidate/internal/matcher"
	"github.com/dgallion1/mdvalidate/internal/mdast"
	"github.com/dgallion1/mdvalidate/internal/walker"
)

// Validator validates inputs against one parsed schema. The schema tree and
// its matcher classification are shared across attempts; each attempt
// re-walks from the root.
type Validator struct {
	schema *mdast.Tree
	index  *matcher.Index
}

// New parses schemaSrc into a reusable Validator. Malformed matcher spans
// inside the schema surface lazily, as SchemaParseError, on the first
// attempt that visits them.
func New(schemaSrc []byte) *Validator {
	tree := mdast.Parse(schemaSrc)
	return &Validator{schema: tree, index: matcher.NewIndex(tree)}
}

// SchemaTree exposes the parsed schema, mainly for inspection tooling.
func (v *Validator) SchemaTree() *mdast.Tree { return v.schema }

// Report is the result of one validation attempt.
type Report struct {
	Errors []*Error `json:"errors"`
	// Value holds the captures collected so far; partial on failure or on
	// an attempt that is still waiting for input.
	Value *capture.Value `json:"captures"`
	// Farthest is the farthest input position successfully advanced past.
	Farthest mdast.Position `json:"farthest_reached"`
	// NeedMore is set when the walk ran off the end of the input before
	// EOF was asserted; the driver should feed more bytes and retry.
	NeedMore bool `json:"-"`
	// Input is the source buffer this attempt validated, kept for error
	// rendering.
	Input []byte `json:"-"`
}

// Valid reports whether the attempt produced no errors.
func (rp *Report) Valid() bool { return len(rp.Errors) == 0 }

// Validate runs one attempt of inputSrc against the schema. When gotEOF is
// false, running out of input is not an error: the report comes back with
// no errors, NeedMore set, and the farthest position reached.
func (v *Validator) Validate(inputSrc []byte, gotEOF bool) *Report {
	input := mdast.Parse(inputSrc)
	w := walker.New(v.schema, input)

	r := &run{
		schema: v.schema,
		input:  input,
		index:  v.index,
		store:  capture.NewStore(),
		gotEOF: gotEOF,
	}

	out, err := r.validateNode(w.Schema.Node(), w.Input.Node())

	rep := &Report{
		Value:    r.store.Root(),
		Farthest: input.PositionAt(r.farthest),
		Input:    inputSrc,
	}
	switch {
	case err != nil:
		rep.Errors = append(rep.Errors, err)
	case out == stepNeedMore && gotEOF:
		e := &Error{
			Kind:     IncompleteInput,
			InputPos: rep.Farthest,
			Detail:   "input ended before the schema was satisfied",
		}
		rep.Errors = append(rep.Errors, e)
	case out == stepNeedMore:
		rep.NeedMore = true
	}
	return rep
}
