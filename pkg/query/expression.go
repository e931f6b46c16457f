// Package query compiles the textual predicate language into an
// executable pkg/expr tree and evaluates it against a stream of
// pkg/event events.
package query

import (
	"github.com/vastlabs/telemetry-query/pkg/event"
	"github.com/vastlabs/telemetry-query/pkg/expr"
)

// Expression is a compiled query: a root expr.Node plus the flat
// extractor list the compiler collected while building it. It owns
// its tree exclusively; the tree carries mutable per-evaluation state
// (reset after every Eval) and is not safe for concurrent Eval calls.
type Expression struct {
	source     string
	cfg        LowerConfig
	root       expr.Node
	extractors []expr.Extractor
	literals   []string
}

// Compile parses, validates, normalizes, and lowers text into an
// Expression. A syntax, semantic, or empty-query error aborts
// compilation and returns a nil Expression.
func Compile(text string, cfg LowerConfig) (*Expression, error) {
	tree, err := parseQuery(text)
	if err != nil {
		return nil, err
	}
	if err := validate(tree, text); err != nil {
		return nil, err
	}
	conjunctions := normalize(tree)
	lowered, err := lowerQuery(conjunctions, cfg)
	if err != nil {
		return nil, err
	}
	return &Expression{
		source:     text,
		cfg:        cfg,
		root:       lowered.root,
		extractors: lowered.extractors,
		literals:   lowered.literals,
	}, nil
}

// Parse compiles text with the default LowerConfig (hardcoded offset
// [0] for event clauses).
func Parse(text string) (*Expression, error) {
	return Compile(text, LowerConfig{})
}

// Source returns the text the expression was compiled from.
func (x *Expression) Source() string { return x.source }

// Extractors returns the flat extractor list collected during
// lowering. The slice is owned by the expression and must not be
// mutated.
func (x *Expression) Extractors() []expr.Extractor { return x.extractors }

// Literals returns string constants (from equality and event-name
// clauses) at least one of which every matching event contains
// verbatim, for Set's literal prefilter. It is empty when some
// disjunct of the query carries no such constant.
func (x *Expression) Literals() []string { return x.literals }

// Eval feeds e to every extractor, drives the root node to readiness,
// reads its Boolean result, resets the tree, and returns the result.
// The event is borrowed only for the duration of this call.
func (x *Expression) Eval(e *event.Event) bool {
	for _, ex := range x.extractors {
		ex.Feed(e)
	}
	for !x.root.Ready() {
		x.root.Eval()
	}
	result, _ := x.root.Result().Bool()
	x.root.Reset()
	return result
}

// Copy recompiles a fresh, independent Expression from the stored
// source text. Copying is a deliberate recompile rather than a deep
// clone: node state is local to one evaluator and not worth cloning.
func (x *Expression) Copy() (*Expression, error) {
	return Compile(x.source, x.cfg)
}
