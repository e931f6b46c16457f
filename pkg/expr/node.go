// Package expr implements the expression tree: a heterogeneous tree
// of extractor, constant, relational, and n-ary Boolean nodes, each
// capable of lazy, re-entrant evaluation with a single ready/result
// cell.
package expr

import "github.com/vastlabs/telemetry-query/pkg/value"

// Node is the contract every tree node satisfies:
//   - Reset clears the ready flag (and, for interior nodes, recurses
//     into children).
//   - Eval advances the node toward readiness; it may be called
//     repeatedly and must be idempotent once Ready() is true.
//   - Result is meaningful only once Ready() is true.
type Node interface {
	Reset()
	Eval()
	Ready() bool
	Result() value.Value
}

// base provides the ready/result cell shared by every node kind;
// concrete nodes embed it and override Reset/Eval as their retry
// protocol requires.
type base struct {
	ready  bool
	result value.Value
}

func (b *base) Ready() bool          { return b.ready }
func (b *base) Result() value.Value  { return b.result }
func (b *base) Reset()               { b.ready = false }
