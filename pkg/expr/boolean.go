package expr

import "github.com/vastlabs/telemetry-query/pkg/value"

// nAryOperator is the shared shape of Conjunction and Disjunction: an
// ordered list of operand nodes, each evaluated left-to-right.
type nAryOperator struct {
	base
	operands []Node
}

func (n *nAryOperator) Add(operand Node) { n.operands = append(n.operands, operand) }

func (n *nAryOperator) Operands() []Node { return n.operands }

func (n *nAryOperator) Reset() {
	for _, op := range n.operands {
		op.Reset()
	}
	n.ready = false
}

// Conjunction is true iff every operand is ready with a Boolean true.
// It sets its own ready flag only once every operand is ready; if any
// operand is not yet ready after a pass (an Exists cursor still has
// candidates left to try), the conjunction leaves itself not-ready so
// the outer evaluation loop calls it again.
type Conjunction struct{ nAryOperator }

func NewConjunction() *Conjunction { return &Conjunction{} }

func (c *Conjunction) Eval() {
	c.ready = true
	result := true
	for _, op := range c.operands {
		if !op.Ready() {
			op.Eval()
		}
		if !op.Ready() {
			c.ready = false
		}
		b, _ := op.Result().Bool()
		result = result && b
	}
	c.result = value.NewBool(result)
}

// Disjunction is true iff any operand is ready and true; as soon as
// any operand is ready-true, the disjunction becomes ready-true
// without waiting on the remaining operands. Otherwise it is ready
// only once every operand is ready.
type Disjunction struct{ nAryOperator }

func NewDisjunction() *Disjunction { return &Disjunction{} }

func (d *Disjunction) Eval() {
	d.ready = true
	result := false
	for _, op := range d.operands {
		if !op.Ready() {
			op.Eval()
		}
		if !op.Ready() {
			d.ready = false
		}
		b, _ := op.Result().Bool()
		result = result || b
	}
	d.result = value.NewBool(result)
	if result {
		d.ready = true
	}
}
