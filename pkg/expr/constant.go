package expr

import "github.com/vastlabs/telemetry-query/pkg/value"

// Constant carries a precomputed value. It is ready from
// construction and a no-op on Reset and Eval — the compiler's
// constant-folding step builds exactly these for every right-hand
// side sub-AST.
type Constant struct {
	base
}

func NewConstant(v value.Value) *Constant {
	c := &Constant{}
	c.result = v
	c.ready = true
	return c
}

func (c *Constant) Reset() {} // do exactly nothing
func (c *Constant) Eval()  {} // do exactly nothing
