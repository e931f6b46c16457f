package expr

import "github.com/vastlabs/telemetry-query/pkg/value"

// RelationalOperator is a leaf combining two operand nodes with a
// binary predicate returning Boolean. Its Eval loop is the only place
// the "try the next candidate" protocol of Exists is consumed: every
// other extractor is single-shot, ready after one Eval.
type RelationalOperator struct {
	base
	kind  RelationKind
	left  Node
	right Node
}

func NewRelationalOperator(kind RelationKind, left, right Node) *RelationalOperator {
	return &RelationalOperator{kind: kind, left: left, right: right}
}

func (r *RelationalOperator) Kind() RelationKind { return r.kind }
func (r *RelationalOperator) Left() Node         { return r.left }
func (r *RelationalOperator) Right() Node        { return r.right }

func (r *RelationalOperator) Reset() {
	r.left.Reset()
	r.right.Reset()
	r.ready = false
}

// Eval walks the left then right child, re-evaluating either until
// the operator test yields true for the current pair, or the right
// child exhausts its candidate stream (advance the left child), or
// the left child also exhausts (the node is ready-false overall).
func (r *RelationalOperator) Eval() {
	outcome := false
	for {
		if !r.left.Ready() {
			r.left.Eval()
		}
		for {
			if !r.right.Ready() {
				r.right.Eval()
			}
			outcome = test(r.kind, r.left.Result(), r.right.Result())
			if outcome {
				break
			}
			if r.right.Ready() {
				break
			}
		}
		if outcome {
			break
		}
		if r.left.Ready() {
			break
		}
	}
	r.result = value.NewBool(outcome)
	r.ready = true
}

// test evaluates the operator's condition for (lhs, rhs).
func test(kind RelationKind, lhs, rhs value.Value) bool {
	switch kind {
	case Match:
		return matchTest(lhs, rhs)
	case NotMatch:
		return !matchTest(lhs, rhs)
	case In:
		return inTest(lhs, rhs)
	case NotIn:
		return !inTest(lhs, rhs)
	case Equal:
		return value.Equal(lhs, rhs)
	case NotEqual:
		return !value.Equal(lhs, rhs)
	case Less:
		return value.Less(lhs, rhs)
	case LessEqual:
		return value.LessEqual(lhs, rhs)
	case Greater:
		return value.Greater(lhs, rhs)
	case GreaterEqual:
		return value.GreaterEqual(lhs, rhs)
	default:
		return false
	}
}

func matchTest(lhs, rhs value.Value) bool {
	s, ok := lhs.StringValue()
	if !ok {
		return false
	}
	re, ok := rhs.RegexValue()
	if !ok {
		return false
	}
	return re.Match(s)
}

func inTest(lhs, rhs value.Value) bool {
	if s, ok := lhs.StringValue(); ok {
		if re, ok := rhs.RegexValue(); ok {
			return re.Search(s)
		}
	}
	if addr, ok := lhs.AddressValue(); ok {
		if sn, ok := rhs.SubnetValue(); ok {
			return sn.Contains(addr)
		}
	}
	return false
}
