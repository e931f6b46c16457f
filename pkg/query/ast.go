package query

import "github.com/vastlabs/telemetry-query/pkg/expr"

// boolExpr is the parser's raw output: a general Boolean tree over
// clause leaves, combined by &&, ||, and ! with ordinary precedence
// (! binds tightest, then &&, then ||) and parenthesized grouping.
// normalize.go flattens this into disjunctive normal form.
type boolExpr interface{ isBoolExpr() }

type leafExpr struct{ clause clause }
type notExpr struct{ operand boolExpr }
type andExpr struct{ left, right boolExpr }
type orExpr struct{ left, right boolExpr }

func (leafExpr) isBoolExpr() {}
func (notExpr) isBoolExpr()  {}
func (andExpr) isBoolExpr()  {}
func (orExpr) isBoolExpr()   {}

// clause is the closed set of clause AST leaves a parsed query is
// built from.
type clause interface{ isClause() }

type tagClause struct {
	lhs string // "name" | "time" | "id"
	op  expr.RelationKind
	rhs literal
}

type typeClause struct {
	lhs typeTag
	op  expr.RelationKind
	rhs literal
}

type offsetClause struct {
	offsets []int
	op      expr.RelationKind
	rhs     literal
}

type eventClause struct {
	name string // may contain glob wildcards
	op   expr.RelationKind
	rhs  literal
}

func (tagClause) isClause()    {}
func (typeClause) isClause()   {}
func (offsetClause) isClause() {}
func (eventClause) isClause()  {}

// negateClause inverts c's relational operator. For tag, type, and
// offset clauses this is the logical negation of the clause. For an
// event clause only the predicate's operator is inverted; the implicit
// event-name match it lowers to is kept as is, so the result is not
// the full logical negation of the clause. Pushing negations down to
// leaves during normalization applies that inversion exactly once per
// leaf it passes through.
func negateClause(c clause) clause {
	switch v := c.(type) {
	case tagClause:
		v.op = expr.Negate(v.op)
		return v
	case typeClause:
		v.op = expr.Negate(v.op)
		return v
	case offsetClause:
		v.op = expr.Negate(v.op)
		return v
	case eventClause:
		v.op = expr.Negate(v.op)
		return v
	default:
		return c
	}
}
