package query

// conjunction is one AND-slice of the normalized query: a set of
// clauses every one of which must hold.
type conjunction []clause

// normalize flattens a parsed Boolean tree to disjunctive normal
// form: a disjunction of conjunctions. It proceeds in two passes:
// first push every '!' down to the leaves (De Morgan), inverting each
// leaf's operator on the way past (negateClause) rather than carrying
// a separate negation node; then distribute '&&' over '||' to pull
// all disjunction to the top.
func normalize(e boolExpr) []conjunction {
	return distribute(pushNegations(e, false))
}

// pushNegations eliminates notExpr nodes, threading whether the
// current subtree is under an odd number of negations. andExpr and
// orExpr swap under negation (De Morgan); a double negation cancels,
// since two pushNegations calls with negate=true compose back to
// negate=false before reaching a leaf.
func pushNegations(e boolExpr, negate bool) boolExpr {
	switch v := e.(type) {
	case leafExpr:
		if negate {
			return leafExpr{clause: negateClause(v.clause)}
		}
		return v
	case notExpr:
		return pushNegations(v.operand, !negate)
	case andExpr:
		l := pushNegations(v.left, negate)
		r := pushNegations(v.right, negate)
		if negate {
			return orExpr{left: l, right: r}
		}
		return andExpr{left: l, right: r}
	case orExpr:
		l := pushNegations(v.left, negate)
		r := pushNegations(v.right, negate)
		if negate {
			return andExpr{left: l, right: r}
		}
		return orExpr{left: l, right: r}
	default:
		return e
	}
}

// distribute expands a negation-free Boolean tree into DNF by
// distributing each andExpr over the conjunctions its operands
// already normalize to: `(A||B)&&C ≡ (A&&C)||(B&&C)`.
func distribute(e boolExpr) []conjunction {
	switch v := e.(type) {
	case leafExpr:
		return []conjunction{{v.clause}}
	case orExpr:
		return append(distribute(v.left), distribute(v.right)...)
	case andExpr:
		left := distribute(v.left)
		right := distribute(v.right)
		out := make([]conjunction, 0, len(left)*len(right))
		for _, lc := range left {
			for _, rc := range right {
				combined := make(conjunction, 0, len(lc)+len(rc))
				combined = append(combined, lc...)
				combined = append(combined, rc...)
				out = append(out, combined)
			}
		}
		return out
	default:
		return nil
	}
}
