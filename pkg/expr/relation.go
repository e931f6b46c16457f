package expr

import "fmt"

// RelationKind is the closed set of relational operator kinds.
type RelationKind int

const (
	Match RelationKind = iota
	NotMatch
	In
	NotIn
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
)

func (k RelationKind) String() string {
	switch k {
	case Match:
		return "~"
	case NotMatch:
		return "!~"
	case In:
		return "in"
	case NotIn:
		return "!in"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("RelationKind(%d)", int(k))
	}
}

// Negate returns the logical negation of a relational operator kind,
// used by the compiler to consume a pending `!` at the next
// non-negated leaf.
func Negate(k RelationKind) RelationKind {
	switch k {
	case Match:
		return NotMatch
	case NotMatch:
		return Match
	case In:
		return NotIn
	case NotIn:
		return In
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case Less:
		return GreaterEqual
	case LessEqual:
		return Greater
	case Greater:
		return LessEqual
	case GreaterEqual:
		return Less
	default:
		return k
	}
}
