package value

import "bytes"

// Equal implements the value model's total equality: two values
// compare equal only if their tags agree and their payloads agree
// under the tag's natural equality. The invalid value is never equal
// to anything, including another invalid value.
func Equal(a, b Value) bool {
	if a.kind == TypeInvalid || b.kind == TypeInvalid {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Bool:
		x, _ := a.Bool()
		y, _ := b.Bool()
		return x == y
	case Int:
		x, _ := a.Int()
		y, _ := b.Int()
		return x == y
	case Uint:
		x, _ := a.Uint()
		y, _ := b.Uint()
		return x == y
	case Real:
		x, _ := a.Real()
		y, _ := b.Real()
		return x == y
	case Duration:
		x, _ := a.DurationValue()
		y, _ := b.DurationValue()
		return x == y
	case Timestamp:
		x, _ := a.TimestampValue()
		y, _ := b.TimestampValue()
		return x.Equal(y)
	case String:
		x, _ := a.StringValue()
		y, _ := b.StringValue()
		return x == y
	case TypeRegex:
		x, _ := a.RegexValue()
		y, _ := b.RegexValue()
		return x.Source() == y.Source()
	case Address:
		x, _ := a.AddressValue()
		y, _ := b.AddressValue()
		return x.Equal(y)
	case TypeSubnet:
		x, _ := a.SubnetValue()
		y, _ := b.SubnetValue()
		return x.bits == y.bits && x.network == y.network
	case TypePort:
		x, _ := a.PortValue()
		y, _ := b.PortValue()
		return x == y
	case Record, Set, Vector:
		x, _ := a.data.([]Value)
		y, _ := b.data.([]Value)
		return equalSlices(x, y)
	case Table:
		x, _ := a.TableValue()
		y, _ := b.TableValue()
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Key, y[i].Key) || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlices(x, y []Value) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !Equal(x[i], y[i]) {
			return false
		}
	}
	return true
}

// Less implements the order family. Ordering is defined only between
// like tags; for mismatched tags it falls back to a deterministic
// tag-index-lexicographic order, so relational operators never crash
// on mismatched operands.
func Less(a, b Value) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	switch a.kind {
	case Bool:
		x, _ := a.Bool()
		y, _ := b.Bool()
		return !x && y
	case Int:
		x, _ := a.Int()
		y, _ := b.Int()
		return x < y
	case Uint:
		x, _ := a.Uint()
		y, _ := b.Uint()
		return x < y
	case Real:
		x, _ := a.Real()
		y, _ := b.Real()
		return x < y
	case Duration:
		x, _ := a.DurationValue()
		y, _ := b.DurationValue()
		return x < y
	case Timestamp:
		x, _ := a.TimestampValue()
		y, _ := b.TimestampValue()
		return x.Before(y)
	case String:
		x, _ := a.StringValue()
		y, _ := b.StringValue()
		return x < y
	case TypeRegex:
		x, _ := a.RegexValue()
		y, _ := b.RegexValue()
		return x.Source() < y.Source()
	case Address:
		x, _ := a.AddressValue()
		y, _ := b.AddressValue()
		return bytes.Compare(x.To16(), y.To16()) < 0
	case TypeSubnet:
		x, _ := a.SubnetValue()
		y, _ := b.SubnetValue()
		if x.network != y.network {
			return bytes.Compare(x.network[:], y.network[:]) < 0
		}
		return x.bits < y.bits
	case TypePort:
		x, _ := a.PortValue()
		y, _ := b.PortValue()
		if x.Number != y.Number {
			return x.Number < y.Number
		}
		return x.Proto < y.Proto
	case Record, Set, Vector:
		x, _ := a.data.([]Value)
		y, _ := b.data.([]Value)
		return lessSlices(x, y)
	default:
		return false
	}
}

func lessSlices(x, y []Value) bool {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if Equal(x[i], y[i]) {
			continue
		}
		return Less(x[i], y[i])
	}
	return len(x) < len(y)
}

func LessEqual(a, b Value) bool    { return Less(a, b) || Equal(a, b) }
func Greater(a, b Value) bool      { return Less(b, a) }
func GreaterEqual(a, b Value) bool { return Less(b, a) || Equal(a, b) }
