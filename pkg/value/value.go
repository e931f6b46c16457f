package value

import (
	"net"
	"time"
)

// Value is a tagged union over the closed set of domain value types.
// Two values compare equal only if their tags agree and their
// payloads agree under the tag's natural equality; ordering is
// defined only between like tags. The zero Value is the invalid
// value, which is not equal to any value, including itself.
type Value struct {
	kind Type
	data any
}

// Invalid is the distinguished sentinel representing absence or a
// type mismatch. Comparing against it never fails evaluation: Equal
// never holds for it, so == is false and != is true, and the order
// family places it before every other tag (its tag index is 0).
var Invalid = Value{}

// Which reports the value's tag.
func (v Value) Which() Type { return v.kind }

// IsValid reports whether v is anything other than the invalid value.
func (v Value) IsValid() bool { return v.kind != TypeInvalid }

func NewBool(b bool) Value             { return Value{kind: Bool, data: b} }
func NewInt(i int64) Value             { return Value{kind: Int, data: i} }
func NewUint(u uint64) Value           { return Value{kind: Uint, data: u} }
func NewReal(f float64) Value          { return Value{kind: Real, data: f} }
func NewDuration(d time.Duration) Value { return Value{kind: Duration, data: d} }
func NewTimestamp(t time.Time) Value   { return Value{kind: Timestamp, data: t} }
func NewString(s string) Value         { return Value{kind: String, data: s} }
func NewRegex(r Regex) Value           { return Value{kind: TypeRegex, data: r} }
func NewAddress(a net.IP) Value        { return Value{kind: Address, data: addrKey(a)} }
func NewSubnet(s Subnet) Value         { return Value{kind: TypeSubnet, data: s} }
func NewPort(p Port) Value             { return Value{kind: TypePort, data: p} }
func NewRecord(fields []Value) Value   { return Value{kind: Record, data: append([]Value(nil), fields...)} }
func NewSet(elems []Value) Value       { return Value{kind: Set, data: append([]Value(nil), elems...)} }
func NewVector(elems []Value) Value    { return Value{kind: Vector, data: append([]Value(nil), elems...)} }
func NewTable(entries []TableEntry) Value {
	return Value{kind: Table, data: append([]TableEntry(nil), entries...)}
}

// TableEntry is one key/value pair of a Table value.
type TableEntry struct {
	Key   Value
	Value Value
}

// addrKey normalizes an IP to its 16-byte form so two addresses
// constructed from different textual representations (e.g. "10.0.0.1"
// and its 4-in-6 form "::ffff:10.0.0.1") compare equal.
func addrKey(ip net.IP) [16]byte {
	var k [16]byte
	copy(k[:], ip.To16())
	return k
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok && v.kind == Bool
}

func (v Value) Int() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok && v.kind == Int
}

func (v Value) Uint() (uint64, bool) {
	u, ok := v.data.(uint64)
	return u, ok && v.kind == Uint
}

func (v Value) Real() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok && v.kind == Real
}

func (v Value) DurationValue() (time.Duration, bool) {
	d, ok := v.data.(time.Duration)
	return d, ok && v.kind == Duration
}

func (v Value) TimestampValue() (time.Time, bool) {
	t, ok := v.data.(time.Time)
	return t, ok && v.kind == Timestamp
}

func (v Value) StringValue() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == String
}

func (v Value) RegexValue() (Regex, bool) {
	r, ok := v.data.(Regex)
	return r, ok && v.kind == TypeRegex
}

func (v Value) AddressValue() (net.IP, bool) {
	k, ok := v.data.([16]byte)
	if !ok || v.kind != Address {
		return nil, false
	}
	b := make([]byte, 16)
	copy(b, k[:])
	return net.IP(b), true
}

func (v Value) SubnetValue() (Subnet, bool) {
	s, ok := v.data.(Subnet)
	return s, ok && v.kind == TypeSubnet
}

func (v Value) PortValue() (Port, bool) {
	p, ok := v.data.(Port)
	return p, ok && v.kind == TypePort
}

// RecordValue returns the ordered element sequence of a Record value.
func (v Value) RecordValue() ([]Value, bool) {
	r, ok := v.data.([]Value)
	return r, ok && v.kind == Record
}

func (v Value) SetValue() ([]Value, bool) {
	s, ok := v.data.([]Value)
	return s, ok && v.kind == Set
}

func (v Value) VectorValue() ([]Value, bool) {
	vec, ok := v.data.([]Value)
	return vec, ok && v.kind == Vector
}

func (v Value) TableValue() ([]TableEntry, bool) {
	t, ok := v.data.([]TableEntry)
	return t, ok && v.kind == Table
}
