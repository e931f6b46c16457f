package value

// TypedValue pairs raw data with the schema type it must conform to.
// Construction checks the pair and yields either a valid TypedValue
// or one wrapping Invalid; untyped construction is also permitted and
// leaves the Type slot at its zero value.
type TypedValue struct {
	Data Value
	Type FieldType
}

// Make constructs a type-checked TypedValue: if d does not conform to
// t, the returned TypedValue wraps Invalid instead of d.
func Make(d Value, t FieldType) TypedValue {
	if !Check(d, t) {
		return TypedValue{Data: Invalid, Type: t}
	}
	return TypedValue{Data: d, Type: t}
}

// Untyped constructs a TypedValue with no schema witness.
func Untyped(d Value) TypedValue {
	return TypedValue{Data: d}
}

// Check reports whether d's shape matches t, recursing into record
// fields when t.Kind is Record.
func Check(d Value, t FieldType) bool {
	if t.Kind == TypeInvalid {
		return true // untyped: any data conforms
	}
	if d.Which() != t.Kind {
		return false
	}
	if t.Kind != Record {
		return true
	}
	fields, ok := d.RecordValue()
	if !ok || t.Record == nil || len(fields) != len(t.Record.Fields) {
		return false
	}
	for i, f := range t.Record.Fields {
		if !Check(fields[i], f.Type) {
			return false
		}
	}
	return true
}
