// Package event implements the read-only event accessor the query
// core consumes: timestamp, name, id, nested field access by offset
// path, flattened enumeration, and flat size.
package event

import (
	"time"

	"github.com/vastlabs/telemetry-query/pkg/value"
)

// Event is an ordered record of values accompanied by an identifier,
// a timestamp, a textual name, and a precomputed depth-first
// flattening of its nested record. Events are borrowed by the
// expression core for the duration of a single evaluation and never
// retained.
type Event struct {
	id     int64
	ts     time.Time
	name   string
	record []value.Value
	flat   []value.Value
}

// New builds an event from its top-level record fields. The flat
// enumeration is computed once, up front (O(len)), so Empty, FlatSize,
// and FlatAt are all O(1) for the remainder of the event's life.
func New(id int64, ts time.Time, name string, fields []value.Value) *Event {
	e := &Event{
		id:     id,
		ts:     ts,
		name:   name,
		record: append([]value.Value(nil), fields...),
	}
	e.flat = flatten(e.record, nil)
	return e
}

func flatten(fields []value.Value, into []value.Value) []value.Value {
	for _, f := range fields {
		if nested, ok := f.RecordValue(); ok {
			into = flatten(nested, into)
			continue
		}
		into = append(into, f)
	}
	return into
}

// Timestamp returns the event's timestamp as a Value.
func (e *Event) Timestamp() value.Value { return value.NewTimestamp(e.ts) }

// ID returns the event's identifier as a Value.
func (e *Event) ID() value.Value { return value.NewInt(e.id) }

// Name returns the event's type name as a Value.
func (e *Event) Name() value.Value { return value.NewString(e.name) }

// Empty reports whether the event carries no record payload.
func (e *Event) Empty() bool { return len(e.record) == 0 }

// FlatSize returns the number of leaf values under the event's
// depth-first flattening.
func (e *Event) FlatSize() int { return len(e.flat) }

// FlatAt returns the i-th leaf of the flattened enumeration. The
// precondition 0 <= i < FlatSize() is the caller's responsibility;
// the core never violates it, so this panics on overflow rather than
// silently returning an invalid value.
func (e *Event) FlatAt(i int) value.Value { return e.flat[i] }

// Record returns the event's top-level ordered field sequence.
func (e *Event) Record() []value.Value { return e.record }
