package expr

import (
	"github.com/vastlabs/telemetry-query/pkg/event"
	"github.com/vastlabs/telemetry-query/pkg/value"
)

// Extractor is a leaf node that additionally accepts the event to
// pull an attribute out of, via Feed. The compiler collects every
// extractor node it builds into a flat catalogue; Expression.Eval
// feeds all of them before driving the root to readiness.
type Extractor interface {
	Node
	Feed(e *event.Event)
}

// TimestampExtractor reads the event's timestamp.
type TimestampExtractor struct {
	base
	event *event.Event
}

func NewTimestampExtractor() *TimestampExtractor { return &TimestampExtractor{} }

func (x *TimestampExtractor) Feed(e *event.Event) { x.event = e; x.ready = false }
func (x *TimestampExtractor) Eval() {
	x.result = x.event.Timestamp()
	x.ready = true
}

// NameExtractor reads the event's type name.
type NameExtractor struct {
	base
	event *event.Event
}

func NewNameExtractor() *NameExtractor { return &NameExtractor{} }

func (x *NameExtractor) Feed(e *event.Event) { x.event = e; x.ready = false }
func (x *NameExtractor) Eval() {
	x.result = x.event.Name()
	x.ready = true
}

// IDExtractor reads the event's identifier.
type IDExtractor struct {
	base
	event *event.Event
}

func NewIDExtractor() *IDExtractor { return &IDExtractor{} }

func (x *IDExtractor) Feed(e *event.Event) { x.event = e; x.ready = false }
func (x *IDExtractor) Eval() {
	x.result = x.event.ID()
	x.ready = true
}

// OffsetExtractor walks an event's record structure by a sequence of
// successive indices. For path [o0, o1, ..., on], at each step the
// current record must have size > oi and the value at that index
// must itself be a record (for i < n); any violation, or an empty
// event, yields Invalid.
type OffsetExtractor struct {
	base
	event   *event.Event
	offsets []int
}

func NewOffsetExtractor(offsets []int) *OffsetExtractor {
	return &OffsetExtractor{offsets: append([]int(nil), offsets...)}
}

func (x *OffsetExtractor) Offsets() []int { return x.offsets }

func (x *OffsetExtractor) Feed(e *event.Event) { x.event = e; x.ready = false }

func (x *OffsetExtractor) Eval() {
	if x.event.Empty() {
		x.result = value.Invalid
		x.ready = true
		return
	}

	record := x.event.Record()
	i := 0
	for i < len(x.offsets)-1 {
		off := x.offsets[i]
		i++
		if off < 0 || off >= len(record) {
			x.result = value.Invalid
			x.ready = true
			return
		}
		nested, ok := record[off].RecordValue()
		if !ok {
			x.result = value.Invalid
			x.ready = true
			return
		}
		record = nested
	}

	last := x.offsets[i]
	if last < 0 || last >= len(record) {
		x.result = value.Invalid
	} else {
		x.result = record[last]
	}
	x.ready = true
}

// Exists scans an event's flattened enumeration for a leaf whose tag
// equals the configured type, advancing a cursor across calls so a
// relational parent can iterate through every candidate match.
type Exists struct {
	base
	event    *event.Event
	typeTag  value.Type
	cursor   int
	flatSize int
}

func NewExists(t value.Type) *Exists { return &Exists{typeTag: t} }

func (x *Exists) Feed(e *event.Event) {
	x.event = e
	x.flatSize = e.FlatSize()
	x.cursor = 0
	x.result = value.Invalid
	x.ready = false
}

// Reset rewinds the cursor so the next feed/eval cycle starts over;
// Exists does not recurse (it is a leaf), so this overrides base.
func (x *Exists) Reset() {
	x.cursor = 0
	x.ready = false
}

func (x *Exists) Eval() {
	for x.cursor < x.flatSize {
		leaf := x.event.FlatAt(x.cursor)
		x.cursor++
		if leaf.Which() == x.typeTag {
			x.result = leaf
			if x.cursor == x.flatSize {
				x.ready = true
			}
			return
		}
	}
	x.ready = true
}
