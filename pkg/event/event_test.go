package event

import (
	"testing"
	"time"

	"github.com/vastlabs/telemetry-query/pkg/value"
)

func TestFlattenNestedRecord(t *testing.T) {
	inner := value.NewRecord([]value.Value{value.NewInt(1), value.NewInt(2)})
	e := New(42, time.Unix(0, 0), "conn", []value.Value{inner, value.NewString("x")})

	if e.Empty() {
		t.Fatal("event with fields should not be empty")
	}
	if got := e.FlatSize(); got != 3 {
		t.Fatalf("flat size = %d, want 3", got)
	}
	if i, _ := e.FlatAt(0).Int(); i != 1 {
		t.Fatalf("flat[0] = %v, want 1", e.FlatAt(0))
	}
	if i, _ := e.FlatAt(1).Int(); i != 2 {
		t.Fatalf("flat[1] = %v, want 2", e.FlatAt(1))
	}
	if s, _ := e.FlatAt(2).StringValue(); s != "x" {
		t.Fatalf("flat[2] = %v, want x", e.FlatAt(2))
	}
}

func TestAttributes(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	e := New(7, ts, "dns", nil)
	if id, _ := e.ID().Int(); id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}
	if n, _ := e.Name().StringValue(); n != "dns" {
		t.Fatalf("name = %q, want dns", n)
	}
	if got, _ := e.Timestamp().TimestampValue(); !got.Equal(ts) {
		t.Fatalf("timestamp mismatch")
	}
	if !e.Empty() {
		t.Fatal("event with no fields should be empty")
	}
}
