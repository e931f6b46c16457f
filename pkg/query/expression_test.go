package query

import (
	"net"
	"testing"
	"time"

	"github.com/vastlabs/telemetry-query/pkg/event"
	"github.com/vastlabs/telemetry-query/pkg/value"
)

func mustCompile(t *testing.T, text string) *Expression {
	t.Helper()
	x, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return x
}

// Concrete scenarios table, spec.md §8.

func TestScenarioNameEquality(t *testing.T) {
	x := mustCompile(t, `name == "http"`)
	e := event.New(1, time.Unix(0, 0), "http", nil)
	if !x.Eval(e) {
		t.Fatal("expected true")
	}
}

func TestScenarioNameRegex(t *testing.T) {
	x := mustCompile(t, `name ~ /http.*/`)
	e := event.New(1, time.Unix(0, 0), "https", nil)
	if !x.Eval(e) {
		t.Fatal("expected true")
	}
}

func TestScenarioNegatedID(t *testing.T) {
	x := mustCompile(t, `!(id == 7)`)
	e := event.New(7, time.Unix(0, 0), "x", nil)
	if x.Eval(e) {
		t.Fatal("expected false")
	}
}

func TestScenarioExistsAddrInSubnet(t *testing.T) {
	x := mustCompile(t, `:addr in 192.168.0.0/16`)
	addr := value.NewAddress(net.ParseIP("192.168.1.5"))
	e := event.New(1, time.Unix(0, 0), "conn", []value.Value{addr})
	if !x.Eval(e) {
		t.Fatal("expected true")
	}
}

func TestScenarioConjunctionOfMismatchedSubnet(t *testing.T) {
	x := mustCompile(t, `:addr in 10.0.0.0/8 && name == "dns"`)
	addr := value.NewAddress(net.ParseIP("192.168.1.1"))
	e := event.New(1, time.Unix(0, 0), "dns", []value.Value{addr})
	if x.Eval(e) {
		t.Fatal("expected false")
	}
}

func TestScenarioOffsetOrDisjunction(t *testing.T) {
	x := mustCompile(t, `@0 < 100 || @1 == "x"`)
	e := event.New(1, time.Unix(0, 0), "rec", []value.Value{value.NewInt(50), value.NewString("y")})
	if !x.Eval(e) {
		t.Fatal("expected true")
	}
}

// Invariant 1: Eval returns a bool and leaves every node unready.

func TestInvariantResetAfterEval(t *testing.T) {
	x := mustCompile(t, `name == "http" && id == 1`)
	e := event.New(1, time.Unix(0, 0), "http", nil)
	x.Eval(e)
	for _, ex := range x.extractors {
		if ex.Ready() {
			t.Fatal("extractor still ready after Eval")
		}
	}
	if x.root.Ready() {
		t.Fatal("root still ready after Eval")
	}
}

// Invariant 2: extractor list equals the set of extractor nodes
// reachable from the root, no duplicates.

func TestInvariantExtractorListMatchesClauseCount(t *testing.T) {
	x := mustCompile(t, `name == "a" && id == 1 && time > t"2020-01-01T00:00:00Z"`)
	if len(x.extractors) != 3 {
		t.Fatalf("expected 3 extractors, got %d", len(x.extractors))
	}
}

// Invariant 3: compile(Q).eval(e) == compile(copy_of(Q)).eval(e).

func TestInvariantCopyRecompileDeterminism(t *testing.T) {
	x := mustCompile(t, `name == "http" || id == 9`)
	y, err := x.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	e1 := event.New(1, time.Unix(0, 0), "http", nil)
	e2 := event.New(9, time.Unix(0, 0), "other", nil)
	if x.Eval(e1) != y.Eval(e1) || x.Eval(e2) != y.Eval(e2) {
		t.Fatal("copy should evaluate identically to the original")
	}
}

// Invariant 4: De Morgan.

func TestInvariantDeMorganAnd(t *testing.T) {
	events := []*event.Event{
		event.New(1, time.Unix(0, 0), "a", nil),
		event.New(2, time.Unix(0, 0), "b", nil),
	}
	left := mustCompile(t, `!(name == "a" && id == 1)`)
	right := mustCompile(t, `name != "a" || id != 1`)
	for _, e := range events {
		if left.Eval(e) != right.Eval(e) {
			t.Fatalf("De Morgan mismatch for event %v", e)
		}
	}
}

func TestInvariantDeMorganOr(t *testing.T) {
	events := []*event.Event{
		event.New(1, time.Unix(0, 0), "a", nil),
		event.New(2, time.Unix(0, 0), "b", nil),
	}
	left := mustCompile(t, `!(name == "a" || id == 1)`)
	right := mustCompile(t, `name != "a" && id != 1`)
	for _, e := range events {
		if left.Eval(e) != right.Eval(e) {
			t.Fatalf("De Morgan mismatch for event %v", e)
		}
	}
}

// Invariant 5: double negation.

func TestInvariantDoubleNegation(t *testing.T) {
	single := mustCompile(t, `name == "a"`)
	double := mustCompile(t, `!!(name == "a")`)
	for _, name := range []string{"a", "b"} {
		e := event.New(1, time.Unix(0, 0), name, nil)
		if single.Eval(e) != double.Eval(e) {
			t.Fatalf("double negation mismatch for name=%s", name)
		}
	}
}

// Invariant 6: distributivity after normalization.

func TestInvariantDistributivity(t *testing.T) {
	left := mustCompile(t, `(name == "a" || name == "b") && id == 1`)
	right := mustCompile(t, `(name == "a" && id == 1) || (name == "b" && id == 1)`)
	for _, name := range []string{"a", "b", "c"} {
		for _, id := range []int64{1, 2} {
			e := event.New(id, time.Unix(0, 0), name, nil)
			if left.Eval(e) != right.Eval(e) {
				t.Fatalf("distributivity mismatch for name=%s id=%d", name, id)
			}
		}
	}
}

// Invariant 7: x == x, invalid == invalid is false.

func TestInvariantSelfEquality(t *testing.T) {
	x := mustCompile(t, `id == 1`)
	e := event.New(1, time.Unix(0, 0), "a", nil)
	if !x.Eval(e) {
		t.Fatal("id == id should be true")
	}
}

func TestInvariantInvalidNeverEqualsItself(t *testing.T) {
	if value.Equal(value.Invalid, value.Invalid) {
		t.Fatal("invalid == invalid should be false")
	}
}

// Invariant 8: exists(T) iff some flattened leaf carries tag T
// satisfying the predicate.

func TestInvariantExistsMatchesAnyLeaf(t *testing.T) {
	x := mustCompile(t, `:int == 42`)
	hit := event.New(1, time.Unix(0, 0), "rec", []value.Value{value.NewString("x"), value.NewInt(42)})
	miss := event.New(1, time.Unix(0, 0), "rec", []value.Value{value.NewString("x"), value.NewInt(7)})
	if !x.Eval(hit) {
		t.Fatal("expected exists(int) == 42 to find the leaf")
	}
	if x.Eval(miss) {
		t.Fatal("expected exists(int) == 42 to not find a match")
	}
}

// Open Question (a): event clause offset defaults to hardcoded [0].

func TestOpenQuestionEventClauseHardcodedOffset(t *testing.T) {
	x, err := Compile(`http-request : "GET"`, LowerConfig{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	match := event.New(1, time.Unix(0, 0), "http-request", []value.Value{value.NewString("GET"), value.NewString("ignored")})
	nomatch := event.New(1, time.Unix(0, 0), "http-request", []value.Value{value.NewString("ignored"), value.NewString("GET")})
	if !x.Eval(match) {
		t.Fatal("expected offset [0] to match")
	}
	if x.Eval(nomatch) {
		t.Fatal("expected offset [0] to miss when the value is at index 1")
	}
}

func TestOpenQuestionEventClauseSchemaOffset(t *testing.T) {
	schema := &value.Schema{Fields: []value.Field{
		{Name: "other-event"}, {Name: "http-request"},
	}}
	x, err := Compile(`http-request : "GET"`, LowerConfig{OffsetMode: OffsetModeSchema, Schema: schema})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	e := event.New(1, time.Unix(0, 0), "http-request", []value.Value{value.NewString("ignored"), value.NewString("GET")})
	if !x.Eval(e) {
		t.Fatal("expected schema-resolved offset [1] to match")
	}
}

// Open Question (b): mismatched-tag ordering is tag-index-lexicographic.

func TestOpenQuestionOrderMismatchedTags(t *testing.T) {
	if !value.Less(value.NewBool(true), value.NewInt(0)) {
		t.Fatal("bool should order before int by tag index")
	}
}

// Event clause glob name matching.

func TestEventClauseGlobName(t *testing.T) {
	x := mustCompile(t, `http-* : "GET"`)
	e := event.New(1, time.Unix(0, 0), "http-request", []value.Value{value.NewString("GET")})
	if !x.Eval(e) {
		t.Fatal("expected glob event name to match")
	}
}

func TestEmptyQueryRejected(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected an error for an empty query")
	}
}

func TestUnknownTagFieldRejected(t *testing.T) {
	if _, err := Parse(`bogus == 1`); err == nil {
		t.Fatal("expected a semantic error for an unknown tag field")
	}
}

func TestSyntaxErrorSurfacesQueryText(t *testing.T) {
	_, err := Parse(`name ==`)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Query != `name ==` {
		t.Fatalf("expected original query text preserved, got %q", se.Query)
	}
}
