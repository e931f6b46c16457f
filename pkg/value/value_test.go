package value

import (
	"net"
	"testing"
	"time"
)

func TestEqualSameTag(t *testing.T) {
	if !Equal(NewInt(7), NewInt(7)) {
		t.Fatal("7 == 7 should hold")
	}
	if Equal(NewInt(7), NewInt(8)) {
		t.Fatal("7 == 8 should not hold")
	}
}

func TestEqualMismatchedTagIsFalse(t *testing.T) {
	if Equal(NewInt(1), NewUint(1)) {
		t.Fatal("int(1) should not equal uint(1): tags differ")
	}
}

func TestInvalidNeverEqual(t *testing.T) {
	if Equal(Invalid, Invalid) {
		t.Fatal("invalid == invalid must be false")
	}
	if Equal(Invalid, NewInt(0)) {
		t.Fatal("invalid must not equal any value")
	}
}

func TestSelfEquality(t *testing.T) {
	vals := []Value{
		NewBool(true), NewInt(-3), NewUint(9), NewReal(1.5),
		NewDuration(time.Second), NewTimestamp(time.Unix(100, 0)),
		NewString("x"), NewAddress(net.ParseIP("10.0.0.1")),
	}
	for _, v := range vals {
		if !Equal(v, v) {
			t.Fatalf("%v should equal itself", v)
		}
	}
}

func TestOrderWithinTag(t *testing.T) {
	if !Less(NewInt(1), NewInt(2)) {
		t.Fatal("1 < 2")
	}
	if !Less(NewString("a"), NewString("b")) {
		t.Fatal(`"a" < "b"`)
	}
	if !Less(NewTimestamp(time.Unix(1, 0)), NewTimestamp(time.Unix(2, 0))) {
		t.Fatal("earlier timestamp should be less")
	}
}

func TestOrderMismatchedTagIsTagIndexLexicographic(t *testing.T) {
	// Pinned per SPEC_FULL.md Open Question (b): mismatched tags order
	// by the fixed Type enumeration index.
	if !Less(NewBool(true), NewInt(0)) {
		t.Fatal("Bool (tag 1) should sort before Int (tag 2) regardless of payload")
	}
	if Less(NewInt(0), NewBool(true)) {
		t.Fatal("ordering must be antisymmetric across mismatched tags")
	}
}

func TestRegexMatchIsAnchoredSearchIsNot(t *testing.T) {
	re := MustCompileRegex(`http.*`)
	if !re.Search("some https traffic") {
		t.Fatal("search should find unanchored occurrence")
	}
	if re.Match("some https traffic") {
		t.Fatal("match requires the whole string to match")
	}
	if !re.Match("https") {
		t.Fatal("match should accept a full match")
	}
}

func TestGlobRegexLowering(t *testing.T) {
	re, err := GlobRegex("dns*")
	if err != nil {
		t.Fatal(err)
	}
	if !re.Match("dns_request") {
		t.Fatal("dns* should match dns_request")
	}
	if re.Match("udp_dns") {
		t.Fatal("dns* is not unanchored; must not match udp_dns")
	}
}

func TestSubnetContains(t *testing.T) {
	sn, err := ParseSubnet("192.168.0.0/16")
	if err != nil {
		t.Fatal(err)
	}
	if !sn.Contains(net.ParseIP("192.168.1.5")) {
		t.Fatal("192.168.1.5 should be within 192.168.0.0/16")
	}
	if sn.Contains(net.ParseIP("10.0.0.1")) {
		t.Fatal("10.0.0.1 should not be within 192.168.0.0/16")
	}
}

func TestRecordEquality(t *testing.T) {
	a := NewRecord([]Value{NewInt(1), NewString("x")})
	b := NewRecord([]Value{NewInt(1), NewString("x")})
	c := NewRecord([]Value{NewInt(1), NewString("y")})
	if !Equal(a, b) {
		t.Fatal("identical records should be equal")
	}
	if Equal(a, c) {
		t.Fatal("differing records should not be equal")
	}
}

func TestTypedValueCheck(t *testing.T) {
	schema := &Schema{Fields: []Field{
		{Name: "a", Type: FieldType{Kind: Int}},
		{Name: "b", Type: FieldType{Kind: String}},
	}}
	rt := FieldType{Kind: Record, Record: schema}

	ok := Make(NewRecord([]Value{NewInt(1), NewString("x")}), rt)
	if !ok.Data.IsValid() {
		t.Fatal("well-typed record should be valid")
	}

	bad := Make(NewRecord([]Value{NewString("wrong"), NewString("x")}), rt)
	if bad.Data.IsValid() {
		t.Fatal("ill-typed record should collapse to invalid")
	}
}
