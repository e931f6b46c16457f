package query

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/vastlabs/telemetry-query/pkg/value"
)

// literalKind records which surface syntax produced a literal, so
// folding knows how to interpret its raw text.
type literalKind int

const (
	litString literalKind = iota
	litRegex
	litTimestamp
	litNumber // int, uint, real, or duration — disambiguated by suffix/contents
	litAddress
	litSubnet
	litPort
	litIdent // bare identifier: true/false, or an event-name pattern
)

// literal is the compiler's not-yet-folded right-hand side of a
// clause. fold interprets its raw text into a value.Value.
type literal struct {
	kind literalKind
	raw  string
}

func (lit literal) fold() (value.Value, error) {
	switch lit.kind {
	case litString:
		return value.NewString(lit.raw), nil
	case litRegex:
		re, err := value.CompileRegex(lit.raw)
		if err != nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid regex %q: %v", lit.raw, err)}
		}
		return value.NewRegex(re), nil
	case litTimestamp:
		t, err := parseTimestamp(lit.raw)
		if err != nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid timestamp %q: %v", lit.raw, err)}
		}
		return value.NewTimestamp(t), nil
	case litAddress:
		ip := net.ParseIP(lit.raw)
		if ip == nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid address %q", lit.raw)}
		}
		return value.NewAddress(ip), nil
	case litSubnet:
		sn, err := value.ParseSubnet(lit.raw)
		if err != nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid subnet %q: %v", lit.raw, err)}
		}
		return value.NewSubnet(sn), nil
	case litPort:
		return parsePort(lit.raw)
	case litIdent:
		switch lit.raw {
		case "true":
			return value.NewBool(true), nil
		case "false":
			return value.NewBool(false), nil
		}
		return value.NewString(lit.raw), nil
	case litNumber:
		return parseNumber(lit.raw)
	default:
		return value.Invalid, &SemanticError{Detail: fmt.Sprintf("unrecognized literal %q", lit.raw)}
	}
}

// parseNumber disambiguates a duration, real, unsigned, or signed
// integer literal. A trailing duration unit (ns, us, ms, s, m, h)
// yields a duration; a decimal point or exponent yields a real; a
// leading '+' opts into an unsigned reading (there being no event tag
// that is natively unsigned-by-default to infer it from); everything
// else, signed or bare, folds to a signed integer, matching the
// id/time tag extractors' own Int/Timestamp results so that
// `id == 7` compares like tags.
func parseNumber(raw string) (value.Value, error) {
	if d, err := time.ParseDuration(raw); err == nil && hasDurationSuffix(raw) {
		return value.NewDuration(d), nil
	}
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid real %q: %v", raw, err)}
		}
		return value.NewReal(f), nil
	}
	if strings.HasPrefix(raw, "+") {
		u, err := strconv.ParseUint(raw[1:], 10, 64)
		if err != nil {
			return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid unsigned integer %q: %v", raw, err)}
		}
		return value.NewUint(u), nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid integer %q: %v", raw, err)}
	}
	return value.NewInt(i), nil
}

func hasDurationSuffix(raw string) bool {
	for _, suffix := range []string{"ns", "us", "µs", "ms", "s", "m", "h"} {
		if strings.HasSuffix(raw, suffix) {
			return true
		}
	}
	return false
}

// parsePort accepts "N" or "N/proto".
func parsePort(raw string) (value.Value, error) {
	parts := strings.SplitN(raw, "/", 2)
	n, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return value.Invalid, &SemanticError{Detail: fmt.Sprintf("invalid port %q: %v", raw, err)}
	}
	proto := ""
	if len(parts) == 2 {
		proto = parts[1]
	}
	return value.NewPort(value.Port{Number: uint16(n), Proto: proto}), nil
}

// parseTimestamp accepts RFC3339 and RFC3339Nano.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// typeTag names a value.Type in the `:TYPE` clause surface.
type typeTag string

var typeTagKinds = map[typeTag]value.Type{
	"bool":     value.Bool,
	"int":      value.Int,
	"uint":     value.Uint,
	"real":     value.Real,
	"duration": value.Duration,
	"time":     value.Timestamp,
	"string":   value.String,
	"regex":    value.TypeRegex,
	"addr":     value.Address,
	"subnet":   value.TypeSubnet,
	"port":     value.TypePort,
	"record":   value.Record,
	"set":      value.Set,
	"vector":   value.Vector,
	"table":    value.Table,
}

func lookupTypeTag(name string) (value.Type, bool) {
	t, ok := typeTagKinds[typeTag(name)]
	return t, ok
}
