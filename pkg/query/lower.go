package query

import (
	"strings"

	"github.com/vastlabs/telemetry-query/pkg/expr"
	"github.com/vastlabs/telemetry-query/pkg/value"
)

// OffsetMode selects how an event clause's implicit offset path is
// determined. OffsetModeHardcoded always resolves to offset [0].
// OffsetModeSchema resolves it via the compiled schema instead.
type OffsetMode int

const (
	OffsetModeHardcoded OffsetMode = iota
	OffsetModeSchema
)

// LowerConfig parameterizes clause lowering.
type LowerConfig struct {
	OffsetMode OffsetMode
	// Schema, when set and OffsetMode is OffsetModeSchema, is
	// consulted for an event clause's field offset by event name. A
	// miss falls back to the hardcoded [0] path.
	Schema *value.Schema
}

// lowered is the product of lowering one normalized query: the root
// node and the flat extractor list the compiler must collect.
type lowered struct {
	root       expr.Node
	extractors []expr.Extractor
	// literals collects the string constants an equality or event-name
	// clause requires to be present verbatim in the event, for
	// internal/prefilter to key an Aho-Corasick scan on (pkg/query.Set).
	literals []string
}

func lowerQuery(conjunctions []conjunction, cfg LowerConfig) (*lowered, error) {
	l := &lowered{}
	var conjNodes []expr.Node
	keyless := false
	for _, conj := range conjunctions {
		before := len(l.literals)
		node, err := l.lowerConjunction(conj, cfg)
		if err != nil {
			return nil, err
		}
		if len(l.literals) == before {
			keyless = true
		}
		conjNodes = append(conjNodes, node)
	}
	if keyless {
		// A conjunction with no literal can match an event that contains
		// none of the others' literals, so the query keeps no literal set.
		l.literals = nil
	}
	if len(conjNodes) == 1 {
		l.root = conjNodes[0]
		return l, nil
	}
	disj := expr.NewDisjunction()
	for _, n := range conjNodes {
		disj.Add(n)
	}
	l.root = disj
	return l, nil
}

func (l *lowered) lowerConjunction(conj conjunction, cfg LowerConfig) (expr.Node, error) {
	conjunctionNode := expr.NewConjunction()
	for _, c := range conj {
		if ec, ok := c.(eventClause); ok {
			nameNode, err := l.lowerEventNameMatch(ec)
			if err != nil {
				return nil, err
			}
			predNode, err := l.lowerEventPredicate(ec, cfg)
			if err != nil {
				return nil, err
			}
			conjunctionNode.Add(nameNode)
			conjunctionNode.Add(predNode)
			continue
		}
		node, err := l.lowerClause(c)
		if err != nil {
			return nil, err
		}
		conjunctionNode.Add(node)
	}
	return conjunctionNode, nil
}

func (l *lowered) lowerClause(c clause) (expr.Node, error) {
	switch v := c.(type) {
	case tagClause:
		return l.lowerTagClause(v)
	case typeClause:
		return l.lowerTypeClause(v)
	case offsetClause:
		return l.lowerOffsetClause(v)
	default:
		return nil, &SemanticError{Detail: "clause has no lowering"}
	}
}

func (l *lowered) lowerTagClause(c tagClause) (expr.Node, error) {
	var x expr.Extractor
	switch c.lhs {
	case "name":
		x = expr.NewNameExtractor()
	case "time":
		x = expr.NewTimestampExtractor()
	case "id":
		x = expr.NewIDExtractor()
	default:
		return nil, &SemanticError{Detail: "unknown tag clause field " + c.lhs}
	}
	rhs, err := c.rhs.fold()
	if err != nil {
		return nil, err
	}
	if c.op == expr.Equal {
		if s, ok := rhs.StringValue(); ok && s != "" {
			l.literals = append(l.literals, s)
		}
	}
	l.extractors = append(l.extractors, x)
	return expr.NewRelationalOperator(c.op, x, expr.NewConstant(rhs)), nil
}

func (l *lowered) lowerTypeClause(c typeClause) (expr.Node, error) {
	kind, ok := lookupTypeTag(string(c.lhs))
	if !ok {
		return nil, &SemanticError{Detail: "unknown type tag " + string(c.lhs)}
	}
	rhs, err := c.rhs.fold()
	if err != nil {
		return nil, err
	}
	ex := expr.NewExists(kind)
	l.extractors = append(l.extractors, ex)
	return expr.NewRelationalOperator(c.op, ex, expr.NewConstant(rhs)), nil
}

func (l *lowered) lowerOffsetClause(c offsetClause) (expr.Node, error) {
	rhs, err := c.rhs.fold()
	if err != nil {
		return nil, err
	}
	off := expr.NewOffsetExtractor(c.offsets)
	l.extractors = append(l.extractors, off)
	return expr.NewRelationalOperator(c.op, off, expr.NewConstant(rhs)), nil
}

// lowerEventNameMatch builds the implicit name-match clause attached
// to every event clause: equality when the pattern has no glob
// metacharacters, a glob-lowered regex match otherwise.
func (l *lowered) lowerEventNameMatch(c eventClause) (expr.Node, error) {
	name := expr.NewNameExtractor()
	l.extractors = append(l.extractors, name)
	if strings.ContainsAny(c.name, "*?") {
		re, err := value.GlobRegex(c.name)
		if err != nil {
			return nil, &SemanticError{Detail: "invalid event name glob " + c.name}
		}
		return expr.NewRelationalOperator(expr.Match, name, expr.NewConstant(value.NewRegex(re))), nil
	}
	l.literals = append(l.literals, c.name)
	return expr.NewRelationalOperator(expr.Equal, name, expr.NewConstant(value.NewString(c.name))), nil
}

func (l *lowered) lowerEventPredicate(c eventClause, cfg LowerConfig) (expr.Node, error) {
	rhs, err := c.rhs.fold()
	if err != nil {
		return nil, err
	}
	offsets := []int{0}
	if cfg.OffsetMode == OffsetModeSchema && cfg.Schema != nil {
		if i := cfg.Schema.Offset(c.name); i >= 0 {
			offsets = []int{i}
		}
	}
	off := expr.NewOffsetExtractor(offsets)
	l.extractors = append(l.extractors, off)
	return expr.NewRelationalOperator(c.op, off, expr.NewConstant(rhs)), nil
}
