package query

import (
	"strconv"
	"strings"

	"github.com/vastlabs/telemetry-query/pkg/expr"
)

// parser is a hand-written recursive-descent parser over the token
// stream: a single lookahead token, consumed explicitly at each
// production.
//
// Grammar, loosest-binding first:
//
//	orExpr   := andExpr ( '||' andExpr )*
//	andExpr  := notExpr ( '&&' notExpr )*
//	notExpr  := '!' notExpr | primary
//	primary  := '(' orExpr ')' | clause
type parser struct {
	lex  *lexer
	tok  token
	text string
}

func newParser(text string) (*parser, error) {
	p := &parser{lex: newLexer(text), text: text}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, &SyntaxError{Query: p.text, Detail: "expected " + what}
	}
	tok := p.tok
	return tok, p.advance()
}

// parseQuery parses the full query text into a Boolean expression
// tree ready for normalize().
func parseQuery(text string) (boolExpr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmptyQueryError{}
	}
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	e, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &SyntaxError{Query: text, Detail: "trailing input after query"}
	}
	return e, nil
}

func (p *parser) parseOrExpr() (boolExpr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = orExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (boolExpr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = andExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNotExpr() (boolExpr, error) {
	if p.tok.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return notExpr{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (boolExpr, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	c, err := p.parseClause()
	if err != nil {
		return nil, err
	}
	return leafExpr{clause: c}, nil
}

func (p *parser) parseClause() (clause, error) {
	switch p.tok.kind {
	case tokColon:
		return p.parseTypeClause()
	case tokAt:
		return p.parseOffsetClause()
	case tokIdent:
		return p.parseIdentLedClause()
	default:
		return nil, &SyntaxError{Query: p.text, Detail: "expected a clause"}
	}
}

func (p *parser) parseTypeClause() (clause, error) {
	if err := p.advance(); err != nil { // consume ':'
		return nil, err
	}
	name, err := p.expect(tokIdent, "a type name")
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return typeClause{lhs: typeTag(name.text), op: op, rhs: rhs}, nil
}

func (p *parser) parseOffsetClause() (clause, error) {
	if err := p.advance(); err != nil { // consume '@'
		return nil, err
	}
	pathTok := p.tok
	if pathTok.kind != tokNumber && pathTok.kind != tokAddress {
		return nil, &SyntaxError{Query: p.text, Detail: "expected an offset path after '@'"}
	}
	offsets, err := parseOffsetPath(pathTok.text)
	if err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return offsetClause{offsets: offsets, op: op, rhs: rhs}, nil
}

// parseOffsetPath splits the dot-separated digit run the lexer
// captured after '@' (e.g. "0.1.2") into an ordered index sequence.
func parseOffsetPath(text string) ([]int, error) {
	parts := strings.Split(text, ".")
	offsets := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, &SyntaxError{Detail: "invalid offset path component " + part}
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

// parseIdentLedClause disambiguates a tag clause ("name == ...") from
// an event clause ("http-request : ...") by looking at the token
// that follows the leading identifier. An event clause's operator is
// optional and defaults to == (`http-request : "GET"`).
func (p *parser) parseIdentLedClause() (clause, error) {
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokColon {
		if err := p.advance(); err != nil { // consume ':'
			return nil, err
		}
		op := expr.Equal
		if p.tok.kind == tokOp {
			var err error
			if op, err = p.parseOp(); err != nil {
				return nil, err
			}
		}
		rhs, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return eventClause{name: name, op: op, rhs: rhs}, nil
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return tagClause{lhs: name, op: op, rhs: rhs}, nil
}

var opText = map[string]expr.RelationKind{
	"==":  expr.Equal,
	"!=":  expr.NotEqual,
	"<":   expr.Less,
	"<=":  expr.LessEqual,
	">":   expr.Greater,
	">=":  expr.GreaterEqual,
	"~":   expr.Match,
	"!~":  expr.NotMatch,
	"in":  expr.In,
	"!in": expr.NotIn,
}

func (p *parser) parseOp() (expr.RelationKind, error) {
	if p.tok.kind != tokOp {
		return 0, &SyntaxError{Query: p.text, Detail: "expected an operator"}
	}
	kind, ok := opText[p.tok.text]
	if !ok {
		return 0, &SyntaxError{Query: p.text, Detail: "unknown operator " + p.tok.text}
	}
	return kind, p.advance()
}

func (p *parser) parseLiteral() (literal, error) {
	tok := p.tok
	var lit literal
	switch tok.kind {
	case tokString:
		lit = literal{kind: litString, raw: tok.text}
	case tokRegex:
		lit = literal{kind: litRegex, raw: tok.text}
	case tokTimestamp:
		lit = literal{kind: litTimestamp, raw: tok.text}
	case tokNumber:
		if strings.ContainsRune(tok.text, '/') {
			lit = literal{kind: litPort, raw: tok.text}
		} else {
			lit = literal{kind: litNumber, raw: tok.text}
		}
	case tokAddress:
		if strings.ContainsRune(tok.text, '/') {
			lit = literal{kind: litSubnet, raw: tok.text}
		} else {
			lit = literal{kind: litAddress, raw: tok.text}
		}
	case tokIdent:
		lit = literal{kind: litIdent, raw: tok.text}
	default:
		return literal{}, &SyntaxError{Query: p.text, Detail: "expected a value"}
	}
	return lit, p.advance()
}
