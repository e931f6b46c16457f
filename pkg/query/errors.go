package query

import "fmt"

// SyntaxError reports a query that failed to parse.
type SyntaxError struct {
	Query  string
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: syntax error: %s (in %q)", e.Detail, e.Query)
}

// SemanticError reports a parsed AST that failed validation or
// constant-folding: unknown fields, wrong arity, malformed literals.
type SemanticError struct {
	Query  string
	Detail string
}

func (e *SemanticError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("query: semantic error: %s", e.Detail)
	}
	return fmt.Sprintf("query: semantic error: %s (in %q)", e.Detail, e.Query)
}

// EmptyQueryError reports a query text that is empty or all whitespace.
type EmptyQueryError struct{}

func (e *EmptyQueryError) Error() string { return "query: empty query text" }
