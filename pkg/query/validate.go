package query

import "fmt"

// validate rejects semantic errors the parser's grammar cannot catch:
// unknown tag names, unknown type tags, and malformed offset paths.
func validate(e boolExpr, text string) error {
	switch v := e.(type) {
	case leafExpr:
		return validateClause(v.clause, text)
	case notExpr:
		return validate(v.operand, text)
	case andExpr:
		if err := validate(v.left, text); err != nil {
			return err
		}
		return validate(v.right, text)
	case orExpr:
		if err := validate(v.left, text); err != nil {
			return err
		}
		return validate(v.right, text)
	default:
		return &SemanticError{Query: text, Detail: "unrecognized expression node"}
	}
}

func validateClause(c clause, text string) error {
	switch v := c.(type) {
	case tagClause:
		switch v.lhs {
		case "name", "time", "id":
		default:
			return &SemanticError{Query: text, Detail: fmt.Sprintf("unknown tag clause field %q", v.lhs)}
		}
		return nil
	case typeClause:
		if _, ok := lookupTypeTag(string(v.lhs)); !ok {
			return &SemanticError{Query: text, Detail: fmt.Sprintf("unknown type tag %q", v.lhs)}
		}
		return nil
	case offsetClause:
		if len(v.offsets) == 0 {
			return &SemanticError{Query: text, Detail: "offset clause has an empty path"}
		}
		return nil
	case eventClause:
		if v.name == "" {
			return &SemanticError{Query: text, Detail: "event clause has an empty name pattern"}
		}
		return nil
	default:
		return &SemanticError{Query: text, Detail: "unrecognized clause"}
	}
}
