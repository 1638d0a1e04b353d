package event

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression is matched by every expression parsing error.
var ErrInvalidExpression = errors.New("event: invalid event expression")

// Term is a set of alternative event names. A term is satisfied by the
// first of its names to fire.
type Term []string

// Any builds a term satisfied by any one of names.
func Any(names ...string) Term {
	return Term(names)
}

// ExpressionError describes why an event expression was rejected.
type ExpressionError struct {
	Expr   any
	Reason string
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("event: invalid event expression %v: %s", e.Expr, e.Reason)
}

// Is makes every ExpressionError match ErrInvalidExpression.
func (e *ExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// Parse normalises an event expression into terms.
//
// Accepted forms:
//   - string: a single required event
//   - Term: one term of alternatives
//   - []string: each element is a required event
//   - []Term, [][]string: each element is a term of alternatives
//   - []any: each element is a string or a []string / Term / []any of strings
func Parse(expr any) ([]Term, error) {
	var terms []Term
	switch v := expr.(type) {
	case string:
		terms = []Term{{v}}
	case Term:
		terms = []Term{v}
	case []string:
		for _, name := range v {
			terms = append(terms, Term{name})
		}
	case []Term:
		terms = append(terms, v...)
	case [][]string:
		for _, alts := range v {
			terms = append(terms, Term(alts))
		}
	case []any:
		for i, el := range v {
			term, err := parseTerm(el)
			if err != nil {
				return nil, &ExpressionError{Expr: expr, Reason: fmt.Sprintf("term %d: %s", i, err)}
			}
			terms = append(terms, term)
		}
	case nil:
		return nil, &ExpressionError{Expr: expr, Reason: "expression is empty"}
	default:
		return nil, &ExpressionError{Expr: expr, Reason: fmt.Sprintf("unsupported type %T", expr)}
	}

	if len(terms) == 0 {
		return nil, &ExpressionError{Expr: expr, Reason: "expression is empty"}
	}
	for i, term := range terms {
		if len(term) == 0 {
			return nil, &ExpressionError{Expr: expr, Reason: fmt.Sprintf("term %d has no event names", i)}
		}
		for _, name := range term {
			if name == "" {
				return nil, &ExpressionError{Expr: expr, Reason: fmt.Sprintf("term %d contains an empty event name", i)}
			}
		}
	}
	return terms, nil
}

func parseTerm(el any) (Term, error) {
	switch v := el.(type) {
	case string:
		return Term{v}, nil
	case Term:
		return v, nil
	case []string:
		return Term(v), nil
	case []any:
		term := make(Term, 0, len(v))
		for _, n := range v {
			name, ok := n.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported event name type %T", n)
			}
			term = append(term, name)
		}
		return term, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", el)
	}
}
