// Package expr evaluates arithmetic expressions that may only use numbers
// from a fixed multiset of tiles.
//
// Evaluation runs in four stages: tile validation, tokenization,
// infix-to-postfix conversion and a stack evaluation over float64 values.
// Every stage reports failures with one of the sentinel errors below, wrapped
// with context, so callers match them with errors.Is.
//
//	v, err := expr.Evaluate("(25 - 4) * 3", []int{3, 4, 7, 9, 25, 40})
//	// v == 63
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrTileMismatch          = errors.New("tile mismatch")
	ErrInvalidCharacter      = errors.New("invalid character")
	ErrUnbalancedParentheses = errors.New("unbalanced parentheses")
	ErrMalformedExpression   = errors.New("malformed expression")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrInvalidResult         = errors.New("invalid result")
)

// divisors smaller than this in magnitude are treated as zero
const divisionEpsilon = 1e-12

var kinds = []struct {
	err  error
	name string
}{
	{ErrTileMismatch, "TileMismatch"},
	{ErrInvalidCharacter, "InvalidCharacter"},
	{ErrUnbalancedParentheses, "UnbalancedParentheses"},
	{ErrMalformedExpression, "MalformedExpression"},
	{ErrDivisionByZero, "DivisionByZero"},
	{ErrInvalidResult, "InvalidResult"},
}

// Kind returns the taxonomy name of an evaluation error, or "" when err is
// not one of ours.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// Evaluate validates the tiles used by expression and returns its value.
func Evaluate(expression string, tiles []int) (float64, error) {
	if err := ValidateTiles(expression, tiles); err != nil {
		return 0, err
	}

	tokens, err := Tokenize(expression)
	if err != nil {
		return 0, err
	}

	postfix, err := ToPostfix(tokens)
	if err != nil {
		return 0, err
	}

	return EvalPostfix(postfix)
}

// ValidateTiles checks that every maximal digit run in expression names an
// available tile, counting occurrences with multiplicity.
func ValidateTiles(expression string, tiles []int) error {
	available := make(map[int]int, len(tiles))
	for _, t := range tiles {
		available[t]++
	}

	for i := 0; i < len(expression); {
		if !isDigit(expression[i]) {
			i++
			continue
		}

		start := i
		for i < len(expression) && isDigit(expression[i]) {
			i++
		}

		run := expression[start:i]
		v, err := strconv.Atoi(run)
		if err != nil {
			return fmt.Errorf("%w: %s is not a tile", ErrTileMismatch, run)
		}
		if available[v] == 0 {
			if countOf(tiles, v) == 0 {
				return fmt.Errorf("%w: %d is not a tile", ErrTileMismatch, v)
			}
			return fmt.Errorf("%w: %d used more than %d time(s)", ErrTileMismatch, v, countOf(tiles, v))
		}
		available[v]--
	}

	return nil
}

func countOf(tiles []int, v int) int {
	n := 0
	for _, t := range tiles {
		if t == v {
			n++
		}
	}
	return n
}

func precedence(o byte) int {
	switch o {
	case '*', '/':
		return 2
	case '+', '-':
		return 1
	}
	return 0
}

// ToPostfix converts infix tokens to postfix order. All operators are left
// associative, so an operator of equal precedence on the stack is popped
// before the incoming one is pushed.
func ToPostfix(tokens []Token) ([]Token, error) {
	out := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Kind {
		case Number:
			out = append(out, tok)

		case Operator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind != Operator || precedence(top.Op) < precedence(tok.Op) {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)

		case LeftParen:
			stack = append(stack, tok)

		case RightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == LeftParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, fmt.Errorf("%w: unexpected )", ErrUnbalancedParentheses)
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Kind == LeftParen {
			return nil, fmt.Errorf("%w: missing )", ErrUnbalancedParentheses)
		}
		out = append(out, top)
	}

	return out, nil
}

// EvalPostfix evaluates postfix tokens on a float64 stack.
func EvalPostfix(tokens []Token) (float64, error) {
	stack := make([]float64, 0, len(tokens))

	for _, tok := range tokens {
		switch tok.Kind {
		case Number:
			stack = append(stack, tok.Value)

		case Operator:
			if len(stack) < 2 {
				return 0, fmt.Errorf("%w: operator %c is missing an operand", ErrMalformedExpression, tok.Op)
			}
			left, right := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]

			var v float64
			switch tok.Op {
			case '+':
				v = left + right
			case '-':
				v = left - right
			case '*':
				v = left * right
			case '/':
				if math.Abs(right) < divisionEpsilon {
					return 0, ErrDivisionByZero
				}
				v = left / right
			}
			stack = append(stack, v)

		default:
			return 0, fmt.Errorf("%w: unexpected %s", ErrMalformedExpression, tok)
		}
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: %d values left after evaluation", ErrMalformedExpression, len(stack))
	}

	result := stack[0]
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, ErrInvalidResult
	}
	return result, nil
}
