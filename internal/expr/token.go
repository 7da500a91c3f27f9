package expr

import (
	"fmt"
	"strconv"
)

// TokenKind classifies a lexical token
type TokenKind int

const (
	Number TokenKind = iota
	Operator
	LeftParen
	RightParen
)

// Token is a single lexical element of an expression
type Token struct {
	Kind  TokenKind
	Value float64 // Number only
	Op    byte    // Operator only: one of + - * /
}

func (t Token) String() string {
	switch t.Kind {
	case Number:
		return strconv.FormatFloat(t.Value, 'g', -1, 64)
	case Operator:
		return string(t.Op)
	case LeftParen:
		return "("
	case RightParen:
		return ")"
	}
	return "?"
}

func num(v float64) Token    { return Token{Kind: Number, Value: v} }
func op(o byte) Token        { return Token{Kind: Operator, Op: o} }
func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isSpace(c byte) bool    { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isOperator(c byte) bool { return c == '+' || c == '-' || c == '*' || c == '/' }

// Tokenize scans the expression left to right. A minus sign at the start of
// the expression, after "(" or after another operator is unary and is
// rewritten as "0 -" so evaluation only ever sees binary operators.
func Tokenize(expression string) ([]Token, error) {
	var tokens []Token

	for i := 0; i < len(expression); {
		c := expression[i]

		switch {
		case isSpace(c):
			i++

		case isDigit(c):
			start := i
			for i < len(expression) && isDigit(expression[i]) {
				i++
			}
			v, err := strconv.ParseFloat(expression[start:i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: number %q at position %d", ErrMalformedExpression, expression[start:i], start)
			}
			tokens = append(tokens, num(v))

		case isOperator(c):
			if c == '-' && unaryPosition(tokens) {
				tokens = append(tokens, num(0))
			}
			tokens = append(tokens, op(c))
			i++

		case c == '(':
			tokens = append(tokens, Token{Kind: LeftParen})
			i++

		case c == ')':
			tokens = append(tokens, Token{Kind: RightParen})
			i++

		default:
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, c, i)
		}
	}

	return tokens, nil
}

func unaryPosition(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	prev := tokens[len(tokens)-1]
	return prev.Kind == LeftParen || prev.Kind == Operator
}
