package tool

import (
	"fmt"
	"math"
	"strconv"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

// Node is a parsed arithmetic expression.
type Node interface {
	node()
}

type Number struct {
	Value float64
}

type Negate struct {
	Operand Node
}

type Binary struct {
	Op    byte
	Left  Node
	Right Node
}

func (Number) node() {}
func (Negate) node() {}
func (Binary) node() {}

// Calculate parses and evaluates expression. Failures are *contract.ExpressionError.
func Calculate(expression string) (float64, error) {
	root, err := Parse(expression)
	if err != nil {
		return 0, err
	}
	value, err := Eval(root)
	if err != nil {
		return 0, contractx.NewExpressionError(expression, "%s", err.Error())
	}
	return value, nil
}

// Parse builds an AST for numbers, + - * /, parentheses and unary minus.
func Parse(expression string) (Node, error) {
	p := &mathParser{input: expression}
	root, err := p.parseExpr()
	if err == nil {
		p.skipSpaces()
		if p.hasNext() {
			err = fmt.Errorf("unexpected %q at position %d", p.peek(), p.pos)
		}
	}
	if err != nil {
		return nil, contractx.NewExpressionError(expression, "%s", err.Error())
	}
	return root, nil
}

// Eval computes the value of a parsed expression. Division by zero and any
// non-finite intermediate value are errors.
func Eval(n Node) (float64, error) {
	var value float64
	switch n := n.(type) {
	case Number:
		value = n.Value
	case Negate:
		operand, err := Eval(n.Operand)
		if err != nil {
			return 0, err
		}
		value = -operand
	case Binary:
		left, err := Eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := Eval(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			value = left + right
		case '-':
			value = left - right
		case '*':
			value = left * right
		case '/':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			value = left / right
		default:
			return 0, fmt.Errorf("unsupported operator %q", n.Op)
		}
	default:
		return 0, fmt.Errorf("unsupported node %T", n)
	}

	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return value, nil
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type mathParser struct {
	input string
	pos   int
}

func (p *mathParser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		p.skipSpaces()
		op, ok := p.matchAny('+', '-')
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *mathParser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		p.skipSpaces()
		op, ok := p.matchAny('*', '/')
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *mathParser) parseUnary() (Node, error) {
	p.skipSpaces()
	if p.match('-') {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Negate{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *mathParser) parsePrimary() (Node, error) {
	p.skipSpaces()
	if p.match('(') {
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return inner, nil
	}
	return p.parseNumber()
}

func (p *mathParser) parseNumber() (Node, error) {
	start := p.pos
	hasDigit := false
	hasDot := false

scan:
	for p.hasNext() {
		ch := p.peek()
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case ch == '.':
			if hasDot {
				return nil, fmt.Errorf("invalid number format at position %d", p.pos)
			}
			hasDot = true
		default:
			break scan
		}
		p.pos++
	}

	if !hasDigit {
		if p.hasNext() {
			return nil, fmt.Errorf("expected number at position %d, found %q", start, p.peek())
		}
		return nil, fmt.Errorf("expected number at end of expression")
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return Number{Value: value}, nil
}

func (p *mathParser) skipSpaces() {
	for p.hasNext() && p.peek() == ' ' {
		p.pos++
	}
}

func (p *mathParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *mathParser) peek() byte {
	return p.input[p.pos]
}

func (p *mathParser) match(expected byte) bool {
	if p.hasNext() && p.peek() == expected {
		p.pos++
		return true
	}
	return false
}

func (p *mathParser) matchAny(candidates ...byte) (byte, bool) {
	for _, c := range candidates {
		if p.match(c) {
			return c, true
		}
	}
	return 0, false
}
