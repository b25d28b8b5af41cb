package ledger

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// evaluate computes a beancount number expression, like "-1,000.50" or "(10 + 2) / 4"
func evaluate(expression string) (decimal.Decimal, error) {
	e := &expressionParser{input: strings.ReplaceAll(expression, ",", "")}
	value, err := e.sum()
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "Invalid number expression %q", expression)
	}
	e.skipSpace()
	if e.pos != len(e.input) {
		return decimal.Decimal{}, errors.Errorf("Invalid number expression %q: unexpected %q", expression, e.input[e.pos:])
	}
	return value, nil
}

type expressionParser struct {
	input string
	pos   int
}

func (e *expressionParser) skipSpace() {
	for e.pos < len(e.input) && (e.input[e.pos] == ' ' || e.input[e.pos] == '\t') {
		e.pos++
	}
}

func (e *expressionParser) peek() byte {
	e.skipSpace()
	if e.pos >= len(e.input) {
		return 0
	}
	return e.input[e.pos]
}

func (e *expressionParser) sum() (decimal.Decimal, error) {
	value, err := e.product()
	if err != nil {
		return value, err
	}
	for {
		op := e.peek()
		if op != '+' && op != '-' {
			return value, nil
		}
		e.pos++
		rhs, err := e.product()
		if err != nil {
			return value, err
		}
		if op == '+' {
			value = value.Add(rhs)
		} else {
			value = value.Sub(rhs)
		}
	}
}

func (e *expressionParser) product() (decimal.Decimal, error) {
	value, err := e.unary()
	if err != nil {
		return value, err
	}
	for {
		op := e.peek()
		if op != '*' && op != '/' {
			return value, nil
		}
		e.pos++
		rhs, err := e.unary()
		if err != nil {
			return value, err
		}
		if op == '*' {
			value = value.Mul(rhs)
			continue
		}
		if rhs.IsZero() {
			return value, errors.New("Division by zero")
		}
		value = value.Div(rhs)
	}
}

func (e *expressionParser) unary() (decimal.Decimal, error) {
	switch e.peek() {
	case '-':
		e.pos++
		value, err := e.unary()
		return value.Neg(), err
	case '+':
		e.pos++
		return e.unary()
	case '(':
		e.pos++
		value, err := e.sum()
		if err != nil {
			return value, err
		}
		if e.peek() != ')' {
			return value, errors.New("Missing closing parenthesis")
		}
		e.pos++
		return value, nil
	}

	start := e.pos
	for e.pos < len(e.input) && (e.input[e.pos] == '.' || (e.input[e.pos] >= '0' && e.input[e.pos] <= '9')) {
		e.pos++
	}
	if start == e.pos {
		return decimal.Decimal{}, errors.New("Expected a number")
	}
	return decimal.NewFromString(e.input[start:e.pos])
}
