package amount

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const quantizePlaces = 2

// Amount is an exact decimal number tagged with a currency code.
// Arithmetic keeps the receiver's currency, callers must ensure the operands are compatible.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// New creates an Amount
func New(number decimal.Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// Parse reads an amount formatted as "<number> <currency>", i.e. "-10.50 UYU"
func Parse(s string) (Amount, error) {
	tokens := strings.Fields(s)
	if len(tokens) != 2 {
		return Amount{}, errors.Errorf("Amount must have a number and a currency: '%s'", s)
	}
	number, err := decimal.NewFromString(tokens[0])
	if err != nil {
		return Amount{}, errors.Wrapf(err, "Invalid amount number: '%s'", s)
	}
	return New(number, tokens[1]), nil
}

// MustParse is like Parse but panics on invalid input
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount {
	return New(a.Number.Add(b.Number), a.Currency)
}

func (a Amount) Sub(b Amount) Amount {
	return New(a.Number.Sub(b.Number), a.Currency)
}

func (a Amount) Mul(factor decimal.Decimal) Amount {
	return New(a.Number.Mul(factor), a.Currency)
}

func (a Amount) Div(divisor decimal.Decimal) Amount {
	return New(a.Number.Div(divisor), a.Currency)
}

func (a Amount) Neg() Amount {
	return New(a.Number.Neg(), a.Currency)
}

func (a Amount) Abs() Amount {
	return New(a.Number.Abs(), a.Currency)
}

func (a Amount) IsZero() bool {
	return a.Number.IsZero()
}

// Equal returns true if both the numbers and currencies are equal. Trailing zeros are ignored.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

// Quantize rounds to 2 decimal places, half to even
func (a Amount) Quantize() Amount {
	return New(a.Number.RoundBank(quantizePlaces), a.Currency)
}

// Rate divides a by other's number, producing a price in a's currency.
// It describes how much of a's currency one unit of other's currency buys.
func (a Amount) Rate(other Amount) Amount {
	return a.Div(other.Number)
}

func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}
