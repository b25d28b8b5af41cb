package ledger

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// balanceTolerance absorbs rounding introduced by price annotations
var balanceTolerance = decimal.RequireFromString("0.005")

// Ledger is an ordered set of transactions
type Ledger struct {
	transactions []Transaction
}

// New creates a ledger from the given transactions
func New(transactions []Transaction) *Ledger {
	return &Ledger{transactions: transactions}
}

// NewFromReader reads beancount transactions from reader. Other directives are skipped.
func NewFromReader(reader io.Reader) (*Ledger, error) {
	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read ledger")
	}
	transactions, err := parseTransactions(context.Background(), string(contents))
	if err != nil {
		return nil, err
	}
	return New(transactions), nil
}

// Transactions returns the ledger's transactions in order
func (l *Ledger) Transactions() []Transaction {
	return l.transactions
}

// Payees returns every distinct, non-empty payee in the ledger, sorted
func (l *Ledger) Payees() []string {
	if l == nil {
		return nil
	}
	seen := make(map[string]bool)
	var payees []string
	for _, txn := range l.transactions {
		if txn.Payee != "" && !seen[txn.Payee] {
			seen[txn.Payee] = true
			payees = append(payees, txn.Payee)
		}
	}
	sort.Strings(payees)
	return payees
}

// Validate checks every transaction balances, returning an Error for the first one that doesn't
func (l *Ledger) Validate() error {
	for i, txn := range l.transactions {
		if err := txn.Validate(); err != nil {
			return NewValidateError(i, err)
		}
	}
	return nil
}

func (l *Ledger) String() string {
	entries := make([]string, 0, len(l.transactions))
	for _, txn := range l.transactions {
		entries = append(entries, txn.String())
	}
	return strings.Join(entries, "\n")
}
