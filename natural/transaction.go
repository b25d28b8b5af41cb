// Package natural models a statement transaction as it reads on paper, before it is lowered into ledger postings.
package natural

import (
	"strings"
	"time"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
)

const (
	// DefaultAccount is used for the primary posting when no account was assigned
	DefaultAccount = "Expenses:Unknown"

	// InternationalKey marks cross-border transactions. Internal keys start with an underscore and never reach the ledger.
	InternationalKey = "_is_international"
)

// Detail is a named sub-amount of a transaction.
// Non-extra details itemize the primary amount. Extra details are auxiliary entries, like taxes or discounts,
// which balance against the debited account on their own.
type Detail struct {
	Amount      amount.Amount
	Description string
	Account     string
	Extra       bool
	Meta        map[string]string
}

// Transaction is one economic event before it is turned into ledger postings
type Transaction struct {
	Date           time.Time
	Payee          string
	Description    string
	Amount         amount.Amount
	Account        string
	DebitedAccount string
	// DebitedAmount defaults to Amount when nil
	DebitedAmount *amount.Amount
	Details       []Detail
	Meta          map[string]string
}

// New creates a transaction debiting debitedAccount by the same amount
func New(date time.Time, amt amount.Amount, debitedAccount string) *Transaction {
	return &Transaction{
		Date:           date,
		Amount:         amt,
		Account:        DefaultAccount,
		DebitedAccount: debitedAccount,
	}
}

// Debited returns the amount taken from the debited account
func (t *Transaction) Debited() amount.Amount {
	if t.DebitedAmount == nil {
		return t.Amount
	}
	return *t.DebitedAmount
}

func (t *Transaction) account() string {
	if t.Account == "" {
		return DefaultAccount
	}
	return t.Account
}

// SetMeta sets a metadata value, allocating the map if needed
func (t *Transaction) SetMeta(key, value string) {
	if t.Meta == nil {
		t.Meta = make(map[string]string)
	}
	t.Meta[key] = value
}

// IsInternational returns true if the transaction was flagged as cross-border
func (t *Transaction) IsInternational() bool {
	return t.Meta[InternationalKey] == "true"
}

// AddDetail appends a detail, preserving insertion order
func (t *Transaction) AddDetail(detail Detail) {
	t.Details = append(t.Details, detail)
}

// IsInternalKey returns true for pipeline-internal metadata keys
func IsInternalKey(key string) bool {
	return strings.HasPrefix(key, "_")
}

func publicMeta(meta map[string]string) map[string]string {
	var public map[string]string
	for k, v := range meta {
		if IsInternalKey(k) {
			continue
		}
		if public == nil {
			public = make(map[string]string, len(meta))
		}
		public[k] = v
	}
	return public
}
