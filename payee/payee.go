// Package payee fills in missing payees from the payees already present in the ledger
package payee

import (
	"github.com/GonzaloRizzo/beancount-itau-importer/discount"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
	"github.com/GonzaloRizzo/beancount-itau-importer/search"
)

// MinInferableLength is the shortest normalized payee considered for a match
const MinInferableLength = 4

// Inferencer sets a transaction's payee to the longest known payee mentioned in its description.
// The description is cleared on a match, since the payee replaces it.
type Inferencer struct{}

// Transform implements pipe.Stage
func (Inferencer) Transform(txns []*natural.Transaction, history pipe.History) ([]*natural.Transaction, error) {
	if history == nil {
		return txns, nil
	}
	payees := history.Payees()
	if len(payees) == 0 {
		return txns, nil
	}
	return pipe.EachFunc(func(txn *natural.Transaction, _ pipe.History) error {
		Infer(payees, txn)
		return nil
	}).Transform(txns, history)
}

// Infer assigns a payee to txn if it has none and one of payees matches its description. Returns true on a match.
// Discount lines keep their description so they can still be reconciled.
func Infer(payees []string, txn *natural.Transaction) bool {
	if txn.Payee != "" || discount.IsDiscount(txn) {
		return false
	}
	payee, ok := search.Longest(payees, txn.Description, MinInferableLength)
	if !ok {
		return false
	}
	txn.Payee = payee
	txn.Description = ""
	return true
}
