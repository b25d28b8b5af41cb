// Package tax adds the bank's surcharge to cross-border card purchases
package tax

import (
	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
	"github.com/shopspring/decimal"
)

// DefaultAccount receives international tax charges
const DefaultAccount = "Expenses:Taxes:Itau"

// Rate is the 3% international charge plus 22% IVA on top of it
var Rate = decimal.RequireFromString("0.03").Mul(decimal.RequireFromString("1.22"))

// International attaches a tax detail to every transaction flagged as international
type International struct {
	Account string
}

// Transform implements pipe.Stage
func (i International) Transform(txns []*natural.Transaction, history pipe.History) ([]*natural.Transaction, error) {
	account := i.Account
	if account == "" {
		account = DefaultAccount
	}
	return pipe.EachFunc(func(txn *natural.Transaction, _ pipe.History) error {
		if txn.IsInternational() {
			txn.AddDetail(natural.Detail{
				Amount:  Charge(txn.Debited()),
				Account: account,
				Extra:   true,
			})
		}
		return nil
	}).Transform(txns, history)
}

// Charge returns the international tax owed on debited, rounded to cents in debited's currency
func Charge(debited amount.Amount) amount.Amount {
	return debited.Mul(Rate).Quantize()
}
