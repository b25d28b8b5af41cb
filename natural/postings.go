package natural

import (
	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/shopspring/decimal"
)

const descriptionTag = "description"

// Postings lowers the transaction into balanced ledger postings, in order:
// itemized details, the primary remainder, the debit, then extra details and their balancing posting.
// The transaction is not modified.
func (t *Transaction) Postings() ledger.Transaction {
	var postings []ledger.Posting

	remainder := t.Amount
	for _, detail := range t.Details {
		if detail.Extra {
			continue
		}
		postings = append(postings, t.detailPosting(detail, ledger.FlagWarning))
		remainder = remainder.Sub(detail.Amount)
	}
	if !remainder.IsZero() {
		postings = append(postings, ledger.Posting{
			Account: t.account(),
			Flag:    ledger.FlagWarning,
			Amount:  &remainder,
		})
	}

	postings = append(postings, t.debitPosting())

	extraSum := decimal.Zero
	hasExtra := false
	for _, detail := range t.Details {
		if !detail.Extra {
			continue
		}
		hasExtra = true
		postings = append(postings, t.detailPosting(detail, ""))
		extraSum = extraSum.Add(detail.Amount.Number)
	}
	if hasExtra {
		balance := amount.New(extraSum.Neg(), t.Debited().Currency)
		postings = append(postings, ledger.Posting{
			Account: t.DebitedAccount,
			Amount:  &balance,
		})
	}

	return ledger.Transaction{
		Date:      t.Date,
		Flag:      ledger.FlagOkay,
		Payee:     t.Payee,
		Narration: t.Description,
		Postings:  postings,
		Tags:      publicMeta(t.Meta),
	}
}

func (t *Transaction) debitPosting() ledger.Posting {
	debited := t.Debited()
	posting := ledger.Posting{Account: t.DebitedAccount}
	if debited.Equal(t.Amount) && len(t.Details) == 0 {
		// a single elided amount is balanced by the ledger
		return posting
	}
	units := debited.Neg()
	posting.Amount = &units
	if debited.Currency != t.Amount.Currency && !debited.Number.IsZero() {
		price := t.Amount.Rate(debited)
		posting.Price = &price
	}
	return posting
}

func (t *Transaction) detailPosting(detail Detail, flag string) ledger.Posting {
	account := detail.Account
	if account == "" {
		account = t.account()
	}
	units := detail.Amount
	tags := publicMeta(detail.Meta)
	if detail.Description != "" {
		if tags == nil {
			tags = make(map[string]string, 1)
		}
		tags[descriptionTag] = detail.Description
	}
	return ledger.Posting{
		Account: account,
		Flag:    flag,
		Amount:  &units,
		Tags:    tags,
	}
}
