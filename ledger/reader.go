package ledger

import (
	"context"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/pkg/errors"
	"github.com/robinvdvleuten/beancount/ast"
	"github.com/robinvdvleuten/beancount/parser"
)

// parseTransactions reads every transaction in a beancount document. Other directives are skipped.
func parseTransactions(ctx context.Context, contents string) ([]Transaction, error) {
	tree, err := parser.ParseString(ctx, contents)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse ledger")
	}

	var transactions []Transaction
	for _, directive := range tree.Directives {
		txn, ok := directive.(*ast.Transaction)
		if !ok {
			continue
		}
		converted, err := newTransactionFromAST(txn)
		if err != nil {
			return nil, errors.Wrapf(err, "Transaction %d", len(transactions))
		}
		transactions = append(transactions, converted)
	}
	return transactions, nil
}

func newTransactionFromAST(txn *ast.Transaction) (Transaction, error) {
	result := Transaction{
		Flag:      txn.Flag,
		Payee:     txn.Payee,
		Narration: txn.Narration,
		Tags:      metadataTags(txn.Metadata),
	}
	if txn.Date != nil {
		result.Date = txn.Date.Time
	}
	if result.Flag == "" || result.Flag == "txn" {
		result.Flag = FlagOkay
	}

	for _, posting := range txn.Postings {
		converted, err := newPostingFromAST(posting)
		if err != nil {
			return Transaction{}, err
		}
		result.Postings = append(result.Postings, converted)
	}
	return result, nil
}

func newPostingFromAST(posting *ast.Posting) (Posting, error) {
	result := Posting{
		Account: string(posting.Account),
		Flag:    posting.Flag,
		Tags:    metadataTags(posting.Metadata),
	}
	if posting.Amount == nil {
		return result, nil
	}
	units, err := newAmountFromAST(posting.Amount)
	if err != nil {
		return Posting{}, errors.Wrapf(err, "Invalid amount for %s", result.Account)
	}
	result.Amount = &units
	if posting.Price == nil {
		return result, nil
	}
	price, err := newAmountFromAST(posting.Price)
	if err != nil {
		return Posting{}, errors.Wrapf(err, "Invalid price for %s", result.Account)
	}
	if posting.PriceTotal && !units.IsZero() {
		price = price.Div(units.Number.Abs())
	}
	result.Price = &price
	return result, nil
}

func newAmountFromAST(a *ast.Amount) (amount.Amount, error) {
	number, err := evaluate(a.Value)
	if err != nil {
		return amount.Amount{}, err
	}
	return amount.New(number, a.Currency), nil
}

// metadataTags keeps string metadata. Other value kinds have no use in payee history.
func metadataTags(metadata []*ast.Metadata) map[string]string {
	var tags map[string]string
	for _, m := range metadata {
		if m == nil || m.Value == nil || m.Value.StringValue == nil {
			continue
		}
		if tags == nil {
			tags = make(map[string]string)
		}
		tags[m.Key] = *m.Value.StringValue
	}
	return tags
}
