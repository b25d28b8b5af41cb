package discount

import (
	"testing"
	"time"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const discountDescription = "REDUC. IVA LEY 17934"

var statementDate = time.Date(2019, 3, 12, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func purchase(description, amt string) *natural.Transaction {
	txn := natural.New(statementDate, amount.MustParse(amt), "Liabilities:Itau:UYU")
	txn.Description = description
	return txn
}

func refund(amt string) *natural.Transaction {
	return purchase(discountDescription, amt)
}

func TestIsDiscount(t *testing.T) {
	assert.True(t, IsDiscount(refund("-1 UYU")))
	assert.True(t, IsDiscount(purchase(" reduc.  iva ley 17934 ", "-1 UYU")))
	assert.False(t, IsDiscount(purchase("REDUC. IVA LEY 19210", "-1 UYU")))
	assert.False(t, IsDiscount(purchase("DEVOTO REDUC. IVA LEY 17934", "-1 UYU")))
	assert.False(t, IsDiscount(purchase("", "-1 UYU")))
}

func TestExpectedDiscounts(t *testing.T) {
	discounts := ExpectedDiscounts(dec("1000"))
	require.Len(t, discounts, 11)
	assert.Equal(t, "73.770492", discounts[0].StringFixed(6))
	assert.Equal(t, "70.257611", discounts[5].StringFixed(6))
	assert.Equal(t, "67.064083", discounts[10].StringFixed(6))

	negative := ExpectedDiscounts(dec("-1000"))
	assert.Equal(t, discounts[0].StringFixed(6), negative[0].StringFixed(6))
}

func TestMatches(t *testing.T) {
	for _, tc := range []struct {
		description string
		value       string
		discount    string
		matches     bool
	}{
		{description: "no offset", value: "1000", discount: "73.77", matches: true},
		{description: "negative discount", value: "1000", discount: "-73.77", matches: true},
		{description: "5 point offset", value: "1000", discount: "70.26", matches: true},
		{description: "10 point offset", value: "1000", discount: "67.06", matches: true},
		{description: "just inside tolerance", value: "1000", discount: "73.774", matches: true},
		{description: "just outside tolerance", value: "1000", discount: "73.776", matches: false},
		{description: "between offsets", value: "1000", discount: "72.80", matches: false},
		{description: "beyond the last offset", value: "1000", discount: "67.07", matches: false},
		{description: "unrelated", value: "1000", discount: "50", matches: false},
		{description: "smaller purchase", value: "500", discount: "36.89", matches: true},
	} {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.matches, Matches(dec(tc.value), dec(tc.discount)))
		})
	}
}

func descriptions(txns []*natural.Transaction) []string {
	var result []string
	for _, txn := range txns {
		result = append(result, txn.Description)
	}
	return result
}

func TestReconcilerTransform(t *testing.T) {
	t.Run("no discounts", func(t *testing.T) {
		txns := []*natural.Transaction{purchase("a", "1000 UYU"), purchase("b", "10 UYU")}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Equal(t, txns, result)
	})

	t.Run("attaches to the matching transaction", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("a", "1000 UYU"),
			purchase("b", "500 UYU"),
			refund("-73.77 UYU"),
		}
		result, err := Reconciler{Logger: zap.NewNop()}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, descriptions(result))

		require.Len(t, result[0].Details, 1)
		detail := result[0].Details[0]
		assert.Equal(t, "-73.77 UYU", detail.Amount.String())
		assert.Equal(t, DefaultAccount, detail.Account)
		assert.True(t, detail.Extra)
		assert.Nil(t, detail.Meta)
		assert.Empty(t, result[1].Details)
	})

	t.Run("nearest candidate wins", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("far", "1000 UYU"),
			purchase("other", "10 UYU"),
			refund("-73.77 UYU"),
			purchase("near", "1000 UYU"),
		}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"far", "other", "near"}, descriptions(result))
		assert.Empty(t, result[0].Details)
		assert.Len(t, result[2].Details, 1)
	})

	t.Run("equal distance goes to the earlier transaction", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("before", "1000 UYU"),
			refund("-73.77 UYU"),
			purchase("after", "1000 UYU"),
		}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Len(t, result[0].Details, 1)
		assert.Empty(t, result[1].Details)
	})

	t.Run("nearer candidate wins with an offset", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("exact", "1000 UYU"),
			purchase("filler", "10 UYU"),
			refund("-73.77 UYU"),
			purchase("offset", "1050 UYU"),
		}
		// 1050 with a 5 point offset expects about 73.7705
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Empty(t, result[0].Details)
		assert.Len(t, result[2].Details, 1)
	})

	t.Run("parents are used once", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("a", "1000 UYU"),
			refund("-73.77 UYU"),
			refund("-73.77 UYU"),
		}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", discountDescription}, descriptions(result))
		assert.Len(t, result[0].Details, 1)
		assert.Empty(t, result[1].Details)
	})

	t.Run("each discount finds its own parent", func(t *testing.T) {
		txns := []*natural.Transaction{
			purchase("a", "1000 UYU"),
			refund("-73.77 UYU"),
			purchase("b", "500 UYU"),
			refund("-36.89 UYU"),
		}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, descriptions(result))
		require.Len(t, result[0].Details, 1)
		require.Len(t, result[1].Details, 1)
		assert.Equal(t, "-73.77 UYU", result[0].Details[0].Amount.String())
		assert.Equal(t, "-36.89 UYU", result[1].Details[0].Amount.String())
	})

	t.Run("unmatched discount stays", func(t *testing.T) {
		standalone := refund("-50 UYU")
		txns := []*natural.Transaction{purchase("a", "1000 UYU"), standalone}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Same(t, standalone, result[1])
		assert.Empty(t, result[0].Details)
		assert.Equal(t, "-50 UYU", result[1].Amount.String())
	})

	t.Run("unmatched discounts are candidate parents", func(t *testing.T) {
		reversal := refund("-1000 UYU")
		txns := []*natural.Transaction{
			purchase("a", "10 UYU"),
			reversal,
			refund("-73.77 UYU"),
		}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Empty(t, result[0].Details)
		assert.Same(t, reversal, result[1])
		require.Len(t, reversal.Details, 1)
		assert.Equal(t, "-73.77 UYU", reversal.Details[0].Amount.String())
	})

	t.Run("a discount carrying another discount is not merged", func(t *testing.T) {
		carrier := refund("-1000 UYU")
		txns := []*natural.Transaction{
			refund("-73.77 UYU"),
			carrier,
			purchase("b", "13555.56 UYU"),
		}
		// 13555.56 expects a refund of about 1000
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Same(t, carrier, result[0])
		assert.Len(t, carrier.Details, 1)
		assert.Empty(t, result[1].Details)
	})

	t.Run("currencies must match", func(t *testing.T) {
		txns := []*natural.Transaction{purchase("a", "1000 USD"), refund("-73.77 UYU")}
		result, err := Reconciler{}.Transform(txns, nil)
		require.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Empty(t, result[0].Details)
	})

	t.Run("different dates are recorded on the detail", func(t *testing.T) {
		parent := purchase("a", "1000 UYU")
		discount := refund("-73.77 UYU")
		discount.Date = statementDate.AddDate(0, 0, 2)
		result, err := Reconciler{Account: "Income:Taxes:Refunds"}.Transform([]*natural.Transaction{parent, discount}, nil)
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Len(t, result[0].Details, 1)
		assert.Equal(t, statementDate, result[0].Date)
		assert.Equal(t, "Income:Taxes:Refunds", result[0].Details[0].Account)
		assert.Equal(t, map[string]string{DateTag: "2019-03-14"}, result[0].Details[0].Meta)
	})
}

func TestReconciledPostingsBalance(t *testing.T) {
	txns := []*natural.Transaction{purchase("a", "1000 UYU"), refund("-73.77 UYU")}
	result, err := Reconciler{}.Transform(txns, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)

	ledgerTxn := result[0].Postings()
	assert.NoError(t, ledgerTxn.Validate())
	require.Len(t, ledgerTxn.Postings, 4)
	assert.Equal(t, DefaultAccount, ledgerTxn.Postings[2].Account)
	assert.Equal(t, "-73.77 UYU", ledgerTxn.Postings[2].Amount.String())
	assert.Equal(t, "Liabilities:Itau:UYU", ledgerTxn.Postings[3].Account)
	assert.Equal(t, "73.77 UYU", ledgerTxn.Postings[3].Amount.String())
}
