package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/GonzaloRizzo/beancount-itau-importer/math"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DateFormat is the date layout used by beancount files
const DateFormat = "2006-01-02"

// Transaction is a ledger entry ready to be written to a beancount file
type Transaction struct {
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Postings  []Posting
	Tags      map[string]string
}

func (t Transaction) header() string {
	flag := t.Flag
	if flag == "" {
		flag = FlagOkay
	}
	header := t.Date.Format(DateFormat) + " " + flag
	switch {
	case t.Payee != "":
		header += " " + strconv.Quote(t.Payee) + " " + strconv.Quote(t.Narration)
	case t.Narration != "":
		header += " " + strconv.Quote(t.Narration)
	}
	return header
}

func (t Transaction) String() string {
	accountLen, amountLen := 0, 0
	for _, posting := range t.Postings {
		accountLen = math.MaxInt(accountLen, len(posting.accountColumn()))
		if posting.Amount != nil {
			amountLen = math.MaxInt(amountLen, len(posting.Amount.String()))
		}
	}

	var buf strings.Builder
	buf.WriteString(t.header())
	buf.WriteRune('\n')
	buf.WriteString(serializeTags("  ", t.Tags))
	for _, posting := range t.Postings {
		buf.WriteString(posting.FormatTable(-accountLen, amountLen))
	}
	return buf.String()
}

// Validate checks the postings balance per currency. A single elided posting balances the rest implicitly.
func (t Transaction) Validate() error {
	if len(t.Postings) < 2 {
		return errors.Errorf("Transaction must have at least 2 postings, found %d", len(t.Postings))
	}
	elided := 0
	var currencies []string
	sums := make(map[string]decimal.Decimal)
	for _, posting := range t.Postings {
		weight, ok := posting.Weight()
		if !ok {
			elided++
			continue
		}
		if _, seen := sums[weight.Currency]; !seen {
			currencies = append(currencies, weight.Currency)
		}
		sums[weight.Currency] = sums[weight.Currency].Add(weight.Number)
	}
	if elided > 1 {
		return errors.Errorf("Transaction has %d postings without an amount, at most 1 is allowed", elided)
	}
	if elided == 1 {
		return nil
	}
	for _, currency := range currencies {
		if sums[currency].Abs().GreaterThanOrEqual(balanceTolerance) {
			return errors.Errorf("Postings do not balance for %s: off by %s", currency, sums[currency])
		}
	}
	return nil
}
