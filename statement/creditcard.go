// Package statement converts Itau statement records into natural transactions
package statement

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/GonzaloRizzo/beancount-itau-importer/config"
	iErrors "github.com/GonzaloRizzo/beancount-itau-importer/errors"
	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/johnstarich/go/regext"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// UnknownCurrency is used for origin amounts when the statement does not name their currency
	UnknownCurrency = "UNKNOWN"

	CardTag        = "card"
	InstallmentTag = "installment"
)

// ErrAmbiguousAmount is returned for records which do not have exactly one debited amount
var ErrAmbiguousAmount = errors.New("Exactly one of the UYU or USD amounts must be set")

var installmentExp = regext.MustCompile(`
	^ \s*
	(\d+)  # current payment
	\s* / \s*
	(\d+)  # total payments
	\s* $
`)

// Installment is a record's payment number, like 3 of 12
type Installment struct {
	Current string `json:"current"`
	Total   string `json:"total"`
}

// ParseInstallment parses payment numbers formatted like "3 / 12"
func ParseInstallment(s string) (Installment, error) {
	matches := installmentExp.FindStringSubmatch(s)
	if matches == nil {
		return Installment{}, errors.Errorf("Invalid payment number: %q", s)
	}
	return Installment{Current: matches[1], Total: matches[2]}, nil
}

type installmentJSON Installment

// UnmarshalJSON accepts either an object or a "3 / 12" string
func (i *Installment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		installment, err := ParseInstallment(s)
		if err != nil {
			return err
		}
		*i = installment
		return nil
	}
	var installment installmentJSON
	if err := json.Unmarshal(data, &installment); err != nil {
		return err
	}
	*i = Installment(installment)
	return nil
}

func (i Installment) String() string {
	return fmt.Sprintf("%s/%s", i.Current, i.Total)
}

// CreditCardRecord is one line of a credit card statement
type CreditCardRecord struct {
	Date           string           `json:"date" validate:"required,datetime=2006-01-02"`
	Description    string           `json:"description"`
	IsCardPayment  bool             `json:"is_card_payment"`
	CardEnding     string           `json:"card_ending" validate:"omitempty,numeric,len=4"`
	PaymentNumber  *Installment     `json:"payment_number"`
	AmountOrigin   *decimal.Decimal `json:"amount_origin"`
	AmountUYU      *decimal.Decimal `json:"amount_uyu"`
	AmountUSD      *decimal.Decimal `json:"amount_usd"`
	OriginCurrency string           `json:"origin_currency" validate:"omitempty,uppercase,alpha"`
}

// Validate checks the record's fields are well formed
func (r CreditCardRecord) Validate() error {
	return validateStruct(r)
}

// ReadCreditCardRecords decodes a JSON array of records
func ReadCreditCardRecords(r io.Reader) ([]CreditCardRecord, error) {
	var records []CreditCardRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "Failed to decode credit card records")
	}
	return records, nil
}

func isSet(d *decimal.Decimal) bool {
	return d != nil && !d.IsZero()
}

// debited returns the amount charged to the card, in the card's currency
func (r CreditCardRecord) debited() (amount.Amount, error) {
	uyu, usd := isSet(r.AmountUYU), isSet(r.AmountUSD)
	switch {
	case uyu && !usd:
		return amount.New(*r.AmountUYU, "UYU"), nil
	case usd && !uyu:
		return amount.New(*r.AmountUSD, "USD"), nil
	default:
		return amount.Amount{}, ErrAmbiguousAmount
	}
}

// CreditCard converts credit card records, debiting the card's account for each record's currency
type CreditCard struct {
	Accounts       config.Currencies
	ExpenseAccount string
	Logger         *zap.Logger
}

// Convert returns a transaction for every record except card payments.
// Any bad record fails the whole statement, and every bad record is reported.
func (c CreditCard) Convert(records []CreditCardRecord) ([]*natural.Transaction, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	txns := make([]*natural.Transaction, 0, len(records))
	var errs iErrors.Errors
	for i, record := range records {
		if record.IsCardPayment {
			logger.Debug("Skipping card payment", zap.Int("record", i), zap.String("date", record.Date))
			continue
		}
		txn, err := c.convert(record)
		if err != nil {
			errs.Atf(err, "Record %d", i)
			continue
		}
		txns = append(txns, txn)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c CreditCard) convert(record CreditCardRecord) (*natural.Transaction, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	date, err := time.Parse(ledger.DateFormat, record.Date)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid date")
	}
	debited, err := record.debited()
	if err != nil {
		return nil, err
	}
	account, err := c.Accounts.Account(debited.Currency)
	if err != nil {
		return nil, err
	}

	txn := natural.New(date, debited, account)
	if c.ExpenseAccount != "" {
		txn.Account = c.ExpenseAccount
	}
	txn.Description = record.Description

	if isSet(record.AmountOrigin) && !record.AmountOrigin.Abs().Equal(debited.Number.Abs()) {
		currency := record.OriginCurrency
		if currency == "" {
			currency = UnknownCurrency
		}
		txn.Amount = amount.New(*record.AmountOrigin, currency)
		txn.DebitedAmount = &debited
		txn.SetMeta(natural.InternationalKey, "true")
	}
	if record.CardEnding != "" {
		txn.SetMeta(CardTag, record.CardEnding)
	}
	if record.PaymentNumber != nil {
		txn.SetMeta(InstallmentTag, record.PaymentNumber.String())
	}
	return txn, nil
}
