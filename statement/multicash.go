package statement

import (
	"archive/zip"
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
	"github.com/GonzaloRizzo/beancount-itau-importer/config"
	iErrors "github.com/GonzaloRizzo/beancount-itau-importer/errors"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// MultiCashPrefix starts the name of the zip member holding account movements
	MultiCashPrefix = "UMSATZ"

	multiCashDateFormat = "02.01.06"
	multiCashCurrency   = "UYU"
	multiCashCells      = 11
)

// ErrNoMultiCashStatement is returned when a zip export has no movements file
var ErrNoMultiCashStatement = errors.Errorf("No %s file found in MultiCash export", MultiCashPrefix)

// MultiCash converts Itau's MultiCash bank exports: ';' separated rows, amounts in UYU
type MultiCash struct {
	Accounts       config.Currencies
	ExpenseAccount string
}

// ParseLine converts a single export row
func (m MultiCash) ParseLine(line string) (*natural.Transaction, error) {
	cells := strings.Split(line, ";")
	if len(cells) < multiCashCells {
		return nil, errors.Errorf("Expected at least %d cells, found %d", multiCashCells, len(cells))
	}
	date, err := time.Parse(multiCashDateFormat, strings.TrimSpace(cells[3]))
	if err != nil {
		return nil, errors.Wrap(err, "Invalid date")
	}
	number, err := decimal.NewFromString(strings.TrimSpace(cells[10]))
	if err != nil {
		return nil, errors.Wrap(err, "Invalid amount")
	}
	account, err := m.Accounts.Account(multiCashCurrency)
	if err != nil {
		return nil, err
	}

	// movements are reported from the bank account's side
	txn := natural.New(date, amount.New(number.Neg(), multiCashCurrency), account)
	if m.ExpenseAccount != "" {
		txn.Account = m.ExpenseAccount
	}
	txn.Description = strings.Join([]string{cells[6], cells[9]}, " ")
	return txn, nil
}

// Read converts every non-blank row. Row errors are collected and returned together.
func (m MultiCash) Read(r io.Reader) ([]*natural.Transaction, error) {
	var txns []*natural.Transaction
	var errs iErrors.Errors
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		txn, err := m.ParseLine(line)
		if err != nil {
			var unmapped config.UnmappedCurrencyError
			if errors.As(err, &unmapped) {
				return nil, err
			}
			errs.Atf(err, "Line %d", lineNumber)
			continue
		}
		txns = append(txns, txn)
	}
	errs.Add(scanner.Err())
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

// ReadZip converts the movements file inside a MultiCash zip export
func (m MultiCash) ReadZip(r io.ReaderAt, size int64) ([]*natural.Transaction, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open MultiCash export")
	}
	for _, file := range archive.File {
		if !strings.HasPrefix(file.Name, MultiCashPrefix) {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to open %s", file.Name)
		}
		defer reader.Close()
		return m.Read(reader)
	}
	return nil, ErrNoMultiCashStatement
}
