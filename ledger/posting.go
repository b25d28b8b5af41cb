package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GonzaloRizzo/beancount-itau-importer/amount"
)

const (
	// FlagOkay marks a transaction as complete
	FlagOkay = "*"
	// FlagWarning marks a transaction or posting as needing review
	FlagWarning = "!"
)

// Posting is one leg of a transaction. A nil Amount is elided and balanced automatically by the ledger.
type Posting struct {
	Account string
	Flag    string
	Amount  *amount.Amount
	Price   *amount.Amount
	Tags    map[string]string
}

// Weight returns the posting's value in the currency it balances against
func (p Posting) Weight() (amount.Amount, bool) {
	if p.Amount == nil {
		return amount.Amount{}, false
	}
	if p.Price == nil {
		return *p.Amount, true
	}
	return amount.New(p.Amount.Number.Mul(p.Price.Number), p.Price.Currency), true
}

func (p Posting) accountColumn() string {
	if p.Flag != "" {
		return p.Flag + " " + p.Account
	}
	return p.Account
}

func stringPad(s string, amount int) string {
	formatString := fmt.Sprintf("%%%ds", amount)
	return fmt.Sprintf(formatString, s)
}

// FormatTable renders the posting with the account column padded to accountLen and the amount right-aligned to amountLen
func (p Posting) FormatTable(accountLen, amountLen int) string {
	line := "  " + stringPad(p.accountColumn(), accountLen)
	if p.Amount != nil {
		line += "  " + stringPad(p.Amount.String(), amountLen)
		if p.Price != nil {
			line += " @ " + p.Price.String()
		}
	}
	return strings.TrimRight(line, " ") + "\n" + serializeTags("    ", p.Tags)
}

func (p Posting) String() string {
	return p.FormatTable(1, 1)
}

func serializeTags(indent string, tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf strings.Builder
	for _, k := range keys {
		buf.WriteString(indent)
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(strconv.Quote(tags[k]))
		buf.WriteRune('\n')
	}
	return buf.String()
}
