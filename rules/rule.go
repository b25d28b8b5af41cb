package rules

import (
	"fmt"
	"strings"

	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
)

// Rule categorizes a transaction when it matches
type Rule interface {
	Match(*natural.Transaction) bool
	Apply(*natural.Transaction)
}

// Rules are applied in order, so later rules override earlier ones
type Rules []Rule

// Apply runs every matching rule against txn
func (r Rules) Apply(txn *natural.Transaction) {
	for _, rule := range r {
		if rule.Match(txn) {
			rule.Apply(txn)
		}
	}
}

// Transform implements pipe.Stage
func (r Rules) Transform(txns []*natural.Transaction, history pipe.History) ([]*natural.Transaction, error) {
	return pipe.EachFunc(func(txn *natural.Transaction, _ pipe.History) error {
		r.Apply(txn)
		return nil
	}).Transform(txns, history)
}

func (r Rules) String() string {
	var buf strings.Builder
	for _, rule := range r {
		buf.WriteString(fmt.Sprintf("%s\n", rule))
	}
	return buf.String()
}
