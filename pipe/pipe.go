package pipe

import "github.com/GonzaloRizzo/beancount-itau-importer/natural"

// History is read-only context from the existing ledger. It may be nil.
type History interface {
	Payees() []string
}

// Stage is the common normalization step. Stages transform a statement's batch and can be composed into Stages.
type Stage interface {
	Transform(txns []*natural.Transaction, history History) ([]*natural.Transaction, error)
}

// StageFunc makes it easy to wrap an anonymous function into a Stage
type StageFunc func(txns []*natural.Transaction, history History) ([]*natural.Transaction, error)

// Transform implements the Stage interface
func (s StageFunc) Transform(txns []*natural.Transaction, history History) ([]*natural.Transaction, error) {
	return s(txns, history)
}

// EachFunc wraps a per-transaction mutation into a Stage
type EachFunc func(txn *natural.Transaction, history History) error

// Transform implements the Stage interface
func (e EachFunc) Transform(txns []*natural.Transaction, history History) ([]*natural.Transaction, error) {
	for _, txn := range txns {
		if err := e(txn, history); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

// Stages runs a slice of Stage's in series, feeding each one the previous batch and stopping on the first error
type Stages []Stage

// Transform implements the Stage interface
func (stages Stages) Transform(txns []*natural.Transaction, history History) ([]*natural.Transaction, error) {
	for _, stage := range stages {
		var err error
		txns, err = stage.Transform(txns, history)
		if err != nil {
			return nil, err
		}
	}
	return txns, nil
}
