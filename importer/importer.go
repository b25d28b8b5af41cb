// Package importer turns a statement's natural transactions into a validated ledger
package importer

import (
	"fmt"
	"io"
	"os"

	"github.com/GonzaloRizzo/beancount-itau-importer/config"
	"github.com/GonzaloRizzo/beancount-itau-importer/discount"
	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/payee"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
	"github.com/GonzaloRizzo/beancount-itau-importer/tax"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Importer normalizes a statement with Stages, then lowers it into ledger transactions
type Importer struct {
	Stages pipe.Stages
	Logger *zap.Logger
}

// New wires the standard stages: payee inference, discount reconciliation, then international tax.
// extra stages run afterwards, in order.
func New(cfg config.Config, logger *zap.Logger, extra ...pipe.Stage) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	stages := []pipe.Stage{
		payee.Inferencer{},
		discount.Reconciler{Account: cfg.Accounts.Discount, Logger: logger},
		tax.International{Account: cfg.Accounts.Tax},
	}
	stages = append(stages, extra...)
	importer := &Importer{Logger: logger}
	for _, stage := range stages {
		importer.Stages = append(importer.Stages, logStage(logger, stage))
	}
	return importer
}

// logStage reports how many transactions stage received and returned
func logStage(logger *zap.Logger, stage pipe.Stage) pipe.Stage {
	name := fmt.Sprintf("%T", stage)
	return pipe.StageFunc(func(txns []*natural.Transaction, history pipe.History) ([]*natural.Transaction, error) {
		result, err := stage.Transform(txns, history)
		if err != nil {
			logger.Debug("Stage failed", zap.String("stage", name), zap.Error(err))
			return nil, err
		}
		logger.Debug("Stage finished",
			zap.String("stage", name),
			zap.Int("received", len(txns)),
			zap.Int("returned", len(result)),
		)
		return result, nil
	})
}

// Import runs every stage over txns, then builds and validates the resulting ledger.
// Any failure aborts the whole statement. history may be nil.
func (i *Importer) Import(txns []*natural.Transaction, history pipe.History) (*ledger.Ledger, error) {
	logger := i.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	normalized, err := i.Stages.Transform(txns, history)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to normalize transactions")
	}

	ledgerTxns := make([]ledger.Transaction, 0, len(normalized))
	for _, txn := range normalized {
		ledgerTxns = append(ledgerTxns, txn.Postings())
	}
	ldg := ledger.New(ledgerTxns)
	if err := ldg.Validate(); err != nil {
		logger.Error("Imported transactions do not balance", zap.Error(err))
		return nil, err
	}
	logger.Info("Imported transactions",
		zap.Int("records", len(txns)),
		zap.Int("transactions", len(ledgerTxns)),
	)
	return ldg, nil
}

// WriteLedger writes ldg in beancount format
func WriteLedger(w io.Writer, ldg *ledger.Ledger) error {
	_, err := io.WriteString(w, ldg.String())
	return errors.Wrap(err, "Error writing ledger")
}

// LedgerFile writes ldg to fileName, replacing its contents
func LedgerFile(ldg *ledger.Ledger, fileName string) error {
	err := os.WriteFile(fileName, []byte(ldg.String()), 0600)
	return errors.Wrap(err, "Error writing ledger to disk")
}
