package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GonzaloRizzo/beancount-itau-importer/config"
	"github.com/GonzaloRizzo/beancount-itau-importer/consts"
	"github.com/GonzaloRizzo/beancount-itau-importer/importer"
	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
	"github.com/GonzaloRizzo/beancount-itau-importer/rules"
	"github.com/GonzaloRizzo/beancount-itau-importer/statement"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	formatCreditCard = "creditcard"
	formatMultiCash  = "multicash"
)

func loadLedger(fileName string) (*ledger.Ledger, error) {
	ledgerFile, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error opening '%s'", fileName)
	}
	defer ledgerFile.Close()
	return ledger.NewFromReader(ledgerFile)
}

func loadRules(fileName string) (rules.Rules, error) {
	rulesFile, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error opening rules file '%s'", fileName)
	}
	defer rulesFile.Close()
	r, err := rules.NewCSVRulesFromReader(rulesFile)
	return r, errors.Wrapf(err, "Error reading rules from file '%s'", fileName)
}

func readStatement(format, fileName string, cfg config.Config, logger *zap.Logger) ([]*natural.Transaction, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error opening statement '%s'", fileName)
	}
	defer file.Close()

	switch format {
	case formatCreditCard:
		records, err := statement.ReadCreditCardRecords(file)
		if err != nil {
			return nil, err
		}
		converter := statement.CreditCard{
			Accounts:       cfg.CreditCard,
			ExpenseAccount: cfg.Accounts.Expense,
			Logger:         logger,
		}
		return converter.Convert(records)
	case formatMultiCash:
		info, err := file.Stat()
		if err != nil {
			return nil, err
		}
		converter := statement.MultiCash{
			Accounts:       cfg.Bank,
			ExpenseAccount: cfg.Accounts.Expense,
		}
		return converter.ReadZip(file, info.Size())
	default:
		return nil, errors.Errorf("Unknown statement format: %q", format)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(format, inputFileName, ledgerFileName, rulesFileName, outFileName string, cfg config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var history pipe.History
	if ledgerFileName != "" {
		ldg, err := loadLedger(ledgerFileName)
		if err != nil {
			return err
		}
		history = ldg
	}

	var extraStages []pipe.Stage
	if rulesFileName != "" {
		r, err := loadRules(rulesFileName)
		if err != nil {
			return err
		}
		extraStages = append(extraStages, r)
	}

	txns, err := readStatement(format, inputFileName, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Read statement", zap.String("format", format), zap.Int("records", len(txns)))

	result, err := importer.New(cfg, logger, extraStages...).Import(txns, history)
	if err != nil {
		return err
	}
	if outFileName != "" {
		return importer.LedgerFile(result, outFileName)
	}
	return importer.WriteLedger(os.Stdout, result)
}

func usage(flagSet *flag.FlagSet) string {
	oldOutput := flagSet.Output()
	buf := bytes.NewBuffer(nil)
	flagSet.SetOutput(buf)
	flagSet.Usage()
	flagSet.SetOutput(oldOutput)
	return buf.String()
}

func requireFlags(flagSet *flag.FlagSet) (err error) {
	setFlags := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	var missingFlags []string
	flagSet.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Usage, "Required: ") && !setFlags[f.Name] {
			missingFlags = append(missingFlags, f.Name)
		}
	})
	if len(missingFlags) > 0 {
		return errors.Errorf("Missing required flags: %s", missingFlags)
	}
	return nil
}

func handleErrors(args []string, stdout io.Writer) (usageErr bool, err error) {
	flagSet := flag.NewFlagSet("itau-importer", flag.ContinueOnError)
	format := flagSet.String("format", "", fmt.Sprintf("Required: Statement format, %q or %q", formatCreditCard, formatMultiCash))
	inputFileName := flagSet.String("input", "", "Required: Path to the statement: a JSON credit card export or a MultiCash zip")
	configFileName := flagSet.String("config", "", "Path to a YAML account configuration file")
	ledgerFileName := flagSet.String("ledger", "", "Path to an existing beancount file, used to infer payees")
	rulesFileName := flagSet.String("rules", "", "Path to an hledger CSV import rules file")
	outFileName := flagSet.String("out", "", "Write the imported transactions to this file instead of stdout")
	requestVersion := flagSet.Bool("version", false, "Print the version and exit")
	if err := flagSet.Parse(args); err != nil {
		return true, err
	}
	if *requestVersion {
		fmt.Fprintln(stdout, consts.Version)
		return false, nil
	}

	if err := requireFlags(flagSet); err != nil {
		return true, errors.Errorf("%s\n%s", err.Error(), usage(flagSet))
	}
	if *format != formatCreditCard && *format != formatMultiCash {
		return true, errors.Errorf("Format must be %q or %q: %q\n%s", formatCreditCard, formatMultiCash, *format, usage(flagSet))
	}

	cfg, err := config.Load(*configFileName)
	if err != nil {
		return false, err
	}
	return false, run(*format, *inputFileName, *ledgerFileName, *rulesFileName, *outFileName, cfg)
}

func main() {
	usageErr, err := handleErrors(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if usageErr {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
