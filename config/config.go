// Package config loads the importer's account mapping from a YAML file, with overrides from the environment.
// A .env file in the working directory is loaded first, if present.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/GonzaloRizzo/beancount-itau-importer/discount"
	iErrors "github.com/GonzaloRizzo/beancount-itau-importer/errors"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/tax"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	envExpenseAccount  = "ITAU_EXPENSE_ACCOUNT"
	envDiscountAccount = "ITAU_DISCOUNT_ACCOUNT"
	envTaxAccount      = "ITAU_TAX_ACCOUNT"
	envDevelopment     = "DEVELOPMENT"
)

// Config is the complete importer configuration
type Config struct {
	Accounts Accounts `yaml:"accounts"`
	// CreditCard maps a debited currency to the card's liability account
	CreditCard Currencies `yaml:"credit_card"`
	// Bank maps a currency to the account MultiCash exports are debited from
	Bank Currencies `yaml:"bank"`

	Development bool `yaml:"-"`
}

// Accounts names the accounts normalization stages post to
type Accounts struct {
	Expense  string `yaml:"expense"`
	Discount string `yaml:"discount"`
	Tax      string `yaml:"tax"`
}

// Currencies maps a currency code to a ledger account
type Currencies map[string]string

// UnmappedCurrencyError is returned when a statement uses a currency without an account
type UnmappedCurrencyError struct {
	Currency string
}

func (e UnmappedCurrencyError) Error() string {
	return fmt.Sprintf("No account configured for currency %q", e.Currency)
}

// Account returns the account for currency
func (c Currencies) Account(currency string) (string, error) {
	account, ok := c[currency]
	if !ok || account == "" {
		return "", UnmappedCurrencyError{Currency: currency}
	}
	return account, nil
}

// Default returns the accounts used by Itau statements out of the box
func Default() Config {
	return Config{
		Accounts: Accounts{
			Expense:  natural.DefaultAccount,
			Discount: discount.DefaultAccount,
			Tax:      tax.DefaultAccount,
		},
		CreditCard: Currencies{
			"UYU": "Liabilities:Itau:CreditCard:UYU",
			"USD": "Liabilities:Itau:CreditCard:USD",
		},
		Bank: Currencies{
			"UYU": "Assets:Itau:UYU",
		},
	}
}

// Load reads the config at path on top of Default, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "Failed to read config file")
		}
		if err := config.Decode(data); err != nil {
			return Config{}, err
		}
	}

	config.Accounts.Expense = getEnvOrDefault(envExpenseAccount, config.Accounts.Expense)
	config.Accounts.Discount = getEnvOrDefault(envDiscountAccount, config.Accounts.Discount)
	config.Accounts.Tax = getEnvOrDefault(envTaxAccount, config.Accounts.Tax)
	config.Development = os.Getenv(envDevelopment) == "true"
	return config, config.Validate()
}

// Decode merges YAML data into c. Currency maps are merged key by key.
func (c *Config) Decode(data []byte) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, "Failed to parse config file")
	}
	if file.Accounts.Expense != "" {
		c.Accounts.Expense = file.Accounts.Expense
	}
	if file.Accounts.Discount != "" {
		c.Accounts.Discount = file.Accounts.Discount
	}
	if file.Accounts.Tax != "" {
		c.Accounts.Tax = file.Accounts.Tax
	}
	c.CreditCard = merge(c.CreditCard, file.CreditCard)
	c.Bank = merge(c.Bank, file.Bank)
	return nil
}

func merge(base, overrides Currencies) Currencies {
	result := make(Currencies, len(base)+len(overrides))
	for currency, account := range base {
		result[currency] = account
	}
	for currency, account := range overrides {
		result[strings.ToUpper(currency)] = account
	}
	return result
}

// Validate checks every account is set
func (c Config) Validate() error {
	var errs iErrors.Errors
	errs.Check(c.Accounts.Expense == "", "Expense account must not be empty")
	errs.Check(c.Accounts.Discount == "", "Discount account must not be empty")
	errs.Check(c.Accounts.Tax == "", "Tax account must not be empty")
	errs.Add(c.CreditCard.validate("credit_card"))
	errs.Add(c.Bank.validate("bank"))
	return errs.Err()
}

func (c Currencies) validate(name string) error {
	var errs iErrors.Errors
	errs.Check(len(c) == 0, "At least one %s currency must be configured", name)
	currencies := make([]string, 0, len(c))
	for currency := range c {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		errs.Check(c[currency] == "", "Account for %s currency %s must not be empty", name, currency)
	}
	return errs.Err()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
