package rules

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/pkg/errors"
)

const descriptionPlaceholder = "%description"

type csvRule struct {
	Conditions []string // used for formatting purposes
	matchLine  *regexp.Regexp

	Account     string
	payee       string
	description string
}

// NewCSVRule creates an hledger-style rule. Any of account, payee or description may be empty, but not all of them.
func NewCSVRule(account, payee, description string, conditions ...string) (Rule, error) {
	conditions, pattern, err := validateConditions(conditions)
	if err != nil {
		return csvRule{}, err
	}
	rule := csvRule{
		Conditions:  conditions,
		matchLine:   pattern,
		Account:     strings.TrimSpace(account),
		payee:       strings.TrimSpace(payee),
		description: strings.TrimSpace(description),
	}
	if rule.Account == "" && rule.payee == "" && rule.description == "" {
		return nil, errors.New("Invalid rule: No account, payee or description set")
	}
	return rule, nil
}

func validateConditions(conditions []string) (cleanedConditions []string, re *regexp.Regexp, err error) {
	cleanedConditions = make([]string, 0, len(conditions))
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		if c != "" {
			cleanedConditions = append(cleanedConditions, c)
		}
	}
	if len(cleanedConditions) == 0 {
		pattern := regexp.MustCompile("")
		return nil, pattern, nil
	}
	pattern, err := regexp.Compile("(?i)" + strings.Join(cleanedConditions, "|"))
	return cleanedConditions, pattern, err
}

// matchLine renders the fields conditions are matched against: date,"payee","description",number,currency
func matchLine(txn *natural.Transaction) string {
	return strings.Join([]string{
		txn.Date.Format(ledger.DateFormat),
		strconv.Quote(txn.Payee),
		strconv.Quote(txn.Description),
		txn.Amount.Number.String(),
		txn.Amount.Currency,
	}, ",")
}

func (c csvRule) Match(txn *natural.Transaction) bool {
	return c.matchLine.MatchString(matchLine(txn))
}

func (c csvRule) Apply(txn *natural.Transaction) {
	if c.Account != "" {
		txn.Account = c.Account
	}
	if c.payee != "" {
		txn.Payee = c.payee
	}
	if c.description != "" {
		txn.Description = strings.ReplaceAll(c.description, descriptionPlaceholder, txn.Description)
	}
}

func (c csvRule) String() string {
	var buf strings.Builder
	hasConditions := len(c.Conditions) > 0
	if hasConditions {
		buf.WriteString("if\n")
	}
	for _, cond := range c.Conditions {
		buf.WriteString(cond)
		buf.WriteRune('\n')
	}

	indent := func(field, value string) {
		if value == "" {
			return
		}
		if hasConditions {
			buf.WriteString("  ")
		}
		buf.WriteString(field)
		buf.WriteRune(' ')
		buf.WriteString(value)
		buf.WriteRune('\n')
	}
	indent("account", c.Account)
	indent("payee", c.payee)
	indent("description", c.description)

	return buf.String()
}

type readerState struct {
	foundIf          bool
	foundExpressions bool
	account          string
	payee            string
	description      string
	conditions       []string
}

// NewCSVRulesFromReader parses an hledger-style rules file.
// Comment lines start with '#' or ';'.
func NewCSVRulesFromReader(reader io.Reader) (Rules, error) {
	var rules Rules
	scanner := bufio.NewScanner(reader)

	var state readerState

	endRule := func() error {
		if !state.foundExpressions {
			if state.foundIf {
				return errors.New("If statements must have a condition and expression")
			}
			// nothing found
			return nil
		}
		rule, err := NewCSVRule(state.account, state.payee, state.description, state.conditions...)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
		state = readerState{}
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		switch {
		case line == "if" || strings.HasPrefix(line, "if "):
			if err := foundIf(&state, line, endRule); err != nil {
				return nil, err
			}
		case state.foundIf && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t"):
			state.conditions = append(state.conditions, line)
		default:
			err := foundExpression(&state, line)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := endRule(); err != nil {
		return nil, err
	}

	return rules, nil
}

func foundIf(state *readerState, line string, endRule func() error) error {
	if state.foundExpressions {
		if err := endRule(); err != nil {
			return err
		}
	}
	if !state.foundIf {
		line = strings.TrimPrefix(line, "if")
	}
	state.foundIf = true
	line = strings.TrimSpace(line)
	if line != "" {
		state.conditions = append(state.conditions, line)
	}
	return nil
}

func foundExpression(state *readerState, line string) error {
	if state.foundIf && len(state.conditions) == 0 {
		return errors.New("Started expressions but no conditions were found")
	}
	state.foundExpressions = true
	line = strings.TrimSpace(line)
	tokens := strings.SplitN(line, " ", 2)
	if len(tokens) != 2 {
		return errors.Errorf("Rule transform line must have both key and value: '%s'", line)
	}
	key, value := tokens[0], tokens[1]
	value = strings.TrimSpace(value)
	switch key {
	case "account":
		state.account = value
	case "payee":
		state.payee = value
	case "description":
		state.description = value
	default:
		return errors.Errorf("Unrecognized rule key: '%s'", key)
	}
	return nil
}
