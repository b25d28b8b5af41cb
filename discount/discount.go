// Package discount folds "REDUC. IVA" tax refunds back into the purchases they discount.
//
// Card statements report the refund granted by law 17934 (a reduction of the IVA rate on card purchases)
// as its own line, usually next to the purchase. The refund is matched to its purchase by recomputing the
// expected refund for nearby purchases.
package discount

import (
	"sort"

	"github.com/GonzaloRizzo/beancount-itau-importer/ledger"
	"github.com/GonzaloRizzo/beancount-itau-importer/math"
	"github.com/GonzaloRizzo/beancount-itau-importer/natural"
	"github.com/GonzaloRizzo/beancount-itau-importer/pipe"
	"github.com/johnstarich/go/regext"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultAccount receives reconciled discounts
	DefaultAccount = "Income:Rediva"

	// DateTag records the discount's own date when it differs from its parent's
	DateTag = "date"

	baseIVA   = 22 // percent
	points    = 9  // percent of IVA refunded
	maxOffset = 10 // extra percent some refunds are reduced by
)

var (
	marker = regext.MustCompile(`
		(?i)
		^ \s*
		REDUC \. \s* IVA \s+ LEY \s+ 17934
		\s* $
	`)

	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.RequireFromString("0.005")
)

// IsDiscount returns true if txn is a standalone IVA refund line
func IsDiscount(txn *natural.Transaction) bool {
	return marker.MatchString(txn.Description)
}

func removePercentage(value decimal.Decimal, percentage int64) decimal.Decimal {
	return value.Mul(hundred).Div(decimal.NewFromInt(100 + percentage))
}

// ExpectedDiscounts returns the refunds a purchase of value may produce, one for each extra offset from 0 to 10
func ExpectedDiscounts(value decimal.Decimal) []decimal.Decimal {
	reduced := removePercentage(value.Abs(), baseIVA).Mul(decimal.NewFromInt(points)).Div(hundred)
	discounts := make([]decimal.Decimal, 0, maxOffset+1)
	for offset := int64(0); offset <= maxOffset; offset++ {
		discounts = append(discounts, removePercentage(reduced, offset))
	}
	return discounts
}

// Matches returns true if discount is within tolerance of any refund expected for a purchase of value
func Matches(value, discount decimal.Decimal) bool {
	discount = discount.Abs()
	for _, expected := range ExpectedDiscounts(value) {
		if expected.Sub(discount).Abs().LessThan(tolerance) {
			return true
		}
	}
	return false
}

// Reconciler attaches each discount transaction to the nearest matching transaction in the statement.
// Matching is greedy: the first acceptable candidate by statement distance wins, and each parent is used at most once.
// Unmatched discounts are left in place, and may themselves be parents of later discounts.
type Reconciler struct {
	Account string
	Logger  *zap.Logger
}

// Transform implements pipe.Stage. It needs the complete statement, since statement order drives matching.
func (r Reconciler) Transform(txns []*natural.Transaction, _ pipe.History) ([]*natural.Transaction, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	account := r.Account
	if account == "" {
		account = DefaultAccount
	}

	// pool holds indexes into txns, so removals never disturb statement positions
	var discounts []int
	pool := make([]int, 0, len(txns))
	for i, txn := range txns {
		if IsDiscount(txn) {
			discounts = append(discounts, i)
		}
		pool = append(pool, i)
	}
	if len(discounts) == 0 {
		return txns, nil
	}

	merged := make(map[int]bool, len(discounts))
	parents := make(map[int]bool, len(discounts))
	for _, discountIndex := range discounts {
		discount := txns[discountIndex]
		if parents[discountIndex] {
			// already carries another discount, so it stays in the statement
			continue
		}
		position, found := findParent(txns, pool, discountIndex)
		if !found {
			logger.Info("No parent transaction found for discount",
				zap.Time("date", discount.Date),
				zap.Stringer("amount", discount.Amount),
			)
			continue
		}
		parentIndex := pool[position]
		pool = removeIndex(pool, parentIndex)
		pool = removeIndex(pool, discountIndex)
		merged[discountIndex] = true
		parents[parentIndex] = true
		attach(txns[parentIndex], discount, account)
		logger.Debug("Merged discount into parent transaction",
			zap.Int("discount", discountIndex),
			zap.Int("parent", parentIndex),
			zap.Stringer("amount", discount.Amount),
		)
	}

	result := make([]*natural.Transaction, 0, len(txns)-len(merged))
	for i, txn := range txns {
		if !merged[i] {
			result = append(result, txn)
		}
	}
	return result, nil
}

// findParent returns the pool position of the first candidate, nearest in statement order, whose expected refund matches
func findParent(txns []*natural.Transaction, pool []int, discountIndex int) (int, bool) {
	positions := make([]int, len(pool))
	for i := range positions {
		positions[i] = i
	}
	// pool is in statement order, so ties go to the earlier transaction
	sort.SliceStable(positions, func(a, b int) bool {
		return math.DistanceInt(pool[positions[a]], discountIndex) < math.DistanceInt(pool[positions[b]], discountIndex)
	})

	discount := txns[discountIndex]
	for _, position := range positions {
		if pool[position] == discountIndex {
			continue
		}
		parent := txns[pool[position]]
		if parent.Amount.Currency != discount.Amount.Currency {
			continue
		}
		if Matches(parent.Amount.Number, discount.Amount.Number) {
			return position, true
		}
	}
	return 0, false
}

func removeIndex(pool []int, index int) []int {
	for position, candidate := range pool {
		if candidate == index {
			return append(pool[:position:position], pool[position+1:]...)
		}
	}
	return pool
}

func attach(parent, discount *natural.Transaction, account string) {
	detail := natural.Detail{
		Amount:  discount.Amount,
		Account: account,
		Extra:   true,
	}
	if !parent.Date.Equal(discount.Date) {
		detail.Meta = map[string]string{DateTag: discount.Date.Format(ledger.DateFormat)}
	}
	parent.AddDetail(detail)
}
