package models

import (
	"encoding/json"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/shopspring/decimal"
)

// BudgetKind tags the variant of a campaign budget
type BudgetKind string

const (
	BudgetKindUnknown BudgetKind = "unknown"
	BudgetKindTotal   BudgetKind = "total"
	BudgetKindDaily   BudgetKind = "daily"
)

// Budget is the resolved form of the loosely typed campaign budget document:
// Total(amount) | Daily(amount) | Unknown.
type Budget struct {
	Kind   BudgetKind
	Amount decimal.Decimal
}

// TotalBudget builds a Total(amount) budget
func TotalBudget(amount decimal.Decimal) Budget {
	return Budget{Kind: BudgetKindTotal, Amount: amount}
}

// DailyBudget builds a Daily(amount) budget
func DailyBudget(amount decimal.Decimal) Budget {
	return Budget{Kind: BudgetKindDaily, Amount: amount}
}

// UnknownBudget is the budget of campaigns without a usable figure
func UnknownBudget() Budget {
	return Budget{Kind: BudgetKindUnknown, Amount: decimal.Zero}
}

type budgetDocument struct {
	Total *decimal.Decimal `json:"total"`
	Daily *decimal.Decimal `json:"daily"`
}

// ParseBudget resolves a raw budget document. A positive "total" wins over a
// positive "daily"; anything else, including malformed JSON, is Unknown.
func ParseBudget(raw []byte) Budget {
	if len(raw) == 0 {
		return UnknownBudget()
	}

	var doc budgetDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return UnknownBudget()
	}

	switch {
	case doc.Total != nil && doc.Total.IsPositive():
		return TotalBudget(*doc.Total)
	case doc.Daily != nil && doc.Daily.IsPositive():
		return DailyBudget(*doc.Daily)
	default:
		return UnknownBudget()
	}
}

// Spend is the campaign spend implied by the budget
func (b Budget) Spend() decimal.Decimal {
	switch b.Kind {
	case BudgetKindTotal:
		return b.Amount
	case BudgetKindDaily:
		return b.Amount.Mul(decimal.NewFromInt(utils.DailyBudgetPeriodDays))
	default:
		return decimal.Zero
	}
}
