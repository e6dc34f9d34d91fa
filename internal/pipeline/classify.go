package pipeline

import (
	"strings"

	"fintrack/internal/model"
)

// Rule inspects a transaction and reports a direction when it has an opinion.
type Rule struct {
	Name  string
	Match func(tx model.Transaction) (model.Direction, bool)
}

// Rules is the classification chain in precedence order. The first rule
// that matches decides; records no rule matches are expenses.
var Rules = []Rule{
	{Name: "type-field", Match: ByTypeField},
	{Name: "income-category", Match: ByIncomeCategory},
	{Name: "amount-sign", Match: ByAmountSign},
}

var incomeCategories = map[string]struct{}{
	"income":   {},
	"salary":   {},
	"paycheck": {},
	"deposit":  {},
	"bonus":    {},
	"interest": {},
	"credit":   {},
}

// Classify returns the cash-flow direction of tx.
func Classify(tx model.Transaction) model.Direction {
	for _, r := range Rules {
		if d, ok := r.Match(tx); ok {
			return d
		}
	}
	return model.Expense
}

// IsIncome reports whether tx classifies as income.
func IsIncome(tx model.Transaction) bool {
	return Classify(tx) == model.Income
}

// ByTypeField matches on an explicit type/txType/kind value.
// Income keywords are checked before expense keywords.
func ByTypeField(tx model.Transaction) (model.Direction, bool) {
	kind := strings.ToLower(tx.Kind)
	if kind == "" {
		return model.Expense, false
	}
	if strings.Contains(kind, "income") || strings.Contains(kind, "credit") {
		return model.Income, true
	}
	if strings.Contains(kind, "expense") || strings.Contains(kind, "debit") {
		return model.Expense, true
	}
	return model.Expense, false
}

// ByIncomeCategory matches categories that always denote income.
func ByIncomeCategory(tx model.Transaction) (model.Direction, bool) {
	if _, ok := incomeCategories[strings.ToLower(strings.TrimSpace(tx.Category))]; ok {
		return model.Income, true
	}
	return model.Expense, false
}

// ByAmountSign treats negative amounts as income and positive as expense.
func ByAmountSign(tx model.Transaction) (model.Direction, bool) {
	switch tx.Amount.Sign() {
	case -1:
		return model.Income, true
	case 1:
		return model.Expense, true
	}
	return model.Expense, false
}
