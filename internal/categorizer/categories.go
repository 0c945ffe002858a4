// Package categorizer suggests a budget category for each parsed transaction
// and learns from the categories the user picks.
package categorizer

import (
	"strings"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Categories lists the budget categories offered for each transaction type.
var Categories = map[models.TransactionType][]string{
	models.TypeIncome:  {"salary", "freelance", "investment", "other-income"},
	models.TypeExpense: {"grocery", "transport", "dining", "shopping", "utilities", "entertainment", "other-expense"},
	models.TypeSavings: {"emergency-fund", "vacation", "investment", "other-savings"},
}

// defaultCategory is suggested when nothing else matches.
var defaultCategory = map[models.TransactionType]string{
	models.TypeIncome:  "salary",
	models.TypeExpense: "other-expense",
	models.TypeSavings: "emergency-fund",
}

type keywordRule struct {
	category string
	keywords []string
}

// expenseRules are checked in order; the first rule with a keyword contained
// in the merchant name wins.
var expenseRules = []keywordRule{
	{"grocery", []string{"grocery", "supermarket", "food", "market", "rema", "kiwi", "meny", "coop", "bunnpris", "joker", "netto"}},
	{"transport", []string{"uber", "taxi", "bus", "train", "gas", "fuel", "ruter", "entur", "circle k", "esso", "uno-x"}},
	{"dining", []string{"restaurant", "cafe", "coffee", "pizza", "mcdonald", "burger", "espresso", "kafe"}},
	{"shopping", []string{"amazon", "store", "mall", "shop", "elkjøp", "xxl", "clas ohlson"}},
	{"utilities", []string{"electric", "water", "internet", "phone", "telenor", "telia", "tibber", "fjordkraft", "hafslund", "elvia", "kommune"}},
	{"entertainment", []string{"cinema", "netflix", "spotify", "game", "kino", "hbo", "disney"}},
}

// Valid reports whether category is offered for any transaction type.
func Valid(category string) bool {
	for _, cats := range Categories {
		for _, c := range cats {
			if c == category {
				return true
			}
		}
	}
	return false
}

func ruleCategory(merchant string) (string, bool) {
	lower := strings.ToLower(merchant)
	for _, rule := range expenseRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}
