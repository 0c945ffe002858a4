package models

import "github.com/shopspring/decimal"

// TransactionType is the budget bucket a transaction lands in.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
	TypeSavings TransactionType = "savings"
)

// Direction tells whether money moved into or out of the account.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Transaction is a single suggestion recovered from a scanned statement.
type Transaction struct {
	Merchant          string          `json:"merchant"`
	Amount            decimal.Decimal `json:"amount"`
	Type              TransactionType `json:"type"`
	Date              string          `json:"date,omitempty"`
	AmountLine        int             `json:"amountLine"` // source amount line in the segmented text
	SuggestedCategory string          `json:"suggestedCategory,omitempty"`
}

// Locale selects a statement language profile.
type Locale string

const (
	LocaleNorwegian Locale = "no"
	LocaleSwedish   Locale = "sv"
	LocaleDanish    Locale = "da"
	LocaleEnglish   Locale = "en"
)

// Values of DebugLine.Result.
const (
	ResultSkipped  = "skipped"
	ResultMerchant = "merchant"
	ResultConsumed = "consumed"
	ResultAmount   = "amount"
)

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"`
	Method  string `json:"method,omitempty"`
}

// ScanResult holds everything one parse produced.
type ScanResult struct {
	Locale       Locale        `json:"locale"`
	Transactions []Transaction `json:"transactions"`
	DebugLines   []DebugLine   `json:"debugLines,omitempty"`
}

// Totals sums transaction amounts per type.
func (r *ScanResult) Totals() map[TransactionType]decimal.Decimal {
	totals := map[TransactionType]decimal.Decimal{
		TypeIncome:  decimal.Zero,
		TypeExpense: decimal.Zero,
		TypeSavings: decimal.Zero,
	}
	for _, txn := range r.Transactions {
		totals[txn.Type] = totals[txn.Type].Add(txn.Amount)
	}
	return totals
}
