package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sign of an amount as printed on the statement.
type Sign int

const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// AmountCandidate is a standalone amount line. Amount is always non-negative;
// the printed sign is kept separately. An amount is owned by at most one
// merchant, transferred once through claim.
type AmountCandidate struct {
	LineIndex int
	Amount    decimal.Decimal
	Sign      Sign
	owner     *MerchantCandidate
}

// claim hands the amount to m. It fails when the amount is already owned.
func (a *AmountCandidate) claim(m *MerchantCandidate) bool {
	if a.owner != nil {
		return false
	}
	a.owner = m
	return true
}

// Owner returns the merchant holding the amount, or nil.
func (a *AmountCandidate) Owner() *MerchantCandidate {
	return a.owner
}

func (a *AmountCandidate) used() bool {
	return a.owner != nil
}

// detectAmounts returns every line that is a single amount and is not part of
// a merchant record, in line order.
func detectAmounts(lines []RawLine, led *ledger) []*AmountCandidate {
	var out []*AmountCandidate
	for i, line := range lines {
		if led.consumed(i) || !isAmountLine(line.Text) {
			continue
		}
		sign := Positive
		if strings.HasPrefix(normalizeAmountText(line.Text), "-") {
			sign = Negative
		}
		out = append(out, &AmountCandidate{
			LineIndex: i,
			Amount:    ParseAmount(line.Text),
			Sign:      sign,
		})
		led.mark(i, resultAmount, "")
	}
	return out
}

// trailingAmount extracts an amount printed at the end of a merchant line.
func trailingAmount(line string) (decimal.Decimal, Sign, bool) {
	m := trailingAmountPattern.FindStringSubmatch(normalizeAmountText(line))
	if m == nil {
		return decimal.Zero, Positive, false
	}
	token := strings.TrimSpace(m[1])
	if isDateOnly(token) {
		return decimal.Zero, Positive, false
	}
	sign := Positive
	if strings.HasPrefix(token, "-") {
		sign = Negative
	}
	return ParseAmount(token), sign, true
}
