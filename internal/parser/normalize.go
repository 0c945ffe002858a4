package parser

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

var (
	embeddedDatePattern   = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}(?:\.\d{2,4})?\b\.?`)
	embeddedAmountPattern = regexp.MustCompile(`[-+]?\d+(?:[., ]\d+)*`)
	punctuationRunPattern = regexp.MustCompile(`[\p{P}\p{S}]{2,}`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
	trailingPlacePattern  = regexp.MustCompile(`,\s*\p{L}+$`)
)

const strayPunctuation = " -.,:;*/|_#"

// cleanMerchantName turns an OCR merchant name into its display form.
func (p *Parser) cleanMerchantName(raw string) string {
	s := embeddedDatePattern.ReplaceAllString(raw, " ")
	s = embeddedAmountPattern.ReplaceAllString(s, " ")
	s = punctuationRunPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.Trim(s, strayPunctuation)
	s = trailingPlacePattern.ReplaceAllString(s, "")
	s = strings.Trim(s, strayPunctuation)

	if runeLen(s) > p.heuristics.MaxMerchantLength {
		words := strings.Fields(s)
		if len(words) > p.heuristics.MerchantWords {
			words = words[:p.heuristics.MerchantWords]
		}
		s = strings.Join(words, " ")
	}

	// Casers keep state, so each call gets its own.
	upper := cases.Upper(p.profile.Language)
	if s == "" {
		return upper.String(strings.TrimSpace(raw))
	}
	return upper.String(s)
}

// classify assigns the budget type from the direction and cleaned name.
func (p *Parser) classify(dir models.Direction, name string) models.TransactionType {
	if dir == models.Incoming {
		return models.TypeIncome
	}
	if p.profile.isSavings(name) {
		return models.TypeSavings
	}
	return models.TypeExpense
}

// buildTransactions normalises the matches and orders them by amount,
// largest first. Equal amounts keep discovery order and duplicates are kept.
func (p *Parser) buildTransactions(matches []match) []models.Transaction {
	out := make([]models.Transaction, 0, len(matches))
	for _, m := range matches {
		name := p.cleanMerchantName(m.merchant.Name)
		out = append(out, models.Transaction{
			Merchant:   name,
			Amount:     m.amount,
			Type:       p.classify(m.merchant.Direction, name),
			Date:       m.merchant.Date,
			AmountLine: m.line,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
