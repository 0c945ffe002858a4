package parser

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Match methods recorded on the amount line in the debug output.
const (
	matchNearest  = "nearest"
	matchUnsigned = "nearest-unsigned"
	matchScored   = "scored"
	matchFallback = "fallback"
	matchSameLine = "same-line"
)

// match pairs a merchant with the amount it owns.
type match struct {
	merchant *MerchantCandidate
	amount   decimal.Decimal
	line     int
	method   string
}

// bounds is the open interval of lines between the neighbouring merchants.
type bounds struct {
	lo, hi int
}

func (b bounds) contains(line int) bool {
	return line > b.lo && line < b.hi
}

// matchAll assigns amounts to merchants in discovery order. An amount is
// claimed the moment it is selected, so a later merchant can never take it.
// Merchants without a displayable name take no amount.
func (p *Parser) matchAll(lines []RawLine, merchants []*MerchantCandidate, amounts []*AmountCandidate, led *ledger) []match {
	var out []match
	for _, m := range merchants {
		if runeLen(p.cleanMerchantName(m.Name)) < 2 {
			continue
		}

		var (
			a      *AmountCandidate
			method string
		)
		b := p.recordBounds(m, merchants, len(lines))
		if m.Direction == models.Incoming {
			a, method = p.matchIncoming(m, amounts, b)
		} else {
			a, method = p.matchOutgoing(m, amounts, b)
		}

		if a != nil && a.claim(m) {
			led.annotate(a.LineIndex, method)
			out = append(out, match{merchant: m, amount: a.Amount, line: a.LineIndex, method: method})
			continue
		}

		if amt, ok := p.matchSameLine(m, lines); ok {
			out = append(out, match{merchant: m, amount: amt, line: m.LineIndex, method: matchSameLine})
		}
	}
	return out
}

// matchOutgoing picks the nearest unused negative amount in the window. OCR
// often drops the minus sign, so when the whole record b holds no negative
// amount the nearest unsigned one in the window and record is taken instead,
// unless it looks like a running balance.
func (p *Parser) matchOutgoing(m *MerchantCandidate, amounts []*AmountCandidate, b bounds) (*AmountCandidate, string) {
	window := p.heuristics.OutgoingWindow
	if a := nearest(m, amounts, window, bounds{math.MinInt, math.MaxInt}, Negative); a != nil {
		return a, matchNearest
	}

	var best *AmountCandidate
	for _, a := range amounts {
		if a.used() || !b.contains(a.LineIndex) {
			continue
		}
		if a.Sign == Negative {
			// this record prints its signs
			return nil, ""
		}
		if abs(a.LineIndex-m.LineIndex) > window {
			continue
		}
		if balanceLike, _ := p.neighbours(a, amounts); balanceLike {
			continue
		}
		if best == nil || preferred(m, a, best) {
			best = a
		}
	}
	if best != nil {
		return best, matchUnsigned
	}
	return nil, ""
}

// matchIncoming scores every unused positive amount in the window and keeps
// the best one above MinScore, falling back to the nearest one.
func (p *Parser) matchIncoming(m *MerchantCandidate, amounts []*AmountCandidate, b bounds) (*AmountCandidate, string) {
	h := p.heuristics

	var (
		best      *AmountCandidate
		bestScore int
	)
	for _, a := range amounts {
		if a.used() || a.Sign != Positive || !b.contains(a.LineIndex) {
			continue
		}
		if abs(a.LineIndex-m.LineIndex) > h.IncomingWindow {
			continue
		}
		score, ok := p.score(m, a, amounts)
		if !ok || score <= h.MinScore {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && preferred(m, a, best)) {
			best, bestScore = a, score
		}
	}
	if best != nil {
		return best, matchScored
	}

	if a := nearest(m, amounts, h.FallbackWindow, b, Positive); a != nil {
		return a, matchFallback
	}
	return nil, ""
}

// score rates how likely a is the transaction amount for m rather than a
// running balance. The second result is false for hard-rejected amounts.
func (p *Parser) score(m *MerchantCandidate, a *AmountCandidate, amounts []*AmountCandidate) (int, bool) {
	h := p.heuristics
	value := a.Amount.InexactFloat64()
	if value > h.MaxAmount {
		return 0, false
	}

	score := h.BaseScore
	if abs(a.LineIndex-m.LineIndex) <= h.NearDistance {
		score += h.NearBonus
	}

	balanceLike, hasNeighbour := p.neighbours(a, amounts)
	switch {
	case balanceLike:
		score -= h.BalancePenalty
	case hasNeighbour:
		score += h.SequenceBonus
	}

	switch {
	case value < h.SmallAmount:
		score += h.SmallBonus
	case value < h.MediumAmount:
		score += h.MediumBonus
	case value > h.LargeAmount:
		score -= h.LargePenalty
	}

	if value > h.RoundAmount && a.Amount.Mod(decimal.NewFromFloat(h.RoundMultiple)).IsZero() {
		score -= h.RoundPenalty
	}
	return score, true
}

// neighbours inspects the unused positive amounts within BalanceDistance
// lines of a. balanceLike is set when one of them is near a in value, as
// consecutive running balances are.
func (p *Parser) neighbours(a *AmountCandidate, amounts []*AmountCandidate) (balanceLike, hasNeighbour bool) {
	for _, other := range amounts {
		if other == a || other.used() || other.Sign != Positive {
			continue
		}
		if abs(other.LineIndex-a.LineIndex) > p.heuristics.BalanceDistance {
			continue
		}
		hasNeighbour = true
		if p.nearValue(a.Amount, other.Amount) {
			balanceLike = true
		}
	}
	return balanceLike, hasNeighbour
}

// nearValue reports whether two amounts are close enough to be consecutive
// running balances.
func (p *Parser) nearValue(x, y decimal.Decimal) bool {
	h := p.heuristics
	diff := x.Sub(y).Abs().InexactFloat64()
	if x.InexactFloat64() < h.BalanceAbsoluteAbove {
		return diff <= x.InexactFloat64()*h.BalanceRelTolerance
	}
	return diff <= h.BalanceAbsTolerance
}

// nearest returns the unused amount of the given sign closest to m within
// window lines and bounds. Ties go to the amount after the merchant line.
func nearest(m *MerchantCandidate, amounts []*AmountCandidate, window int, b bounds, sign Sign) *AmountCandidate {
	var best *AmountCandidate
	for _, a := range amounts {
		if a.used() || a.Sign != sign || !b.contains(a.LineIndex) {
			continue
		}
		if abs(a.LineIndex-m.LineIndex) > window {
			continue
		}
		if best == nil || preferred(m, a, best) {
			best = a
		}
	}
	return best
}

// preferred orders two amounts for m: nearer first, then the one after the
// merchant line, then the smaller.
func preferred(m *MerchantCandidate, a, b *AmountCandidate) bool {
	da, db := abs(a.LineIndex-m.LineIndex), abs(b.LineIndex-m.LineIndex)
	if da != db {
		return da < db
	}
	afterA, afterB := a.LineIndex > m.LineIndex, b.LineIndex > m.LineIndex
	if afterA != afterB {
		return afterA
	}
	return a.Amount.LessThan(b.Amount)
}

// recordBounds limits an incoming search to the lines between the previous
// and the next merchant anchor.
func (p *Parser) recordBounds(m *MerchantCandidate, merchants []*MerchantCandidate, n int) bounds {
	b := bounds{lo: -1, hi: n}
	for _, other := range merchants {
		if other == m {
			continue
		}
		if other.LineIndex < m.LineIndex && other.LineIndex > b.lo {
			b.lo = other.LineIndex
		}
		if other.LineIndex > m.LineIndex && other.LineIndex < b.hi {
			b.hi = other.LineIndex
		}
	}
	return b
}

// matchSameLine reads an amount printed at the end of the merchant line itself.
func (p *Parser) matchSameLine(m *MerchantCandidate, lines []RawLine) (decimal.Decimal, bool) {
	amt, sign, ok := trailingAmount(lines[m.LineIndex].Text)
	if !ok || amt.IsZero() {
		return decimal.Zero, false
	}
	if m.Direction == models.Incoming && sign == Negative {
		return decimal.Zero, false
	}
	return amt, true
}
