package parser

import (
	"strings"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// MerchantCandidate is a provisional merchant record found in the text.
// LineIndex is the line the name appears on; amount search is measured from it.
type MerchantCandidate struct {
	LineIndex int
	Date      string
	Direction models.Direction
	Name      string
}

// Detection methods recorded per line.
const (
	methodDescriptor        = "descriptor"
	methodUndatedDescriptor = "undated-descriptor"
	methodDirectPayment     = "direct-payment"
	methodDirectPaymentName = "direct-payment-name"
	methodSplitDate         = "split-date"
	methodSplitDescriptor   = "split-descriptor"
	methodNameRepair        = "name-repair"
)

type descriptor struct {
	date      string
	direction models.Direction
	name      string
}

// matchDescriptor recognises "<date> <word>: <name>" and "<word>: <name>".
func (p *Parser) matchDescriptor(line string) (descriptor, bool) {
	date, rest, dated := splitLeadingDate(line)
	if !dated {
		rest = line
	}
	m := p.descriptor.FindStringSubmatch(rest)
	if m == nil {
		return descriptor{}, false
	}
	return descriptor{
		date:      date,
		direction: p.profile.direction(m[1]),
		name:      strings.TrimSpace(m[2]),
	}, true
}

// matchDirectPayment recognises "<date> <known payment service>".
func (p *Parser) matchDirectPayment(line string) (string, string, bool) {
	date, rest, ok := splitLeadingDate(line)
	if !ok || !isDirectPayment(rest) {
		return "", "", false
	}
	return date, rest, true
}

func usableName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && hasLetter(name) && !isAccountNumber(name)
}

// plausibleName accepts a standalone line that could be the real merchant
// behind an account-number placeholder.
func (p *Parser) plausibleName(line string) bool {
	n := runeLen(line)
	if n < 4 || n > 49 {
		return false
	}
	if !hasLetter(line) || isAmountLine(line) || isAccountNumber(line) || isDateOnly(line) {
		return false
	}
	// a dated line opens its own record, such as "20.08 Vipps"
	if _, _, dated := splitLeadingDate(line); dated {
		return false
	}
	if _, _, ok := p.matchDirectPayment(line); ok {
		return false
	}
	_, isDescriptor := p.matchDescriptor(line)
	return !isDescriptor
}

// detectMerchants scans the lines once, left to right, and returns the
// candidates in discovery order. Every line belonging to a merchant record is
// claimed in the ledger.
func (p *Parser) detectMerchants(lines []RawLine, led *ledger) []*MerchantCandidate {
	var out []*MerchantCandidate

	for i := 0; i < len(lines); i++ {
		if led.consumed(i) {
			continue
		}
		text := lines[i].Text

		if d, ok := p.matchDescriptor(text); ok {
			cand := &MerchantCandidate{LineIndex: i, Date: d.date, Direction: d.direction, Name: d.name}
			method := methodDescriptor
			if d.date == "" {
				method = methodUndatedDescriptor
			}
			led.mark(i, resultMerchant, method)
			i = p.refineName(lines, i, cand, led)
			out = append(out, cand)
			continue
		}

		if date, name, ok := p.matchDirectPayment(text); ok {
			cand := &MerchantCandidate{LineIndex: i, Date: date, Direction: models.Outgoing, Name: name}
			led.mark(i, resultMerchant, methodDirectPayment)
			if next := i + 1; next < len(lines) && !led.consumed(next) {
				if d, ok := p.matchDescriptor(lines[next].Text); ok && d.date == "" && usableName(d.name) {
					cand.Name = d.name
					cand.Direction = d.direction
					led.mark(next, resultConsumed, methodDirectPaymentName)
					i = next
				}
			}
			out = append(out, cand)
			continue
		}

		if date, ok := extractDateOnly(text); ok && i+1 < len(lines) && !led.consumed(i+1) {
			d, ok := p.matchDescriptor(lines[i+1].Text)
			if ok && d.date == "" {
				nameLine := i + 1
				cand := &MerchantCandidate{LineIndex: nameLine, Date: date, Direction: d.direction, Name: d.name}
				led.mark(i, resultConsumed, methodSplitDate)
				led.mark(nameLine, resultMerchant, methodSplitDescriptor)
				i = p.refineName(lines, nameLine, cand, led)
				out = append(out, cand)
			}
		}
	}
	return out
}

// refineName replaces an account-number name with a real one found within
// RefineLookahead lines after the candidate. It returns the index of the last
// line consumed so the caller's scan resumes after it.
func (p *Parser) refineName(lines []RawLine, at int, cand *MerchantCandidate, led *ledger) int {
	if usableName(cand.Name) {
		return at
	}

	limit := at + p.heuristics.RefineLookahead
	for j := at + 1; j <= limit && j < len(lines); j++ {
		if led.consumed(j) {
			continue
		}
		text := lines[j].Text

		if d, ok := p.matchDescriptor(text); ok {
			if d.date != "" && d.date != cand.Date {
				// a new dated record starts here
				break
			}
			if usableName(d.name) {
				cand.Name = d.name
				led.mark(j, resultConsumed, methodNameRepair)
				return j
			}
			continue
		}

		if p.plausibleName(text) {
			cand.Name = text
			led.mark(j, resultConsumed, methodNameRepair)
			return j
		}
	}
	return at
}
