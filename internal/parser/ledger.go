package parser

import "github.com/insightdelivered/statement-scanner/internal/models"

const (
	resultSkipped  = models.ResultSkipped
	resultMerchant = models.ResultMerchant
	resultConsumed = models.ResultConsumed
	resultAmount   = models.ResultAmount
)

// ledger tracks which stage claimed each line. Lines claimed by a merchant
// record are never reinterpreted by another detector.
type ledger struct {
	lines   []RawLine
	results []string
	methods []string
}

func newLedger(lines []RawLine) *ledger {
	l := &ledger{
		lines:   lines,
		results: make([]string, len(lines)),
		methods: make([]string, len(lines)),
	}
	for i := range l.results {
		l.results[i] = resultSkipped
	}
	return l
}

func (l *ledger) mark(i int, result, method string) {
	l.results[i] = result
	l.methods[i] = method
}

func (l *ledger) annotate(i int, method string) {
	l.methods[i] = method
}

// consumed reports whether the line belongs to a merchant record.
func (l *ledger) consumed(i int) bool {
	return l.results[i] == resultMerchant || l.results[i] == resultConsumed
}

func (l *ledger) debugLines() []models.DebugLine {
	out := make([]models.DebugLine, len(l.lines))
	for i, line := range l.lines {
		out[i] = models.DebugLine{
			LineNum: line.Index,
			Text:    line.Text,
			Result:  l.results[i],
			Method:  l.methods[i],
		}
	}
	return out
}
