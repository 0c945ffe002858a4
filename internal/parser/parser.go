package parser

import (
	"fmt"
	"regexp"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Parser turns OCR text from a statement photo into transaction suggestions.
// A Parser holds only configuration; every Parse call works on its own data,
// so one Parser may be shared between goroutines.
type Parser struct {
	profile    *Profile
	heuristics Heuristics
	descriptor *regexp.Regexp
}

// Option customises a Parser.
type Option func(*Parser)

// WithHeuristics replaces the default windows and score deltas.
func WithHeuristics(h Heuristics) Option {
	return func(p *Parser) {
		p.heuristics = h
	}
}

// New returns a parser for the given statement language. An empty locale
// selects Norwegian.
func New(locale models.Locale, opts ...Option) (*Parser, error) {
	if locale == "" {
		locale = models.LocaleNorwegian
	}
	profile, ok := ProfileFor(locale)
	if !ok {
		return nil, fmt.Errorf("unsupported locale: %q", locale)
	}

	p := &Parser{
		profile:    profile,
		heuristics: DefaultHeuristics(),
		descriptor: profile.descriptorPattern(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.heuristics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid heuristics: %w", err)
	}
	return p, nil
}

// AutoDetect returns a parser for the locale DetectLocale picks, falling back
// to Norwegian when the text gives no hint.
func AutoDetect(text string, opts ...Option) (*Parser, error) {
	locale, _ := DetectLocale(text)
	return New(locale, opts...)
}

// Locale reports the statement language the parser reads.
func (p *Parser) Locale() models.Locale {
	return p.profile.Locale
}

// Parse runs the full pipeline over one blob of OCR text. It never fails:
// unrecognised lines are skipped and merchants without an amount are dropped.
func (p *Parser) Parse(text string) *models.ScanResult {
	lines := Segment(text)
	led := newLedger(lines)

	merchants := p.detectMerchants(lines, led)
	amounts := detectAmounts(lines, led)
	matches := p.matchAll(lines, merchants, amounts, led)

	return &models.ScanResult{
		Locale:       p.profile.Locale,
		Transactions: p.buildTransactions(matches),
		DebugLines:   led.debugLines(),
	}
}

var defaultParser = func() *Parser {
	p, err := New(models.LocaleNorwegian)
	if err != nil {
		panic(err)
	}
	return p
}()

// Parse reads text with the Norwegian profile and default heuristics.
func Parse(text string) []models.Transaction {
	return defaultParser.Parse(text).Transactions
}
