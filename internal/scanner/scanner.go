// Package scanner runs the whole scan: text extraction, parsing and category
// suggestions. The HTTP API and the CLI both go through a Service.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-scanner/internal/categorizer"
	"github.com/insightdelivered/statement-scanner/internal/config"
	"github.com/insightdelivered/statement-scanner/internal/extractor"
	"github.com/insightdelivered/statement-scanner/internal/logging"
	"github.com/insightdelivered/statement-scanner/internal/models"
	"github.com/insightdelivered/statement-scanner/internal/parser"
)

// Outcome is one finished scan.
type Outcome struct {
	ID       string
	Provider string // empty when the caller supplied the text
	Text     string
	Result   *models.ScanResult
}

// Service holds the long-lived collaborators of a scan.
type Service struct {
	locale      string
	heuristics  parser.Heuristics
	chain       *extractor.Chain
	categorizer *categorizer.Categorizer
	logger      logging.Logger
}

// New wires a Service. chain may be nil for text-only use.
func New(cfg *config.Config, chain *extractor.Chain, cat *categorizer.Categorizer, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	if cat == nil {
		cat = categorizer.New(nil, logger)
	}
	heuristics := cfg.Parser.Heuristics
	if heuristics == (parser.Heuristics{}) {
		heuristics = parser.DefaultHeuristics()
	}
	return &Service{
		locale:      cfg.Parser.Locale,
		heuristics:  heuristics,
		chain:       chain,
		categorizer: cat,
		logger:      logger,
	}
}

// Categorizer returns the categorizer used for suggestions.
func (s *Service) Categorizer() *categorizer.Categorizer {
	return s.categorizer
}

// Providers lists the text sources in the order they are tried.
func (s *Service) Providers() []string {
	if s.chain == nil {
		return nil
	}
	return s.chain.Providers()
}

// ParseText parses OCR text the caller already has. locale overrides the
// configured locale when set.
func (s *Service) ParseText(text, locale string) (*Outcome, error) {
	id := uuid.NewString()
	res, err := s.parse(id, text, locale)
	if err != nil {
		return nil, err
	}
	return &Outcome{ID: id, Text: text, Result: res}, nil
}

// ScanImage extracts the text of img and parses it. When no provider yields
// text the error wraps extractor.ErrNoText.
func (s *Service) ScanImage(ctx context.Context, img extractor.Image, locale string) (*Outcome, error) {
	if s.chain == nil {
		return nil, fmt.Errorf("%w: no text providers configured", extractor.ErrNoText)
	}

	id := uuid.NewString()
	log := s.logger.WithFields(
		logging.F(logging.FieldScanID, id),
		logging.F(logging.FieldFile, img.Name),
	)

	start := time.Now()
	extracted, err := s.chain.Extract(ctx, img)
	if err != nil {
		log.WithError(err).Warn("text extraction failed")
		return nil, err
	}
	log.Info("extraction finished",
		logging.F(logging.FieldProvider, extracted.Provider),
		logging.F(logging.FieldBytes, len(extracted.Text)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

	res, err := s.parse(id, extracted.Text, locale)
	if err != nil {
		return nil, err
	}
	return &Outcome{ID: id, Provider: extracted.Provider, Text: extracted.Text, Result: res}, nil
}

func (s *Service) parse(id, text, locale string) (*models.ScanResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	p, err := s.parserFor(text, locale)
	if err != nil {
		return nil, err
	}

	res := p.Parse(text)
	s.categorizer.Apply(res.Transactions)

	log := s.logger.WithFields(
		logging.F(logging.FieldScanID, id),
		logging.F(logging.FieldLocale, string(res.Locale)),
	)
	for _, d := range res.DebugLines {
		if d.Result == models.ResultSkipped {
			continue
		}
		log.Debug(d.Text,
			logging.F(logging.FieldLines, d.LineNum),
			logging.F(logging.FieldStatus, d.Result),
			logging.F(logging.FieldMethod, d.Method))
	}
	log.Info("statement parsed",
		logging.F(logging.FieldLines, len(res.DebugLines)),
		logging.F(logging.FieldCount, len(res.Transactions)))
	return res, nil
}

// parserFor picks the parser for one document. "auto", from either the
// request or the configuration, detects the locale from the text.
func (s *Service) parserFor(text, locale string) (*parser.Parser, error) {
	if locale == "" {
		locale = s.locale
	}
	opt := parser.WithHeuristics(s.heuristics)
	if locale == config.LocaleAuto || locale == "" {
		return parser.AutoDetect(text, opt)
	}
	l := models.Locale(strings.ToLower(locale))
	if _, ok := parser.ProfileFor(l); !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadLocale, locale)
	}
	return parser.New(l, opt)
}

var (
	// ErrEmptyText is returned for blank input text.
	ErrEmptyText = errors.New("no text to parse")
	// ErrBadLocale is returned for locales without a profile.
	ErrBadLocale = errors.New("unsupported locale")
)
