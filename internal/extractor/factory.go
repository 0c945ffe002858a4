package extractor

import (
	"time"

	"github.com/insightdelivered/statement-scanner/internal/config"
	"github.com/insightdelivered/statement-scanner/internal/logging"
)

// visionLanguageHints covers the statement languages the parser reads.
var visionLanguageHints = []string{"no", "sv", "da", "en"}

// NewChain builds the provider chain in the configured order. Providers
// without credentials are left out; the PDF text layer is always tried first
// for PDF inputs.
func NewChain(cfg *config.Config, logger logging.Logger) *Chain {
	if logger == nil {
		logger = logging.Nop()
	}

	var providers []Provider
	for _, name := range cfg.OCR.Providers {
		switch name {
		case config.ProviderVision:
			if cfg.OCR.Vision.APIKey == "" {
				logger.Debug("skipping provider without api key", logging.F(logging.FieldProvider, name))
				continue
			}
			providers = append(providers, RateLimited(
				NewVisionProvider(cfg.OCR.Vision.APIKey, visionLanguageHints), cfg.OCR.RequestsPerMinute))
		case config.ProviderGemini:
			if cfg.OCR.Gemini.APIKey == "" {
				logger.Debug("skipping provider without api key", logging.F(logging.FieldProvider, name))
				continue
			}
			providers = append(providers, RateLimited(
				NewGeminiProvider(cfg.OCR.Gemini.APIKey, cfg.OCR.Gemini.Model), cfg.OCR.RequestsPerMinute))
		case config.ProviderTesseract:
			providers = append(providers, NewTesseractProvider(cfg.OCR.Tesseract.Language))
		}
	}

	timeout := time.Duration(cfg.OCR.TimeoutSeconds) * time.Second
	chain := NewChainOf(logger, timeout, providers...).WithPDF(NewPDFProvider())
	logger.Debug("ocr chain ready", logging.F(logging.FieldCount, len(providers)))
	return chain
}
