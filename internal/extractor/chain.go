package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/insightdelivered/statement-scanner/internal/logging"
)

// Result is the text a chain produced and the provider that produced it.
type Result struct {
	Text     string
	Provider string
}

// Chain tries providers in order and returns the first non-empty text.
type Chain struct {
	providers []Provider
	pdf       Provider
	timeout   time.Duration
	logger    logging.Logger
}

// NewChainOf builds a chain from explicit providers. A nil logger discards
// output; a zero timeout disables the per-provider deadline.
func NewChainOf(logger logging.Logger, timeout time.Duration, providers ...Provider) *Chain {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// WithPDF sets the provider tried first for PDF inputs.
func (c *Chain) WithPDF(p Provider) *Chain {
	c.pdf = p
	return c
}

// Providers lists the provider names in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers)+1)
	if c.pdf != nil {
		names = append(names, c.pdf.Name())
	}
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Extract runs the providers until one returns text. When all fail the error
// wraps ErrNoText together with every provider error.
func (c *Chain) Extract(ctx context.Context, img Image) (*Result, error) {
	providers := c.providers
	if img.IsPDF() && c.pdf != nil {
		providers = append([]Provider{c.pdf}, providers...)
	}

	errs := []error{ErrNoText}
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		log := c.logger.WithFields(
			logging.F(logging.FieldProvider, p.Name()),
			logging.F(logging.FieldFile, img.Name),
		)
		start := time.Now()
		text, err := c.run(ctx, p, img)
		elapsed := time.Since(start).Milliseconds()

		if err != nil {
			log.WithError(err).Warn("text extraction failed", logging.F(logging.FieldDuration, elapsed))
			errs = append(errs, &ProviderError{Provider: p.Name(), Err: err})
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Warn("provider returned no text", logging.F(logging.FieldDuration, elapsed))
			errs = append(errs, &ProviderError{Provider: p.Name(), Err: ErrNoText})
			continue
		}

		log.Info("text extracted",
			logging.F(logging.FieldBytes, len(text)),
			logging.F(logging.FieldDuration, elapsed))
		return &Result{Text: text, Provider: p.Name()}, nil
	}

	if len(providers) == 0 {
		errs = append(errs, fmt.Errorf("no providers configured"))
	}
	return nil, errors.Join(errs...)
}

func (c *Chain) run(ctx context.Context, p Provider, img Image) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.ExtractText(ctx, img)
}
