package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-scanner/internal/config"
	"github.com/insightdelivered/statement-scanner/internal/logging"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
	delay time.Duration
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ExtractText(ctx context.Context, _ Image) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

var photo = Image{Name: "statement.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}

func TestChain_FirstSuccessWins(t *testing.T) {
	vision := &fakeProvider{name: "vision", err: errors.New("quota exceeded")}
	gemini := &fakeProvider{name: "gemini", text: "20.08 Til: Kiwi\n-89,90"}
	tesseract := &fakeProvider{name: "tesseract", text: "unused"}

	res, err := NewChainOf(nil, 0, vision, gemini, tesseract).Extract(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "20.08 Til: Kiwi\n-89,90", res.Text)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 0, tesseract.calls)
}

func TestChain_AllFail(t *testing.T) {
	quota := errors.New("quota exceeded")
	chain := NewChainOf(logging.Nop(), 0,
		&fakeProvider{name: "vision", err: quota},
		&fakeProvider{name: "gemini", text: "   \n"},
	)

	_, err := chain.Extract(context.Background(), photo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
	assert.ErrorIs(t, err, quota)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "vision", perr.Provider)
}

func TestChain_Empty(t *testing.T) {
	_, err := NewChainOf(nil, 0).Extract(context.Background(), photo)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestChain_Timeout(t *testing.T) {
	slow := &fakeProvider{name: "slow", text: "late", delay: time.Second}
	fast := &fakeProvider{name: "fast", text: "Fra: Ola\n100,00"}

	res, err := NewChainOf(nil, 10*time.Millisecond, slow, fast).Extract(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "fast", res.Provider)
}

func TestChain_PDFFirst(t *testing.T) {
	pdf := &fakeProvider{name: "pdf", text: "Til: Kiwi\n-10,00"}
	ocr := &fakeProvider{name: "tesseract", text: "ocr"}
	chain := NewChainOf(nil, 0, ocr).WithPDF(pdf)

	assert.Equal(t, []string{"pdf", "tesseract"}, chain.Providers())

	res, err := chain.Extract(context.Background(), Image{MIMEType: mimePDF})
	require.NoError(t, err)
	assert.Equal(t, "pdf", res.Provider)

	res, err = chain.Extract(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "tesseract", res.Provider)
	assert.Equal(t, 1, pdf.calls)
}

func TestChain_CancelledContext(t *testing.T) {
	p := &fakeProvider{name: "vision", text: "x"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChainOf(nil, 0, p).Extract(ctx, photo)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestNewChain(t *testing.T) {
	cfg := &config.Config{}
	cfg.OCR.Providers = []string{config.ProviderVision, config.ProviderGemini, config.ProviderTesseract}
	cfg.OCR.TimeoutSeconds = 5
	cfg.OCR.Gemini.APIKey = "key"
	cfg.OCR.Gemini.Model = "gemini-2.5-flash"

	chain := NewChain(cfg, nil)
	assert.Equal(t, []string{"pdf", "gemini", "tesseract"}, chain.Providers())
	assert.Equal(t, 5*time.Second, chain.timeout)
}

func TestNewImage(t *testing.T) {
	pdf := NewImage("a.pdf", []byte("%PDF-1.7\n..."), "")
	assert.True(t, pdf.IsPDF())

	png := NewImage("a.png", []byte("\x89PNG\r\n\x1a\n...."), "application/octet-stream")
	assert.Equal(t, "image/png", png.MIMEType)

	jpeg := NewImage("a.jpg", nil, "image/jpeg; charset=binary")
	assert.Equal(t, "image/jpeg", jpeg.MIMEType)
	assert.False(t, jpeg.IsPDF())
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "vision", Err: ErrProviderNotConfigured}
	assert.Equal(t, "vision: provider not configured", err.Error())
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestRateLimited(t *testing.T) {
	p := &fakeProvider{name: "vision", text: "ok"}
	assert.Same(t, Provider(p), RateLimited(p, 0))

	limited := RateLimited(p, 60)
	assert.Equal(t, "vision", limited.Name())

	text, err := limited.ExtractText(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	// the next token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.ExtractText(ctx, photo)
	assert.Error(t, err)
	assert.Equal(t, 1, p.calls)
}
