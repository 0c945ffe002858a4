package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-scanner/internal/parser"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"GOOGLE_VISION_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, LocaleAuto, cfg.Parser.Locale)
	assert.True(t, cfg.DetectLocale())
	assert.Equal(t, parser.DefaultHeuristics(), cfg.Parser.Heuristics)
	assert.Equal(t, []string{ProviderVision, ProviderGemini, ProviderTesseract}, cfg.OCR.Providers)
	assert.Equal(t, 30, cfg.OCR.TimeoutSeconds)
	assert.Equal(t, 60, cfg.OCR.RequestsPerMinute)
	assert.Equal(t, "gemini-2.5-flash", cfg.OCR.Gemini.Model)
	assert.Equal(t, "nor+eng", cfg.OCR.Tesseract.Language)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Server.BodyLimitMB)
	assert.Equal(t, "categories.yaml", cfg.Categories.File)
	assert.Empty(t, cfg.OCR.Vision.APIKey)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("SCANNER_LOG_LEVEL", "debug")
	t.Setenv("SCANNER_LOG_FORMAT", "json")
	t.Setenv("SCANNER_PARSER_LOCALE", "sv")
	t.Setenv("SCANNER_PARSER_HEURISTICS_OUTGOING_WINDOW", "8")
	t.Setenv("SCANNER_OCR_PROVIDERS", "tesseract,vision")
	t.Setenv("SCANNER_SERVER_ADDR", ":9090")
	t.Setenv("GOOGLE_VISION_API_KEY", "vision-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sv", cfg.Parser.Locale)
	assert.False(t, cfg.DetectLocale())
	assert.Equal(t, 8, cfg.Parser.Heuristics.OutgoingWindow)
	assert.Equal(t, 20, cfg.Parser.Heuristics.IncomingWindow)
	assert.Equal(t, []string{ProviderTesseract, ProviderVision}, cfg.OCR.Providers)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "vision-key", cfg.OCR.Vision.APIKey)
	assert.Equal(t, "gemini-key", cfg.OCR.Gemini.APIKey)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	content := `
log:
  level: warn
parser:
  locale: da
  heuristics:
    incoming_window: 12
    balance_penalty: 80
ocr:
  providers: [gemini]
categories:
  file: /tmp/learned.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "da", cfg.Parser.Locale)
	assert.Equal(t, 12, cfg.Parser.Heuristics.IncomingWindow)
	assert.Equal(t, 80, cfg.Parser.Heuristics.BalancePenalty)
	assert.Equal(t, 6, cfg.Parser.Heuristics.OutgoingWindow)
	assert.Equal(t, []string{ProviderGemini}, cfg.OCR.Providers)
	assert.Equal(t, "/tmp/learned.yaml", cfg.Categories.File)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"log level", "SCANNER_LOG_LEVEL", "loud"},
		{"log format", "SCANNER_LOG_FORMAT", "xml"},
		{"locale", "SCANNER_PARSER_LOCALE", "de"},
		{"provider", "SCANNER_OCR_PROVIDERS", "ocrspace"},
		{"timeout", "SCANNER_OCR_TIMEOUT_SECONDS", "0"},
		{"rate", "SCANNER_OCR_REQUESTS_PER_MINUTE", "-1"},
		{"window", "SCANNER_PARSER_HEURISTICS_INCOMING_WINDOW", "0"},
		{"round multiple", "SCANNER_PARSER_HEURISTICS_ROUND_MULTIPLE", "0"},
		{"body limit", "SCANNER_SERVER_BODY_LIMIT_MB", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCANNER_TEST_FROM_DOTENV=yes\n"), 0o600))
	t.Setenv("SCANNER_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("SCANNER_TEST_FROM_DOTENV"))

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "yes", os.Getenv("SCANNER_TEST_FROM_DOTENV"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}
