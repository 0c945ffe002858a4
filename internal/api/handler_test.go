package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-scanner/internal/config"
	"github.com/insightdelivered/statement-scanner/internal/extractor"
	"github.com/insightdelivered/statement-scanner/internal/scanner"
)

const statement = "20.08\nFra: AAS-JAKOBSEN TRONDHEIM\n120 599,33\n124 871,09\n" +
	"20.08 Til: Marco Caronte\n4 500,00\n115 826,09\n"

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fakeProvider struct {
	text string
	err  error
}

func (f fakeProvider) Name() string { return "fake" }

func (f fakeProvider) ExtractText(context.Context, extractor.Image) (string, error) {
	return f.text, f.err
}

func setupTestApp(providers ...extractor.Provider) *fiber.App {
	cfg := &config.Config{}
	cfg.Parser.Locale = config.LocaleAuto
	chain := extractor.NewChainOf(nil, 0, providers...)
	return NewApp(NewHandler(scanner.New(cfg, chain, nil, nil), nil), 1)
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

// upload builds a multipart body; an empty name leaves out the file part.
func upload(t *testing.T, name string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}


func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(fakeProvider{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]any
	decode(t, resp.Body, &result)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
	assert.Equal(t, []any{"fake"}, result["providers"])
}

func TestParseEndpoint_JSON(t *testing.T) {
	app := setupTestApp()

	body, _ := json.Marshal(ParseRequest{Text: statement, Locale: "no", Debug: true})
	req := httptest.NewRequest("POST", "/api/parse", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ScanResponse
	decode(t, resp.Body, &result)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "AAS-JAKOBSEN TRONDHEIM", result.Transactions[0].Merchant)
	assert.Equal(t, "salary", result.Transactions[0].SuggestedCategory)
	assert.Equal(t, "120599.33", result.Totals["income"].StringFixed(2))
	assert.Equal(t, "4500.00", result.Totals["expense"].StringFixed(2))
	assert.True(t, strings.HasPrefix(result.CSV, "Date,Merchant,Type,Amount,Category\n"))
	assert.Equal(t, statement, result.RawText)
	assert.Len(t, result.DebugLines, 7)
}

func TestParseEndpoint_PlainText(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/parse?locale=sv", strings.NewReader("20.08 Till: Coop Konsum\n-250,00"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ScanResponse
	decode(t, resp.Body, &result)
	assert.Equal(t, "sv", string(result.Locale))
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "COOP KONSUM", result.Transactions[0].Merchant)
	assert.Equal(t, "grocery", result.Transactions[0].SuggestedCategory)
	assert.Empty(t, result.DebugLines)
}

func TestParseEndpoint_Errors(t *testing.T) {
	app := setupTestApp()

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"empty text", "text/plain", "  ", fiber.StatusBadRequest},
		{"bad json", "application/json", "{", fiber.StatusBadRequest},
		{"unknown locale", "application/json", `{"text":"Til: Kiwi","locale":"de"}`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/parse", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var result ScanResponse
			decode(t, resp.Body, &result)
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
			assert.NotNil(t, result.Transactions)
		})
	}
}

func TestScanEndpoint(t *testing.T) {
	app := setupTestApp(fakeProvider{text: statement})

	body, contentType := upload(t, "statement.jpg", jpeg, map[string]string{"debug": "true"})
	req := httptest.NewRequest("POST", "/api/scan", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ScanResponse
	decode(t, resp.Body, &result)
	assert.Equal(t, "fake", result.Provider)
	assert.Equal(t, "no", string(result.Locale))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, statement, result.RawText)
}

func TestScanEndpoint_NoText(t *testing.T) {
	app := setupTestApp(fakeProvider{err: errors.New("quota exceeded")})

	body, contentType := upload(t, "statement.jpg", jpeg, nil)
	req := httptest.NewRequest("POST", "/api/scan", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var result ScanResponse
	decode(t, resp.Body, &result)
	assert.Equal(t, "no text available", result.Error)
}

func TestScanEndpoint_BadUploads(t *testing.T) {
	app := setupTestApp(fakeProvider{text: statement})

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"missing file", "", nil},
		{"empty file", "statement.jpg", nil},
		{"not an image", "notes.txt", []byte("just some notes")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := upload(t, tt.filename, tt.data, map[string]string{"locale": "no"})
			req := httptest.NewRequest("POST", "/api/scan", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCategoriesEndpoints(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/categories", strings.NewReader(`{"merchant":"Marco Caronte","category":"dining"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/categories", strings.NewReader(`{"merchant":"Kiwi","category":"nonsense"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/categories", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Categories map[string][]string `json:"categories"`
		Learned    map[string]string   `json:"learned"`
	}
	decode(t, resp.Body, &result)
	assert.Contains(t, result.Categories["expense"], "dining")
	assert.Equal(t, map[string]string{"marco caronte": "dining"}, result.Learned)
}

func TestUnknownRoute(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result ScanResponse
	decode(t, resp.Body, &result)
	assert.False(t, result.Success)
}
