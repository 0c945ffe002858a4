// Package api exposes the scanner over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-scanner/internal/categorizer"
	"github.com/insightdelivered/statement-scanner/internal/extractor"
	"github.com/insightdelivered/statement-scanner/internal/logging"
	"github.com/insightdelivered/statement-scanner/internal/models"
	"github.com/insightdelivered/statement-scanner/internal/scanner"
	"github.com/insightdelivered/statement-scanner/internal/writer"
)

const Version = "1.0.0"

// ScanResponse is the JSON response from the parse and scan endpoints.
type ScanResponse struct {
	Success      bool                                       `json:"success"`
	Error        string                                     `json:"error,omitempty"`
	ScanID       string                                     `json:"scanId,omitempty"`
	Locale       models.Locale                              `json:"locale,omitempty"`
	Provider     string                                     `json:"provider,omitempty"`
	Transactions []models.Transaction                       `json:"transactions"`
	Totals       map[models.TransactionType]decimal.Decimal `json:"totals,omitempty"`
	Count        int                                        `json:"count"`
	CSV          string                                     `json:"csv,omitempty"`
	RawText      string                                     `json:"rawText,omitempty"`
	DebugLines   []models.DebugLine                         `json:"debugLines,omitempty"`
}

// ParseRequest is the JSON body accepted by POST /api/parse.
type ParseRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
	Debug  bool   `json:"debug"`
}

// LearnRequest is the JSON body accepted by POST /api/categories.
type LearnRequest struct {
	Merchant string `json:"merchant"`
	Category string `json:"category"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	scanner *scanner.Service
	logger  logging.Logger
}

func NewHandler(svc *scanner.Service, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{scanner: svc, logger: logger}
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 20
	}
	app := fiber.New(fiber.Config{
		AppName:      "statement-scanner " + Version,
		BodyLimit:    bodyLimitMB << 20,
		ErrorHandler: h.handleError,
	})
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Use(h.cors)

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/parse", h.HandleParse)
	api.Post("/scan", h.HandleScan)
	api.Get("/categories", h.HandleCategories)
	api.Post("/categories", h.HandleLearn)
}

func (h *Handler) cors(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Next()
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"engine":    "fiber",
		"version":   Version,
		"providers": h.scanner.Providers(),
	})
}

// HandleParse parses text the client already has, sent either as JSON or as
// a text/plain body with locale and debug in the query string.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	var req ParseRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		}
	} else {
		req.Text = string(c.Body())
		req.Locale = c.Query("locale")
		req.Debug = c.QueryBool("debug")
	}

	out, err := h.scanner.ParseText(req.Text, req.Locale)
	if err != nil {
		return h.scanError(c, err)
	}
	return h.respond(c, out, req.Debug)
}

// HandleScan reads the statement photo or PDF from the multipart field
// "file" and runs it through the text providers and the parser.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	f, err := header.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
	}
	if len(data) == 0 {
		return writeError(c, fiber.StatusBadRequest, "Uploaded file is empty.")
	}

	img := extractor.NewImage(header.Filename, data, header.Header.Get(fiber.HeaderContentType))
	if !img.IsPDF() && !strings.HasPrefix(img.MIMEType, "image/") {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unsupported file type %q. Upload an image or a PDF.", img.MIMEType))
	}

	out, err := h.scanner.ScanImage(c.UserContext(), img, c.FormValue("locale"))
	if err != nil {
		return h.scanError(c, err)
	}
	return h.respond(c, out, c.FormValue("debug") == "true")
}

func (h *Handler) HandleCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": categorizer.Categories,
		"learned":    h.scanner.Categorizer().Learned(),
	})
}

// HandleLearn stores the category the user picked for a merchant.
func (h *Handler) HandleLearn(c *fiber.Ctx) error {
	var req LearnRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid body: %v", err))
	}
	if err := h.scanner.Categorizer().Learn(req.Merchant, req.Category); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) respond(c *fiber.Ctx, out *scanner.Outcome, debug bool) error {
	res := out.Result

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: false}
	if err := csvWriter.Write(&csvBuf, res); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil marshals to JSON null, not []
	txns := res.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	resp := ScanResponse{
		Success:      true,
		ScanID:       out.ID,
		Locale:       res.Locale,
		Provider:     out.Provider,
		Transactions: txns,
		Totals:       res.Totals(),
		Count:        len(txns),
		CSV:          csvBuf.String(),
	}
	if debug {
		resp.RawText = out.Text
		resp.DebugLines = res.DebugLines
	}
	return c.JSON(resp)
}

func (h *Handler) scanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, extractor.ErrNoText):
		h.logger.WithError(err).Warn("scan failed")
		return writeError(c, fiber.StatusUnprocessableEntity, extractor.ErrNoText.Error())
	case errors.Is(err, scanner.ErrEmptyText), errors.Is(err, scanner.ErrBadLocale):
		return writeError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("scan failed")
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}
}

// handleError renders errors fiber raises itself, such as oversized bodies
// and unknown routes, in the same shape as handler errors.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed",
			logging.F(logging.FieldPath, c.Path()),
			logging.F(logging.FieldStatus, code))
	}
	return writeError(c, code, err.Error())
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ScanResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
