package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PDFProvider reads the text layer of statements exported as PDF from online
// banking. Scanned PDFs have no text layer and fail here, so the chain moves
// on to OCR.
type PDFProvider struct {
	lookPath func(string) (string, error)
}

func NewPDFProvider() *PDFProvider {
	return &PDFProvider{lookPath: exec.LookPath}
}

func (p *PDFProvider) Name() string { return "pdf" }

func (p *PDFProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if !img.IsPDF() {
		return "", fmt.Errorf("%w: %s is not a PDF", ErrUnsupportedInput, img.MIMEType)
	}

	pages, libErr := pagesFromLibrary(img.Data)
	if libErr == nil && readable(pages) {
		return strings.Join(pages, "\n"), nil
	}

	pages, cliErr := p.pagesFromPdftotext(ctx, img.Data)
	if cliErr == nil && readable(pages) {
		return strings.Join(pages, "\n"), nil
	}

	if libErr != nil {
		return "", fmt.Errorf("no readable text layer: %w", libErr)
	}
	return "", fmt.Errorf("no readable text layer (image-based PDF?)")
}

// pagesFromLibrary tries the ledongthuc/pdf extraction methods from the most
// to the least layout preserving.
func pagesFromLibrary(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for _, method := range []func(*pdf.Reader, int) []string{pagesByRow, pagesByContent} {
		pages = method(r, n)
		if readable(pages) {
			return pages, nil
		}
	}

	plain := plainText(r)
	if readable([]string{plain}) {
		return []string{plain}, nil
	}
	return pages, nil
}

// pagesByRow joins the words of each text row.
func pagesByRow(r *pdf.Reader, n int) []string {
	var pages []string
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// pagesByContent rebuilds rows from glyph coordinates. PDF y grows upwards,
// so rows are emitted from the highest y down.
func pagesByContent(r *pdf.Reader, n int) []string {
	type glyph struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()

		rows := map[int][]glyph{}
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], glyph{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			row := rows[y]
			sort.Slice(row, func(a, b int) bool { return row[a].x < row[b].x })

			var sb strings.Builder
			for j, g := range row {
				// wide gaps separate columns
				if j > 0 && g.x-row[j-1].x > 15 {
					sb.WriteString(" ")
				}
				sb.WriteString(g.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func plainText(r *pdf.Reader) string {
	rd, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// pagesFromPdftotext shells out to poppler for PDFs the library cannot decode.
func (p *PDFProvider) pagesFromPdftotext(ctx context.Context, data []byte) ([]string, error) {
	if _, err := p.lookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	dir, err := os.MkdirTemp("", "scanner-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", src, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	// pdftotext separates pages with form feeds
	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// statementWords appear on practically every statement in the supported
// languages. Text with none of them is treated as undecoded garbage.
var statementWords = []string{
	"til", "fra", "till", "från", "saldo", "konto", "beløp", "belopp", "beløb",
	"dato", "datum", "kontoutskrift", "kontoudtog", "kontoutdrag",
	"balance", "account", "statement", "amount", "date", "payment",
}

// readable rejects empty text, binary noise from undecoded fonts and text
// without a single statement word.
func readable(pages []string) bool {
	joined := strings.Join(pages, "\n")
	if len(strings.TrimSpace(joined)) <= 20 {
		return false
	}
	if textQuality(joined) <= 0.6 {
		return false
	}
	lower := strings.ToLower(joined)
	for _, w := range statementWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// textQuality is the share of letters, digits, spaces and common statement
// punctuation in s.
func textQuality(s string) float64 {
	total, good := 0, 0
	for _, r := range s {
		total++
		switch {
		case r == unicode.ReplacementChar:
		case unicode.IsLetter(r) && r < 0x250: // Latin scripts only
			good++
		case unicode.IsDigit(r), unicode.IsSpace(r):
			good++
		case strings.ContainsRune(".,-/:;()'\"%&*+=€$£", r):
			good++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(good) / float64(total)
}
