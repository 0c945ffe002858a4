package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// TesseractProvider runs the local tesseract binary. PDFs are rendered to
// page images with pdftoppm first.
type TesseractProvider struct {
	language string
	lookPath func(string) (string, error)
}

// NewTesseractProvider returns a provider using the given tesseract language
// list, e.g. "nor+eng".
func NewTesseractProvider(language string) *TesseractProvider {
	if language == "" {
		language = "eng"
	}
	return &TesseractProvider{language: language, lookPath: exec.LookPath}
}

func (t *TesseractProvider) Name() string { return "tesseract" }

// Available reports whether the tools needed for img are installed.
func (t *TesseractProvider) Available(pdf bool) error {
	if _, err := t.lookPath("tesseract"); err != nil {
		return fmt.Errorf("%w: tesseract not installed (install tesseract-ocr)", ErrProviderNotConfigured)
	}
	if pdf {
		if _, err := t.lookPath("pdftoppm"); err != nil {
			return fmt.Errorf("%w: pdftoppm not installed (install poppler-utils)", ErrProviderNotConfigured)
		}
	}
	return nil
}

func (t *TesseractProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if err := t.Available(img.IsPDF()); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "scanner-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var pages []string
	if img.IsPDF() {
		pages, err = renderPDF(ctx, tmpDir, img.Data)
		if err != nil {
			return "", err
		}
	} else {
		path := filepath.Join(tmpDir, "page"+imageExt(img.MIMEType))
		if err := os.WriteFile(path, img.Data, 0o600); err != nil {
			return "", fmt.Errorf("writing image: %w", err)
		}
		pages = []string{path}
	}

	var texts []string
	for _, page := range pages {
		// PSM 4 assumes a single column of variable-size text, which suits statements.
		cmd := exec.CommandContext(ctx, "tesseract", page, "stdout", "-l", t.language, "--psm", "4")
		out, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(page), err)
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// renderPDF writes page PNGs at 300 DPI and returns them in page order.
func renderPDF(ctx context.Context, dir string, data []byte) ([]string, error) {
	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", src, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	return images, nil
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/tiff":
		return ".tif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
