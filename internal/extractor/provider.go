// Package extractor turns statement photos and PDFs into plain text for the
// parser. Each source of text is a Provider; a Chain tries them in order.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Image is one uploaded statement page or document.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewImage sniffs the MIME type when the caller does not know it.
func NewImage(name string, data []byte, mimeType string) Image {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "application/octet-stream" && strings.EqualFold(filepath.Ext(name), ".pdf") {
		mimeType = mimePDF
	}
	return Image{Name: name, MIMEType: mimeType, Data: data}
}

const mimePDF = "application/pdf"

// IsPDF reports whether the image is a PDF document rather than a picture.
func (img Image) IsPDF() bool {
	return img.MIMEType == mimePDF
}

// Provider extracts text from an image.
type Provider interface {
	Name() string
	ExtractText(ctx context.Context, img Image) (string, error)
}

var (
	// ErrNoText means no provider produced any text. Callers report it as
	// "no text available" and never hand an empty string to the parser.
	ErrNoText = errors.New("no text available")
	// ErrProviderNotConfigured is returned by providers missing a key or tool.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrUnsupportedInput is returned for inputs a provider cannot read.
	ErrUnsupportedInput = errors.New("unsupported input")
)

// ProviderError records which provider failed and why.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
