package extractor

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// VisionProvider reads text with Google Cloud Vision TEXT_DETECTION.
type VisionProvider struct {
	apiKey        string
	languageHints []string
	opts          []option.ClientOption
}

// NewVisionProvider returns a provider authenticated with an API key. Extra
// client options (endpoint, HTTP client) are passed through to the service.
func NewVisionProvider(apiKey string, languageHints []string, opts ...option.ClientOption) *VisionProvider {
	return &VisionProvider{apiKey: apiKey, languageHints: languageHints, opts: opts}
}

func (v *VisionProvider) Name() string { return "vision" }

func (v *VisionProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if v.apiKey == "" {
		return "", ErrProviderNotConfigured
	}
	if img.IsPDF() {
		return "", fmt.Errorf("%w: vision reads images, got %s", ErrUnsupportedInput, img.MIMEType)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(v.apiKey)}, v.opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating vision client: %w", err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(img.Data)},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}
	if len(v.languageHints) > 0 {
		req.Requests[0].ImageContext = &vision.ImageContext{LanguageHints: v.languageHints}
	}

	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", ErrNoText
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("annotate: %s (code %d)", r.Error.Message, r.Error.Code)
	}
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text, nil
	}
	// the first text annotation holds the whole block
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", ErrNoText
}
