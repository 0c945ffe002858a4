package extractor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = "Transcribe all text in this bank statement image exactly as printed, " +
	"one printed line per output line, top to bottom. Keep dates, amounts, signs and " +
	"words like Til/Fra/Till/Från unchanged. Do not summarise, translate, or add anything. " +
	"Return plain text only, without Markdown."

// GeminiProvider asks a Gemini model to transcribe the image.
type GeminiProvider struct {
	apiKey string
	model  string
	config *genai.ClientConfig
}

// NewGeminiProvider returns a provider for the Gemini developer API.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
		config: &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		},
	}
}

// WithBaseURL points the client at another endpoint.
func (g *GeminiProvider) WithBaseURL(url string) *GeminiProvider {
	g.config.HTTPOptions.BaseURL = url
	return g
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if g.apiKey == "" {
		return "", ErrProviderNotConfigured
	}

	client, err := genai.NewClient(ctx, g.config)
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: transcribePrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: img.MIMEType,
						Data:     img.Data,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return stripFences(resp.Text()), nil
}

// stripFences removes a Markdown code fence the model may add anyway.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
