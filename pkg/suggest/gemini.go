// Package suggest implements the style-suggestion service on Google Gemini.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/xob0t/posterkit/pkg/poster"
)

// DefaultModel is the Gemini model used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrBlocked is returned when the safety filter withholds a response.
	ErrBlocked = errors.New("gemini: response blocked by safety filter")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// Config configures a GeminiClient.
type Config struct {
	APIKey      string
	Model       string
	Temperature *float32
	// Timeout bounds one suggestion request. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// contentGenerator is the slice of genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient asks Gemini for poster copy and colours for a product photo.
// It does not retry.
type GeminiClient struct {
	models contentGenerator
	cfg    Config
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return newClient(client.Models, cfg), nil
}

func newClient(models contentGenerator, cfg Config) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &GeminiClient{models: models, cfg: cfg}
}

// Suggest sends the photo and prompt and decodes the structured reply.
func (g *GeminiClient) Suggest(ctx context.Context, req poster.SuggestionRequest) (poster.StyleSuggestion, error) {
	if len(req.ImageBytes) == 0 {
		return poster.StyleSuggestion{}, errors.New("gemini: no image supplied")
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.ImageBytes, mimeType),
			genai.NewPartFromText(BuildPrompt(req)),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      g.cfg.Temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema(),
	}

	slog.Debug("requesting style suggestion", "model", g.cfg.Model, "category", req.StyleCategory, "image_bytes", len(req.ImageBytes))

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return poster.StyleSuggestion{}, fmt.Errorf("gemini request timed out: %w", err)
		}
		return poster.StyleSuggestion{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return poster.StyleSuggestion{}, err
	}
	sug, err := ParseSuggestion(text)
	if err != nil {
		return poster.StyleSuggestion{}, err
	}

	slog.Info("style suggestion received", "model", g.cfg.Model, "headline", sug.Headline, "duration", time.Since(start))
	return sug, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrBlocked
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// ParseSuggestion decodes a JSON suggestion, tolerating a Markdown code fence
// around it, and checks the required fields.
func ParseSuggestion(text string) (poster.StyleSuggestion, error) {
	text = strings.TrimSpace(text)
	if fenced, ok := strings.CutPrefix(text, "```"); ok {
		fenced = strings.TrimPrefix(fenced, "json")
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(fenced), "```"))
	}

	var sug poster.StyleSuggestion
	if err := json.Unmarshal([]byte(text), &sug); err != nil {
		return poster.StyleSuggestion{}, fmt.Errorf("malformed suggestion: %w", err)
	}
	if err := sug.Validate(); err != nil {
		return poster.StyleSuggestion{}, fmt.Errorf("malformed suggestion: %w", err)
	}
	return sug, nil
}
