package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
)

const DefaultModel = "gemini-2.5-flash-image"

const (
	missingKeyMessage = "API key is not configured. Please set the GEMINI_API_KEY environment variable."
	noImageMessage    = "No image was generated. The response may have been blocked due to safety settings or an invalid prompt."
)

var (
	ErrMissingAPIKey = errors.New(missingKeyMessage)
	ErrNoImage       = errors.New(noImageMessage)
)

type Options struct {
	// APIKey is consulted on every call. Defaults to EnvKey().
	APIKey     func() string
	BaseURL    string
	APIVersion string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     func() string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	apiKey := opts.APIKey
	if apiKey == nil {
		apiKey = EnvKey()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := strings.TrimPrefix(strings.TrimSpace(opts.Model), "models/")
	if model == "" {
		model = DefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

func (c *Client) Model() string {
	return c.model
}

// EditPhoto sends the request's images and instruction in a single
// generateContent call and returns the first inline image of the first
// candidate.
func (c *Client) EditPhoto(ctx context.Context, req photo.Request) (photo.Image, error) {
	apiKey := strings.TrimSpace(c.apiKey())
	if apiKey == "" {
		return photo.Image{}, ErrMissingAPIKey
	}
	if len(req.Images) == 0 {
		return photo.Image{}, photo.ErrMissingMainPhoto
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.baseURL + "/",
			APIVersion: c.apiVersion,
		},
	})
	if err != nil {
		return photo.Image{}, fmt.Errorf("gemini client: %w", err)
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.model, buildContents(req), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		c.logger.Error("gemini edit failed", "model", c.model, "images", len(req.Images), "dur_ms", time.Since(start).Milliseconds(), "err", err)
		return photo.Image{}, fmt.Errorf("gemini generate: %w", err)
	}

	img, ok := firstImage(resp)
	if !ok {
		c.logger.Warn("gemini returned no image", "model", c.model, "finish_reason", finishReason(resp))
		return photo.Image{}, ErrNoImage
	}

	c.logger.Info("gemini edit", "model", c.model, "images", len(req.Images), "bytes", len(img.Data), "dur_ms", time.Since(start).Milliseconds())
	return img, nil
}

// buildContents emits one user turn: every image in request order, then the
// instruction text.
func buildContents(req photo.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MIMEType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func firstImage(resp *genai.GenerateContentResponse) (photo.Image, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return photo.Image{}, false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return photo.Image{}, false
	}

	for _, p := range cand.Content.Parts {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		mimeType := p.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return photo.Image{MIMEType: mimeType, Data: p.InlineData.Data}, true
	}
	return photo.Image{}, false
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}
