// Package classifier sends waste photos to a multimodal model behind an
// OpenAI-compatible API and parses its JSON verdict.
package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"waste-bknd/internal/models"
)

// Image is an uploaded photo held in memory.
type Image struct {
	Data     []byte
	MimeType string
	Name     string
}

// DataURL encodes the image as a base64 data URL.
func (img Image) DataURL() string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Config holds the model endpoint and generation parameters.
type Config struct {
	Endpoint    string // Base URL of the OpenAI-compatible API
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// Classification is a parsed verdict plus the text it was parsed from.
type Classification struct {
	Result  *Result
	RawText string
}

// Client calls the model. It is safe for concurrent use.
type Client struct {
	client    *openai.Client
	cfg       Config
	materials []models.MaterialType
	logger    *zap.Logger
}

// NewClient builds a client. An empty API key is accepted so the server can
// start; every Classify call then fails with an auth error.
func NewClient(cfg Config, materials []models.MaterialType, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(materials) == 0 {
		return nil, fmt.Errorf("material list is empty")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		cfg:       cfg,
		materials: materials,
		logger:    logger.Named("classifier"),
	}, nil
}

// Classify sends the image with the analysis prompt and parses the reply.
func (c *Client) Classify(ctx context.Context, img Image, pc PromptContext) (*Classification, error) {
	if c.cfg.APIKey == "" {
		return nil, &Error{Kind: KindAuth, Message: "API key is not configured (set GOOGLE_API_KEY)"}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	prompt := BuildPrompt(c.materials, pc)
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: float32(c.cfg.Temperature),
		TopP:        float32(c.cfg.TopP),
		MaxTokens:   c.cfg.MaxTokens,
	}

	c.logger.Debug("classifier request",
		zap.String("model", c.cfg.Model),
		zap.String("mime_type", img.MimeType),
		zap.Int("image_bytes", len(img.Data)),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("classifier request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindEmpty, Message: "no choices in response"}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Info("classifier request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	result, err := ParseResult(text)
	if err != nil {
		c.logger.Warn("classifier returned unparsable text",
			zap.String("text", truncate(text, 500)),
			zap.Error(err))
		return nil, err
	}

	return &Classification{Result: result, RawText: text}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
