// Package genai provides GenAI-enhanced operations using OpenAI API.
//
// It wraps chat completions behind a small interface so handlers can be
// tested with mock clients, and adds streaming generation with per-delta
// callbacks for the generate endpoint.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default models. The summary model handles the short answer-analysis calls;
// the primary model handles question generation and the final generation stream.
const (
	DefaultModel        = openai.ChatModelGPT4o
	DefaultSummaryModel = openai.ChatModelGPT4oMini

	// questionMaxTokens bounds a single generated question descriptor.
	questionMaxTokens = 1024
	// summaryMaxTokens bounds an answer-analysis summary.
	summaryMaxTokens = 1000
	// generationMaxTokens bounds the final streamed instructions document.
	generationMaxTokens = 8000
)

// ClientInterface defines the GenAI operations the rest of the service depends on.
type ClientInterface interface {
	// GeneratePrompt runs a blocking completion on the primary model.
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// GenerateSummary runs a blocking completion on the summary model with no system prompt.
	GenerateSummary(ctx context.Context, userPrompt string) (string, error)
	// GenerateStream runs a streaming completion on the primary model, invoking
	// onDelta with each text fragment in arrival order.
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string, onDelta func(delta string)) error
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey       string
	BaseURL      string
	Model        openai.ChatModel
	SummaryModel openai.ChatModel
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the primary chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = openai.ChatModel(model) }
}

// WithSummaryModel sets the model used for answer-analysis summaries.
func WithSummaryModel(model string) Option {
	return func(o *Opts) { o.SummaryModel = openai.ChatModel(model) }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client       openai.Client
	model        openai.ChatModel
	summaryModel openai.ChatModel
}

// NewClient initializes a GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not set via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = DefaultSummaryModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	slog.Debug("genai.NewClient: client configured", "model", cfg.Model, "summary_model", cfg.SummaryModel, "base_url_set", cfg.BaseURL != "")
	return &Client{
		client:       openai.NewClient(reqOpts...),
		model:        cfg.Model,
		summaryModel: cfg.SummaryModel,
	}, nil
}

// GeneratePrompt generates a response on the primary model from the provided
// system and user prompts.
func (c *Client) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens: openai.Int(questionMaxTokens),
	})
	if err != nil {
		slog.Error("genai.GeneratePrompt: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	slog.Debug("genai.GeneratePrompt: completion succeeded", "length", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}

// GenerateSummary generates a short response on the summary model from a bare
// user prompt.
func (c *Client) GenerateSummary(ctx context.Context, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.summaryModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(userPrompt),
		},
		MaxTokens: openai.Int(summaryMaxTokens),
	})
	if err != nil {
		slog.Error("genai.GenerateSummary: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream runs a streaming completion on the primary model. onDelta is
// invoked once per text fragment in arrival order; the accumulated fragments
// form the complete response. Returns the stream's terminal error, if any.
func (c *Client) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, onDelta func(delta string)) error {
	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens: openai.Int(generationMaxTokens),
	})
	defer stream.Close()

	var deltas int
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			deltas++
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		slog.Error("genai.GenerateStream: stream failed", "error", err, "deltas", deltas)
		return fmt.Errorf("chat completion stream failed: %w", err)
	}
	slog.Debug("genai.GenerateStream: stream finished", "deltas", deltas)
	return nil
}
