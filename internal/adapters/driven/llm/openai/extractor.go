// Package openai provides a metadata extractor backed by an OpenAI-compatible
// chat model with function calling.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/embedding"
	"github.com/phonetonote/paperweight/internal/logger"
	"github.com/phonetonote/paperweight/internal/metadata"
	"github.com/phonetonote/paperweight/internal/ratelimit"
)

// Ensure Extractor implements the interface.
var _ driven.MetadataExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the extractor.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout bounds a single extraction (default: 120s).
	Timeout time.Duration

	// Limiter paces requests. Defaults to the ratelimit service default.
	Limiter *ratelimit.Limiter
}

// Extractor pulls paper metadata from text with one forced tool call.
type Extractor struct {
	model     llms.Model
	modelName string
	timeout   time.Duration
	limiter   *ratelimit.Limiter
}

// NewExtractor creates an extractor talking to the OpenAI chat API.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("openai: create client: %w", err)
	}
	return NewExtractorWithModel(client, cfg), nil
}

// NewExtractorWithModel creates an extractor over any langchaingo model.
func NewExtractorWithModel(model llms.Model, cfg Config) *Extractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(ratelimit.ServiceOpenAIChat)
	}
	return &Extractor{
		model:     model,
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
		limiter:   cfg.Limiter,
	}
}

// findDataTool is the single tool offered to the model.
func findDataTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        metadata.FunctionName,
			Description: metadata.FunctionDescription,
			Parameters:  metadata.Parameters(),
		},
	}
}

// Extract sends the first embedding.MaxInputChars characters of text to the
// model and decodes the find_data call it returns.
func (e *Extractor) Extract(ctx context.Context, text string) (*domain.PaperMetadata, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, embedding.Truncate(text, embedding.MaxInputChars)),
	}

	resp, err := e.model.GenerateContent(ctx, content,
		llms.WithModel(e.modelName),
		llms.WithTemperature(0),
		llms.WithTools([]llms.Tool{findDataTool()}),
		llms.WithToolChoice(llms.ToolChoice{
			Type:     "function",
			Function: &llms.FunctionReference{Name: metadata.FunctionName},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", domain.ErrExtractionFailed, err)
	}

	arguments, ok := toolArguments(resp)
	if !ok {
		return nil, fmt.Errorf("%w: model did not call %s", domain.ErrExtractionFailed, metadata.FunctionName)
	}

	md, err := metadata.Parse(arguments)
	if err != nil {
		logger.Debug("extract: rejected arguments from %s: %s", e.modelName, arguments)
		return nil, err
	}
	return md, nil
}

// toolArguments returns the arguments of the first find_data call.
func toolArguments(resp *llms.ContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, choice := range resp.Choices {
		for _, call := range choice.ToolCalls {
			if call.FunctionCall != nil && call.FunctionCall.Name == metadata.FunctionName {
				return call.FunctionCall.Arguments, true
			}
		}
		if choice.FuncCall != nil && choice.FuncCall.Name == metadata.FunctionName {
			return choice.FuncCall.Arguments, true
		}
	}
	return "", false
}

// ModelName returns the name of the chat model.
func (e *Extractor) ModelName() string {
	return e.modelName
}

// Close releases resources.
func (e *Extractor) Close() error {
	return nil
}
