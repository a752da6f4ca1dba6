// Package ai provides factory functions for creating model service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/phonetonote/paperweight/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/phonetonote/paperweight/internal/adapters/driven/embedding/openai"
	openaillm "github.com/phonetonote/paperweight/internal/adapters/driven/llm/openai"
	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/ratelimit"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ErrMissingAPIKey is returned when an OpenAI service is configured without a key.
var ErrMissingAPIKey = errors.New("OpenAI API key not set: export OPENAI_API_KEY or run 'paperweight config init'")

// InitResult holds the model services used by ingestion.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Extractor        driven.MetadataExtractor
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.Extractor != nil {
		errs = append(errs, r.Extractor.Close())
	}
	return errors.Join(errs...)
}

// Init creates the embedding service and metadata extractor for settings.
// Connectivity is not checked.
func Init(settings *domain.Settings) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	extractor, err := CreateExtractor(&settings.Extraction)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	return &InitResult{EmbeddingService: embedder, Extractor: extractor}, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Requests are paced at settings.RequestsPerSecond; zero disables pacing.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	limiter := ratelimit.NewWithConfig(ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		BurstSize:         int(settings.RequestsPerSecond),
	})

	switch settings.Provider {
	case domain.EmbeddingProviderOllama:
		return createOllamaEmbedding(settings, limiter), nil

	case domain.EmbeddingProviderOpenAI:
		return createOpenAIEmbedding(settings, limiter)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateExtractor creates the metadata extractor selected by settings.
func CreateExtractor(settings *domain.ExtractionSettings) (driven.MetadataExtractor, error) {
	if settings.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	ex, err := openaillm.NewExtractor(openaillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
// The OpenAI default model name is replaced by the Ollama default.
func createOllamaEmbedding(settings *domain.EmbeddingSettings, limiter *ratelimit.Limiter) driven.EmbeddingService {
	model := settings.Model
	if model == domain.DefaultEmbeddingModel {
		model = ollamaembed.DefaultModel
	}
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   model,
		Limiter: limiter,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings, limiter *ratelimit.Limiter) (driven.EmbeddingService, error) {
	if settings.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Limiter: limiter,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
