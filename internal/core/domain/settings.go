package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EmbeddingProvider identifies the service that produces embeddings.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOpenAI is the OpenAI embeddings API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	return p == EmbeddingProviderOpenAI || p == EmbeddingProviderOllama
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// Settings is the configuration surface consumed by the core.
// It is resolved once at process start and not mutated afterwards.
type Settings struct {
	Store      StoreSettings
	Source     SourceSettings
	Ingest     IngestSettings
	Embedding  EmbeddingSettings
	Extraction ExtractionSettings
	Fetch      FetchSettings
}

// StoreSettings configures the record store.
type StoreSettings struct {
	// Path is the SQLite database file.
	Path string `validate:"required"`
}

// SourceSettings configures the directory scan.
type SourceSettings struct {
	// Dir is the root of the document tree.
	Dir string

	// Extensions are the recognised text-document extensions, with leading dot.
	Extensions []string `validate:"required,min=1,dive,startswith=."`

	// Exclude are doublestar glob patterns matched against paths relative to Dir.
	Exclude []string
}

// IngestSettings configures which links are ingested.
type IngestSettings struct {
	// Categories are the link categories that are fetched and persisted.
	Categories []Category `validate:"required,min=1"`
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	Provider          EmbeddingProvider `validate:"required,oneof=openai ollama"`
	Model             string            `validate:"required"`
	BaseURL           string            `validate:"omitempty,url"`
	APIKey            string
	RequestsPerSecond float64 `validate:"gte=0"`
}

// ExtractionSettings configures the metadata extraction model.
type ExtractionSettings struct {
	Model   string `validate:"required"`
	BaseURL string `validate:"omitempty,url"`
	APIKey  string
}

// FetchSettings configures document retrieval.
type FetchSettings struct {
	Timeout       time.Duration `validate:"gt=0"`
	RenderPreview bool
}

// Default configuration values.
const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultExtractionModel = "gpt-4o-mini"
	DefaultFetchTimeout    = 60 * time.Second
)

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{Path: "papers.db"},
		Source: SourceSettings{
			Dir:        ".",
			Extensions: []string{".md", ".markdown", ".txt"},
		},
		Ingest: IngestSettings{
			Categories: append([]Category(nil), AllCategories...),
		},
		Embedding: EmbeddingSettings{
			Provider:          EmbeddingProviderOpenAI,
			Model:             DefaultEmbeddingModel,
			RequestsPerSecond: 3,
		},
		Extraction: ExtractionSettings{
			Model: DefaultExtractionModel,
		},
		Fetch: FetchSettings{
			Timeout: DefaultFetchTimeout,
		},
	}
}

// Validate checks the settings against their struct tags and the
// category and provider enumerations.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	for _, c := range s.Ingest.Categories {
		if !c.IsValid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
		}
	}
	return nil
}

// describeValidation renders validator errors as field - tag pairs.
func describeValidation(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s - %s", ve.Namespace(), ve.Tag()))
	}
	return strings.Join(parts, ", ")
}
