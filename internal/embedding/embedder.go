package embedding

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/logger"
)

// MaxInputChars is the number of characters submitted to model services.
const MaxInputChars = 8191

// Embedder wraps an EmbeddingService with input truncation and the empty
// vector fallback used by the pipeline.
type Embedder struct {
	service driven.EmbeddingService
}

// NewEmbedder creates an embedder. A nil service yields empty vectors.
func NewEmbedder(service driven.EmbeddingService) *Embedder {
	return &Embedder{service: service}
}

// Embed returns the embedding of text, truncated to MaxInputChars.
// When the service is absent, fails, or returns nothing the result is an
// empty vector; failures are logged as domain.ErrEmbeddingUnavailable.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if e == nil || e.service == nil || text == "" {
		return []float32{}
	}

	vector, err := e.service.Embed(ctx, Truncate(text, MaxInputChars))
	if err != nil {
		logger.Warn("%v: %s: %v", domain.ErrEmbeddingUnavailable, e.service.ModelName(), err)
		return []float32{}
	}
	if len(vector) == 0 {
		return []float32{}
	}
	return vector
}

// EmbedEncoded returns the packed embedding of text.
func (e *Embedder) EmbedEncoded(ctx context.Context, text string) []byte {
	return Encode(e.Embed(ctx, text))
}

// Truncate returns at most n characters of s, never splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
