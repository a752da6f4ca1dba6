package driven

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// MetadataExtractor pulls structured bibliographic fields from document text
// using a language model constrained to a fixed schema.
// This is an optional service - when nil, records are stored without metadata.
type MetadataExtractor interface {
	// Extract returns the metadata found in text.
	// A response that does not match the schema is reported as
	// domain.ErrExtractionFailed.
	Extract(ctx context.Context, text string) (*domain.PaperMetadata, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
