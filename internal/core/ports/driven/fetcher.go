package driven

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// DocumentFetcher retrieves remote documents with size bounds.
//
// Retrieval failures are reported through RemoteDocument.Status, not the
// error return. The error is reserved for invalid input.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.RemoteDocument, error)
}

// PageExtractor opens paginated documents for text extraction.
type PageExtractor interface {
	// Open parses document bytes. A parse error means the body is malformed.
	Open(data []byte) (PageSource, error)
}

// PageSource gives sequential access to the pages of an opened document.
type PageSource interface {
	// NumPages returns the page count.
	NumPages() int

	// PageText returns the plain text of page i, counting from 1.
	PageText(i int) (string, error)
}

// PageRenderer rasterises the first page of a document.
type PageRenderer interface {
	// RenderFirstPage returns a PNG image of page one.
	RenderFirstPage(ctx context.Context, data []byte) ([]byte, error)
}
