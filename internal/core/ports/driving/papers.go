package driving

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// PaperService is the read side of the record store, used by the CLI and
// by external consumers such as visualisation tools.
type PaperService interface {
	// ScanAll returns every persisted record.
	ScanAll(ctx context.Context) ([]domain.PaperRecord, error)

	// Get retrieves the record for a URL.
	Get(ctx context.Context, url string) (*domain.PaperRecord, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (*PaperStats, error)
}

// PaperStats summarises the contents of the store.
type PaperStats struct {
	// Total is the number of records.
	Total int

	// ByStatus counts records per status.
	ByStatus map[domain.PaperStatus]int
}
