package driven

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// RecordStore persists paper records, one per URL.
// Implementations must enforce URL uniqueness themselves and make each
// Insert atomic with respect to concurrent readers.
type RecordStore interface {
	// Exists reports whether a record for the URL has been persisted.
	Exists(ctx context.Context, url string) (bool, error)

	// Insert persists a new record.
	// Returns domain.ErrDuplicateKey if the URL already has a record.
	Insert(ctx context.Context, record *domain.PaperRecord) error

	// Get retrieves a record by URL.
	// Returns domain.ErrNotFound if no record exists.
	Get(ctx context.Context, url string) (*domain.PaperRecord, error)

	// ScanAll returns every record. Transient lock/busy errors are retried;
	// any other error is returned immediately.
	ScanAll(ctx context.Context) ([]domain.PaperRecord, error)

	// CountByStatus returns the number of records per status.
	CountByStatus(ctx context.Context) (map[domain.PaperStatus]int, error)
}
