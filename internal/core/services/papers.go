package services

import (
	"context"
	"fmt"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
)

// Ensure PaperService implements the interface.
var _ driving.PaperService = (*PaperService)(nil)

// PaperService provides read access to persisted records.
type PaperService struct {
	store driven.RecordStore
}

// NewPaperService creates a new paper service.
func NewPaperService(store driven.RecordStore) *PaperService {
	return &PaperService{store: store}
}

// ScanAll returns every persisted record.
func (s *PaperService) ScanAll(ctx context.Context) ([]domain.PaperRecord, error) {
	records, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan all: %w", err)
	}
	return records, nil
}

// Get retrieves the record for url.
func (s *PaperService) Get(ctx context.Context, url string) (*domain.PaperRecord, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, url)
}

// Stats counts records by status.
func (s *PaperService) Stats(ctx context.Context) (*driving.PaperStats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	stats := &driving.PaperStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
