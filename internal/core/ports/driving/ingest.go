package driving

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// Ingestor drives the per-link ingestion pipeline.
type Ingestor interface {
	// IngestDirectory scans every text document under root and ingests the
	// links it references. Per-file and per-link failures are counted in the
	// summary; an error is returned only when the scan cannot run at all.
	IngestDirectory(ctx context.Context, root string) (*RunSummary, error)

	// IngestFile ingests the links referenced by a single text document.
	IngestFile(ctx context.Context, path string) (*RunSummary, error)

	// IngestLink runs the pipeline for one link discovered in file.
	// Returns the persisted status, or skipped=true when a record exists.
	IngestLink(ctx context.Context, link domain.Link, file domain.SourceFile) (status domain.PaperStatus, skipped bool, err error)
}

// RunSummary reports the outcome of an ingestion run.
type RunSummary struct {
	// RunID identifies the run in logs.
	RunID string

	// Files is the number of text documents read.
	Files int

	// Links is the number of distinct links classified.
	Links int

	// ByCategory counts the enabled links found in each category.
	ByCategory map[domain.Category]int

	// Skipped is the number of links that already had a record.
	Skipped int

	// Persisted counts inserted records by status.
	Persisted map[domain.PaperStatus]int

	// Failed is the number of links abandoned without a record.
	Failed int

	// FileErrors is the number of files reported and skipped.
	FileErrors int
}

// NewRunSummary creates an empty summary for a run.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:      runID,
		ByCategory: make(map[domain.Category]int),
		Persisted:  make(map[domain.PaperStatus]int),
	}
}

// TotalPersisted returns the number of records inserted during the run.
func (s *RunSummary) TotalPersisted() int {
	total := 0
	for _, n := range s.Persisted {
		total += n
	}
	return total
}

// Merge adds the counts of other into s.
func (s *RunSummary) Merge(other *RunSummary) {
	if other == nil {
		return
	}
	s.Files += other.Files
	s.Links += other.Links
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.FileErrors += other.FileErrors
	for category, n := range other.ByCategory {
		s.ByCategory[category] += n
	}
	for status, n := range other.Persisted {
		s.Persisted[status] += n
	}
}
