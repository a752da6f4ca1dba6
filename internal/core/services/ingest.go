package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
	"github.com/phonetonote/paperweight/internal/embedding"
	"github.com/phonetonote/paperweight/internal/links"
	"github.com/phonetonote/paperweight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService runs the ingestion pipeline. Links are processed one at a
// time; a failure on one link never stops the others.
type IngestService struct {
	store      driven.RecordStore
	fetcher    driven.DocumentFetcher
	embedder   *embedding.Embedder
	extractor  driven.MetadataExtractor
	scanner    driven.SourceScanner
	observer   driven.PipelineObserver
	categories []domain.Category
}

// NewIngestService creates a new ingestion orchestrator.
// The embeddingService and extractor parameters are optional (can be nil);
// without them records are stored with no embedding or metadata.
// An empty categories list enables every category.
func NewIngestService(
	store driven.RecordStore,
	fetcher driven.DocumentFetcher,
	embeddingService driven.EmbeddingService,
	extractor driven.MetadataExtractor,
	scanner driven.SourceScanner,
	categories []domain.Category,
) *IngestService {
	if len(categories) == 0 {
		categories = domain.AllCategories
	}
	return &IngestService{
		store:      store,
		fetcher:    fetcher,
		embedder:   embedding.NewEmbedder(embeddingService),
		extractor:  extractor,
		scanner:    scanner,
		categories: categories,
	}
}

// SetObserver sets the observer notified of pipeline outcomes.
func (s *IngestService) SetObserver(observer driven.PipelineObserver) {
	s.observer = observer
}

// IngestDirectory ingests every link referenced under root.
func (s *IngestService) IngestDirectory(ctx context.Context, root string) (*driving.RunSummary, error) {
	summary := driving.NewRunSummary(uuid.NewString())
	logger.Section("Ingest " + root)
	logger.Info("run %s: scanning %s", summary.RunID, root)

	files, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	for file := range files {
		s.ingestScanned(ctx, file, summary)
		if ctx.Err() != nil {
			break
		}
	}

	logSummary(summary)
	return summary, ctx.Err()
}

// IngestFile ingests the links referenced by a single text document.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.RunSummary, error) {
	summary := driving.NewRunSummary(uuid.NewString())
	s.ingestScanned(ctx, s.scanner.Read(path), summary)
	logSummary(summary)
	return summary, ctx.Err()
}

// ingestScanned processes every enabled link of one scanned file.
func (s *IngestService) ingestScanned(ctx context.Context, file driven.ScannedFile, summary *driving.RunSummary) {
	if file.Err != nil {
		summary.FileErrors++
		logger.Error("skipping %s: %v", file.File.Path, file.Err)
		s.notify(func(o driven.PipelineObserver) { o.FileFailed() })
		return
	}
	summary.Files++

	found := links.Filter(links.Extract(file.Content), s.categories)
	logger.Debug("%s: %d links", file.File.Path, len(found))
	for category, group := range links.Partition(found) {
		summary.ByCategory[category] += len(group)
	}

	for _, link := range found {
		if ctx.Err() != nil {
			return
		}
		summary.Links++
		s.notify(func(o driven.PipelineObserver) { o.LinkDiscovered(link.Category) })

		status, skipped, err := s.IngestLink(ctx, link, file.File)
		switch {
		case err != nil:
			summary.Failed++
			logger.Warn("%s: %v", link.URL, err)
			s.notify(func(o driven.PipelineObserver) { o.LinkFailed() })
		case skipped:
			summary.Skipped++
			s.notify(func(o driven.PipelineObserver) { o.LinkSkipped() })
		default:
			summary.Persisted[status]++
			s.notify(func(o driven.PipelineObserver) { o.RecordPersisted(status) })
		}
	}
}

// IngestLink runs one link through the pipeline and persists exactly one
// record, unless the URL already has one. Panics in the embedding and
// extraction steps still persist a record; other panics are converted to
// errors.
func (s *IngestService) IngestLink(
	ctx context.Context, link domain.Link, file domain.SourceFile,
) (status domain.PaperStatus, skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, skipped = "", false
			err = fmt.Errorf("panic while ingesting: %v", r)
		}
	}()

	logger.Debug("%s: discovered (%s)", link.URL, link.Category)

	exists, err := s.store.Exists(ctx, link.URL)
	if err != nil {
		return "", false, fmt.Errorf("check existing: %w", err)
	}
	if exists {
		logger.Debug("%s: already exists", link.URL)
		return "", true, nil
	}

	logger.Debug("%s: fetching %s", link.URL, link.DocumentURL())
	doc, err := s.fetcher.Fetch(ctx, link.DocumentURL())
	if err != nil {
		return "", false, fmt.Errorf("fetch: %w", err)
	}
	logger.Debug("%s: %s", link.URL, doc.Status)

	record := domain.NewPaperRecord(link.URL, file)

	terminal, isTerminal := domain.StatusFromFetch(doc.Status)
	if isTerminal && !(doc.Status == domain.FetchOversized && doc.HasText()) {
		if doc.Status == domain.FetchOversized {
			logger.Debug("%s: %v: no text", link.URL, domain.ErrOversized)
		}
		record.Status = terminal
		return s.persist(ctx, record)
	}

	record.Text = doc.Text
	record.Blob = doc.Blob
	if len(doc.Preview) > 0 {
		record.EncodedPic = base64.StdEncoding.EncodeToString(doc.Preview)
	}

	logger.Debug("%s: embedding", link.URL)
	record.Embedding = s.embed(ctx, record.URL, doc.Text)
	if record.HasEmbedding() {
		logger.Debug("%s: embedded (%d dimensions)", link.URL, embedding.Dimension(record.Embedding))
	} else {
		logger.Debug("%s: embedding_empty", link.URL)
	}

	record.Status = s.extractMetadata(ctx, record, doc.Text)
	if doc.Status == domain.FetchOversized {
		record.Status = domain.StatusOversized
	}
	return s.persist(ctx, record)
}

// embed returns the packed embedding of text. A panic in the embedding
// service yields an empty embedding.
func (s *IngestService) embed(ctx context.Context, url, text string) (packed []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("%s: %v: panic: %v", url, domain.ErrEmbeddingUnavailable, r)
			packed = []byte{}
		}
	}()
	return s.embedder.EmbedEncoded(ctx, text)
}

// extractMetadata fills the record's metadata and returns the resulting status.
// A panic in the extractor is reported as an extraction failure.
func (s *IngestService) extractMetadata(ctx context.Context, record *domain.PaperRecord, text string) (status domain.PaperStatus) {
	if s.extractor == nil {
		return domain.StatusProcessed
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("%s: %v: panic: %v", record.URL, domain.ErrExtractionFailed, r)
			record.PaperMetadata = domain.PaperMetadata{}
			status = domain.StatusExtractionFailed
		}
	}()

	logger.Debug("%s: extracting", record.URL)
	md, err := s.extractor.Extract(ctx, text)
	if err != nil {
		if !errors.Is(err, domain.ErrExtractionFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
		}
		logger.Warn("%s: %v", record.URL, err)
		return domain.StatusExtractionFailed
	}
	if md != nil {
		record.PaperMetadata = *md
	}
	return domain.StatusProcessed
}

// persist inserts the record. A duplicate key abandons the URL.
func (s *IngestService) persist(ctx context.Context, record *domain.PaperRecord) (domain.PaperStatus, bool, error) {
	if err := s.store.Insert(ctx, record); err != nil {
		return "", false, fmt.Errorf("insert: %w", err)
	}
	logger.Debug("%s: persisted as %s", record.URL, record.Status)
	return record.Status, false, nil
}

func (s *IngestService) notify(fn func(driven.PipelineObserver)) {
	if s.observer != nil {
		fn(s.observer)
	}
}

func logSummary(summary *driving.RunSummary) {
	logger.Info("run %s: %d files, %d links, %d persisted, %d skipped, %d failed, %d file errors",
		summary.RunID, summary.Files, summary.Links, summary.TotalPersisted(),
		summary.Skipped, summary.Failed, summary.FileErrors)
}
