package services

import (
	"context"
	"errors"
	"sync"

	"github.com/phonetonote/paperweight/internal/adapters/driven/storage/memory"
	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// countingStore wraps the in-memory store and counts inserts.
type countingStore struct {
	*memory.RecordStore
	inserts   int
	existsErr error
	insertErr error
}

func newCountingStore() *countingStore {
	return &countingStore{RecordStore: memory.NewRecordStore()}
}

func (s *countingStore) Exists(ctx context.Context, url string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.RecordStore.Exists(ctx, url)
}

func (s *countingStore) Insert(ctx context.Context, r *domain.PaperRecord) error {
	s.inserts++
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.RecordStore.Insert(ctx, r)
}

// mockFetcher returns canned documents per URL.
type mockFetcher struct {
	docs   map[string]*domain.RemoteDocument
	err    error
	panics map[string]bool
	calls  []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*domain.RemoteDocument, error) {
	m.calls = append(m.calls, url)
	if m.panics[url] {
		panic("parser exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	if doc, ok := m.docs[url]; ok {
		c := *doc
		c.URL = url
		return &c, nil
	}
	return &domain.RemoteDocument{URL: url, Status: domain.FetchUnreachable}, nil
}

func fetched(text string) *domain.RemoteDocument {
	return &domain.RemoteDocument{Status: domain.FetchFetched, Text: text, Blob: []byte("%PDF-" + text)}
}

// mockEmbeddingService returns a fixed vector.
type mockEmbeddingService struct {
	vector  []float32
	err     error
	panicOn map[string]bool
	calls   int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.panicOn[text] {
		var counts map[string]int
		counts[text]++
	}
	return m.vector, m.err
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.vector) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockExtractor returns metadata keyed by document text.
type mockExtractor struct {
	metadata map[string]*domain.PaperMetadata
	failOn   map[string]error
	panicOn  map[string]bool
	calls    int
}

func (m *mockExtractor) Extract(_ context.Context, text string) (*domain.PaperMetadata, error) {
	m.calls++
	if m.panicOn[text] {
		var counts map[string]int
		counts[text]++
	}
	if err := m.failOn[text]; err != nil {
		return nil, err
	}
	if md, ok := m.metadata[text]; ok {
		return md, nil
	}
	return &domain.PaperMetadata{Title: text}, nil
}

func (m *mockExtractor) ModelName() string { return "mock-chat" }
func (m *mockExtractor) Close() error      { return nil }

// mockScanner emits fixed files.
type mockScanner struct {
	files   []driven.ScannedFile
	scanErr error
}

func (m *mockScanner) Scan(_ context.Context, _ string) (<-chan driven.ScannedFile, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	ch := make(chan driven.ScannedFile, len(m.files))
	for _, f := range m.files {
		ch <- f
	}
	close(ch)
	return ch, nil
}

func (m *mockScanner) Read(path string) driven.ScannedFile {
	for _, f := range m.files {
		if f.File.Path == path {
			return f
		}
	}
	return driven.ScannedFile{File: domain.SourceFile{Path: path}, Err: errors.New("no such file")}
}

func textFile(path, content string) driven.ScannedFile {
	return driven.ScannedFile{File: domain.SourceFile{Path: path}, Content: content}
}

// mockObserver records notifications.
type mockObserver struct {
	mu         sync.Mutex
	discovered map[domain.Category]int
	persisted  map[domain.PaperStatus]int
	skipped    int
	failed     int
	fileErrors int
}

func newMockObserver() *mockObserver {
	return &mockObserver{
		discovered: make(map[domain.Category]int),
		persisted:  make(map[domain.PaperStatus]int),
	}
}

func (o *mockObserver) LinkDiscovered(c domain.Category) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discovered[c]++
}

func (o *mockObserver) LinkSkipped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped++
}

func (o *mockObserver) RecordPersisted(s domain.PaperStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persisted[s]++
}

func (o *mockObserver) LinkFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *mockObserver) FileFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fileErrors++
}
