// Package memory provides in-memory implementations of driven ports for
// tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.PaperRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.PaperRecord),
	}
}

// Exists reports whether a record for url has been inserted.
func (s *RecordStore) Exists(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[url]
	return ok, nil
}

// Insert stores a copy of record.
func (s *RecordStore) Insert(_ context.Context, record *domain.PaperRecord) error {
	if record == nil || record.URL == "" {
		return fmt.Errorf("%w: record url is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.URL]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, record.URL)
	}
	s.records[record.URL] = cloneRecord(*record)
	return nil
}

// Get retrieves a copy of the record for url.
func (s *RecordStore) Get(_ context.Context, url string) (*domain.PaperRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneRecord(r)
	return &c, nil
}

// ScanAll returns copies of every record ordered by URL.
func (s *RecordStore) ScanAll(_ context.Context) ([]domain.PaperRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.PaperRecord, 0, len(s.records))
	for _, r := range s.records {
		result = append(result, cloneRecord(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].URL < result[j].URL
	})
	return result, nil
}

// CountByStatus returns the number of records per status.
func (s *RecordStore) CountByStatus(_ context.Context) (map[domain.PaperStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.PaperStatus]int)
	for _, r := range s.records {
		counts[r.Status]++
	}
	return counts, nil
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// cloneRecord copies the slices of r so callers cannot mutate stored state.
func cloneRecord(r domain.PaperRecord) domain.PaperRecord {
	r.Blob = cloneBytes(r.Blob)
	r.Embedding = cloneBytes(r.Embedding)
	r.Authors = cloneStrings(r.Authors)
	r.Keywords = cloneStrings(r.Keywords)
	return r
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
