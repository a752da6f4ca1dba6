package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// fakeExtractor serves fixed page texts and records which pages were read.
type fakeExtractor struct {
	pages   []string
	openErr error
	pageErr map[int]error

	mu     sync.Mutex
	opened [][]byte
	read   []int
}

func (f *fakeExtractor) Open(data []byte) (driven.PageSource, error) {
	f.mu.Lock()
	f.opened = append(f.opened, data)
	f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSource{parent: f}, nil
}

func (f *fakeExtractor) pagesRead() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.read...)
}

type fakeSource struct {
	parent *fakeExtractor
}

func (s *fakeSource) NumPages() int {
	return len(s.parent.pages)
}

func (s *fakeSource) PageText(i int) (string, error) {
	s.parent.mu.Lock()
	s.parent.read = append(s.parent.read, i)
	s.parent.mu.Unlock()
	if err := s.parent.pageErr[i]; err != nil {
		return "", err
	}
	return s.parent.pages[i-1], nil
}

// fakeRenderer returns a fixed preview.
type fakeRenderer struct {
	png   []byte
	err   error
	calls int
}

func (r *fakeRenderer) RenderFirstPage(_ context.Context, _ []byte) ([]byte, error) {
	r.calls++
	return r.png, r.err
}

var errBadXref = errors.New("malformed xref table")

var errMalformed = domain.ErrMalformed
