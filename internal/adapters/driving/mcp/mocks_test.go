package mcp

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
)

// mockPaperService is a mock implementation of driving.PaperService.
type mockPaperService struct {
	records []domain.PaperRecord
	err     error
}

func (m *mockPaperService) ScanAll(_ context.Context) ([]domain.PaperRecord, error) {
	return m.records, m.err
}

func (m *mockPaperService) Get(_ context.Context, url string) (*domain.PaperRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].URL == url {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaperService) Stats(_ context.Context) (*driving.PaperStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats := &driving.PaperStats{ByStatus: make(map[domain.PaperStatus]int)}
	for i := range m.records {
		stats.Total++
		stats.ByStatus[m.records[i].Status]++
	}
	return stats, nil
}

func testPapers() *mockPaperService {
	return &mockPaperService{records: []domain.PaperRecord{
		{
			URL:           "https://arxiv.org/abs/1706.03762",
			Status:        domain.StatusProcessed,
			Text:          "Attention",
			Embedding:     []byte{0, 0, 128, 63},
			PaperMetadata: domain.PaperMetadata{Title: "Attention Is All You Need"},
		},
		{URL: "https://example.com/gone.pdf", Status: domain.StatusUnreachable},
		{URL: "https://example.com/big.pdf", Status: domain.StatusOversized, Text: "big"},
	}}
}

func newTestServer(papers *mockPaperService) *Server {
	server, err := NewServer(&Ports{Papers: papers})
	if err != nil {
		panic(err)
	}
	return server
}
