package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
)

// mockIngestor implements driving.Ingestor for testing.
type mockIngestor struct {
	mu      sync.Mutex
	summary *driving.RunSummary
	err     error
	dirs    []string
	files   []string
}

func (m *mockIngestor) IngestDirectory(_ context.Context, root string) (*driving.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, root)
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return driving.NewRunSummary("run"), nil
}

func (m *mockIngestor) IngestFile(_ context.Context, path string) (*driving.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, path)
	s := driving.NewRunSummary("file")
	s.Files = 1
	s.Links = 1
	s.Persisted[domain.StatusProcessed] = 1
	return s, nil
}

func (m *mockIngestor) IngestLink(_ context.Context, _ domain.Link, _ domain.SourceFile) (domain.PaperStatus, bool, error) {
	return domain.StatusProcessed, false, nil
}

// mockPaperService implements driving.PaperService for testing.
type mockPaperService struct {
	records []domain.PaperRecord
	err     error
}

func (m *mockPaperService) ScanAll(_ context.Context) ([]domain.PaperRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockPaperService) Get(_ context.Context, url string) (*domain.PaperRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].URL == url {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaperService) Stats(_ context.Context) (*driving.PaperStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats := &driving.PaperStats{ByStatus: make(map[domain.PaperStatus]int)}
	for _, r := range m.records {
		stats.Total++
		stats.ByStatus[r.Status]++
	}
	return stats, nil
}

// mockSnapshotter implements Snapshotter for testing.
type mockSnapshotter struct {
	dest string
	err  error
}

func (m *mockSnapshotter) Snapshot(_ context.Context, dest string) (string, error) {
	m.dest = dest
	if m.err != nil {
		return "", m.err
	}
	return dest + "/papers_2024-01-02_15-04-05.db", nil
}

func (m *mockSnapshotter) Path() string {
	return "papers.db"
}

// mockWatcher implements driven.SourceWatcher, emitting a fixed set of files.
type mockWatcher struct {
	files  []driven.ScannedFile
	err    error
	closed bool
}

func (m *mockWatcher) Watch(_ context.Context) (<-chan driven.ScannedFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan driven.ScannedFile, len(m.files))
	for _, f := range m.files {
		ch <- f
	}
	close(ch)
	return ch, nil
}

func (m *mockWatcher) Close() error {
	m.closed = true
	return nil
}

// testPapers returns one record per interesting status.
func testPapers() []domain.PaperRecord {
	return []domain.PaperRecord{
		{
			URL:       "https://arxiv.org/pdf/1706.03762",
			Status:    domain.StatusProcessed,
			Text:      "Attention is all you need",
			Embedding: []byte{0, 0, 128, 63},
			PaperMetadata: domain.PaperMetadata{
				Title:       "Attention Is All You Need",
				Authors:     []string{"Vaswani", "Shazeer"},
				Abstract:    "The dominant sequence transduction models...",
				Institution: "Google Brain",
			},
			FilePath: "notes/transformers.md",
		},
		{
			URL:      "https://example.com/missing.pdf",
			Status:   domain.StatusUnreachable,
			FilePath: "notes/misc.md",
		},
	}
}

// withServices installs svc for the duration of the test.
func withServices(t *testing.T, svc *Services) {
	t.Helper()
	old := &Services{
		Settings:   settings,
		Ingestor:   ingestor,
		Papers:     paperService,
		Snapshots:  snapshotter,
		NewWatcher: newWatcher,
		Observer:   observer,
		Close:      closeServices,
	}
	if svc.Settings.Store.Path == "" {
		svc.Settings = domain.DefaultSettings()
	}
	install(svc)
	t.Cleanup(func() { install(old) })
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
