package driven

import (
	"context"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// ScannedFile is a text document read from a source tree.
// Err is set when the file was found but could not be used; such files are
// reported and skipped, never fatal to the scan.
type ScannedFile struct {
	File    domain.SourceFile
	Content string
	Err     error
}

// SourceScanner discovers text documents in a directory tree.
type SourceScanner interface {
	// Scan walks the tree under root and emits every recognised text document.
	// The channel is closed when the walk completes or ctx is cancelled.
	// An error is returned only when the walk cannot start.
	Scan(ctx context.Context, root string) (<-chan ScannedFile, error)

	// Read loads a single file.
	Read(path string) ScannedFile
}

// SourceWatcher reports text documents that are created or modified.
type SourceWatcher interface {
	// Watch emits a ScannedFile for every create or write event.
	// The channel is closed when ctx is cancelled or Close is called.
	Watch(ctx context.Context) (<-chan ScannedFile, error)

	// Close stops watching and releases resources.
	Close() error
}
