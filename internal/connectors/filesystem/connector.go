package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/logger"
)

// Verify interface compliance.
var _ driven.SourceScanner = (*Scanner)(nil)

// ErrNotUTF8 indicates a file whose content is not valid UTF-8.
var ErrNotUTF8 = errors.New("not valid UTF-8")

// DefaultExtensions are the recognised text-document extensions.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// scanBuffer is the size of the scan output channel.
const scanBuffer = 16

// Scanner walks a directory tree for text documents.
type Scanner struct {
	extensions map[string]bool
	exclude    []string
}

// NewScanner creates a scanner for the given extensions and exclude globs.
// Extensions may be given with or without the leading dot; an empty list
// uses DefaultExtensions. Exclude patterns are doublestar globs matched
// against slash-separated paths relative to the scan root.
func NewScanner(extensions, exclude []string) (*Scanner, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad exclude pattern %q", domain.ErrInvalidInput, pattern)
		}
	}
	return &Scanner{extensions: exts, exclude: exclude}, nil
}

// Scan walks root and emits every recognised text document.
func (s *Scanner) Scan(ctx context.Context, root string) (<-chan driven.ScannedFile, error) {
	root, err := ResolveRoot(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("root path error: %s does not exist", root)
		}
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	out := make(chan driven.ScannedFile, scanBuffer)
	go func() {
		defer close(out)
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				// Unreadable directories are reported and skipped.
				logger.Error("walk %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if path == root {
				return nil
			}
			if isHidden(d.Name()) || s.excluded(root, path) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() || !s.Recognises(path) {
				return nil
			}

			select {
			case out <- s.Read(path):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			logger.Error("walk %s: %v", root, walkErr)
		}
	}()

	return out, nil
}

// Read loads a single file. Errors are carried on the result.
func (s *Scanner) Read(path string) driven.ScannedFile {
	result := driven.ScannedFile{File: domain.SourceFile{Path: path}}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.File.CreatedAt, result.File.ModifiedAt = fileTimes(info)

	content, err := os.ReadFile(path)
	if err != nil {
		result.Err = err
		return result
	}
	if !utf8.Valid(content) {
		result.Err = ErrNotUTF8
		return result
	}
	result.Content = string(content)
	return result
}

// Recognises reports whether path has a recognised extension.
func (s *Scanner) Recognises(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

// excluded reports whether path matches an exclude pattern.
func (s *Scanner) excluded(root, path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// isHidden checks if a file or directory name is hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
