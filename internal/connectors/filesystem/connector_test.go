package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collect(t *testing.T, ch <-chan driven.ScannedFile) []driven.ScannedFile {
	t.Helper()
	var files []driven.ScannedFile
	for f := range ch {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].File.Path < files[j].File.Path })
	return files
}

func newTestScanner(t *testing.T, exclude ...string) *Scanner {
	t.Helper()
	s, err := NewScanner(nil, exclude)
	require.NoError(t, err)
	return s
}

func TestNewScanner(t *testing.T) {
	t.Run("defaults extensions", func(t *testing.T) {
		s := newTestScanner(t)
		assert.True(t, s.Recognises("notes.md"))
		assert.True(t, s.Recognises("notes.MARKDOWN"))
		assert.True(t, s.Recognises("notes.txt"))
		assert.False(t, s.Recognises("paper.pdf"))
	})

	t.Run("normalises extensions", func(t *testing.T) {
		s, err := NewScanner([]string{"org", " .RST "}, nil)
		require.NoError(t, err)
		assert.True(t, s.Recognises("a.org"))
		assert.True(t, s.Recognises("a.rst"))
		assert.False(t, s.Recognises("a.md"))
	})

	t.Run("rejects bad exclude pattern", func(t *testing.T) {
		_, err := NewScanner(nil, []string{"[unclosed"})
		assert.Error(t, err)
	})
}

func TestScanner_Scan(t *testing.T) {
	t.Run("emits recognised files recursively", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.md", "see https://example.com/a.pdf")
		writeFile(t, root, "nested/deeper/b.txt", "b")
		writeFile(t, root, "image.png", "not text")

		files := collect(t, mustScan(t, newTestScanner(t), root))

		require.Len(t, files, 2)
		assert.Equal(t, filepath.Join(root, "a.md"), files[0].File.Path)
		assert.Equal(t, "see https://example.com/a.pdf", files[0].Content)
		assert.NoError(t, files[0].Err)
		assert.Equal(t, filepath.Join(root, "nested/deeper/b.txt"), files[1].File.Path)
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "visible.md", "v")
		writeFile(t, root, ".hidden.md", "h")
		writeFile(t, root, ".obsidian/cache.md", "c")

		files := collect(t, mustScan(t, newTestScanner(t), root))

		require.Len(t, files, 1)
		assert.Contains(t, files[0].File.Path, "visible.md")
	})

	t.Run("applies exclude globs", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "keep.md", "k")
		writeFile(t, root, "archive/old.md", "o")
		writeFile(t, root, "daily/2024-01-01.md", "d")
		writeFile(t, root, "daily/index.md", "i")

		files := collect(t, mustScan(t, newTestScanner(t, "archive", "daily/2024-*.md"), root))

		require.Len(t, files, 2)
		assert.Contains(t, files[0].File.Path, "daily/index.md")
		assert.Contains(t, files[1].File.Path, "keep.md")
	})

	t.Run("reports non-UTF-8 files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "bad.md", string([]byte{0xff, 0xfe, 0xfd}))

		files := collect(t, mustScan(t, newTestScanner(t), root))

		require.Len(t, files, 1)
		assert.ErrorIs(t, files[0].Err, ErrNotUTF8)
		assert.Empty(t, files[0].Content)
	})

	t.Run("handles non-existent directory", func(t *testing.T) {
		ch, err := newTestScanner(t).Scan(context.Background(), "/non/existent/path")
		assert.Error(t, err)
		assert.Nil(t, ch)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("rejects a file root", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "a.md", "a")
		_, err := newTestScanner(t).Scan(context.Background(), path)
		assert.Error(t, err)
	})

	t.Run("handles cancelled context", func(t *testing.T) {
		root := t.TempDir()
		for i := 0; i < 50; i++ {
			writeFile(t, root, filepath.Join("d", string(rune('a'+i%26))+string(rune('a'+i/26))+".md"), "x")
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ch, err := newTestScanner(t).Scan(ctx, root)
		require.NoError(t, err)
		files := collect(t, ch)
		assert.Less(t, len(files), 50)
	})
}

func TestScanner_Read(t *testing.T) {
	t.Run("includes timestamps", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "a.md", "hello")

		f := newTestScanner(t).Read(path)

		require.NoError(t, f.Err)
		assert.Equal(t, "hello", f.Content)
		assert.False(t, f.File.CreatedAt.IsZero())
		assert.False(t, f.File.ModifiedAt.IsZero())
	})

	t.Run("missing file", func(t *testing.T) {
		f := newTestScanner(t).Read(filepath.Join(t.TempDir(), "missing.md"))
		assert.Error(t, f.Err)
	})
}

func mustScan(t *testing.T, s *Scanner, root string) <-chan driven.ScannedFile {
	t.Helper()
	ch, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	return ch
}
