package domain

import "time"

// SourceFile is a text document on disk that may reference papers.
// Only its path and timestamps are carried onto the records derived from it.
type SourceFile struct {
	// Path is the full path of the file.
	Path string

	// CreatedAt is the file creation time. Platforms without a birth time
	// report the inode change time instead.
	CreatedAt time.Time

	// ModifiedAt is the last modification time.
	ModifiedAt time.Time
}
