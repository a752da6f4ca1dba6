// Package domain defines the core business entities for paperweight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceFile: A text document on disk that references papers
//   - Link: A classified document reference found in a SourceFile
//   - RemoteDocument: The transient result of fetching a Link
//   - PaperRecord: The persisted unit, one per URL
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
