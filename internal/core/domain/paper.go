package domain

import "time"

// PaperStatus is the terminal pipeline state persisted with a record.
type PaperStatus string

// Persisted statuses.
const (
	// StatusUnreachable records a URL that could not be retrieved.
	StatusUnreachable PaperStatus = "unreachable"

	// StatusMalformed records a URL whose body could not be parsed.
	StatusMalformed PaperStatus = "malformed"

	// StatusOversized records a URL above the size ceiling. The record
	// carries text and metadata when extraction still succeeded.
	StatusOversized PaperStatus = "oversized"

	// StatusProcessed records a fully processed paper.
	StatusProcessed PaperStatus = "processed"

	// StatusExtractionFailed records a paper whose metadata could not be extracted.
	StatusExtractionFailed PaperStatus = "extraction_failed"
)

// AllStatuses lists every persisted status in reporting order.
var AllStatuses = []PaperStatus{
	StatusProcessed,
	StatusExtractionFailed,
	StatusOversized,
	StatusUnreachable,
	StatusMalformed,
}

// IsValid returns true if the status is one of AllStatuses.
func (s PaperStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (s PaperStatus) String() string {
	return string(s)
}

// IsFailure returns true if the record represents a failed retrieval.
func (s PaperStatus) IsFailure() bool {
	return s == StatusUnreachable || s == StatusMalformed
}

// StatusFromFetch maps a terminal fetch outcome onto a persisted status.
// FetchFetched has no terminal mapping and returns false.
func StatusFromFetch(s FetchStatus) (PaperStatus, bool) {
	switch s {
	case FetchUnreachable:
		return StatusUnreachable, true
	case FetchMalformed:
		return StatusMalformed, true
	case FetchOversized:
		return StatusOversized, true
	default:
		return "", false
	}
}

// PaperMetadata holds the bibliographic fields pulled from a paper's text.
// Every field except Title is optional; absent fields are zero values.
type PaperMetadata struct {
	Title         string   `json:"title"`
	Keywords      []string `json:"keywords,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Institution   string   `json:"institution,omitempty"`
	Location      string   `json:"location,omitempty"`
	Identifier    string   `json:"identifier,omitempty"`
}

// PaperRecord is the persisted unit. There is exactly one per URL and it
// is never updated after insertion.
type PaperRecord struct {
	// URL is the primary key.
	URL string

	// Status is the terminal pipeline state.
	Status PaperStatus

	// Text is the extracted document text.
	Text string

	// Blob is the raw document body. Nil when oversized or failed.
	Blob []byte

	// Embedding is the packed float32 vector. Empty when no embedding was produced.
	Embedding []byte

	// EncodedPic is the base64 encoded first-page PNG, if rendered.
	EncodedPic string

	// PaperMetadata holds the extracted bibliographic fields.
	// PublishedDate is free text, best effort, as reported by the model.
	PaperMetadata

	// FilePath is the SourceFile the URL was discovered in.
	FilePath string

	// CreatedAt and UpdatedAt are the SourceFile timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPaperRecord creates a record for a URL discovered in a source file.
func NewPaperRecord(url string, file SourceFile) *PaperRecord {
	return &PaperRecord{
		URL:       url,
		FilePath:  file.Path,
		CreatedAt: file.CreatedAt,
		UpdatedAt: file.ModifiedAt,
	}
}

// HasEmbedding returns true if the record carries an embedding.
func (r *PaperRecord) HasEmbedding() bool {
	return len(r.Embedding) > 0
}
