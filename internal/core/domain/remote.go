package domain

// FetchStatus is the outcome of retrieving a RemoteDocument.
type FetchStatus string

// Fetch outcomes.
const (
	// FetchFetched indicates the document was retrieved and parsed.
	FetchFetched FetchStatus = "fetched"

	// FetchUnreachable indicates a transport failure or non-2xx response.
	FetchUnreachable FetchStatus = "unreachable"

	// FetchMalformed indicates the body could not be parsed.
	FetchMalformed FetchStatus = "malformed"

	// FetchOversized indicates the document exceeded the size ceiling.
	// Text may still be present; the blob never is.
	FetchOversized FetchStatus = "oversized"
)

// RemoteDocument is the transient result of the fetch step.
type RemoteDocument struct {
	// URL is the URL that was requested.
	URL string

	// Status is the retrieval outcome.
	Status FetchStatus

	// Text is the extracted text, bounded by the text ceiling.
	Text string

	// Blob is the original response body. Nil when oversized or failed.
	Blob []byte

	// Preview is a PNG raster of the first page, if one was rendered.
	Preview []byte
}

// HasText returns true if any text was extracted.
func (d *RemoteDocument) HasText() bool {
	return d != nil && d.Text != ""
}
