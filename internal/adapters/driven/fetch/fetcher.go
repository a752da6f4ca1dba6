// Package fetch retrieves remote PDF documents with strict size bounds.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	// DefaultMaxBlobBytes is the size ceiling above which a document is oversized.
	DefaultMaxBlobBytes int64 = 1 << 30

	// DefaultMaxTextChars is the ceiling on extracted text, in characters.
	DefaultMaxTextChars = 1 << 20

	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "paperweight/1.0"
)

// pdfMIME is the only content type the fetcher parses.
const pdfMIME = "application/pdf"

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds each HTTP request (default: 60s).
	Timeout time.Duration

	// MaxBlobBytes is the body size ceiling (default: 1 GiB).
	MaxBlobBytes int64

	// MaxTextChars is the extracted text ceiling (default: 1 Mi characters).
	MaxTextChars int

	// UserAgent is sent with every request.
	UserAgent string

	// Renderer produces first-page previews. Nil disables previews.
	Renderer driven.PageRenderer

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetcher downloads documents and extracts their text.
type Fetcher struct {
	client    *http.Client
	extractor driven.PageExtractor
	renderer  driven.PageRenderer
	maxBlob   int64
	maxText   int
	userAgent string
}

// New creates a fetcher that parses bodies with extractor.
func New(extractor driven.PageExtractor, cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBlobBytes == 0 {
		cfg.MaxBlobBytes = DefaultMaxBlobBytes
	}
	if cfg.MaxTextChars == 0 {
		cfg.MaxTextChars = DefaultMaxTextChars
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Fetcher{
		client:    client,
		extractor: extractor,
		renderer:  cfg.Renderer,
		maxBlob:   cfg.MaxBlobBytes,
		maxText:   cfg.MaxTextChars,
		userAgent: cfg.UserAgent,
	}
}

// Fetch retrieves rawURL. Retrieval outcomes are reported in the returned
// document's Status; the error is non-nil only for an invalid URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RemoteDocument, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: fetch: not an http url: %q", domain.ErrInvalidInput, rawURL)
	}

	doc := &domain.RemoteDocument{URL: rawURL}

	declared := f.declaredLength(ctx, rawURL)
	oversized := declared > f.maxBlob
	if oversized {
		logger.Debug("fetch: %s: %v: declares %d bytes", rawURL, domain.ErrOversized, declared)
	}

	body, truncated, err := f.download(ctx, rawURL)
	if err != nil {
		logger.Debug("fetch: %s unreachable: %v", rawURL, err)
		doc.Status = domain.FetchUnreachable
		return doc, nil
	}
	if truncated {
		logger.Debug("fetch: %s: %v: body reached the %d byte ceiling", rawURL, domain.ErrOversized, f.maxBlob)
		oversized = true
	}

	if !mimetype.Detect(body).Is(pdfMIME) {
		logger.Debug("fetch: %s is not a PDF (%s)", rawURL, mimetype.Detect(body).String())
		doc.Status = terminalParseStatus(oversized)
		return doc, nil
	}

	text, err := f.extractText(body)
	if err != nil {
		logger.Debug("fetch: %s failed to parse: %v", rawURL, err)
		doc.Status = terminalParseStatus(oversized)
		return doc, nil
	}
	doc.Text = text

	if oversized {
		doc.Status = domain.FetchOversized
		return doc, nil
	}

	doc.Status = domain.FetchFetched
	doc.Blob = body
	doc.Preview = f.preview(ctx, rawURL, body)
	return doc, nil
}

// terminalParseStatus is the status of a document whose body yielded no text.
func terminalParseStatus(oversized bool) domain.FetchStatus {
	if oversized {
		return domain.FetchOversized
	}
	return domain.FetchMalformed
}

// declaredLength returns the Content-Length reported by a HEAD request,
// or -1 when the server does not answer HEAD usefully.
func (f *Fetcher) declaredLength(ctx context.Context, rawURL string) int64 {
	req, err := f.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return -1
	}
	resp, err := f.client.Do(req)
	if err != nil {
		logger.Debug("fetch: HEAD %s failed: %v", rawURL, err)
		return -1
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return -1
	}
	return resp.ContentLength
}

// download performs the GET. The body is read up to the blob ceiling;
// truncated reports that the ceiling was reached.
func (f *Fetcher) download(ctx context.Context, rawURL string) (body []byte, truncated bool, err error) {
	req, err := f.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("%w: status %d", domain.ErrUnreachable, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBlob+1))
	if err != nil {
		return nil, false, fmt.Errorf("%w: read body: %w", domain.ErrUnreachable, err)
	}
	if int64(len(body)) > f.maxBlob {
		return body[:f.maxBlob], true, nil
	}
	return body, false, nil
}

func (f *Fetcher) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", pdfMIME+", */*;q=0.5")
	return req, nil
}

// extractText reads pages in order into a buffer capped at maxText
// characters. The page that reaches the cap is cut exactly at it and no
// later page is read.
func (f *Fetcher) extractText(data []byte) (string, error) {
	if f.extractor == nil {
		return "", errors.New("fetch: no page extractor configured")
	}
	src, err := f.extractor.Open(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	remaining := f.maxText
	for i := 1; i <= src.NumPages() && remaining > 0; i++ {
		page, err := src.PageText(i)
		if err != nil {
			return "", err
		}
		n := utf8.RuneCountInString(page)
		if n >= remaining {
			b.WriteString(truncateRunes(page, remaining))
			break
		}
		b.WriteString(page)
		remaining -= n
	}
	return b.String(), nil
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// preview renders the first page, logging and discarding failures.
func (f *Fetcher) preview(ctx context.Context, rawURL string, body []byte) []byte {
	if f.renderer == nil {
		return nil
	}
	png, err := f.renderer.RenderFirstPage(ctx, body)
	if err != nil {
		logger.Debug("fetch: preview for %s failed: %v", rawURL, err)
		return nil
	}
	return png
}
