// Package pdf extracts text from PDF documents page by page and renders
// first-page previews.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor opens PDF bytes with a pure Go parser.
type Extractor struct{}

// NewExtractor creates a PDF page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Open parses the document structure. Failures, including parser panics on
// hostile input, wrap domain.ErrMalformed.
func (e *Extractor) Open(data []byte) (src driven.PageSource, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrMalformed)
	}

	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = fmt.Errorf("%w: parser panic: %v", domain.ErrMalformed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformed, err)
	}
	return &document{reader: reader}, nil
}

// document is an opened PDF.
type document struct {
	reader *pdf.Reader
}

// NumPages returns the page count.
func (d *document) NumPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.reader.NumPage()
}

// PageText returns the plain text of page i, counting from 1.
// A page without content yields an empty string.
func (d *document) PageText(i int) (text string, err error) {
	if i < 1 || i > d.NumPages() {
		return "", fmt.Errorf("%w: page %d out of range", domain.ErrInvalidInput, i)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: page %d: parser panic: %v", domain.ErrMalformed, i, r)
		}
	}()

	page := d.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %w", domain.ErrMalformed, i, err)
	}
	return text, nil
}
