// Package export converts paper records to the JSON shape shared by the
// CLI and the MCP server.
//
// Embeddings are exported as base64 of the packed float32 bytes the store
// holds. Consumers base64-decode them and unpack with embedding.Decode.
// Timestamps are RFC 3339 strings.
package export

import (
	"encoding/base64"
	"time"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/embedding"
)

// Options selects the large fields included in an exported paper.
type Options struct {
	Text      bool
	Embedding bool
	Preview   bool
}

// Full includes every large field except the raw blob.
var Full = Options{Text: true, Embedding: true, Preview: true}

// Paper is the exported form of a domain.PaperRecord.
type Paper struct {
	URL           string   `json:"url"`
	Status        string   `json:"status"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Keywords      []string `json:"keywords"`
	Abstract      string   `json:"abstract,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Institution   string   `json:"institution,omitempty"`
	Location      string   `json:"location,omitempty"`
	Identifier    string   `json:"identifier,omitempty"`
	FilePath      string   `json:"file_path"`
	CreatedAt     string   `json:"created_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
	HasBlob       bool     `json:"has_blob"`
	TextLength    int      `json:"text_length"`
	Dimensions    int      `json:"dimensions"`
	Text          string   `json:"text,omitempty"`
	Embedding     string   `json:"embedding,omitempty"`
	EncodedPic    string   `json:"encoded_pic,omitempty"`
}

// FromRecord exports r with the fields selected by opts.
func FromRecord(r *domain.PaperRecord, opts Options) Paper {
	p := Paper{
		URL:           r.URL,
		Status:        r.Status.String(),
		Title:         r.Title,
		Authors:       nonNil(r.Authors),
		Keywords:      nonNil(r.Keywords),
		Abstract:      r.Abstract,
		PublishedDate: r.PublishedDate,
		Summary:       r.Summary,
		Institution:   r.Institution,
		Location:      r.Location,
		Identifier:    r.Identifier,
		FilePath:      r.FilePath,
		CreatedAt:     formatTime(r.CreatedAt),
		UpdatedAt:     formatTime(r.UpdatedAt),
		HasBlob:       len(r.Blob) > 0,
		TextLength:    len([]rune(r.Text)),
		Dimensions:    embedding.Dimension(r.Embedding),
	}
	if opts.Text {
		p.Text = r.Text
	}
	if opts.Embedding && r.HasEmbedding() {
		p.Embedding = base64.StdEncoding.EncodeToString(r.Embedding)
	}
	if opts.Preview {
		p.EncodedPic = r.EncodedPic
	}
	return p
}

// FromRecords exports every record with the same options.
func FromRecords(records []domain.PaperRecord, opts Options) []Paper {
	out := make([]Paper, len(records))
	for i := range records {
		out[i] = FromRecord(&records[i], opts)
	}
	return out
}

// FilterByStatus keeps records with the given status. An empty status keeps all.
func FilterByStatus(records []domain.PaperRecord, status string) []domain.PaperRecord {
	if status == "" {
		return records
	}
	out := make([]domain.PaperRecord, 0, len(records))
	for i := range records {
		if records[i].Status.String() == status {
			out = append(out, records[i])
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
