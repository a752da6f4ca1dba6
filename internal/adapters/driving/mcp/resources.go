package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/export"
)

const (
	// uriScheme is the custom URI scheme for paperweight resources.
	uriScheme = "paperweight://"

	// papersURI lists every paper.
	papersURI = uriScheme + "papers"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         papersURI,
		Name:        "papers",
		Description: "Every ingested paper with its metadata",
		MIMEType:    "application/json",
	}, s.handlePapersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: papersURI + "/{url}",
		Name:        "paper",
		Description: "One ingested paper, addressed by its escaped URL",
		MIMEType:    "application/json",
	}, s.handlePaperResource)
}

// PaperResourceURI returns the resource URI of the paper recorded for paperURL.
func PaperResourceURI(paperURL string) string {
	return papersURI + "/" + url.QueryEscape(paperURL)
}

// handlePapersResource returns every paper without the large fields.
func (s *Server) handlePapersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records, err := s.ports.Papers.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	return jsonResource(req.Params.URI, export.FromRecords(records, export.Options{}))
}

// handlePaperResource returns one paper including its text and embedding.
func (s *Server) handlePaperResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	paperURL := extractPaperURL(req.Params.URI)
	if paperURL == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Papers.Get(ctx, paperURL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting paper: %w", err)
	}
	return jsonResource(req.Params.URI, export.FromRecord(record, export.Full))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPaperURL extracts the paper URL from paperweight://papers/{url}.
func extractPaperURL(uri string) string {
	const prefix = papersURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	unescaped, err := url.QueryUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return unescaped
}
