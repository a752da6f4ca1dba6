package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/export"
)

// defaultListLimit caps list_papers when no limit is given.
const defaultListLimit = 50

// ListPapersInput is the input schema for the list_papers tool.
type ListPapersInput struct {
	Status           string `json:"status,omitempty" jsonschema:"only return papers with this status (processed, extraction_failed, oversized, unreachable, malformed)"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of papers to return (default 50)"`
	Offset           int    `json:"offset,omitempty" jsonschema:"number of papers to skip"`
	IncludeEmbedding bool   `json:"include_embedding,omitempty" jsonschema:"include the base64 packed float32 embedding"`
}

// ListPapersOutput is the output schema for the list_papers tool.
type ListPapersOutput struct {
	Papers []export.Paper `json:"papers"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
}

// GetPaperInput is the input schema for the get_paper tool.
type GetPaperInput struct {
	URL         string `json:"url" jsonschema:"the URL the paper was discovered under"`
	IncludeText bool   `json:"include_text,omitempty" jsonschema:"include the extracted document text"`
}

// StatsInput is the input schema for the paper_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the paper_stats tool.
type StatsOutput struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_papers",
		Description: "List ingested papers with their extracted metadata",
	}, s.handleListPapers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_paper",
		Description: "Get one ingested paper by URL",
	}, s.handleGetPaper)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "paper_stats",
		Description: "Count ingested papers by status",
	}, s.handleStats)
}

// handleListPapers handles the list_papers tool invocation.
func (s *Server) handleListPapers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPapersInput,
) (*mcp.CallToolResult, ListPapersOutput, error) {
	records, err := s.ports.Papers.ScanAll(ctx)
	if err != nil {
		return nil, ListPapersOutput{}, err
	}
	records = export.FilterByStatus(records, input.Status)
	total := len(records)

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := min(max(input.Offset, 0), total)
	end := offset + min(limit, total-offset)

	papers := export.FromRecords(records[offset:end], export.Options{Embedding: input.IncludeEmbedding})
	return nil, ListPapersOutput{Papers: papers, Count: len(papers), Total: total}, nil
}

// handleGetPaper handles the get_paper tool invocation.
func (s *Server) handleGetPaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPaperInput,
) (*mcp.CallToolResult, export.Paper, error) {
	record, err := s.ports.Papers.Get(ctx, input.URL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, export.Paper{}, fmt.Errorf("no paper recorded for %s", input.URL)
		}
		return nil, export.Paper{}, err
	}
	return nil, export.FromRecord(record, export.Options{Text: input.IncludeText, Embedding: true}), nil
}

// handleStats handles the paper_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Papers.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	out := StatsOutput{Total: stats.Total, ByStatus: make(map[string]int, len(stats.ByStatus))}
	for status, n := range stats.ByStatus {
		out.ByStatus[status.String()] = n
	}
	return nil, out, nil
}
