// Package mcp provides an MCP (Model Context Protocol) server adapter for paperweight.
// It gives AI assistants and other consumers read-only access to the paper store.
package mcp

import "errors"

// ErrMissingPaperService is returned when the paper service is not provided.
var ErrMissingPaperService = errors.New("mcp: paper service is required")
