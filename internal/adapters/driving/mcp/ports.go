package mcp

import (
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Papers provides read access to persisted records.
	Papers driving.PaperService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Papers == nil {
		return ErrMissingPaperService
	}
	return nil
}
