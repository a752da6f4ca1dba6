package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phonetonote/paperweight/internal/adapters/driving/mcp"
)

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.Equal(t, "serve", mcpServeCmd.Use)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
	assert.Contains(t, mcpServeCmd.Long, "list_papers")
}

func TestMCPServe_RequiresPaperService(t *testing.T) {
	withServices(t, &Services{})

	_, err := executeCommand(t, "mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingPaperService)
}
