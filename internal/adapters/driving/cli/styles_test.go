package cli

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

func TestStatusStyle_ColoursByOutcome(t *testing.T) {
	tests := []struct {
		status   domain.PaperStatus
		expected lipgloss.Color
	}{
		{domain.StatusProcessed, colorSuccess},
		{domain.StatusExtractionFailed, colorWarning},
		{domain.StatusOversized, colorWarning},
		{domain.StatusUnreachable, colorError},
		{domain.StatusMalformed, colorError},
		{domain.PaperStatus("bogus"), colorError},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusStyle(tt.status).GetForeground())
		})
	}
}
