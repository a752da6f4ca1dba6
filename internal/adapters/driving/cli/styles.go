package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// Palette shared by the list, show and stats output.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(14)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	countStyle = lipgloss.NewStyle().Bold(true).Width(6).Align(lipgloss.Right)
)

// statusStyle colours a status by outcome.
func statusStyle(s domain.PaperStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Width(18)
	switch {
	case s == domain.StatusProcessed:
		return base.Foreground(colorSuccess)
	case s.IsFailure() || !s.IsValid():
		return base.Foreground(colorError)
	default:
		return base.Foreground(colorWarning)
	}
}

// field renders one "label value" line of a detail view.
func field(label, value string) string {
	return labelStyle.Render(label) + value
}
