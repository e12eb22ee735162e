package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/stian-overasen/connectlog/internal/readiness"
)

// Colors
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	greenColor   = lipgloss.Color("#10B981")
	yellowColor  = lipgloss.Color("#F59E0B")
	redColor     = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(22)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(redColor).
			Bold(true)

	greenStyle  = lipgloss.NewStyle().Bold(true).Foreground(greenColor)
	yellowStyle = lipgloss.NewStyle().Bold(true).Foreground(yellowColor)
	redStyle    = lipgloss.NewStyle().Bold(true).Foreground(redColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

// statusRender returns the style for a readiness status.
func statusRender(s readiness.Status) lipgloss.Style {
	switch s {
	case readiness.StatusGreen:
		return greenStyle
	case readiness.StatusYellow:
		return yellowStyle
	case readiness.StatusRed:
		return redStyle
	}
	return mutedStyle
}
