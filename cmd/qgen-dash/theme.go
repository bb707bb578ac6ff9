package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual styling for the qgen dashboard.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme for qgen-dash.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// Styles holds the reusable lipgloss styles derived from a theme.
type Styles struct {
	Title      lipgloss.Style
	StatusOK   lipgloss.Style
	StatusErr  lipgloss.Style
	Muted      lipgloss.Style
	TableCol   lipgloss.Style
	TableHead  lipgloss.Style
	QuestionBx lipgloss.Style
}

// DefaultStyles builds the styles for a theme.
func DefaultStyles(theme Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1),
		StatusOK:  lipgloss.NewStyle().Foreground(theme.Success),
		StatusErr: lipgloss.NewStyle().Foreground(theme.Error),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		TableCol:  lipgloss.NewStyle().Padding(0, 1),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1),
		QuestionBx: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Padding(0, 1).
			Width(70),
	}
}
