package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles screen titles (preview header, export banner).
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	// FaintStyle dims secondary text such as key hints.
	FaintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"fetched":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"normalized": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"copied":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"delivered":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"complete":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"fetching":      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"normalizing":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"concatenating": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"playing":       lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Skipped / warning
		"skipped": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"missing": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"paused":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
