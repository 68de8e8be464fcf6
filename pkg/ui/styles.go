package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0052CC", Dark: "#8BE9FD"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
)

// Priority accent colors, highest first.
var priorityColors = map[string]lipgloss.AdaptiveColor{
	"CRITICAL": ColorDanger,
	"HIGH":     ColorWarning,
	"MEDIUM":   ColorPrimary,
	"LOW":      ColorMuted,
}

var (
	styleColumnTitle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorText).
				Padding(0, 1)

	styleColumnBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorMuted).
				Padding(0, 1)

	styleColumnFocused = styleColumnBorder.
				BorderForeground(ColorPrimary)

	styleCard = lipgloss.NewStyle().
			Foreground(ColorText)

	styleCardSelected = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)

	styleCardMeta = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	styleNotice = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)
)

// PriorityColor returns the accent color for a priority token.
func PriorityColor(priority string) lipgloss.AdaptiveColor {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return ColorMuted
}
