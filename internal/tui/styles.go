package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	tabActiveSty  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e4e4ec"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05252"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e4e4ec"))
	hostBadgeSty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
	callBadgeSty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#383f4f"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#d4a844")).
			Padding(1, 3)
)
