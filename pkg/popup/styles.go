package popup

import "github.com/charmbracelet/lipgloss"

var (
	accentGreen = lipgloss.Color("#74AC00")
	dimGray     = lipgloss.Color("#6B7280")
	softRed     = lipgloss.Color("#E06C75")
	textWhite   = lipgloss.Color("#F9FAFB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(accentGreen).
			Bold(true)

	onStyle = lipgloss.NewStyle().
		Foreground(accentGreen).
		Bold(true)

	offStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(accentGreen)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentGreen).
			Foreground(textWhite).
			Padding(1, 2)
)
