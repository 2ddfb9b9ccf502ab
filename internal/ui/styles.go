// Package ui implements the terminal interface for Arogya consultations using
// bubbletea. The model owns the consultation orchestrator; network calls run
// as commands off the event loop and resolve back into it as messages.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Saffron and herbal green, with red reserved for emergencies.
var (
	colorPrimary   = lipgloss.Color("#2E86AB")
	colorAccent    = lipgloss.Color("#F18F01")
	colorHealthy   = lipgloss.Color("#5FA777")
	colorDanger    = lipgloss.Color("#E53935")
	colorMuted     = lipgloss.Color("#6C757D")
	colorUserText  = lipgloss.Color("#A23B72")
	colorAssistant = lipgloss.Color("#2E86AB")
)

// Styles groups the lipgloss styles used across the consultation screens.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Selected  lipgloss.Style
	Unselect  lipgloss.Style
	UserMsg   lipgloss.Style
	DoctorMsg lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Emergency lipgloss.Style
	Guide     lipgloss.Style
	Spinner   lipgloss.Style
}

// DefaultStyles returns the standard Arogya styling.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtitle: lipgloss.NewStyle().Foreground(colorMuted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Unselect: lipgloss.NewStyle().Foreground(colorMuted),
		UserMsg:  lipgloss.NewStyle().Bold(true).Foreground(colorUserText),
		DoctorMsg: lipgloss.NewStyle().
			Foreground(colorAssistant),
		Status: lipgloss.NewStyle().Foreground(colorHealthy),
		Error:  lipgloss.NewStyle().Foreground(colorDanger),
		Help:   lipgloss.NewStyle().Faint(true),
		Emergency: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorDanger).
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorDanger),
		Guide: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHealthy).
			Padding(1, 2),
		Spinner: lipgloss.NewStyle().Foreground(colorAccent),
	}
}
