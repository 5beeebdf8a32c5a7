package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One lime accent over grays.
const (
	ColorLime     = "154" // accent (#AFFF00)
	ColorLimeDim  = "106" // prompt, borders
	ColorWhite    = "255" // titles
	ColorGray     = "245" // secondary text
	ColorDarkGray = "238" // separators
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the lipgloss styles used by the search box and status views.
type Styles struct {
	Header  lipgloss.Style
	Prompt  lipgloss.Style
	Count   lipgloss.Style
	Rank    lipgloss.Style
	Title   lipgloss.Style
	URL     lipgloss.Style
	Teaser  lipgloss.Style
	Excerpt lipgloss.Style
	Label   lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Count:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Rank:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		URL:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(ColorGray)),
		Teaser:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(ColorGray)),
		Excerpt: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for NO_COLOR and pipes.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Prompt:  plain,
		Count:   plain,
		Rank:    plain,
		Title:   plain,
		URL:     plain,
		Teaser:  plain,
		Excerpt: plain,
		Label:   plain,
		Dim:     plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Border:  plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
