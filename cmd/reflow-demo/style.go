package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type Style struct {
	LineNum       lipgloss.Style
	LineNumActive lipgloss.Style
	Text          lipgloss.Style
	Cursor        lipgloss.Style

	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Help      lipgloss.Style
}

func DefaultStyle() Style {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		LineNum:       gutter,
		LineNumActive: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Text:          lipgloss.NewStyle(),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusErr:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Help:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// applyColorEnv honours NO_COLOR.
func applyColorEnv() {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
