package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/sportify-auth-client/navigation"
)

type styles struct {
	success lipgloss.Style
	warn    lipgloss.Style
	hint    lipgloss.Style
	label   lipgloss.Style
	menu    navigation.Styles
}

func defaultStyles() styles {
	return styles{
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		hint:    lipgloss.NewStyle().Faint(true),
		label:   lipgloss.NewStyle().Bold(true).Width(12),
		menu:    navigation.DefaultStyles(),
	}
}
