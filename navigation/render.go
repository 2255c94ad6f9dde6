package navigation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/sportify-auth-client/sessions"
)

// Styles used by Render.
type Styles struct {
	Title  lipgloss.Style
	User   lipgloss.Style
	Item   lipgloss.Style
	Logout lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true),
		User: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")),
		Item: lipgloss.NewStyle().
			PaddingLeft(2),
		Logout: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("1")),
	}
}

// Render draws the menu for state.
func Render(state sessions.State, styles Styles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Sportify"))
	b.WriteString("\n")
	if state.Authenticated() {
		profile := state.Session.Profile
		b.WriteString(styles.User.Render(fmt.Sprintf("%s (%s)", profile.FullName, profile.Role)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, item := range Menu(state) {
		label := item.Label
		if item.Kind == ItemRoute {
			label = fmt.Sprintf("%-18s %s", item.Label, item.Path)
		}
		style := styles.Item
		if item.Kind == ItemLogout {
			style = styles.Logout
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}
	return b.String()
}
