package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// NotFoundModel is shown for destinations without a page.
type NotFoundModel struct {
	target string
}

// NewNotFound creates the page for the missing destination target.
func NewNotFound(target string) NotFoundModel {
	return NotFoundModel{target: target}
}

func (m NotFoundModel) Init() tea.Cmd {
	return nil
}

func (m NotFoundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "esc":
			return m, func() tea.Msg { return navigateMsg{to: routeHome} }
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m NotFoundModel) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Error 404") + "\n\n")
	sb.WriteString("La página que buscas no puede cargarse ahora\no no tienes los permisos necesarios.\n\n")
	sb.WriteString("Revisa la URL o contacta con el administrador.\n")

	if m.target != "" {
		sb.WriteString(blurredStyle.Render(m.target) + "\n")
	}

	sb.WriteString("\n" + focusedStyle.Render("> Volver a la página de inicio") + "\n\n")
	sb.WriteString(helpStyle.Render("enter/esc: inicio • q: salir"))

	return docStyle.Render(sb.String())
}
