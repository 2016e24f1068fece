package cli

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("205")
	mutedColor  = lipgloss.Color("240")
	errorColor  = lipgloss.Color("196")
	okColor     = lipgloss.Color("42")

	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	focusedStyle = lipgloss.NewStyle().Foreground(accentColor)
	blurredStyle = lipgloss.NewStyle().Foreground(mutedColor)
	noStyle      = lipgloss.NewStyle()
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(okColor)
	helpStyle    = blurredStyle
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	navItemStyle     = lipgloss.NewStyle().PaddingLeft(4)
	navSelectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))

	titleStyle      = lipgloss.NewStyle().MarginLeft(2)
	itemStyle       = lipgloss.NewStyle().PaddingLeft(4)
	selectedItem    = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	listHelpStyle   = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}
