package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/vetlink/internal/model"
)

type route int

const (
	routeHome route = iota
	routePets
	routeNotFound
)

// navState is whether the header's navigation menu is open.
type navState int

const (
	navCollapsed navState = iota
	navExpanded
)

type navigateMsg struct {
	to    route
	title string
}

type navItem struct {
	title       string
	description string
	to          route
}

func (i navItem) FilterValue() string { return i.title }

var navItems = []navItem{
	{title: "Consultar Mascotas", description: "Buscar y registrar mascotas", to: routePets},
	{title: "Servicios", description: "Servicios de la clínica", to: routeNotFound},
	{title: "Sobre nosotros", description: "Quiénes somos", to: routeNotFound},
	{title: "Contacto", description: "Cómo encontrarnos", to: routeNotFound},
	{title: "Iniciar sesión", description: "Acceso de usuarios", to: routeNotFound},
	{title: "Registrarme", description: "Crear una cuenta de cliente", to: routeNotFound},
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(navItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.title)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItem.Render("> " + s[0])
		}
	}

	_, _ = fmt.Fprint(w, fn(str))
}

// AppOptions configures an AppModel.
type AppOptions struct {
	Logger *slog.Logger

	// Query is the initial pet list query.
	Query model.Query
	Now   func() time.Time
}

// AppModel is the full-screen application: a header with the navigation
// menu on top of the current page.
type AppModel struct {
	ctx  context.Context
	svc  PetService
	opts AppOptions

	route     route
	nav       navState
	navCursor int

	home     list.Model
	pets     *PetListModel
	notFound NotFoundModel

	width, height int
	quitting      bool
}

// NewApp creates the application on the home page.
func NewApp(ctx context.Context, svc PetService, opts AppOptions) *AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	items := make([]list.Item, len(navItems))
	for i, it := range navItems {
		items[i] = it
	}

	const defaultWidth = 20

	l := list.New(items, itemDelegate{}, defaultWidth, len(items)+6)
	l.Title = "Bienvenido a VetLink"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = listHelpStyle

	return &AppModel{
		ctx:  ctx,
		svc:  svc,
		opts: opts,
		home: l,
	}
}

func (m *AppModel) Init() tea.Cmd {
	return nil
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.home.SetWidth(msg.Width)

		if m.pets != nil {
			_, cmd := m.pets.Update(m.pageSize())
			return m, cmd
		}

		return m, nil

	case navigateMsg:
		return m, m.navigate(msg.to, msg.title)

	case BackMsg:
		return m, m.navigate(routeHome, "")

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	// Command results belong to the pet page even if it is no longer shown;
	// a closed controller ignores them.
	if m.pets != nil {
		_, cmd := m.pets.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quit()
		return m, tea.Quit
	}

	pageCapturesTab := m.route == routePets && m.pets != nil && m.pets.CapturesInput()

	if msg.String() == "tab" && !pageCapturesTab {
		m.toggleNav()
		return m, nil
	}

	if m.nav == navExpanded {
		return m.updateNav(msg)
	}

	switch m.route {
	case routePets:
		_, cmd := m.pets.Update(msg)
		if m.pets.quitting {
			m.quitting = true
		}

		return m, cmd

	case routeNotFound:
		_, cmd := m.notFound.Update(msg)
		if msg.String() == "q" {
			m.quitting = true
		}

		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quit()
		return m, tea.Quit

	case "enter":
		if i, ok := m.home.SelectedItem().(navItem); ok {
			return m, m.navigate(i.to, i.title)
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.home, cmd = m.home.Update(msg)

	return m, cmd
}

func (m *AppModel) updateNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.navCursor = (m.navCursor - 1 + len(navItems)) % len(navItems)
	case "down", "j":
		m.navCursor = (m.navCursor + 1) % len(navItems)
	case "esc":
		m.nav = navCollapsed
	case "enter":
		it := navItems[m.navCursor]
		m.nav = navCollapsed

		return m, m.navigate(it.to, it.title)
	case "q":
		m.quit()
		return m, tea.Quit
	}

	return m, nil
}

func (m *AppModel) toggleNav() {
	if m.nav == navExpanded {
		m.nav = navCollapsed
		return
	}

	m.nav = navExpanded
}

// navigate switches pages. Leaving the pet page closes it so its pending
// requests are cancelled; coming back starts a fresh query.
func (m *AppModel) navigate(to route, title string) tea.Cmd {
	if m.route == routePets && to != routePets && m.pets != nil {
		m.pets.Close()
		m.pets = nil
	}

	m.route = to

	switch to {
	case routePets:
		if m.pets != nil {
			return nil
		}

		m.pets = NewPetList(m.ctx, m.svc, PetListOptions{
			Logger:   m.opts.Logger,
			Query:    m.opts.Query,
			Embedded: true,
			Now:      m.opts.Now,
		})

		cmd := m.pets.Init()
		if m.width > 0 {
			m.pets.Update(m.pageSize())
		}

		return cmd

	case routeNotFound:
		m.notFound = NewNotFound(title)
	}

	return nil
}

func (m *AppModel) pageSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: m.width, Height: max(0, m.height-lipgloss.Height(m.header()))}
}

func (m *AppModel) quit() {
	m.quitting = true

	if m.pets != nil {
		m.pets.Close()
	}
}

func (m *AppModel) header() string {
	var sb strings.Builder

	toggle := "☰ menú (tab)"
	if m.nav == navExpanded {
		toggle = "✕ cerrar (tab)"
	}

	sb.WriteString(brandStyle.Render("VetLink") + "  " + blurredStyle.Render(toggle) + "\n")

	if m.nav == navExpanded {
		for i, it := range navItems {
			if i == m.navCursor {
				sb.WriteString(navSelectedStyle.Render("> "+it.title) + "\n")
				continue
			}

			sb.WriteString(navItemStyle.Render(it.title) + "\n")
		}
	}

	return sb.String()
}

func (m *AppModel) View() string {
	if m.quitting {
		return ""
	}

	var page string

	switch m.route {
	case routePets:
		page = m.pets.View()
	case routeNotFound:
		page = m.notFound.View()
	default:
		page = "\n" + m.home.View()
	}

	return m.header() + page
}
