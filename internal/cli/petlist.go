package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/vetlink/internal/listing"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/inovacc/vetlink/internal/petapi"
)

// PetService lists and registers pets. *petapi.Client implements it.
type PetService interface {
	listing.Fetcher
	PetCreator
}

var _ PetService = (*petapi.Client)(nil)

// BackMsg asks the parent model to leave the current page.
type BackMsg struct{}

type petsLoadedMsg struct {
	resp listing.Response
}

type petCreatedMsg struct {
	pet model.Pet
}

type listMode int

const (
	modeBrowse listMode = iota
	modeSearch
	modeCreate
)

const maxDots = 20

// PetListOptions configures a PetListModel.
type PetListOptions struct {
	Logger *slog.Logger
	Query  model.Query

	// Embedded makes esc send BackMsg instead of quitting.
	Embedded bool

	// Now is the clock used for ages; time.Now when nil.
	Now func() time.Time
}

// PetListModel is the pet records page: a search bar, the paginated table
// and a footer with paging controls.
type PetListModel struct {
	svc    PetService
	ctl    *listing.Controller
	logger *slog.Logger
	now    func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc // root, cancels every request
	cancelReq context.CancelFunc // latest request
	pending   tea.Cmd
	issued    model.Query // query of the latest request; headers follow it

	table     table.Model
	spinner   spinner.Model
	search    textinput.Model
	paginator paginator.Model
	form      *PetFormModel

	mode     listMode
	embedded bool
	notice   string
	quitting bool
}

// NewPetList creates the page and issues the first request, which starts
// when the program runs Init.
func NewPetList(ctx context.Context, svc PetService, opts PetListOptions) *PetListModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)

	ctl := listing.New(svc, listing.Options{Logger: opts.Logger, Query: opts.Query})

	ti := textinput.New()
	ti.Prompt = "Buscar: "
	ti.Placeholder = "texto o edad"
	ti.CharLimit = 100
	ti.Width = 30
	ti.SetValue(ctl.Query().Search)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = focusedStyle.Render("•")
	p.InactiveDot = blurredStyle.Render("•")

	t := table.New(
		table.WithColumns(petColumns(ctl.Query(), 0)),
		table.WithFocused(true),
		table.WithHeight(model.DefaultPageSize+1),
		table.WithStyles(tableStyles()),
	)

	m := &PetListModel{
		svc:       svc,
		ctl:       ctl,
		logger:    opts.Logger,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
		table:     t,
		spinner:   s,
		search:    ti,
		paginator: p,
		embedded:  opts.Embedded,
	}

	m.pending = m.dispatch(ctl.Refresh())

	return m
}

func (m *PetListModel) Init() tea.Cmd {
	cmd := m.pending
	m.pending = nil

	return cmd
}

// CapturesInput reports whether keys should go to a text field rather than
// to page shortcuts.
func (m *PetListModel) CapturesInput() bool {
	return m.mode != modeBrowse
}

// Close cancels every in-flight request and stops applying responses.
func (m *PetListModel) Close() {
	m.ctl.Close()
	m.cancel()
}

// dispatch runs req in a command. The previous request, if still running,
// is cancelled since its response would be discarded anyway.
func (m *PetListModel) dispatch(req listing.Request) tea.Cmd {
	if m.cancelReq != nil {
		m.cancelReq()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelReq = cancel
	m.issued = req.Query
	ctl := m.ctl

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return petsLoadedMsg{resp: ctl.Run(ctx, req)}
	})
}

func (m *PetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.table.SetWidth(msg.Width - h)
		m.table.SetHeight(max(3, min(m.ctl.Query().PageSize+1, msg.Height-v-10)))

		return m, nil

	case petsLoadedMsg:
		if m.ctl.Resolve(msg.resp) {
			m.syncTable()
		}

		return m, nil

	case petCreatedMsg:
		m.mode = modeBrowse
		m.form = nil
		m.notice = fmt.Sprintf("Mascota %q registrada.", msg.pet.Name)

		return m, m.dispatch(m.ctl.Refresh())

	case petFormCancelledMsg:
		m.mode = modeBrowse
		m.form = nil

		return m, nil

	case spinner.TickMsg:
		// The form has its own spinner; each ignores the other's ticks.
		var cmds []tea.Cmd

		if m.ctl.Loading() {
			var cmd tea.Cmd

			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

		if m.mode == modeCreate && m.form != nil {
			_, cmd := m.form.Update(msg)
			cmds = append(cmds, cmd)
		}

		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit()
			return m, tea.Quit
		}

		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeCreate:
			return m.updateForm(msg)
		}

		return m.updateBrowse(msg)
	}

	if m.mode == modeCreate {
		return m.updateForm(msg)
	}

	if m.mode == modeSearch {
		var cmd tea.Cmd

		m.search, cmd = m.search.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *PetListModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quit()
		return m, tea.Quit

	case "esc":
		if m.embedded {
			m.Close()
			return m, func() tea.Msg { return BackMsg{} }
		}

		m.quit()

		return m, tea.Quit

	case "/":
		m.mode = modeSearch
		m.notice = ""

		return m, m.search.Focus()

	case "enter":
		return m, m.dispatch(m.ctl.SubmitSearch())

	case "c":
		if err := m.ctl.SetColumn(m.ctl.Query().Column.Next()); err != nil {
			m.logger.Warn("cycling search column", "error", err)
		}

		return m, nil

	case "o":
		return m, m.dispatch(m.ctl.ToggleOrder())

	case "right", "l":
		if req, ok := m.ctl.NextPage(); ok {
			return m, m.dispatch(req)
		}

		return m, nil

	case "left", "h":
		if req, ok := m.ctl.PrevPage(); ok {
			return m, m.dispatch(req)
		}

		return m, nil

	case "s":
		req, err := m.ctl.SetPageSize(model.NextPageSize(m.ctl.Query().PageSize))
		if err != nil {
			m.logger.Warn("changing page size", "error", err)
			return m, nil
		}

		return m, m.dispatch(req)

	case "r":
		m.notice = ""
		return m, m.dispatch(m.ctl.Refresh())

	case "n":
		m.mode = modeCreate
		m.notice = ""
		m.form = NewPetForm(m.ctx, m.svc, func(p model.Pet) tea.Msg { return petCreatedMsg{pet: p} })
		m.form.now = m.now

		return m, m.form.Init()
	}

	var cmd tea.Cmd

	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *PetListModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		m.ctl.SetSearch(m.search.Value())

		return m, m.dispatch(m.ctl.SubmitSearch())

	case "esc":
		m.mode = modeBrowse
		m.search.Blur()

		return m, nil
	}

	var cmd tea.Cmd

	m.search, cmd = m.search.Update(msg)
	m.ctl.SetSearch(m.search.Value())

	return m, cmd
}

func (m *PetListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeBrowse
		return m, nil
	}

	_, cmd := m.form.Update(msg)

	return m, cmd
}

func (m *PetListModel) quit() {
	m.quitting = true
	m.Close()
}

// syncTable copies the controller's result and paging state into the widgets.
func (m *PetListModel) syncTable() {
	q := m.issued
	pets := m.ctl.Result().Pets
	now := m.now()

	rows := make([]table.Row, len(pets))
	for i, p := range pets {
		rows[i] = petRow(p, now)
	}

	m.table.SetColumns(petColumns(q, m.table.Width()))
	m.table.SetRows(rows)
	m.table.SetCursor(0)

	m.paginator.PerPage = q.PageSize
	m.paginator.TotalPages = m.ctl.PageCount()
	m.paginator.Page = q.Page
}

// petColumns builds the table header, marking the active column with the
// sort direction.
func petColumns(q model.Query, width int) []table.Column {
	headers := petHeaders()
	widths := []int{14, 10, 14, 8, 5, 14, len(actionsLabel)}

	if width > 0 {
		extra := (width - sum(widths) - 2*len(widths)) / 3
		if extra > 0 {
			widths[0] += extra
			widths[2] += extra
			widths[5] += extra
		}
	}

	arrow := " ▲"
	if q.Order == model.Descending {
		arrow = " ▼"
	}

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		if i < len(model.Columns) && model.Columns[i] == q.Column {
			h += arrow
		}

		cols[i] = table.Column{Title: h, Width: widths[i]}
	}

	return cols
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}

	return total
}

func (m *PetListModel) View() string {
	if m.quitting {
		return ""
	}

	if m.mode == modeCreate && m.form != nil {
		return docStyle.Render(m.form.View())
	}

	q := m.ctl.Query()

	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Consultar Mascotas") + "\n\n")
	sb.WriteString(m.search.View() + "  ")
	sb.WriteString(blurredStyle.Render(fmt.Sprintf("Columna: %s • Orden: %s", q.Column.Label(), orderLabel(q.Order))) + "\n\n")

	switch state := m.ctl.State(); {
	case state == listing.StateLoading:
		sb.WriteString(m.spinner.View() + " Cargando mascotas...\n")

	default:
		if state == listing.StateFailed {
			sb.WriteString(bannerStyle.Render(failureText(m.ctl.Err())) + "\n")
		}

		switch {
		case len(m.ctl.Result().Pets) > 0:
			sb.WriteString(m.table.View() + "\n")
		case state == listing.StateReady:
			sb.WriteString(blurredStyle.Render("No se encontraron registros.") + "\n")
		}
	}

	sb.WriteString("\n" + m.footer() + "\n")

	if m.notice != "" {
		sb.WriteString(successStyle.Render("✓ "+m.notice) + "\n")
	}

	sb.WriteString("\n" + helpStyle.Render(m.help()))

	return docStyle.Render(sb.String())
}

// footer shows the page position, total count and page size. An empty
// result has zero pages.
func (m *PetListModel) footer() string {
	q := m.ctl.Query()
	pages := m.ctl.PageCount()

	current := 0
	if pages > 0 {
		current = q.Page + 1
	}

	text := fmt.Sprintf("Página %d de %d • %d registros • %d por página", current, pages, m.ctl.Result().Count, q.PageSize)

	if pages > 1 && pages <= maxDots {
		text = m.paginator.View() + "  " + text
	}

	return text
}

func (m *PetListModel) help() string {
	if m.mode == modeSearch {
		return "enter: buscar • esc: volver"
	}

	keys := []string{"/: buscar", "c: columna", "o: orden", "←/→: página", "s: tamaño", "r: recargar", "n: nueva mascota"}

	if m.embedded {
		keys = append(keys, "esc: inicio")
	}

	return strings.Join(append(keys, "q: salir"), " • ")
}

func orderLabel(o model.SortOrder) string {
	if o == model.Descending {
		return "descendente"
	}

	return "ascendente"
}

// failureLabels names each petapi failure kind in the banner.
var failureLabels = map[string]string{
	"network": "sin conexión",
	"status":  "error del servidor",
	"decode":  "respuesta inválida",
}

func failureText(err error) string {
	msg := "✗ No se pudieron cargar las mascotas"
	if label, ok := failureLabels[petapi.Kind(err)]; ok {
		msg += " (" + label + ")"
	}

	if err != nil {
		msg += ": " + err.Error()
	}

	if err == nil || petapi.IsRetryable(err) {
		return msg + "\n  r: reintentar"
	}

	return msg + "\n  Revisa la búsqueda o pulsa r para reintentar"
}
