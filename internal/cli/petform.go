package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/inovacc/vetlink/internal/petapi"
)

// PetCreator registers new pets.
type PetCreator interface {
	Create(ctx context.Context, p model.NewPet) (model.Pet, error)
}

type formField struct {
	key         string // payload field name, as reported in API field errors
	label       string
	placeholder string
}

var petFormFields = []formField{
	{"nombre", "Nombre:", "Firulais"},
	{"especie", "Especie:", "Perro"},
	{"raza", "Raza:", "Labrador"},
	{"sexo", "Sexo:", "Macho / Hembra"},
	{"fecha_nacimiento", "Fecha de nacimiento:", "AAAA-MM-DD"},
	{"usuario_cliente", "Dueño (usuario):", "mgarcia"},
}

var (
	focusedSubmit = focusedStyle.Render("[ Registrar ]")
	blurredSubmit = fmt.Sprintf("[ %s ]", blurredStyle.Render("Registrar"))
)

type petFormCancelledMsg struct{}

type petCreateFailedMsg struct {
	err error
}

// PetFormModel collects a new pet and submits it. On success the message
// built by onCreated is delivered to the program.
type PetFormModel struct {
	ctx       context.Context
	creator   PetCreator
	onCreated func(model.Pet) tea.Msg
	now       func() time.Time

	inputs     []textinput.Model
	focusIndex int
	spinner    spinner.Model
	submitting bool

	fieldErrs map[string][]string
	err       error
}

// NewPetForm creates an empty registration form.
func NewPetForm(ctx context.Context, creator PetCreator, onCreated func(model.Pet) tea.Msg) *PetFormModel {
	m := &PetFormModel{
		ctx:       ctx,
		creator:   creator,
		onCreated: onCreated,
		now:       time.Now,
		inputs:    make([]textinput.Model, len(petFormFields)),
	}

	for i, f := range petFormFields {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.Placeholder = f.placeholder
		t.CharLimit = 100

		if f.key == "fecha_nacimiento" {
			t.CharLimit = len(model.BirthDateLayout)
		}

		if i == 0 {
			t.Focus()
			t.PromptStyle = focusedStyle
			t.TextStyle = focusedStyle
		}

		m.inputs[i] = t
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	m.spinner = s

	return m
}

func (m *PetFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Payload returns the pet currently typed into the form.
func (m *PetFormModel) Payload() model.NewPet {
	return model.NewPet{
		Name:      m.inputs[0].Value(),
		Species:   m.inputs[1].Value(),
		Breed:     m.inputs[2].Value(),
		Sex:       m.inputs[3].Value(),
		BirthDate: m.inputs[4].Value(),
		Owner:     m.inputs[5].Value(),
	}.Normalize()
}

func (m *PetFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case petCreateFailedMsg:
		m.submitting = false
		m.applyError(msg.err)

		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}

		switch s := msg.String(); s {
		case "esc":
			return m, func() tea.Msg { return petFormCancelledMsg{} }

		case "tab", "shift+tab", "enter", "up", "down":
			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m, m.submit()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			return m, m.focusInputs()
		}
	}

	return m, m.updateInputs(msg)
}

func (m *PetFormModel) focusInputs() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle

			continue
		}

		m.inputs[i].Blur()
		m.inputs[i].PromptStyle = noStyle
		m.inputs[i].TextStyle = noStyle
	}

	return tea.Batch(cmds...)
}

func (m *PetFormModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	// Only the focused input reacts to keys.
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

// submit validates locally first so obvious mistakes never reach the API.
func (m *PetFormModel) submit() tea.Cmd {
	payload := m.Payload()

	m.err = nil
	m.fieldErrs = nil

	if err := payload.Validate(m.now()); err != nil {
		m.applyError(err)
		return nil
	}

	m.submitting = true

	ctx, creator, onCreated := m.ctx, m.creator, m.onCreated

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		pet, err := creator.Create(ctx, payload)
		if err != nil {
			return petCreateFailedMsg{err: err}
		}

		return onCreated(pet)
	})
}

func (m *PetFormModel) applyError(err error) {
	var (
		verr   *model.ValidationError
		status *petapi.StatusError
	)

	switch {
	case errors.As(err, &verr):
		m.fieldErrs = verr.Fields
	case errors.As(err, &status) && status.NotFound():
		m.fieldErrs = map[string][]string{"usuario_cliente": {status.Detail()}}
	case errors.As(err, &status) && status.FieldErrors() != nil:
		m.fieldErrs = status.FieldErrors()
	default:
		m.err = err
	}
}

func (m *PetFormModel) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Registrar mascota") + "\n")
	sb.WriteString(blurredStyle.Render("Completa los campos y usa tab para avanzar") + "\n\n")

	for i, f := range petFormFields {
		sb.WriteString(fmt.Sprintf(" %s\n %s\n", blurredStyle.Render(f.label), m.inputs[i].View()))

		if msgs := m.fieldErrs[f.key]; len(msgs) > 0 {
			sb.WriteString(" " + errorStyle.Render(strings.Join(msgs, " ")) + "\n")
		}

		sb.WriteString("\n")
	}

	button := blurredSubmit
	if m.focusIndex == len(m.inputs) {
		button = focusedSubmit
	}

	sb.WriteString(fmt.Sprintf("\n %s\n\n", button))

	switch {
	case m.submitting:
		sb.WriteString(" " + m.spinner.View() + " Guardando...\n\n")
	case m.err != nil:
		sb.WriteString(" " + errorStyle.Render("✗ No se pudo registrar la mascota: "+m.err.Error()) + "\n\n")
	}

	sb.WriteString(helpStyle.Render(" tab/shift+tab: navegar • enter: registrar • esc: cancelar"))

	return sb.String()
}
