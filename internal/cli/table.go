package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/inovacc/vetlink/internal/model"
)

// actionsLabel is the decorative actions cell of every pet row.
const actionsLabel = "editar · eliminar"

// petHeaders returns the pet table headings in display column order.
func petHeaders() []string {
	headers := make([]string, 0, len(model.Columns)+1)
	for _, c := range model.Columns {
		headers = append(headers, c.Label())
	}

	return append(headers, "Acciones")
}

// petRow renders one pet in display column order. Birth dates that cannot
// be parsed show "-" as the age.
func petRow(p model.Pet, now time.Time) []string {
	age := "-"
	if years, ok := p.Age(now); ok {
		age = strconv.Itoa(years)
	}

	return []string{p.Name, p.Species, p.Breed, p.Sex, age, string(p.Owner), actionsLabel}
}

var ownerHeaders = []string{"Usuario", "Cédula", "Nombre", "Teléfono", "Correo"}

func ownerRow(o model.Owner) []string {
	return []string{o.Username, o.IDNumber, o.Name, o.Phone, o.Email}
}

// RenderPetTable renders pets as a bordered table when styled is true, or
// as tab-separated lines with a heading line otherwise.
func RenderPetTable(pets []model.Pet, now time.Time, styled bool) string {
	rows := make([][]string, len(pets))
	for i, p := range pets {
		rows[i] = petRow(p, now)
	}

	return renderTable(petHeaders(), rows, styled)
}

// RenderOwnerTable renders owners like RenderPetTable.
func RenderOwnerTable(owners []model.Owner, styled bool) string {
	rows := make([][]string, len(owners))
	for i, o := range owners {
		rows[i] = ownerRow(o)
	}

	return renderTable(ownerHeaders, rows, styled)
}

func renderTable(headers []string, rows [][]string, styled bool) string {
	if !styled {
		var sb strings.Builder

		sb.WriteString(strings.Join(headers, "\t"))
		sb.WriteByte('\n')

		for _, r := range rows {
			sb.WriteString(strings.Join(r, "\t"))
			sb.WriteByte('\n')
		}

		return sb.String()
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return tableHeaderStyle
			}

			return tableCellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String() + "\n"
}
