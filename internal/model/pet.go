package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// BirthDateLayout is the wire layout of fecha_nacimiento.
const BirthDateLayout = "2006-01-02"

// OwnerRef references the owning client. The API sends either the owner's
// username or a numeric key, both are kept as text.
type OwnerRef string

// UnmarshalJSON accepts a JSON string, number or null.
func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*o = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*o = OwnerRef(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("owner reference must be a string or number: %w", err)
	}

	*o = OwnerRef(n.String())

	return nil
}

// Pet is a single clinic record as returned by the listing endpoint.
type Pet struct {
	ID        int64    `json:"id"`
	Name      string   `json:"nombre"`
	Species   string   `json:"especie"`
	Breed     string   `json:"raza"`
	Sex       string   `json:"sexo"`
	BirthDate string   `json:"fecha_nacimiento"`
	Owner     OwnerRef `json:"usuario_cliente"`
}

// ParseBirthDate parses an ISO date, with or without a time part.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(BirthDateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date %q", s)
	}

	return t, nil
}

// Age returns the display age of the pet: the calendar year of now minus the
// birth year. Month and day are ignored, so a pet born late in the year shows
// one year more than the elapsed time. ok is false when the birth date does
// not parse.
func (p Pet) Age(now time.Time) (age int, ok bool) {
	born, err := ParseBirthDate(p.BirthDate)
	if err != nil {
		return 0, false
	}

	return now.Year() - born.Year(), true
}

// NewPet is the payload of the creation endpoint.
type NewPet struct {
	Name      string `json:"nombre"`
	Species   string `json:"especie"`
	Breed     string `json:"raza"`
	Sex       string `json:"sexo"`
	BirthDate string `json:"fecha_nacimiento"`
	Owner     string `json:"usuario_cliente"`
}

// Normalize trims surrounding whitespace from every field.
func (p NewPet) Normalize() NewPet {
	return NewPet{
		Name:      strings.TrimSpace(p.Name),
		Species:   strings.TrimSpace(p.Species),
		Breed:     strings.TrimSpace(p.Breed),
		Sex:       strings.TrimSpace(p.Sex),
		BirthDate: strings.TrimSpace(p.BirthDate),
		Owner:     strings.TrimSpace(p.Owner),
	}
}

// Validate checks the payload against now. It returns a *ValidationError
// listing every offending field, or nil.
func (p NewPet) Validate(now time.Time) error {
	p = p.Normalize()
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"nombre", p.Name},
		{"especie", p.Species},
		{"raza", p.Breed},
		{"sexo", p.Sex},
		{"fecha_nacimiento", p.BirthDate},
		{"usuario_cliente", p.Owner},
	}

	for _, r := range required {
		if r.value == "" {
			verr.Add(r.field, "This field is required.")
		}
	}

	if p.BirthDate != "" {
		born, err := time.Parse(BirthDateLayout, p.BirthDate)
		switch {
		case err != nil:
			verr.Add("fecha_nacimiento", "Date has wrong format. Use YYYY-MM-DD.")
		case born.After(now):
			verr.Add("fecha_nacimiento", "Birth date cannot be in the future.")
		}
	}

	if verr.Empty() {
		return nil
	}

	return verr
}

// ValidationError maps field names to problems, in the shape the API returns
// for rejected payloads.
type ValidationError struct {
	// Subject names the rejected record in Error; empty means "pet".
	Subject string
	Fields  map[string][]string
}

// Add records a problem for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}

	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}

	sort.Slice(fields, func(i, j int) bool {
		oi, oj := fieldOrder(fields[i]), fieldOrder(fields[j])
		if oi != oj {
			return oi < oj
		}

		return fields[i] < fields[j]
	})

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}

	subject := e.Subject
	if subject == "" {
		subject = "pet"
	}

	return "invalid " + subject + ": " + strings.Join(parts, "; ")
}

var validationOrder = []string{
	"usuario", "cedula", "nombre", "especie", "raza", "sexo", "fecha_nacimiento", "usuario_cliente", "telefono", "correo",
}

func fieldOrder(field string) int {
	if i := slices.Index(validationOrder, field); i >= 0 {
		return i
	}

	return len(validationOrder)
}
