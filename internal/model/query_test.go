package model

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColumn_Field(t *testing.T) {
	tests := []struct {
		column Column
		want   string
	}{
		{ColumnName, "nombre"},
		{ColumnSpecies, "especie"},
		{ColumnBreed, "raza"},
		{ColumnSex, "sexo"},
		{ColumnAge, "fecha_nacimiento"},
		{ColumnOwner, "usuario_cliente"},
	}

	for _, tt := range tests {
		t.Run(string(tt.column), func(t *testing.T) {
			if got := tt.column.Field(); got != tt.want {
				t.Errorf("Column(%q).Field() = %q, want %q", tt.column, got, tt.want)
			}
		})
	}
}

func TestColumn_FieldTableOnlyRemapsAgeAndOwner(t *testing.T) {
	for _, c := range Columns {
		_, remapped := columnFields[c]
		if remapped != (c == ColumnAge || c == ColumnOwner) {
			t.Errorf("column %q remapped = %v", c, remapped)
		}
	}
}

func TestColumn_Next(t *testing.T) {
	c := ColumnName
	seen := make([]Column, 0, len(Columns))

	for range Columns {
		seen = append(seen, c)
		c = c.Next()
	}

	if diff := cmp.Diff(Columns, seen); diff != "" {
		t.Errorf("Next() cycle mismatch (-want +got):\n%s", diff)
	}

	if c != ColumnName {
		t.Errorf("Next() did not wrap around, got %q", c)
	}
}

func TestParseColumn(t *testing.T) {
	if _, err := ParseColumn("edad"); err != nil {
		t.Errorf("ParseColumn(edad) error = %v", err)
	}

	// backend field names are not display columns
	if _, err := ParseColumn("fecha_nacimiento"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("ParseColumn(fecha_nacimiento) error = %v, want ErrUnknownColumn", err)
	}
}

func TestSortOrder_Toggle(t *testing.T) {
	if got := Ascending.Toggle(); got != Descending {
		t.Errorf("Ascending.Toggle() = %q", got)
	}

	if got := Descending.Toggle(); got != Ascending {
		t.Errorf("Descending.Toggle() = %q", got)
	}

	if got := Ascending.Toggle().Toggle(); got != Ascending {
		t.Errorf("double toggle = %q", got)
	}
}

func TestQuery_Values(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  url.Values
	}{
		{
			name:  "defaults",
			query: DefaultQuery(),
			want: url.Values{
				"search":    {""},
				"column":    {"nombre"},
				"order":     {"asc"},
				"page":      {"1"},
				"page_size": {"10"},
			},
		},
		{
			name:  "age column maps to birth date",
			query: Query{Search: "3", Column: ColumnAge, Order: Descending, Page: 2, PageSize: 25},
			want: url.Values{
				"search":    {"3"},
				"column":    {"fecha_nacimiento"},
				"order":     {"desc"},
				"page":      {"3"},
				"page_size": {"25"},
			},
		},
		{
			name:  "owner column maps to owner reference",
			query: Query{Search: "mar", Column: ColumnOwner, Order: Ascending, Page: 0, PageSize: 50},
			want: url.Values{
				"search":    {"mar"},
				"column":    {"usuario_cliente"},
				"order":     {"asc"},
				"page":      {"1"},
				"page_size": {"50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.query.Values()); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuery_Validate(t *testing.T) {
	if err := DefaultQuery().Validate(); err != nil {
		t.Fatalf("DefaultQuery().Validate() = %v", err)
	}

	q := DefaultQuery()
	q.PageSize = 101

	if err := q.Validate(); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("Validate() with page size 101 = %v", err)
	}

	q = DefaultQuery()
	q.Order = "sideways"

	if err := q.Validate(); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("Validate() with bad order = %v", err)
	}
}

func TestNextPageSize(t *testing.T) {
	if got := NextPageSize(10); got != 25 {
		t.Errorf("NextPageSize(10) = %d", got)
	}

	if got := NextPageSize(100); got != 10 {
		t.Errorf("NextPageSize(100) = %d", got)
	}
}
