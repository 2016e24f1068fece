package model

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

var (
	// ErrUnknownColumn is returned when a column id is not one of Columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownOrder is returned when a sort order is neither asc nor desc.
	ErrUnknownOrder = errors.New("unknown sort order")

	// ErrInvalidPageSize is returned for page sizes outside PageSizes.
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Column identifies a display column of the pet list. Its value is the
// UI-side id; the backend field is obtained through Field.
type Column string

const (
	ColumnName    Column = "nombre"
	ColumnSpecies Column = "especie"
	ColumnBreed   Column = "raza"
	ColumnSex     Column = "sexo"
	ColumnAge     Column = "edad"
	ColumnOwner   Column = "dueno"
)

// Columns lists the searchable and sortable columns in display order.
var Columns = []Column{ColumnName, ColumnSpecies, ColumnBreed, ColumnSex, ColumnAge, ColumnOwner}

// columnFields maps display columns whose backend field has another name.
// Columns absent from the table are sent unchanged.
var columnFields = map[Column]string{
	ColumnAge:   "fecha_nacimiento",
	ColumnOwner: "usuario_cliente",
}

var columnLabels = map[Column]string{
	ColumnName:    "Nombre",
	ColumnSpecies: "Especie",
	ColumnBreed:   "Raza",
	ColumnSex:     "Sexo",
	ColumnAge:     "Edad",
	ColumnOwner:   "Dueño",
}

// Field returns the backend field name the column sorts and filters on.
func (c Column) Field() string {
	if field, ok := columnFields[c]; ok {
		return field
	}

	return string(c)
}

// Label returns the table header of the column.
func (c Column) Label() string {
	if label, ok := columnLabels[c]; ok {
		return label
	}

	return string(c)
}

// Next returns the column after c in Columns, wrapping around.
func (c Column) Next() Column {
	i := slices.Index(Columns, c)

	return Columns[(i+1)%len(Columns)]
}

// ParseColumn validates a display column id.
func ParseColumn(s string) (Column, error) {
	c := Column(s)
	if !slices.Contains(Columns, c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
	}

	return c, nil
}

// SortOrder is the direction of the listing sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Descending {
		return Ascending
	}

	return Descending
}

// Label describes the order for humans.
func (o SortOrder) Label() string {
	if o == Descending {
		return "descending"
	}

	return "ascending"
}

// ParseSortOrder validates a sort order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case Ascending, Descending:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

const (
	// DefaultPageSize is the page size used until the user picks another.
	DefaultPageSize = 10

	// MaxPageSize is the largest page the API serves.
	MaxPageSize = 100
)

// PageSizes are the page sizes offered by the pagination control.
var PageSizes = []int{10, 25, 50, 100}

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// NextPageSize returns the page size after size in PageSizes, wrapping around.
func NextPageSize(size int) int {
	i := slices.Index(PageSizes, size)

	return PageSizes[(i+1)%len(PageSizes)]
}

// Query holds the search, sort and pagination state of a listing.
type Query struct {
	Search   string    `json:"search"`
	Column   Column    `json:"column"`
	Order    SortOrder `json:"order"`
	Page     int       `json:"page"` // zero-based
	PageSize int       `json:"page_size"`
}

// DefaultQuery returns the query a fresh pet list starts with.
func DefaultQuery() Query {
	return Query{
		Column:   ColumnName,
		Order:    Ascending,
		Page:     0,
		PageSize: DefaultPageSize,
	}
}

// Validate checks the column, order and page bounds of q.
func (q Query) Validate() error {
	if _, err := ParseColumn(string(q.Column)); err != nil {
		return err
	}

	if _, err := ParseSortOrder(string(q.Order)); err != nil {
		return err
	}

	if q.PageSize <= 0 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, q.PageSize)
	}

	if q.Page < 0 {
		return fmt.Errorf("page must not be negative: %d", q.Page)
	}

	return nil
}

// Values renders q as listing endpoint parameters. The column is translated
// to its backend field and the page becomes one-based.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("column", q.Column.Field())
	v.Set("order", string(q.Order))
	v.Set("page", strconv.Itoa(q.Page+1))
	v.Set("page_size", strconv.Itoa(q.PageSize))

	return v
}
