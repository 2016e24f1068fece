package model

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// ClientRole is the role id the API assigns to pet owners.
const ClientRole = 4

// Owner is a client of the clinic as returned by the client listing.
type Owner struct {
	Username string `json:"usuario"`
	IDNumber string `json:"cedula"`
	Name     string `json:"nombre"`
	Phone    string `json:"telefono"`
	Email    string `json:"correo"`
}

// Normalize trims surrounding whitespace from every field.
func (o Owner) Normalize() Owner {
	return Owner{
		Username: strings.TrimSpace(o.Username),
		IDNumber: strings.TrimSpace(o.IDNumber),
		Name:     strings.TrimSpace(o.Name),
		Phone:    strings.TrimSpace(o.Phone),
		Email:    strings.TrimSpace(o.Email),
	}
}

// Validate checks a client registration. Username, id number and name are
// required; phone and email are optional but the email must parse.
func (o Owner) Validate() error {
	o = o.Normalize()
	verr := &ValidationError{Subject: "client"}

	for _, r := range []struct{ field, value string }{
		{"usuario", o.Username},
		{"cedula", o.IDNumber},
		{"nombre", o.Name},
	} {
		if r.value == "" {
			verr.Add(r.field, "This field is required.")
		}
	}

	if strings.ContainsAny(o.Username, " \t") {
		verr.Add("usuario", "Usernames cannot contain spaces.")
	}

	if o.Email != "" {
		if err := fieldValidator.Var(o.Email, "email"); err != nil {
			verr.Add("correo", "Enter a valid email address.")
		}
	}

	if verr.Empty() {
		return nil
	}

	return verr
}

// OwnerColumns are the fields the client listing searches and sorts on.
var OwnerColumns = []string{"usuario", "cedula", "nombre", "telefono", "correo"}

// OwnerQuery drives a client listing request. Owner columns are backend
// fields already, there is no display mapping.
type OwnerQuery struct {
	Search   string
	Column   string
	Order    SortOrder
	Page     int // zero-based
	PageSize int
}

// DefaultOwnerQuery returns the first page of owners sorted by username.
func DefaultOwnerQuery() OwnerQuery {
	return OwnerQuery{
		Column:   "usuario",
		Order:    Ascending,
		PageSize: DefaultPageSize,
	}
}

// Validate checks the column, order and page bounds of q.
func (q OwnerQuery) Validate() error {
	if !slices.Contains(OwnerColumns, q.Column) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, q.Column)
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

// Values renders q as client listing parameters.
func (q OwnerQuery) Values() url.Values {
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("column", q.Column)
	v.Set("order", string(q.Order))
	v.Set("page", strconv.Itoa(q.Page+1))
	v.Set("page_size", strconv.Itoa(q.PageSize))

	return v
}

// OwnerPage is one page of owners plus the total match count.
type OwnerPage struct {
	Owners []Owner `json:"results"`
	Count  int     `json:"count"`
}
