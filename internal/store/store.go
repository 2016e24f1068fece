package store

import (
	"context"
	"errors"

	"github.com/inovacc/vetlink/internal/model"
)

var (
	// ErrOwnerNotFound is returned when a pet references an unknown owner.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrOwnerExists is returned when creating an owner whose username is taken.
	ErrOwnerExists = errors.New("owner already exists")

	// ErrUnknownField is returned for filter or sort fields outside the whitelist.
	ErrUnknownField = errors.New("unknown field")
)

// Store defines the database operations used by the API server.
type Store interface {
	Ping(ctx context.Context) error
	ListPets(ctx context.Context, opts ListOptions) ([]model.Pet, int, error)
	CreatePet(ctx context.Context, pet model.NewPet) (model.Pet, error)
	ListOwners(ctx context.Context, opts ListOptions) ([]model.Owner, int, error)
	CreateOwner(ctx context.Context, owner model.Owner) error
	Close() error
}

// ListOptions selects, orders and slices a listing.
type ListOptions struct {
	// Column is the backend field to filter and sort on.
	Column string

	// Search is matched case-insensitively as a substring of Column.
	Search string

	// BirthYear, when set, restricts pets to those born that year and
	// replaces the Search match.
	BirthYear *int

	Desc   bool
	Limit  int
	Offset int
}
