package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/inovacc/vetlink/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	// DriverSQLite selects modernc.org/sqlite
	DriverSQLite = "sqlite"

	// DriverMySQL selects github.com/go-sql-driver/mysql
	DriverMySQL = "mysql"
)

// petFields whitelists the pet fields that may be searched and sorted on.
var petFields = map[string]string{
	"nombre":           "nombre",
	"especie":          "especie",
	"raza":             "raza",
	"sexo":             "sexo",
	"fecha_nacimiento": "fecha_nacimiento",
	"usuario_cliente":  "usuario_cliente",
}

// ownerFields whitelists the owner fields that may be searched and sorted on.
var ownerFields = map[string]string{
	"usuario":  "usuario",
	"cedula":   "cedula",
	"nombre":   "nombre",
	"telefono": "telefono",
	"correo":   "correo",
}

// SQLStore implements Store on database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database, applies migrations and returns the store.
// For sqlite an empty dsn is not allowed; callers pass a file path.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, errors.New("sqlite requires a database path")
		}

		if dir := filepath.Dir(sqlitePath(dsn)); dir != "" {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}

		db, err = sql.Open(DriverSQLite, sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		// SQLite doesn't handle multiple writers well
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)

	case DriverMySQL:
		cfg, perr := mysql.ParseDSN(dsn)
		if perr != nil {
			return nil, fmt.Errorf("parsing mysql dsn: %w", perr)
		}

		// birth dates are scanned as text
		cfg.ParseTime = false

		db, err = sql.Open(DriverMySQL, cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)

	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := NewMigrator(db, driver).MigrateUp(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLStore{db: db, dialect: driver}, nil
}

// NewWithDB wraps an already migrated connection.
func NewWithDB(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func sqlitePath(dsn string) string {
	p, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")

	return p
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}

	return dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ListPets returns one page of pets and the total number of matches.
func (s *SQLStore) ListPets(ctx context.Context, opts ListOptions) ([]model.Pet, int, error) {
	column, ok := petFields[opts.Column]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownField, opts.Column)
	}

	var (
		where []string
		args  []any
	)

	switch {
	case opts.BirthYear != nil:
		year := *opts.BirthYear
		where = append(where, "fecha_nacimiento >= ? AND fecha_nacimiento < ?")
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	case opts.Search != "":
		where = append(where, "LOWER("+column+") LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(opts.Search))
	}

	clause := whereClause(where)

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mascotas"+clause, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("counting pets: %w", err)
	}

	query := "SELECT id, nombre, especie, raza, sexo, fecha_nacimiento, usuario_cliente FROM mascotas" +
		clause + " ORDER BY " + column + direction(opts.Desc) + ", id ASC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying pets: %w", err)
	}
	defer rows.Close()

	pets := make([]model.Pet, 0, opts.Limit)

	for rows.Next() {
		var (
			p     model.Pet
			owner string
		)

		if err := rows.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.BirthDate, &owner); err != nil {
			return nil, 0, fmt.Errorf("scanning pet: %w", err)
		}

		p.Owner = model.OwnerRef(owner)
		pets = append(pets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating pets: %w", err)
	}

	return pets, count, nil
}

// CreatePet inserts a pet after checking that its owner exists.
func (s *SQLStore) CreatePet(ctx context.Context, pet model.NewPet) (created model.Pet, err error) {
	pet = pet.Normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Pet{}, fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var owners int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios WHERE usuario = ?", pet.Owner).Scan(&owners); err != nil {
		return model.Pet{}, fmt.Errorf("looking up owner: %w", err)
	}

	if owners == 0 {
		err = fmt.Errorf("%w: %s", ErrOwnerNotFound, pet.Owner)
		return model.Pet{}, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO mascotas (nombre, especie, raza, sexo, fecha_nacimiento, usuario_cliente) VALUES (?, ?, ?, ?, ?, ?)",
		pet.Name, pet.Species, pet.Breed, pet.Sex, pet.BirthDate, pet.Owner,
	)
	if err != nil {
		return model.Pet{}, fmt.Errorf("inserting pet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Pet{}, fmt.Errorf("reading pet id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return model.Pet{}, fmt.Errorf("committing transaction: %w", err)
	}

	return model.Pet{
		ID:        id,
		Name:      pet.Name,
		Species:   pet.Species,
		Breed:     pet.Breed,
		Sex:       pet.Sex,
		BirthDate: pet.BirthDate,
		Owner:     model.OwnerRef(pet.Owner),
	}, nil
}

// ListOwners returns one page of clinic clients and the total number of matches.
func (s *SQLStore) ListOwners(ctx context.Context, opts ListOptions) ([]model.Owner, int, error) {
	column, ok := ownerFields[opts.Column]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownField, opts.Column)
	}

	where := []string{"rol_id = ?"}
	args := []any{model.ClientRole}

	if opts.Search != "" {
		where = append(where, "LOWER("+column+") LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(opts.Search))
	}

	clause := whereClause(where)

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios"+clause, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("counting owners: %w", err)
	}

	query := "SELECT usuario, cedula, nombre, telefono, correo FROM usuarios" +
		clause + " ORDER BY " + column + direction(opts.Desc) + ", usuario ASC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	owners := make([]model.Owner, 0, opts.Limit)

	for rows.Next() {
		var o model.Owner
		if err := rows.Scan(&o.Username, &o.IDNumber, &o.Name, &o.Phone, &o.Email); err != nil {
			return nil, 0, fmt.Errorf("scanning owner: %w", err)
		}

		owners = append(owners, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating owners: %w", err)
	}

	return owners, count, nil
}

// CreateOwner inserts a clinic client.
func (s *SQLStore) CreateOwner(ctx context.Context, owner model.Owner) error {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios WHERE usuario = ?", owner.Username).Scan(&existing); err != nil {
		return fmt.Errorf("looking up owner: %w", err)
	}

	if existing > 0 {
		return fmt.Errorf("%w: %s", ErrOwnerExists, owner.Username)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO usuarios (usuario, cedula, nombre, telefono, correo, rol_id) VALUES (?, ?, ?, ?, ?, ?)",
		owner.Username, owner.IDNumber, owner.Name, owner.Phone, owner.Email, model.ClientRole,
	); err != nil {
		return fmt.Errorf("inserting owner: %w", err)
	}

	return nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(conds, " AND ")
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}

	return " ASC"
}

// containsPattern builds a LIKE pattern matching s anywhere, lower-cased,
// with '!' as the escape character for wildcards in s.
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
