package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}

		_ = db.Close()
	})

	return NewWithDB(db, DriverMySQL), mock
}

func TestSQLStore_ListPets_BirthYearQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mascotas WHERE fecha_nacimiento >= \? AND fecha_nacimiento < \?`).
		WithArgs("2020-01-01", "2021-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY fecha_nacimiento DESC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("2020-01-01", "2021-01-01", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "especie", "raza", "sexo", "fecha_nacimiento", "usuario_cliente"}).
			AddRow(7, "Luna", "Gato", "Persa", "Hembra", "2020-01-30", "jperez"))

	pets, count, err := s.ListPets(context.Background(), ListOptions{
		Column: "fecha_nacimiento", BirthYear: birthYear(2020), Desc: true, Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []model.Pet{{
		ID: 7, Name: "Luna", Species: "Gato", Breed: "Persa", Sex: "Hembra", BirthDate: "2020-01-30", Owner: "jperez",
	}}, pets)
}

func TestSQLStore_ListPets_SearchQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mascotas WHERE LOWER\(raza\) LIKE \? ESCAPE '!'`).
		WithArgs("%golden!_%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY raza ASC, id ASC`).
		WithArgs("%golden!_%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "especie", "raza", "sexo", "fecha_nacimiento", "usuario_cliente"}))

	pets, count, err := s.ListPets(context.Background(), ListOptions{Column: "raza", Search: "Golden_", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, pets)
}

func TestSQLStore_ListPets_CountError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("connection reset"))

	_, _, err := s.ListPets(context.Background(), ListOptions{Column: "nombre", Limit: 10})
	assert.ErrorContains(t, err, "counting pets")
}

func TestSQLStore_CreatePet_RollsBackOnMissingOwner(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM usuarios WHERE usuario = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := s.CreatePet(context.Background(), model.NewPet{
		Name: "Rex", Species: "Perro", Breed: "Pug", Sex: "Macho", BirthDate: "2020-01-01", Owner: "ghost",
	})
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestSQLStore_CreatePet_Commits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM usuarios`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO mascotas`).
		WithArgs("Rex", "Perro", "Pug", "Macho", "2020-01-01", "ana").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	pet, err := s.CreatePet(context.Background(), model.NewPet{
		Name: "Rex", Species: "Perro", Breed: "Pug", Sex: "Macho", BirthDate: "2020-01-01", Owner: "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), pet.ID)
}

func TestSQLStore_ListOwners_FiltersClients(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM usuarios WHERE rol_id = \?`).
		WithArgs(model.ClientRole).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY usuario DESC, usuario ASC`).
		WithArgs(model.ClientRole, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"usuario", "cedula", "nombre", "telefono", "correo"}).
			AddRow("ana", "1", "Ana", "300", "ana@example.com"))

	owners, count, err := s.ListOwners(context.Background(), ListOptions{Column: "usuario", Desc: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []model.Owner{{Username: "ana", IDNumber: "1", Name: "Ana", Phone: "300", Email: "ana@example.com"}}, owners)
}
