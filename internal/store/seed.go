package store

import (
	"context"
	"fmt"

	"github.com/inovacc/vetlink/internal/model"
)

var demoOwners = []model.Owner{
	{Username: "mgarcia", IDNumber: "1012345678", Name: "María García", Phone: "3001234567", Email: "mgarcia@example.com"},
	{Username: "jperez", IDNumber: "1023456789", Name: "Juan Pérez", Phone: "3012345678", Email: "jperez@example.com"},
	{Username: "lrodriguez", IDNumber: "1034567890", Name: "Laura Rodríguez", Phone: "3023456789", Email: "lrodriguez@example.com"},
	{Username: "cmartinez", IDNumber: "1045678901", Name: "Carlos Martínez", Phone: "3034567890", Email: "cmartinez@example.com"},
}

var demoPets = []model.NewPet{
	{Name: "Firulais", Species: "Perro", Breed: "Labrador", Sex: "Macho", BirthDate: "2019-03-14", Owner: "mgarcia"},
	{Name: "Michi", Species: "Gato", Breed: "Siamés", Sex: "Hembra", BirthDate: "2021-07-02", Owner: "mgarcia"},
	{Name: "Rocky", Species: "Perro", Breed: "Bulldog", Sex: "Macho", BirthDate: "2017-11-23", Owner: "jperez"},
	{Name: "Luna", Species: "Gato", Breed: "Persa", Sex: "Hembra", BirthDate: "2020-01-30", Owner: "jperez"},
	{Name: "Toby", Species: "Perro", Breed: "Beagle", Sex: "Macho", BirthDate: "2022-05-09", Owner: "lrodriguez"},
	{Name: "Nala", Species: "Perro", Breed: "Golden Retriever", Sex: "Hembra", BirthDate: "2018-08-17", Owner: "lrodriguez"},
	{Name: "Kiwi", Species: "Ave", Breed: "Periquito", Sex: "Hembra", BirthDate: "2023-02-11", Owner: "cmartinez"},
	{Name: "Simba", Species: "Gato", Breed: "Maine Coon", Sex: "Macho", BirthDate: "2016-06-05", Owner: "cmartinez"},
	{Name: "Coco", Species: "Conejo", Breed: "Cabeza de León", Sex: "Hembra", BirthDate: "2021-12-24", Owner: "mgarcia"},
	{Name: "Max", Species: "Perro", Breed: "Pastor Alemán", Sex: "Macho", BirthDate: "2015-04-01", Owner: "jperez"},
	{Name: "Pelusa", Species: "Gato", Breed: "Angora", Sex: "Hembra", BirthDate: "2019-09-19", Owner: "lrodriguez"},
	{Name: "Bruno", Species: "Perro", Breed: "Boxer", Sex: "Macho", BirthDate: "2020-10-10", Owner: "cmartinez"},
}

// SeedDemo fills an empty database with demo owners and pets. It reports
// whether anything was inserted and leaves populated databases untouched.
func SeedDemo(ctx context.Context, s Store) (bool, error) {
	_, owners, err := s.ListOwners(ctx, ListOptions{Column: "usuario", Limit: 1})
	if err != nil {
		return false, fmt.Errorf("checking owners: %w", err)
	}

	_, pets, err := s.ListPets(ctx, ListOptions{Column: "nombre", Limit: 1})
	if err != nil {
		return false, fmt.Errorf("checking pets: %w", err)
	}

	if owners > 0 || pets > 0 {
		return false, nil
	}

	for _, o := range demoOwners {
		if err := s.CreateOwner(ctx, o); err != nil {
			return false, fmt.Errorf("seeding owner %s: %w", o.Username, err)
		}
	}

	for _, p := range demoPets {
		if _, err := s.CreatePet(ctx, p); err != nil {
			return false, fmt.Errorf("seeding pet %s: %w", p.Name, err)
		}
	}

	return true, nil
}
