package cmd

import (
	"fmt"
	"time"

	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

var (
	newPet        model.NewPet
	petsCreateOut bool
)

var petsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a pet for an existing client",
	Long: `Register a pet. Every field is required and the owner must be an
existing client username.

Example:
  vetlink pets create --name Firulais --species Perro --breed Labrador \
    --sex Macho --birth-date 2019-03-14 --owner mgarcia`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := newPet.Normalize()
		if err := payload.Validate(time.Now()); err != nil {
			return err
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}

		pet, err := client.Create(cmd.Context(), payload)
		if err != nil {
			return err
		}

		if petsCreateOut {
			return outputJSON(cmd.OutOrStdout(), pet)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered pet #%d %s (owner %s)\n", pet.ID, pet.Name, pet.Owner)

		return err
	},
}

func init() {
	f := petsCreateCmd.Flags()
	f.StringVar(&newPet.Name, "name", "", "pet name")
	f.StringVar(&newPet.Species, "species", "", "species, e.g. Perro")
	f.StringVar(&newPet.Breed, "breed", "", "breed")
	f.StringVar(&newPet.Sex, "sex", "", "sex, e.g. Macho or Hembra")
	f.StringVar(&newPet.BirthDate, "birth-date", "", "birth date as YYYY-MM-DD")
	f.StringVar(&newPet.Owner, "owner", "", "owner's client username")
	f.BoolVar(&petsCreateOut, "json", false, "output the created pet as JSON")

	petsCmd.AddCommand(petsCreateCmd)
}
