package cmd

import (
	"fmt"

	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

var (
	newOwner        model.Owner
	ownersCreateOut bool
)

var ownersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a clinic client",
	Long: `Register a client who can then own pets. Username, id number and name
are required; phone and email are optional.

Example:
  vetlink owners create --username agomez --id-number 1045678901 \
    --name "Ana Gómez" --email agomez@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := newOwner.Normalize()
		if err := payload.Validate(); err != nil {
			return err
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}

		owner, err := client.CreateOwner(cmd.Context(), payload)
		if err != nil {
			return err
		}

		if ownersCreateOut {
			return outputJSON(cmd.OutOrStdout(), owner)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered client %s (%s)\n", owner.Username, owner.Name)

		return err
	},
}

func init() {
	f := ownersCreateCmd.Flags()
	f.StringVar(&newOwner.Username, "username", "", "login name, without spaces")
	f.StringVar(&newOwner.IDNumber, "id-number", "", "national id number (cédula)")
	f.StringVar(&newOwner.Name, "name", "", "full name")
	f.StringVar(&newOwner.Phone, "phone", "", "phone number")
	f.StringVar(&newOwner.Email, "email", "", "email address")
	f.BoolVar(&ownersCreateOut, "json", false, "output the created client as JSON")

	ownersCmd.AddCommand(ownersCreateCmd)
}
