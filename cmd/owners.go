package cmd

import (
	"fmt"
	"io"

	"github.com/inovacc/vetlink/internal/cli"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

var ownersCmd = &cobra.Command{
	Use:     "owners",
	Aliases: []string{"clients"},
	Short:   "Clinic clients",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var ownersListFlags queryFlags

var ownersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of clinic clients",
	Long: `Query the client listing once and print the page.

Columns: usuario, cedula, nombre, telefono, correo.

Example:
  vetlink owners list --column nombre --search garcia`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := ownersListFlags.ownerQuery(appConfig)
		if err != nil {
			return err
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}

		page, err := client.ListOwners(cmd.Context(), q)
		if err != nil {
			return err
		}

		return printOwnerPage(cmd.OutOrStdout(), q, page, ownersListFlags.json)
	},
}

func printOwnerPage(w io.Writer, q model.OwnerQuery, page model.OwnerPage, jsonOut bool) error {
	if jsonOut {
		if page.Owners == nil {
			page.Owners = []model.Owner{}
		}

		return outputJSON(w, page)
	}

	if !isTerminal(w) {
		_, err := io.WriteString(w, cli.RenderOwnerTable(page.Owners, false))
		return err
	}

	if len(page.Owners) == 0 {
		_, err := fmt.Fprintln(w, "No clients found.")
		return err
	}

	_, err := fmt.Fprintf(w, "%s%s\n", cli.RenderOwnerTable(page.Owners, true),
		pageSummary(q.Page, model.PageCount(page.Count, q.PageSize), page.Count, q.PageSize))

	return err
}

func init() {
	ownersListFlags.register(ownersListCmd.Flags(), "column to search and sort on: usuario, cedula, nombre, telefono, correo")
	ownersCmd.AddCommand(ownersListCmd)
	rootCmd.AddCommand(ownersCmd)
}
