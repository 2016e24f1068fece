package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/inovacc/vetlink/internal/cli"
	"github.com/inovacc/vetlink/internal/listing"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

var petsListFlags queryFlags

var petsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of pet records",
	Long: `Query the pet listing once and print the page.

Columns: nombre, especie, raza, sexo, edad, dueno. Searching the edad column
takes an age in years.

Output is a table on a terminal, tab-separated lines when piped, and JSON
with --json.

Examples:
  # Dogs, newest first by name
  vetlink pets list --column especie --search perro --order desc

  # Pets aged 3, second page of 25
  vetlink pets list -c edad -s 3 --page 2 --page-size 25

  # Everything owned by users matching "garcia" as JSON
  vetlink pets list -c dueno -s garcia --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := petsListFlags.petQuery(appConfig)
		if err != nil {
			return err
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}

		ctl := listing.New(client, listing.Options{Logger: logger, Query: q})
		ctl.Resolve(ctl.Run(cmd.Context(), ctl.Refresh()))

		if err := ctl.Err(); err != nil {
			return err
		}

		return printPetPage(cmd.OutOrStdout(), ctl, petsListFlags.json, time.Now())
	},
}

// petPageOutput is the JSON shape of `pets list --json`.
type petPageOutput struct {
	Query    model.Query `json:"query"`
	Count    int         `json:"count"`
	Pages    int         `json:"pages"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  []model.Pet `json:"results"`
}

func printPetPage(w io.Writer, ctl *listing.Controller, jsonOut bool, now time.Time) error {
	q, result := ctl.Query(), ctl.Result()

	if jsonOut {
		pets := result.Pets
		if pets == nil {
			pets = []model.Pet{}
		}

		return outputJSON(w, petPageOutput{
			Query:    q,
			Count:    result.Count,
			Pages:    ctl.PageCount(),
			Page:     q.Page + 1,
			PageSize: q.PageSize,
			Results:  pets,
		})
	}

	if !isTerminal(w) {
		_, err := io.WriteString(w, cli.RenderPetTable(result.Pets, now, false))
		return err
	}

	if len(result.Pets) == 0 {
		_, err := fmt.Fprintln(w, "No pets found.")
		return err
	}

	_, err := fmt.Fprintf(w, "%s%s\n", cli.RenderPetTable(result.Pets, now, true),
		pageSummary(q.Page, ctl.PageCount(), result.Count, q.PageSize))

	return err
}

func init() {
	petsListFlags.register(petsListCmd.Flags(), "column to search and sort on: nombre, especie, raza, sexo, edad, dueno")
	petsCmd.AddCommand(petsListCmd)
}
