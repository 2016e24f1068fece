package cmd

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/vetlink/internal/cli"
	"github.com/spf13/cobra"
)

var petsCmd = &cobra.Command{
	Use:     "pets",
	Aliases: []string{"mascotas"},
	Short:   "Browse pet records",
	Long: `Open the pet records page directly.

Keys:
  /        edit the search text, enter submits
  c        cycle the search and sort column
  o        toggle ascending/descending order
  ←/→      previous/next page
  s        cycle the page size (10, 25, 50, 100)
  r        reload, or retry after a failure
  n        register a new pet
  q, esc   quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), func(ctx context.Context, client cli.PetService, log *slog.Logger) tea.Model {
			return cli.NewPetList(ctx, client, cli.PetListOptions{Logger: log, Query: appConfig.InitialQuery()})
		})
	},
}

func init() {
	rootCmd.AddCommand(petsCmd)
}
