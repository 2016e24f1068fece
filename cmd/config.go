package cmd

import (
	"fmt"
	"strings"

	"github.com/inovacc/vetlink/internal/application"
	"github.com/inovacc/vetlink/internal/config"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vetlink configuration",
	Long: `Commands for managing the vetlink configuration file.

Available Commands:
  show     Print the effective settings
  set      Change one setting in the file
  reset    Restore the default settings`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print every setting after applying the config file, the VETLINK_*
environment variables and the global flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		_, _ = fmt.Fprintf(w, "# %s\n", configPath)

		for _, key := range config.Keys() {
			value, err := config.Get(appConfig, key)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(w, "%s = %s\n", key, value)
		}

		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: `Change one setting in the config file. Environment variables and
flags are not written to the file.

Keys:
  ` + strings.Join(config.Keys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if err := config.Set(&cfg, args[0], args[1]); err != nil {
			return err
		}

		if err := saveConfig(cfg); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])

		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Restore the default settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{tolerateBadConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := saveConfig(model.DefaultConfig()); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset: %s\n", configPath)

		return nil
	},
}

func saveConfig(cfg model.Config) error {
	// Only the default location lives in the application directory.
	if def, err := config.Path(); err == nil && def == configPath {
		if _, err := application.EnsureApplicationDirectory(); err != nil {
			return err
		}
	}

	return config.Save(configPath, cfg)
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)
}
