package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/vetlink/internal/application"
	"github.com/inovacc/vetlink/internal/cli"
	"github.com/inovacc/vetlink/internal/config"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/spf13/cobra"
)

// tolerateBadConfig marks commands that must run even when the config file
// is invalid, falling back to the defaults.
const tolerateBadConfig = "tolerate-bad-config"

var (
	// appConfig is the effective configuration: file, then environment, then flags.
	appConfig  model.Config
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Veterinary clinic records in your terminal",
	Long: `VetLink is a terminal client for a veterinary clinic's records API.

Run it without arguments to open the full-screen application: a header with
the navigation menu, and the pet records page with search, sorting,
pagination and pet registration.

Settings live in config.ini inside the application directory and can be
overridden with VETLINK_API_URL, VETLINK_LOG_LEVEL and the global flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), func(ctx context.Context, client cli.PetService, log *slog.Logger) tea.Model {
			return cli.NewApp(ctx, client, cli.AppOptions{Logger: log, Query: appConfig.InitialQuery()})
		})
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to the config file (default <appdir>/config.ini)")
	pf.String("api-url", "", "base URL of the clinic API")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.Duration("timeout", 0, "timeout of each API request")
}

// setup resolves the configuration and the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}

		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		if cmd.Annotations[tolerateBadConfig] == "" {
			return err
		}

		cfg = model.DefaultConfig()
	}

	config.ApplyEnv(&cfg)

	if err := applyGlobalFlags(cmd, &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	appConfig, configPath, logger = cfg, path, l
	slog.SetDefault(l)

	return nil
}

func applyGlobalFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		cfg.APIBaseURL, _ = flags.GetString("api-url")
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}

	if flags.Changed("timeout") {
		timeout, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}

		cfg.Timeout = timeout
	}

	return nil
}

// runTUI runs a full-screen program. Logs go to the log file while the
// program owns the terminal.
func runTUI(ctx context.Context, build func(context.Context, cli.PetService, *slog.Logger) tea.Model) error {
	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	fileLogger, err := newLogger(logFile, appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}

	client, err := newClient(fileLogger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(build(ctx, client, fileLogger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}

	return nil
}

func openLogFile() (io.WriteCloser, error) {
	if _, err := application.EnsureApplicationDirectory(); err != nil {
		return nil, err
	}

	path, err := application.FilePath(application.LogFileName)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	return f, nil
}
