package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inovacc/vetlink/internal/application"
	"github.com/inovacc/vetlink/internal/server"
	"github.com/inovacc/vetlink/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const healthInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development clinic API",
	Long: `Serve the clinic API from a local database, for development and demos.

Endpoints:
  GET  /api/consult-mascotas/
  POST /api/create-pet/
  GET  /api/consult-client/
  GET  /healthz

The sqlite driver stores data in <appdir>/vetlink.db unless --dsn is given.
The mysql driver takes a go-sql-driver DSN such as
  user:pass@tcp(localhost:3306)/clinica

Examples:
  # Local sqlite database with demo data
  vetlink serve --seed

  # MySQL on another port
  vetlink serve --driver mysql --dsn 'vet:secret@tcp(db:3306)/clinica' --addr :9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		addr, driver, dsn := appConfig.ServerAddr, appConfig.ServerDriver, appConfig.ServerDSN
		if flags.Changed("addr") {
			addr, _ = flags.GetString("addr")
		}

		if flags.Changed("driver") {
			driver, _ = flags.GetString("driver")
		}

		if flags.Changed("dsn") {
			dsn, _ = flags.GetString("dsn")
		}

		seed, _ := flags.GetBool("seed")
		origins, _ := flags.GetStringSlice("allow-origin")

		if driver == store.DriverSQLite && dsn == "" {
			if _, err := application.EnsureApplicationDirectory(); err != nil {
				return err
			}

			path, err := application.FilePath(application.DatabaseFileName)
			if err != nil {
				return err
			}

			dsn = path
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, driver, dsn)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if seed {
			inserted, err := store.SeedDemo(ctx, st)
			if err != nil {
				return err
			}

			if inserted {
				logger.Info("seeded demo data")
			}
		}

		srv := server.New(st, server.Options{Logger: logger, AllowedOrigins: origins})

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening and serving HTTP on %s (%s)\nctrl+c, shutting down server...\n", addr, driver)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return srv.Run(gctx, addr)
		})

		g.Go(func() error {
			watchHealth(gctx, st)
			return nil
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	},
}

// watchHealth pings the database until ctx is done, logging failures.
func watchHealth(ctx context.Context, st store.Store) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := st.Ping(pingCtx); err != nil {
				logger.Warn("database ping failed", "error", err)
			}
			cancel()
		}
	}
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "listen address (default from config, :8000)")
	f.String("driver", "", "database driver: sqlite or mysql")
	f.String("dsn", "", "database DSN or sqlite file path")
	f.Bool("seed", false, "insert demo clients and pets into an empty database")
	f.StringSlice("allow-origin", nil, "browser origins allowed by CORS (default any localhost origin)")

	rootCmd.AddCommand(serveCmd)
}
