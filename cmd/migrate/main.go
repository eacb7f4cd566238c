package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

type options struct {
	dsn    string
	source string
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	opts := &options{}
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the rental database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dsn, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	root.PersistentFlags().StringVar(&opts.source, "source", "file://scripts/migrations", "Migration source URL")

	root.AddCommand(
		upCmd(opts),
		downCmd(opts),
		forceCmd(opts),
		versionCmd(opts),
		seedRolesCmd(opts),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Migration command failed")
	}
}

func openDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database URL is required (--database-url or DATABASE_URL)")
	}
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	return stdlib.OpenDB(*config), nil
}

// withMigrator opens the database, builds a migrator and runs fn.
func withMigrator(opts *options, fn func(m *migrate.Migrate) error) error {
	db, err := openDB(opts.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(opts.source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return fn(m)
}

func upCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migrate.Migrate) error {
				log.Info().Msg("Applying migrations...")
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("apply migrations: %w", err)
				}
				log.Info().Msg("Migrations applied successfully")
				return nil
			})
		},
	}
}

func downCmd(opts *options) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migrate.Migrate) error {
				log.Info().Int("steps", steps).Msg("Reverting migrations...")
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("revert migrations: %w", err)
				}
				log.Info().Msg("Migrations reverted successfully")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to revert (0 reverts all)")
	return cmd
}

func forceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrator(opts, func(m *migrate.Migrate) error {
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force version: %w", err)
				}
				log.Info().Int("version", version).Msg("Migration version forced successfully")
				return nil
			})
		},
	}
}

func versionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migrate.Migrate) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					log.Info().Msg("No migrations applied")
					return nil
				}
				if err != nil {
					return err
				}
				log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
				return nil
			})
		},
	}
}

func seedRolesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Create the Admin, Landlord and Tenant roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			roles := model.SeedRoles()
			if err := store.New(db, nil).SeedRoles(context.Background(), roles); err != nil {
				return fmt.Errorf("seed roles: %w", err)
			}
			log.Info().Int("count", len(roles)).Msg("Roles seeded")
			return nil
		},
	}
}
