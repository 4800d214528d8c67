package main

import (
	"errors"

	"github.com/spf13/cobra"

	"zombie-scanner/internal/storage/migrations"
	pgstore "zombie-scanner/internal/storage/postgres"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL and ClickHouse schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if cfg.Storage.PostgresDSN == "" {
				return errors.New("storage.postgres_dsn is required")
			}
			pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN, cfg.Storage.PostgresConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.RunPostgresMigrations(ctx, pool, log)
			if err != nil {
				return err
			}
			log.WithField("applied", len(applied)).Infof("postgres migrations complete")

			if cfg.Storage.ClickhouseDSN == "" {
				log.Infof("clickhouse not configured, skipping analytics migrations")
				return nil
			}
			conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN, log)
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Infof("clickhouse migrations complete")
			return nil
		},
	}
}
