package main

import (
	"fmt"

	"github.com/spf13/cobra"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/internal/log"
)

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logger := log.Configure(cfg)

			if err := cfg.EnsureDataDir(); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			if err := funnel.Migrate(cmd.Context(), cfg.DBURL()); err != nil {
				return err
			}
			logger.Info("schema up to date")
			return nil
		},
	}
}
