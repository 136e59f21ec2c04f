package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aasha-server/internal/database"
	"aasha-server/internal/screening"
	"aasha-server/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the record store schema up to date and print its version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.Database, logger, verbose)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		version, err := database.SchemaVersion(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, cfg.Database.Driver)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard counts from the record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.Database, logger, verbose)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		service := screening.NewService(store.New(db), nil, screening.Options{Logger: logger})
		stats, err := service.DashboardStats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "registered today: %d\n", stats.TodayCount)
		fmt.Fprintf(out, "total patients:   %d\n", stats.TotalCount)
		fmt.Fprintf(out, "screenings:       %d\n", stats.ScreeningCount)
		return nil
	},
}
