package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/database"
	"github.com/kicadtime/kicadtime/internal/reporter"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [day|week|month]",
	Short: "Summarize tracked KiCad time from the local journal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		periodType := "day"
		if len(args) > 0 {
			periodType = args[0]
		}

		cfg := config.New()
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repo := database.NewRepository(db)
		rep := reporter.New(cfg, repo)

		report, err := rep.GenerateReport(periodType)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if reportJSON {
			jsonStr, err := rep.FormatReportJSON(report)
			if err != nil {
				return fmt.Errorf("failed to format JSON: %w", err)
			}
			fmt.Println(jsonStr)
		} else {
			fmt.Println(rep.FormatReportText(report))
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local heartbeat journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("This will delete all journaled heartbeats. Are you sure? (yes/no): ")
		var response string
		fmt.Scanln(&response)

		if response != "yes" && response != "y" {
			fmt.Println("Operation cancelled")
			return nil
		}

		cfg := config.New()
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repo := database.NewRepository(db)
		if err := repo.Clear(); err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}

		fmt.Println("Journal cleared successfully")
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output the report as JSON")
}
