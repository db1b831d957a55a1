package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/agileday"
	"github.com/sevendos/invoice-transfer/internal/ingest"
	"github.com/sevendos/invoice-transfer/pkg/utils"
)

var fetchFlags struct {
	startDate string
	endDate   string
	status    string
	outputDir string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch-hours",
	Short: "Fetch time entries from AgileDay and save them as a raw hours CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := utils.ParseDate(fetchFlags.startDate)
		if err != nil {
			return err
		}
		end, err := utils.ParseDate(fetchFlags.endDate)
		if err != nil {
			return err
		}

		client, err := agileday.NewClientFromEnv(appConfig.AgileDay.BaseURL, appConfig.AgileDay.Timeout, logger)
		if err != nil {
			return err
		}

		status := fetchFlags.status
		if status == "" {
			status = appConfig.AgileDay.Status
		}
		rows, err := client.TimeEntries(cmd.Context(), start, end, status)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(fetchFlags.outputDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(fetchFlags.outputDir, "raw_hours.csv")
		if err := ingest.WriteRawHours(path, rows); err != nil {
			return err
		}
		logger.Info("Saved raw hours",
			zap.String("path", path),
			zap.Int("entries", len(rows)))

		projects := client.ProjectData(cmd.Context(), rows)
		external := 0
		for _, project := range projects {
			if project.Type == "External" {
				external++
			}
		}
		logger.Info("Project metadata fetched",
			zap.Int("projects", len(projects)),
			zap.Int("external", external))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFlags.startDate, "start-date", "", "start date for time entries (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchFlags.endDate, "end-date", "", "end date for time entries (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchFlags.status, "status", "", "status of entries to fetch (default from config)")
	fetchCmd.Flags().StringVarP(&fetchFlags.outputDir, "output-path", "o", ".", "directory for the raw hours file")
	_ = fetchCmd.MarkFlagRequired("start-date")
	_ = fetchCmd.MarkFlagRequired("end-date")

	rootCmd.AddCommand(fetchCmd)
}
