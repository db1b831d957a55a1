package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/engine"
	"github.com/sevendos/invoice-transfer/internal/ingest"
)

var billableFlags struct {
	customerData string
	ratesFile    string
	rawHours     string
	outputDir    string
	resultFile   string
}

var billableCmd = &cobra.Command{
	Use:   "billable",
	Short: "Invoice last month's billable hours from a raw hours export",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := ingest.NewLoader(appConfig.ModelDimensions(), logger)
		configs, err := loader.CustomerConfigs(billableFlags.customerData)
		if err != nil {
			return err
		}
		rates, err := ingest.RateEntries(billableFlags.ratesFile, logger)
		if err != nil {
			return err
		}
		rows, err := ingest.RawHours(billableFlags.rawHours, logger)
		if err != nil {
			return err
		}

		window := engine.BillableWindow(time.Now())
		logger.Info("Invoicing billable hours",
			zap.String("period_start", window.PeriodStart.Format("2006-01-02")),
			zap.String("period_end", window.PeriodEnd.Format("2006-01-02")))

		result, err := newEngine().Run(engine.Input{
			RawRows:         rows,
			CustomerConfigs: configs,
			RateEntries:     rates,
			Window:          window,
		})
		if err != nil {
			return err
		}
		return writeRun(result, billableFlags.outputDir, billableFlags.resultFile)
	},
}

func init() {
	billableCmd.Flags().StringVarP(&billableFlags.customerData, "customer-data", "c", "", "path to the customer table (CSV or XLSX)")
	billableCmd.Flags().StringVarP(&billableFlags.ratesFile, "rates-file", "r", "", "path to the internal rates CSV")
	billableCmd.Flags().StringVar(&billableFlags.rawHours, "raw-hours", "", "path to the raw hours CSV")
	billableCmd.Flags().StringVarP(&billableFlags.outputDir, "output-path", "o", ".", "directory for the result and reports")
	billableCmd.Flags().StringVar(&billableFlags.resultFile, "result-file", "billable.csv", "name of the result file")
	_ = billableCmd.MarkFlagRequired("customer-data")
	_ = billableCmd.MarkFlagRequired("rates-file")
	_ = billableCmd.MarkFlagRequired("raw-hours")

	rootCmd.AddCommand(billableCmd)
}
