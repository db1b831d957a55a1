package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/engine"
	"github.com/sevendos/invoice-transfer/internal/fixedfee"
	"github.com/sevendos/invoice-transfer/internal/ingest"
	"github.com/sevendos/invoice-transfer/pkg/utils"
)

var fixedFeeFlags struct {
	customerData string
	passthrough  string
	outputDir    string
	resultFile   string
	month        int
	year         int
}

var fixedFeeCmd = &cobra.Command{
	Use:   "fixed-fee",
	Short: "Invoice monthly fixed fees and passthrough amounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		year, month := fixedFeeFlags.year, fixedFeeFlags.month
		if month == 0 {
			// Default to the previous month, matching the billable run.
			prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
			year, month = prev.Year(), int(prev.Month())
		}
		if err := utils.ValidateMonth(month); err != nil {
			return err
		}
		if year == 0 {
			year = now.Year()
		}

		loader := ingest.NewLoader(appConfig.ModelDimensions(), logger)
		feeConfigs, err := loader.FixedFeeConfigs(fixedFeeFlags.customerData)
		if err != nil {
			return err
		}

		var passthrough []ingest.PassthroughEntry
		if fixedFeeFlags.passthrough != "" {
			passthrough, err = ingest.PassthroughAmounts(fixedFeeFlags.passthrough, year, time.Month(month), logger)
			if err != nil {
				return err
			}
		}

		batch := fixedfee.New(logger).Generate(feeConfigs, passthrough, year, time.Month(month))
		window := engine.FixedFeeWindow(year, time.Month(month), now)
		logger.Info("Invoicing fixed fees",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("fees", len(batch.Items)))

		result, err := newEngine().Run(engine.Input{
			Items:           batch.Items,
			CustomerConfigs: batch.Configs,
			Window:          window,
		})
		if err != nil {
			return err
		}
		result.Errors = append(result.Errors, batch.Errors...)
		return writeRun(result, fixedFeeFlags.outputDir, fixedFeeFlags.resultFile)
	},
}

func init() {
	fixedFeeCmd.Flags().StringVarP(&fixedFeeFlags.customerData, "customer-data", "c", "", "path to the customer table (CSV or XLSX)")
	fixedFeeCmd.Flags().StringVar(&fixedFeeFlags.passthrough, "input", "", "path to the passthrough grid CSV")
	fixedFeeCmd.Flags().StringVarP(&fixedFeeFlags.outputDir, "output-path", "o", ".", "directory for the result and reports")
	fixedFeeCmd.Flags().StringVar(&fixedFeeFlags.resultFile, "result-file", "fixed-fee.csv", "name of the result file")
	fixedFeeCmd.Flags().IntVar(&fixedFeeFlags.month, "month", 0, "month of invoicing (1-12, default: previous month)")
	fixedFeeCmd.Flags().IntVar(&fixedFeeFlags.year, "year", 0, "year of invoicing (default: current year)")
	_ = fixedFeeCmd.MarkFlagRequired("customer-data")

	rootCmd.AddCommand(fixedFeeCmd)
}
