package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevendos/invoice-transfer/internal/engine"
	"github.com/sevendos/invoice-transfer/internal/report"
	"github.com/sevendos/invoice-transfer/internal/workday"
)

func newEngine() *engine.Engine {
	return engine.New(engine.Config{
		InternalCompany: appConfig.Company.InternalName,
		Output: workday.Options{
			CompanyCode:  appConfig.Output.CompanyCode,
			ReplyEmail:   appConfig.Output.ReplyEmail,
			SourceSystem: appConfig.Output.SourceSystem,
		},
	}, logger)
}

// writeRun writes the transfer document and every diagnostic report of a
// completed run into outputDir.
func writeRun(result *engine.Result, outputDir, resultFile string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := report.NewWriter(logger)
	if err := w.WriteDocument(filepath.Join(outputDir, resultFile), result.Document); err != nil {
		return err
	}
	if err := w.WriteMissingRates(filepath.Join(outputDir, "missing_from_rates.txt"), result.MissingRates); err != nil {
		return err
	}
	if err := w.WriteErrors(filepath.Join(outputDir, "errors.csv"), result.Errors); err != nil {
		return err
	}
	if err := w.WriteNotIncluded(filepath.Join(outputDir, "projects_not_included.csv"), result.NotIncluded); err != nil {
		return err
	}

	stem := strings.TrimSuffix(resultFile, filepath.Ext(resultFile))
	return w.WriteSummary(filepath.Join(outputDir, stem+"_summary.txt"), result.Invoices, report.Summary{
		Invoices:     result.Stats.Invoices,
		InvoiceRows:  result.Stats.InvoiceRows,
		GrandTotal:   result.Stats.GrandTotal,
		FirstWorkDay: result.Stats.FirstWorkDay,
		LastWorkDay:  result.Stats.LastWorkDay,
	})
}
