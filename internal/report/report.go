// Package report writes the diagnostic side-channels of an invoicing run to
// disk: the missing-rate report, the error report, the projects-not-included
// report and the plain-text run summary, plus the transfer document itself.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
	"github.com/sevendos/invoice-transfer/internal/workday"
)

// Summary carries the run totals printed at the end of the summary report.
type Summary struct {
	Invoices     int
	InvoiceRows  int
	GrandTotal   decimal.Decimal
	FirstWorkDay time.Time
	LastWorkDay  time.Time
}

// Writer writes run reports.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a Writer.
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteDocument writes the transfer document atomically: the content lands
// in a temp file in the target directory and is renamed into place, so a
// failed run never leaves a half-written result file.
func (w *Writer) WriteDocument(path string, doc *workday.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".result-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// CreateTemp opens the file 0600; the result document should carry the
	// same mode as the other reports.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move result into place: %w", err)
	}

	w.logger.Info("Wrote transfer document",
		zap.String("path", path),
		zap.Int("invoices", doc.Invoices),
		zap.Int("rows", doc.RowLines))
	return nil
}

// WriteMissingRates writes one line per unresolved rate, in the wording the
// finance team greps for.
func (w *Writer) WriteMissingRates(path string, records []models.MissingRateRecord) error {
	var b strings.Builder
	for _, r := range records {
		kind := "Internal rate not found"
		if r.RateSource == models.RateEmbedded {
			kind = "No hourly rate found"
		}
		fmt.Fprintf(&b, "%s - Client: %s, Service: %s, Task: %s, Project ID: %s\n",
			kind, r.ClientName, r.ServiceName, r.TaskName, r.ProjectID)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Info("Wrote missing-rate report",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}

// WriteErrors writes the row-level problem report as CSV, traceable back to
// the source rows.
func (w *Writer) WriteErrors(path string, records []models.ErrorRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"sourceRow", "projectId", "task", "reason", "detail"})
	for _, r := range records {
		sourceRow := ""
		if r.SourceRow > 0 {
			sourceRow = strconv.Itoa(r.SourceRow)
		}
		rows = append(rows, []string{sourceRow, r.ProjectID, r.TaskName, r.Reason, r.Detail})
	}
	if err := writeCSV(path, rows); err != nil {
		return err
	}
	w.logger.Info("Wrote error report",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}

// WriteNotIncluded writes the projects whose billable internal hours ended
// up in no invoice, sorted by customer and project.
func (w *Writer) WriteNotIncluded(path string, projects []models.NotIncludedProject) error {
	sorted := make([]models.NotIncludedProject, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CustomerName != sorted[j].CustomerName {
			return sorted[i].CustomerName < sorted[j].CustomerName
		}
		return sorted[i].ProjectName < sorted[j].ProjectName
	})

	rows := make([][]string, 0, len(sorted)+1)
	rows = append(rows, []string{"customerName", "projectName", "projectId", "totalHours"})
	for _, p := range sorted {
		rows = append(rows, []string{p.CustomerName, p.ProjectName, p.ProjectID, p.TotalHours.StringFixed(2)})
	}
	if err := writeCSV(path, rows); err != nil {
		return err
	}
	w.logger.Info("Wrote projects-not-included report",
		zap.String("path", path),
		zap.Int("projects", len(sorted)))
	return nil
}

// WriteSummary writes the human-readable run summary: per-customer subtotals
// per sales line, then the overall totals.
func (w *Writer) WriteSummary(path string, invoices []models.Invoice, summary Summary) error {
	var b strings.Builder
	rule := strings.Repeat("-", 80)
	doubleRule := strings.Repeat("=", 80)

	for _, inv := range invoices {
		if len(inv.Rows) == 0 {
			continue
		}
		client := inv.Rows[0].GroupingInfo
		fmt.Fprintf(&b, "Customer: %s\n%s\n", client, rule)

		customerTotal := decimal.Zero
		for _, row := range inv.Rows {
			amount := row.LineTotal()
			customerTotal = customerTotal.Add(amount)
			fmt.Fprintf(&b, "Item: %s\n", row.SalesItem)
			fmt.Fprintf(&b, "Description: %s\n", row.Description)
			fmt.Fprintf(&b, "Quantity: %s\n", row.Quantity.StringFixed(2))
			fmt.Fprintf(&b, "Rate: %s\n", row.UnitPrice.StringFixed(2))
			fmt.Fprintf(&b, "Amount: %s\n\n", amount.StringFixedBank(2))
		}
		fmt.Fprintf(&b, "Total for %s: %s (%d lines)\n%s\n\n",
			client, customerTotal.StringFixedBank(2), len(inv.Rows), doubleRule)
	}

	fmt.Fprintf(&b, "\nOVERALL SUMMARY\n%s\n", doubleRule)
	fmt.Fprintf(&b, "Total number of invoices: %d\n", summary.Invoices)
	fmt.Fprintf(&b, "Total number of invoice lines: %d\n", summary.InvoiceRows)
	fmt.Fprintf(&b, "Total amount across all invoices: %s\n", summary.GrandTotal.StringFixedBank(2))
	if !summary.FirstWorkDay.IsZero() && !summary.LastWorkDay.IsZero() {
		fmt.Fprintf(&b, "First day of hours: %s\n", summary.FirstWorkDay.Format("2006-01-02"))
		fmt.Fprintf(&b, "Last day of hours: %s\n", summary.LastWorkDay.Format("2006-01-02"))
	}
	b.WriteString(doubleRule + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Info("Wrote run summary", zap.String("path", path))
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
