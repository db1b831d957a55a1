package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
	"github.com/sevendos/invoice-transfer/internal/workday"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_WriteDocument(t *testing.T) {
	w := NewWriter(zap.NewNop())
	formatter := workday.NewFormatter(workday.Options{
		CompanyCode:  "263",
		ReplyEmail:   "billing@example.fi",
		SourceSystem: "TrackerX",
	}, zap.NewNop())

	t.Run("writes the document and leaves no temp files", func(t *testing.T) {
		doc, err := formatter.Format(nil)
		require.NoError(t, err)

		dir := t.TempDir()
		path := filepath.Join(dir, "result.csv")
		require.NoError(t, w.WriteDocument(path, doc))

		assert.Equal(t, doc.String(), readFile(t, path))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "result.csv", entries[0].Name())
	})

	t.Run("result file is world-readable", func(t *testing.T) {
		doc, err := formatter.Format(nil)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "result.csv")
		require.NoError(t, w.WriteDocument(path, doc))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})
}

func TestWriter_WriteMissingRates(t *testing.T) {
	w := NewWriter(zap.NewNop())

	t.Run("wording depends on the rate source", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing_from_rates.txt")
		require.NoError(t, w.WriteMissingRates(path, []models.MissingRateRecord{
			{ProjectID: "p-1", TaskName: "Design", ClientName: "Acme", ServiceName: "Acme Dev", RateSource: models.RateInternal},
			{ProjectID: "p-2", TaskName: "Review", ClientName: "Globex", ServiceName: "Globex Ops", RateSource: models.RateEmbedded},
		}))

		content := readFile(t, path)
		assert.Contains(t, content, "Internal rate not found - Client: Acme, Service: Acme Dev, Task: Design, Project ID: p-1")
		assert.Contains(t, content, "No hourly rate found - Client: Globex, Service: Globex Ops, Task: Review, Project ID: p-2")
	})
}

func TestWriter_WriteErrors(t *testing.T) {
	w := NewWriter(zap.NewNop())

	t.Run("rows trace back to the source", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.csv")
		require.NoError(t, w.WriteErrors(path, []models.ErrorRecord{
			{SourceRow: 7, ProjectID: "p-1", TaskName: "Dev", Reason: "non-billable"},
			{Reason: "unparsable fixed fee", Detail: "n/a"},
		}))

		content := readFile(t, path)
		assert.Contains(t, content, "sourceRow,projectId,task,reason,detail")
		assert.Contains(t, content, "7,p-1,Dev,non-billable,")
		assert.Contains(t, content, ",,,unparsable fixed fee,n/a")
	})
}

func TestWriter_WriteNotIncluded(t *testing.T) {
	w := NewWriter(zap.NewNop())

	t.Run("sorted by customer then project", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not_included.csv")
		require.NoError(t, w.WriteNotIncluded(path, []models.NotIncludedProject{
			{CustomerName: "Globex", ProjectName: "Ops", ProjectID: "p-2", TotalHours: decimal.NewFromInt(3)},
			{CustomerName: "Acme", ProjectName: "Dev", ProjectID: "p-1", TotalHours: decimal.RequireFromString("6.5")},
		}))

		content := readFile(t, path)
		acme := "Acme,Dev,p-1,6.50"
		globex := "Globex,Ops,p-2,3.00"
		assert.Contains(t, content, acme)
		assert.Contains(t, content, globex)
		assert.Less(t, strings.Index(content, acme), strings.Index(content, globex))
	})
}

func TestWriter_WriteSummary(t *testing.T) {
	w := NewWriter(zap.NewNop())

	t.Run("per-customer subtotals and overall totals", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.txt")
		invoices := []models.Invoice{{
			ConnectID: "c-1",
			Rows: []models.InvoiceRow{{
				GroupingInfo: "Acme",
				SalesItem:    "SI-H",
				Description:  "Acme - Development",
				Quantity:     decimal.NewFromInt(12),
				UnitPrice:    decimal.NewFromInt(120),
			}},
		}}
		require.NoError(t, w.WriteSummary(path, invoices, Summary{
			Invoices:     1,
			InvoiceRows:  1,
			GrandTotal:   decimal.NewFromInt(1440),
			FirstWorkDay: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			LastWorkDay:  time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC),
		}))

		content := readFile(t, path)
		assert.Contains(t, content, "Customer: Acme")
		assert.Contains(t, content, "Total for Acme: 1440.00 (1 lines)")
		assert.Contains(t, content, "Total number of invoices: 1")
		assert.Contains(t, content, "Total amount across all invoices: 1440.00")
		assert.Contains(t, content, "First day of hours: 2025-02-03")
		assert.Contains(t, content, "Last day of hours: 2025-02-27")
	})
}
