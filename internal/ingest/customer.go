// Package ingest reads the external input files of a run: the customer
// configuration table (CSV or XLSX workbook), the internal rate table, the
// raw hour export and the fixed-fee passthrough grid. Readers parse and
// shape only; validation of the loaded data belongs to the core packages.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// Customer table column headers, as finance maintains them.
const (
	colProjectID       = "AgileDay_projectId"
	colClient          = "Client"
	colServiceName     = "Service name"
	colActive          = "Active"
	colIncludedHours   = "included_hours"
	colHourRates       = "hour_rates"
	colInvoiceExtID    = "Invoice Info A2 Ext Id"
	colAccountExtID    = "Account A2 Ext ID"
	colOurReference    = "Our Reference"
	colCustomerRef     = "CUSTOMER_REFERENCE"
	colContractNumber  = "Contract number"
	colSalesItemHours  = "Sales Item hours"
	colBillableDesc    = "Billable Description"
	colTaxApplicable   = "Tax_Applicability"
	colTaxCode         = "Tax_Code"
	colMonthlyFixedFee = "Monthly fixed fee"
	colSalesItemFixed  = "Sales Item fixed"
	colFixedFeeDesc    = "Fixed fee description"
	colGroupInvoice    = "Group invoice"
	colPeriod          = "period"
	colConfigID        = "ID"
)

// FixedFeeConfig is one fixed-fee row of the customer table: the monthly fee
// invoiced as a single fixed line, with its own sales item and description.
type FixedFeeConfig struct {
	Config     models.CustomerConfig
	MonthlyFee string
	// ConfigID ties passthrough grid columns to this row.
	ConfigID string
	// Period is "pre" (the coming month) or "post" (the invoiced month).
	Period string
}

// Loader reads customer configuration tables. Dimension defaults fill the
// output dimensions of every loaded config; the table itself does not carry
// them.
type Loader struct {
	defaults models.Dimensions
	logger   *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(defaults models.Dimensions, logger *zap.Logger) *Loader {
	return &Loader{defaults: defaults, logger: logger}
}

// CustomerConfigs reads the customer table at path. A .xlsx extension selects
// the workbook reader, anything else is read as comma-separated CSV. Rows
// without a project id are skipped; inactive rows are kept so the inclusion
// rules can report them.
func (l *Loader) CustomerConfigs(path string) ([]models.CustomerConfig, error) {
	rows, err := l.readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}

	header, err := indexHeader(rows[0], colProjectID, colClient, colServiceName, colActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	configs := make([]models.CustomerConfig, 0, len(rows)-1)
	for _, row := range rows[1:] {
		projectID := header.get(row, colProjectID)
		if projectID == "" {
			continue
		}
		configs = append(configs, models.CustomerConfig{
			ProjectID:           projectID,
			ClientName:          header.get(row, colClient),
			ServiceName:         header.get(row, colServiceName),
			Active:              parseYes(header.get(row, colActive)),
			IncludedHours:       parseIncludedHours(header.get(row, colIncludedHours)),
			RateSource:          parseRateSource(header.get(row, colHourRates)),
			InvoiceExtID:        header.get(row, colInvoiceExtID),
			AccountExtID:        header.get(row, colAccountExtID),
			OurReference:        header.get(row, colOurReference),
			CustomerReference:   header.get(row, colCustomerRef),
			ContractNumber:      header.get(row, colContractNumber),
			SalesItemCode:       header.get(row, colSalesItemHours),
			DescriptionTemplate: header.get(row, colBillableDesc),
			TaxApplicability:    header.get(row, colTaxApplicable),
			TaxCode:             header.get(row, colTaxCode),
			Dimensions:          l.defaults,
		})
	}

	l.logger.Info("Loaded customer configurations",
		zap.String("path", path),
		zap.Int("configs", len(configs)))
	return configs, nil
}

// FixedFeeConfigs reads the customer table at path and returns the rows that
// carry a monthly fixed fee. Only active rows are returned; an inactive
// fixed-fee row is simply not invoiced.
func (l *Loader) FixedFeeConfigs(path string) ([]FixedFeeConfig, error) {
	rows, err := l.readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}

	header, err := indexHeader(rows[0], colProjectID, colClient, colServiceName, colActive, colMonthlyFixedFee)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var fees []FixedFeeConfig
	for _, row := range rows[1:] {
		if header.get(row, colMonthlyFixedFee) == "" || !parseYes(header.get(row, colActive)) {
			continue
		}
		projectID := header.get(row, colProjectID)
		if projectID == "" {
			continue
		}
		period := strings.ToLower(strings.TrimSpace(header.get(row, colPeriod)))
		if period == "" {
			period = "post"
		}
		fees = append(fees, FixedFeeConfig{
			Config: models.CustomerConfig{
				ProjectID:           projectID,
				ClientName:          header.get(row, colClient),
				ServiceName:         header.get(row, colServiceName),
				Active:              true,
				IncludedHours:       models.HoursAll,
				RateSource:          models.RateEmbedded,
				InvoiceExtID:        firstNonEmpty(header.get(row, colGroupInvoice), header.get(row, colInvoiceExtID)),
				AccountExtID:        header.get(row, colAccountExtID),
				OurReference:        header.get(row, colOurReference),
				CustomerReference:   header.get(row, colCustomerRef),
				ContractNumber:      header.get(row, colContractNumber),
				SalesItemCode:       header.get(row, colSalesItemFixed),
				DescriptionTemplate: header.get(row, colFixedFeeDesc),
				TaxApplicability:    header.get(row, colTaxApplicable),
				TaxCode:             header.get(row, colTaxCode),
				Dimensions:          l.defaults,
			},
			MonthlyFee: header.get(row, colMonthlyFixedFee),
			ConfigID:   header.get(row, colConfigID),
			Period:     period,
		})
	}

	l.logger.Info("Loaded fixed-fee configurations",
		zap.String("path", path),
		zap.Int("configs", len(fees)))
	return fees, nil
}

func (l *Loader) readTable(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readWorkbook(path)
	}
	return readCSV(path)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Rows in the maintained table vary in width; short rows are fine.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyWorkbook)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// headerIndex maps column names to their positions in the header row.
type headerIndex map[string]int

func indexHeader(header []string, required ...string) (headerIndex, error) {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return idx, nil
}

func (h headerIndex) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

func parseIncludedHours(s string) models.HoursPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return models.HoursAll
	}
	return models.HoursCompanyOnly
}

func parseRateSource(s string) models.RateSource {
	if strings.EqualFold(strings.TrimSpace(s), "internal") {
		return models.RateInternal
	}
	return models.RateEmbedded
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
