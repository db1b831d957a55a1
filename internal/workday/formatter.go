// Package workday serializes aggregated invoices into the semicolon-delimited
// two-tier H/R transfer document consumed by the downstream ERP.
package workday

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

const dateFormat = "2006-01-02"

// Fixed column-header lines of the transfer format. The downstream import
// matches on these literally; do not reflow them.
const (
	headerLineH = "Row type H= Title;ConnectID;Invoice A2 ID;Account A2 ID;Free text;Accounting date[YYYY-MM-DD];Invoicing date[YYYY-MM-DD];Our reference;Customer reference;Period Start date [YYYY-MM-DD];Period End date [YYYY-MM-DD];Contract number;PO number;Appendix 1;Appendix 2;Appendix 3;Appendix 4;;;Source System;"
	headerLineR = "Row type R= Row;ConnectID;Grouping info (Memo);Sales Item;Description;Quantity;Unit of measure;Unit price;Dim 1: Cost center;Dim 2: Business line (Function);Dim 3: Area;Dim 4: Service;Dim 5: Project;Dim 7: Counter company;Dim 8: Work type;Dim 10: Official;Dim 11: Employee;Dim 13: Company;Tax_Applicability;Tax_Code;"
)

// Options carry the run-constant values stamped into the document preamble.
type Options struct {
	CompanyCode  string
	ReplyEmail   string
	SourceSystem string
}

// Document is one complete, immutable transfer document.
type Document struct {
	lines      []string
	GrandTotal decimal.Decimal
	Invoices   int
	RowLines   int
}

// String renders the document as UTF-8 text, one record per line.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n") + "\n"
}

// Lines returns the document's records in emission order.
func (d *Document) Lines() []string {
	return d.lines
}

// Formatter renders invoices into the transfer document.
type Formatter struct {
	opts   Options
	logger *zap.Logger
}

// NewFormatter creates a Formatter.
func NewFormatter(opts Options, logger *zap.Logger) *Formatter {
	return &Formatter{opts: opts, logger: logger}
}

// Format serializes the invoices in the order the aggregator produced them.
// The grand total on line 2 is the full-precision sum of every row total,
// rounded half-even to two decimals only here, at the boundary.
func (f *Formatter) Format(invoices []models.Invoice) (*Document, error) {
	if err := f.validate(invoices); err != nil {
		return nil, err
	}

	total := decimal.Zero
	rowCount := 0
	for _, inv := range invoices {
		total = total.Add(inv.Total())
		rowCount += len(inv.Rows)
	}

	doc := &Document{
		GrandTotal: total,
		Invoices:   len(invoices),
		RowLines:   rowCount,
	}
	doc.lines = append(doc.lines,
		fmt.Sprintf("Invoice transfer into Workday;;;Company code:;%s;;;Invoicing total;;;;;;;;;;;;;", f.opts.CompanyCode),
		fmt.Sprintf("Title information/Row information;;;Reply-to-email:;%s;;;%s;;;;;;;;;;;;;", f.opts.ReplyEmail, total.StringFixedBank(2)),
		headerLineH,
		headerLineR,
	)

	for _, inv := range invoices {
		doc.lines = append(doc.lines, f.headerLine(inv))
		for _, row := range inv.Rows {
			doc.lines = append(doc.lines, f.rowLine(inv.ConnectID, row))
		}
	}

	f.logger.Info("Formatted transfer document",
		zap.Int("invoices", doc.Invoices),
		zap.Int("rows", doc.RowLines),
		zap.String("grand_total", total.StringFixedBank(2)))
	return doc, nil
}

// validate enforces the structural invariants of the grammar before any line
// is emitted, collecting every violation.
func (f *Formatter) validate(invoices []models.Invoice) error {
	var errs []error
	seen := make(map[string]struct{}, len(invoices))

	for _, inv := range invoices {
		if inv.ConnectID == "" {
			errs = append(errs, fmt.Errorf("%w: contract %s", ErrMissingConnectID, inv.ContractNumber))
			continue
		}
		if _, dup := seen[inv.ConnectID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateConnect, inv.ConnectID))
		}
		seen[inv.ConnectID] = struct{}{}

		if len(inv.Rows) == 0 {
			errs = append(errs, fmt.Errorf("%w: connect id %s", ErrEmptyInvoice, inv.ConnectID))
		}
		for _, field := range []string{inv.InvoiceExtID, inv.AccountExtID, inv.OurReference, inv.CustomerReference, inv.ContractNumber} {
			if strings.ContainsRune(field, ';') {
				errs = append(errs, fmt.Errorf("%w: %q", ErrSemicolonInField, field))
			}
		}
		for _, row := range inv.Rows {
			if row.Quantity.IsNegative() {
				errs = append(errs, fmt.Errorf("%w: %s in %q", ErrNegativeQuantity, row.Quantity, row.Description))
			}
			for _, field := range []string{row.GroupingInfo, row.SalesItem, row.Description} {
				if strings.ContainsRune(field, ';') {
					errs = append(errs, fmt.Errorf("%w: %q", ErrSemicolonInField, field))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func (f *Formatter) headerLine(inv models.Invoice) string {
	fields := []string{
		"H",
		inv.ConnectID,
		inv.InvoiceExtID,
		inv.AccountExtID,
		"", // free text
		inv.AccountingDate.Format(dateFormat),
		inv.InvoicingDate.Format(dateFormat),
		inv.OurReference,
		inv.CustomerReference,
		inv.PeriodStart.Format(dateFormat),
		inv.PeriodEnd.Format(dateFormat),
		inv.ContractNumber,
		"",             // PO number
		"", "", "", "", // appendices 1-4
		"", "",
		f.opts.SourceSystem,
		"",
	}
	return strings.Join(fields, ";")
}

func (f *Formatter) rowLine(connectID string, row models.InvoiceRow) string {
	fields := []string{
		"R",
		connectID,
		row.GroupingInfo,
		row.SalesItem,
		row.Description,
		row.Quantity.StringFixedBank(2),
		"", // unit of measure
		row.UnitPrice.StringFixedBank(2),
		row.Dimensions.CostCenter,
		row.Dimensions.BusinessLine,
		row.Dimensions.Area,
		row.Dimensions.Service,
		"", // dim 5: project
		"", // dim 7: counter company
		"", // dim 8: work type
		"", // dim 10: official
		"", // dim 11: employee
		"", // dim 13: company
		row.TaxApplicability,
		row.TaxCode,
		"",
	}
	return strings.Join(fields, ";")
}
