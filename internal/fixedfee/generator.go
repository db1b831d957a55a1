// Package fixedfee turns fixed-fee customer configuration rows and the
// monthly passthrough amounts into billable line items for the invoicing
// pipeline. Each fee becomes a single fixed line with quantity one and the
// fee as its embedded rate.
package fixedfee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/ingest"
	"github.com/sevendos/invoice-transfer/internal/models"
)

// PeriodPre bills the month after the invoiced one; PeriodPost bills the
// invoiced month itself.
const (
	PeriodPre  = "pre"
	PeriodPost = "post"
)

// Batch is the generated input of a fixed-fee run: the line items, the
// customer configurations they reference, and the row-level problems found
// while generating.
type Batch struct {
	Items   []models.BillableLineItem
	Configs []models.CustomerConfig
	Errors  []models.ErrorRecord
}

// Generator builds fixed-fee batches.
type Generator struct {
	logger *zap.Logger
}

// New creates a Generator.
func New(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate builds the batch for invoicing the given month. Fees that do not
// parse to a positive amount are reported, not invoiced. Passthrough entries
// are matched to configs by config id; unmatched entries are reported.
func (g *Generator) Generate(
	configs []ingest.FixedFeeConfig,
	passthrough []ingest.PassthroughEntry,
	year int, month time.Month,
) Batch {
	var batch Batch
	byConfigID := make(map[string]*ingest.FixedFeeConfig, len(configs))

	for i := range configs {
		fc := &configs[i]
		if fc.ConfigID != "" {
			byConfigID[fc.ConfigID] = fc
		}

		fee, err := parseAmount(fc.MonthlyFee)
		if err != nil {
			batch.Errors = append(batch.Errors, models.ErrorRecord{
				ProjectID: fc.Config.ProjectID,
				Reason:    "unparsable fixed fee",
				Detail:    fc.MonthlyFee,
			})
			continue
		}
		if !fee.IsPositive() {
			g.logger.Debug("Skipping non-positive fixed fee",
				zap.String("project_id", fc.Config.ProjectID),
				zap.String("fee", fc.MonthlyFee))
			continue
		}

		start, end := billedPeriod(year, month, fc.Period)
		rate := fee
		batch.Items = append(batch.Items, models.BillableLineItem{
			ProjectID:    fc.Config.ProjectID,
			ProjectName:  fc.Config.ClientName,
			TaskName:     fc.Config.ServiceName,
			Quantity:     decimal.NewFromInt(1),
			Unit:         models.UnitFixed,
			EmbeddedRate: &rate,
			Billable:     true,
			PeriodStart:  start,
			PeriodEnd:    end,
		})
		batch.Configs = append(batch.Configs, fc.Config)
	}

	for _, entry := range passthrough {
		fc, ok := byConfigID[entry.ConfigID]
		if !ok {
			batch.Errors = append(batch.Errors, models.ErrorRecord{
				Reason: "passthrough without matching config",
				Detail: entry.ConfigID,
			})
			continue
		}
		amount, err := parseAmount(entry.Amount)
		if err != nil {
			batch.Errors = append(batch.Errors, models.ErrorRecord{
				ProjectID: fc.Config.ProjectID,
				Reason:    "unparsable passthrough amount",
				Detail:    entry.Amount,
			})
			continue
		}
		if amount.IsZero() {
			continue
		}

		start, end := billedPeriod(year, month, fc.Period)
		rate := amount
		batch.Items = append(batch.Items, models.BillableLineItem{
			ProjectID:    fc.Config.ProjectID,
			ProjectName:  fc.Config.ClientName,
			TaskName:     fc.Config.ServiceName,
			Quantity:     decimal.NewFromInt(1),
			Unit:         models.UnitFixed,
			EmbeddedRate: &rate,
			Billable:     true,
			PeriodStart:  start,
			PeriodEnd:    end,
			Description:  entry.Description,
		})
	}

	g.logger.Info("Generated fixed-fee batch",
		zap.Int("items", len(batch.Items)),
		zap.Int("configs", len(batch.Configs)),
		zap.Int("problems", len(batch.Errors)))
	return batch
}

// billedPeriod returns the calendar month a fee covers. A "pre" fee covers
// the month after the invoiced one, anything else the invoiced month.
func billedPeriod(year int, month time.Month, period string) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if strings.EqualFold(period, PeriodPre) {
		first = first.AddDate(0, 1, 0)
	}
	return first, first.AddDate(0, 1, -1)
}

// parseAmount strips currency symbols and spacing from a maintained fee cell
// and parses what remains. "1 250,50 €" parses as 1250.50.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		cleaned = "0"
	}
	return decimal.NewFromString(cleaned)
}
