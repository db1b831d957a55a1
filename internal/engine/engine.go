// Package engine runs the invoicing pipeline: normalize, index, resolve,
// filter, aggregate, format. It is a pure function of its inputs plus the run
// window; all I/O stays with the callers.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/aggregate"
	"github.com/sevendos/invoice-transfer/internal/customer"
	"github.com/sevendos/invoice-transfer/internal/filter"
	"github.com/sevendos/invoice-transfer/internal/models"
	"github.com/sevendos/invoice-transfer/internal/normalize"
	"github.com/sevendos/invoice-transfer/internal/rates"
	"github.com/sevendos/invoice-transfer/internal/workday"
)

// Config carries the run-constant settings of the engine.
type Config struct {
	// InternalCompany is the employing company whose hours stay billable
	// under the company-only policy.
	InternalCompany string

	// Output configures the transfer-document preamble.
	Output workday.Options

	// ConnectIDs overrides connect-id generation. Nil means random uuids.
	ConnectIDs aggregate.ConnectIDFunc
}

// Input is one batch: already-materialized raw rows and/or pre-normalized
// items, the customer configuration table and the internal rate table.
type Input struct {
	RawRows []normalize.RawRow
	Items   []models.BillableLineItem

	CustomerConfigs []models.CustomerConfig
	RateEntries     []models.RateTableEntry

	Window models.Window
}

// Stats summarizes one run.
type Stats struct {
	InputRows    int
	Items        int
	PricedItems  int
	Invoices     int
	InvoiceRows  int
	TotalHours   decimal.Decimal
	GrandTotal   decimal.Decimal
	FirstWorkDay time.Time
	LastWorkDay  time.Time
}

// Result is the complete outcome of one batch: the transfer document plus
// every diagnostic side-channel. Either the whole batch succeeds or Run
// returns an error; there is no partial output.
type Result struct {
	Document *workday.Document
	Invoices []models.Invoice

	MissingRates []models.MissingRateRecord
	Errors       []models.ErrorRecord
	NotIncluded  []models.NotIncludedProject

	Stats Stats
}

// Engine executes invoicing batches.
type Engine struct {
	cfg        Config
	normalizer *normalize.Normalizer
	aggregator *aggregate.Aggregator
	formatter  *workday.Formatter
	logger     *zap.Logger
}

// New creates an Engine.
func New(cfg Config, logger *zap.Logger) *Engine {
	aggregator := aggregate.New(logger)
	if cfg.ConnectIDs != nil {
		aggregator = aggregate.NewWithConnectIDs(cfg.ConnectIDs, logger)
	}
	return &Engine{
		cfg:        cfg,
		normalizer: normalize.New(logger),
		aggregator: aggregator,
		formatter:  workday.NewFormatter(cfg.Output, logger),
		logger:     logger,
	}
}

// Run executes one batch. Row-level problems end up in the result's
// side-channels; configuration- and format-level problems abort the batch
// with every error surfaced at once.
func (e *Engine) Run(input Input) (*Result, error) {
	result := &Result{}
	result.Stats.InputRows = len(input.RawRows)
	result.Stats.TotalHours = decimal.Zero
	result.Stats.GrandTotal = decimal.Zero

	items, malformed := e.normalizer.Normalize(input.RawRows)
	result.Errors = append(result.Errors, malformed...)
	items = append(items, input.Items...)
	result.Stats.Items = len(items)

	index, err := customer.BuildIndex(input.CustomerConfigs, e.logger)
	if err != nil {
		return nil, fmt.Errorf("customer configuration is inconsistent: %w", err)
	}
	table, err := rates.NewTable(input.RateEntries, e.logger)
	if err != nil {
		return nil, fmt.Errorf("rate table is inconsistent: %w", err)
	}

	incl := filter.New(index, e.cfg.InternalCompany, e.logger)
	resolver := rates.NewResolver(table, e.logger)

	priced := make([]models.PricedItem, 0, len(items))
	var unknownErrs []error
	unknownSeen := make(map[string]struct{})

	for _, item := range items {
		e.trackWorkDays(&result.Stats, item)

		cfg, decision, err := incl.Check(item)
		if err != nil {
			// Keep scanning so every unknown project is reported in one pass.
			if _, seen := unknownSeen[item.ProjectID]; !seen {
				unknownSeen[item.ProjectID] = struct{}{}
				unknownErrs = append(unknownErrs, err)
			}
			continue
		}
		if !decision.Include {
			result.Errors = append(result.Errors, models.ErrorRecord{
				SourceRow: item.SourceRow,
				ProjectID: item.ProjectID,
				TaskName:  item.TaskName,
				Reason:    decision.Reason,
			})
			continue
		}

		rate, missing := resolver.Resolve(item, cfg)
		if missing != nil {
			result.MissingRates = append(result.MissingRates, *missing)
			continue
		}

		priced = append(priced, models.PricedItem{
			Item:      item,
			Config:    cfg,
			UnitRate:  rate,
			LineTotal: item.Quantity.Mul(rate),
		})
	}

	if len(unknownErrs) > 0 {
		return nil, fmt.Errorf("reference data is inconsistent: %w", errors.Join(unknownErrs...))
	}

	invoices, zeroRows := e.aggregator.Aggregate(priced, input.Window)
	result.Errors = append(result.Errors, zeroRows...)
	result.Invoices = invoices
	result.NotIncluded = e.findNotIncluded(items, priced)

	doc, err := e.formatter.Format(invoices)
	if err != nil {
		return nil, fmt.Errorf("output formatting failed: %w", err)
	}
	result.Document = doc

	result.Stats.PricedItems = len(priced)
	result.Stats.Invoices = doc.Invoices
	result.Stats.InvoiceRows = doc.RowLines
	result.Stats.GrandTotal = doc.GrandTotal
	for _, item := range priced {
		if item.Item.Unit == models.UnitHours {
			result.Stats.TotalHours = result.Stats.TotalHours.Add(item.Item.Quantity)
		}
	}

	e.logger.Info("Batch complete",
		zap.Int("invoices", result.Stats.Invoices),
		zap.Int("rows", result.Stats.InvoiceRows),
		zap.String("grand_total", result.Stats.GrandTotal.StringFixedBank(2)),
		zap.Int("missing_rates", len(result.MissingRates)),
		zap.Int("diagnostics", len(result.Errors)))
	return result, nil
}

// trackWorkDays records the first and last worked day seen across billable
// hour entries, for the run summary.
func (e *Engine) trackWorkDays(stats *Stats, item models.BillableLineItem) {
	if item.Unit != models.UnitHours || !item.Billable || item.PeriodStart.IsZero() {
		return
	}
	if stats.FirstWorkDay.IsZero() || item.PeriodStart.Before(stats.FirstWorkDay) {
		stats.FirstWorkDay = item.PeriodStart
	}
	if stats.LastWorkDay.IsZero() || item.PeriodEnd.After(stats.LastWorkDay) {
		stats.LastWorkDay = item.PeriodEnd
	}
}

// findNotIncluded reports projects with billable internal-company hours that
// contributed nothing to any invoice, so they can be chased instead of going
// unbilled silently.
func (e *Engine) findNotIncluded(items []models.BillableLineItem, priced []models.PricedItem) []models.NotIncludedProject {
	invoiced := make(map[string]struct{}, len(priced))
	for _, item := range priced {
		invoiced[item.Item.ProjectID] = struct{}{}
	}

	totals := make(map[string]*models.NotIncludedProject)
	var order []string
	for _, item := range items {
		if item.Unit != models.UnitHours || !item.Billable {
			continue
		}
		if _, ok := invoiced[item.ProjectID]; ok {
			continue
		}
		if !strings.EqualFold(item.SourceCompany, e.cfg.InternalCompany) {
			continue
		}
		entry, ok := totals[item.ProjectID]
		if !ok {
			entry = &models.NotIncludedProject{
				CustomerName: item.ProjectName,
				ProjectName:  item.ProjectName,
				ProjectID:    item.ProjectID,
				TotalHours:   decimal.Zero,
			}
			totals[item.ProjectID] = entry
			order = append(order, item.ProjectID)
		}
		entry.TotalHours = entry.TotalHours.Add(item.Quantity)
	}

	missing := make([]models.NotIncludedProject, 0, len(order))
	for _, id := range order {
		e.logger.Warn("Billable internal hours not included in any invoice",
			zap.String("project_id", id),
			zap.String("hours", totals[id].TotalHours.String()))
		missing = append(missing, *totals[id])
	}
	return missing
}
