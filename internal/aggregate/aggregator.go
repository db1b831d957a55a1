// Package aggregate folds priced line items into customer/contract invoices
// with merged rows and stable connect ids.
package aggregate

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// ConnectIDFunc generates the token linking an invoice header to its rows.
// Injectable so tests can assert on deterministic ids.
type ConnectIDFunc func() string

// groupKey identifies one invoice: all items for the same customer and
// contract in the run's period are billed together.
type groupKey struct {
	clientName     string
	contractNumber string
}

// rowKey identifies one invoice row: identical-rate work for the same service
// and description is summed into a single row.
type rowKey struct {
	serviceName string
	description string
	unitPrice   string
}

// Aggregator groups priced items into invoices.
type Aggregator struct {
	newConnectID ConnectIDFunc
	logger       *zap.Logger
}

// New creates an Aggregator with uuid connect ids.
func New(logger *zap.Logger) *Aggregator {
	return NewWithConnectIDs(uuid.NewString, logger)
}

// NewWithConnectIDs creates an Aggregator with a caller-supplied connect-id
// generator.
func NewWithConnectIDs(fn ConnectIDFunc, logger *zap.Logger) *Aggregator {
	return &Aggregator{newConnectID: fn, logger: logger}
}

// Aggregate groups priced items by customer/contract into invoices for the
// window. Groups and rows keep the order their first constituent item was
// encountered, so two runs on the same input emit identical documents.
// Items whose line total is zero are reported back, not invoiced; a group
// left with no rows produces no invoice.
func (a *Aggregator) Aggregate(items []models.PricedItem, window models.Window) ([]models.Invoice, []models.ErrorRecord) {
	type group struct {
		cfg      *models.CustomerConfig
		rowOrder []rowKey
		rows     map[rowKey]*models.InvoiceRow

		// Fixed fees carry their own billing period (a pre-billed fee spans
		// the month after the invoiced one). When every item of a group is a
		// fixed fee with the same period, the invoice header uses it instead
		// of the run window.
		allFixed    bool
		fixedStart  time.Time
		fixedEnd    time.Time
		periodMixed bool
	}

	groups := make(map[groupKey]*group)
	var groupOrder []groupKey
	var skipped []models.ErrorRecord

	for _, item := range items {
		if item.LineTotal.IsZero() {
			a.logger.Debug("Skipping zero amount item",
				zap.String("project_id", item.Item.ProjectID),
				zap.String("task", item.Item.TaskName))
			skipped = append(skipped, models.ErrorRecord{
				SourceRow: item.Item.SourceRow,
				ProjectID: item.Item.ProjectID,
				TaskName:  item.Item.TaskName,
				Reason:    "zero amount row",
				Detail:    "quantity " + item.Item.Quantity.String() + " at rate " + item.UnitRate.String(),
			})
			continue
		}

		gk := groupKey{clientName: item.Config.ClientName, contractNumber: item.Config.ContractNumber}
		g, ok := groups[gk]
		if !ok {
			g = &group{cfg: item.Config, rows: make(map[rowKey]*models.InvoiceRow), allFixed: true}
			groups[gk] = g
			groupOrder = append(groupOrder, gk)
		}

		if item.Item.Unit != models.UnitFixed || item.Item.PeriodStart.IsZero() {
			g.allFixed = false
		} else if g.fixedStart.IsZero() {
			g.fixedStart = item.Item.PeriodStart
			g.fixedEnd = item.Item.PeriodEnd
		} else if !g.fixedStart.Equal(item.Item.PeriodStart) || !g.fixedEnd.Equal(item.Item.PeriodEnd) {
			g.periodMixed = true
		}

		description := renderDescription(item.Config, item.Item, window)
		rk := rowKey{
			serviceName: item.Config.ServiceName,
			description: description,
			unitPrice:   item.UnitRate.String(),
		}
		row, ok := g.rows[rk]
		if !ok {
			g.rows[rk] = &models.InvoiceRow{
				GroupingInfo:     item.Config.ClientName,
				SalesItem:        item.Config.SalesItemCode,
				Description:      description,
				Quantity:         item.Item.Quantity,
				UnitPrice:        item.UnitRate,
				Dimensions:       item.Config.Dimensions,
				TaxApplicability: item.Config.TaxApplicability,
				TaxCode:          item.Config.TaxCode,
			}
			g.rowOrder = append(g.rowOrder, rk)
			continue
		}
		row.Quantity = row.Quantity.Add(item.Item.Quantity)
	}

	invoices := make([]models.Invoice, 0, len(groupOrder))
	for _, gk := range groupOrder {
		g := groups[gk]
		inv := models.Invoice{
			ConnectID:         a.newConnectID(),
			InvoiceExtID:      g.cfg.InvoiceExtID,
			AccountExtID:      g.cfg.AccountExtID,
			OurReference:      g.cfg.OurReference,
			CustomerReference: g.cfg.CustomerReference,
			ContractNumber:    g.cfg.ContractNumber,
			AccountingDate:    window.AccountingDate,
			InvoicingDate:     window.InvoicingDate,
			PeriodStart:       window.PeriodStart,
			PeriodEnd:         window.PeriodEnd,
			Rows:              make([]models.InvoiceRow, 0, len(g.rowOrder)),
		}
		if g.allFixed && !g.periodMixed && !g.fixedStart.IsZero() {
			inv.PeriodStart = g.fixedStart
			inv.PeriodEnd = g.fixedEnd
		}
		for _, rk := range g.rowOrder {
			inv.Rows = append(inv.Rows, *g.rows[rk])
		}
		invoices = append(invoices, inv)

		a.logger.Info("Aggregated invoice",
			zap.String("client", gk.clientName),
			zap.String("contract", gk.contractNumber),
			zap.String("connect_id", inv.ConnectID),
			zap.Int("rows", len(inv.Rows)))
	}

	return invoices, skipped
}

// renderDescription substitutes the config's description template tokens.
// A fixed item carrying its own description (a passthrough amount) keeps it;
// free-text notes on hour entries never reach the invoice, they would break
// row merging. With no template the description falls back to
// "client - service - task", dropping empty parts.
func renderDescription(cfg *models.CustomerConfig, item models.BillableLineItem, window models.Window) string {
	if item.Unit == models.UnitFixed && item.Description != "" {
		return item.Description
	}
	if cfg.DescriptionTemplate == "" {
		parts := make([]string, 0, 3)
		for _, part := range []string{cfg.ClientName, cfg.ServiceName, item.TaskName} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " - ")
	}

	replacer := strings.NewReplacer(
		"{client}", cfg.ClientName,
		"{service}", cfg.ServiceName,
		"{task}", item.TaskName,
		"{period_start}", window.PeriodStart.Format("2006-01-02"),
		"{period_end}", window.PeriodEnd.Format("2006-01-02"),
	)
	return replacer.Replace(cfg.DescriptionTemplate)
}
