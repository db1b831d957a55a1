package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

func sequentialIDs() ConnectIDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("connect-%d", n)
	}
}

func testWindow() models.Window {
	return models.Window{
		PeriodStart:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		AccountingDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		InvoicingDate:  time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func pricedItem(cfg *models.CustomerConfig, task string, hours, rate int64) models.PricedItem {
	quantity := decimal.NewFromInt(hours)
	unitRate := decimal.NewFromInt(rate)
	return models.PricedItem{
		Item: models.BillableLineItem{
			ProjectID: cfg.ProjectID,
			TaskName:  task,
			Quantity:  quantity,
			Unit:      models.UnitHours,
			Billable:  true,
		},
		Config:    cfg,
		UnitRate:  unitRate,
		LineTotal: quantity.Mul(unitRate),
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	logger := zap.NewNop()
	acme := &models.CustomerConfig{
		ProjectID:      "12345",
		ClientName:     "Acme",
		ServiceName:    "Acme Development",
		ContractNumber: "C-001",
		SalesItemCode:  "HOURS-STD",
		Active:         true,
	}
	globex := &models.CustomerConfig{
		ProjectID:      "67890",
		ClientName:     "Globex",
		ServiceName:    "Globex Support",
		ContractNumber: "C-002",
		Active:         true,
	}

	t.Run("identical-rate work merges into one row with summed quantity", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, skipped := agg.Aggregate([]models.PricedItem{
			pricedItem(acme, "Development", 8, 120),
			pricedItem(acme, "Development", 4, 120),
		}, testWindow())

		require.Empty(t, skipped)
		require.Len(t, invoices, 1)
		require.Len(t, invoices[0].Rows, 1)

		row := invoices[0].Rows[0]
		assert.True(t, row.Quantity.Equal(decimal.NewFromInt(12)), "quantity %s", row.Quantity)
		assert.True(t, row.UnitPrice.Equal(decimal.NewFromInt(120)))
		assert.True(t, row.LineTotal().Equal(decimal.NewFromInt(1440)), "line total %s", row.LineTotal())
	})

	t.Run("different rates stay on separate rows", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(acme, "Development", 8, 120),
			pricedItem(acme, "Development", 4, 100),
		}, testWindow())

		require.Len(t, invoices, 1)
		assert.Len(t, invoices[0].Rows, 2)
	})

	t.Run("groups by customer and contract in first-seen order", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(globex, "Support", 2, 80),
			pricedItem(acme, "Development", 8, 120),
			pricedItem(globex, "Support", 3, 80),
		}, testWindow())

		require.Len(t, invoices, 2)
		assert.Equal(t, "connect-1", invoices[0].ConnectID)
		assert.Equal(t, "Globex", invoices[0].Rows[0].GroupingInfo)
		assert.Equal(t, "connect-2", invoices[1].ConnectID)
		assert.Equal(t, "Acme", invoices[1].Rows[0].GroupingInfo)
	})

	t.Run("connect ids are unique per invoice", func(t *testing.T) {
		agg := New(logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(acme, "Development", 8, 120),
			pricedItem(globex, "Support", 2, 80),
		}, testWindow())

		require.Len(t, invoices, 2)
		assert.NotEqual(t, invoices[0].ConnectID, invoices[1].ConnectID)
		assert.NotEmpty(t, invoices[0].ConnectID)
	})

	t.Run("zero amount items are reported, not invoiced", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, skipped := agg.Aggregate([]models.PricedItem{
			pricedItem(acme, "Internal", 3, 0),
		}, testWindow())

		assert.Empty(t, invoices, "a group with only zero rows emits no invoice")
		require.Len(t, skipped, 1)
		assert.Equal(t, "zero amount row", skipped[0].Reason)
	})

	t.Run("header fields come from config and window", func(t *testing.T) {
		cfg := *acme
		cfg.InvoiceExtID = "INV-EXT-1"
		cfg.AccountExtID = "ACC-EXT-1"
		cfg.OurReference = "J. Doe"
		cfg.CustomerReference = "PO-77"

		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(&cfg, "Development", 8, 120),
		}, testWindow())

		require.Len(t, invoices, 1)
		inv := invoices[0]
		assert.Equal(t, "INV-EXT-1", inv.InvoiceExtID)
		assert.Equal(t, "ACC-EXT-1", inv.AccountExtID)
		assert.Equal(t, "J. Doe", inv.OurReference)
		assert.Equal(t, "PO-77", inv.CustomerReference)
		assert.Equal(t, "C-001", inv.ContractNumber)
		assert.Equal(t, testWindow().PeriodStart, inv.PeriodStart)
		assert.Equal(t, testWindow().AccountingDate, inv.AccountingDate)
	})

	t.Run("all-fixed group carries the fee period instead of the window", func(t *testing.T) {
		cfg := *acme
		rate := decimal.NewFromInt(2500)
		item := models.PricedItem{
			Item: models.BillableLineItem{
				ProjectID:   cfg.ProjectID,
				Quantity:    decimal.NewFromInt(1),
				Unit:        models.UnitFixed,
				Billable:    true,
				PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			},
			Config:    &cfg,
			UnitRate:  rate,
			LineTotal: rate,
		}

		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{item}, testWindow())

		require.Len(t, invoices, 1)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), invoices[0].PeriodStart)
		assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), invoices[0].PeriodEnd)
	})

	t.Run("hourly group keeps the run window period", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		item := pricedItem(acme, "Development", 8, 120)
		item.Item.PeriodStart = time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
		item.Item.PeriodEnd = item.Item.PeriodStart
		invoices, _ := agg.Aggregate([]models.PricedItem{item}, testWindow())

		require.Len(t, invoices, 1)
		assert.Equal(t, testWindow().PeriodStart, invoices[0].PeriodStart)
		assert.Equal(t, testWindow().PeriodEnd, invoices[0].PeriodEnd)
	})

	t.Run("description template tokens are substituted", func(t *testing.T) {
		cfg := *acme
		cfg.DescriptionTemplate = "{client} / {service} / {task} ({period_start}..{period_end})"

		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(&cfg, "Development", 8, 120),
		}, testWindow())

		require.Len(t, invoices, 1)
		assert.Equal(t,
			"Acme / Acme Development / Development (2025-02-01..2025-02-28)",
			invoices[0].Rows[0].Description)
	})

	t.Run("fixed item description overrides the template", func(t *testing.T) {
		cfg := *acme
		cfg.DescriptionTemplate = "{service}"

		item := pricedItem(&cfg, "Development", 1, 250)
		item.Item.Unit = models.UnitFixed
		item.Item.Description = "License passthrough"

		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{item}, testWindow())

		require.Len(t, invoices, 1)
		assert.Equal(t, "License passthrough", invoices[0].Rows[0].Description)
	})

	t.Run("empty template falls back to client - service - task", func(t *testing.T) {
		agg := NewWithConnectIDs(sequentialIDs(), logger)
		invoices, _ := agg.Aggregate([]models.PricedItem{
			pricedItem(acme, "Development", 8, 120),
		}, testWindow())

		require.Len(t, invoices, 1)
		assert.Equal(t, "Acme - Acme Development - Development", invoices[0].Rows[0].Description)
	})
}
