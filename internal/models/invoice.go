package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTableEntry is one (project, task) → hourly rate row from the internal
// rate table. Currency is implicitly EUR.
type RateTableEntry struct {
	ProjectID string
	TaskName  string
	Rate      decimal.Decimal
}

// PricedItem is a line item with its resolved unit rate. LineTotal is kept at
// full precision; rounding happens once, at the output boundary.
type PricedItem struct {
	Item      BillableLineItem
	Config    *CustomerConfig
	UnitRate  decimal.Decimal
	LineTotal decimal.Decimal
}

// InvoiceRow is one priced, described, taxed line of an invoice.
type InvoiceRow struct {
	GroupingInfo string
	SalesItem    string
	Description  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal

	Dimensions Dimensions

	TaxApplicability string
	TaxCode          string
}

// LineTotal is quantity times unit price, computed on demand so merged rows
// never accumulate rounding drift.
func (r InvoiceRow) LineTotal() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}

// Invoice is one customer-period invoice: a header plus its ordered rows.
// ConnectID links the header line to every row line in the output document
// and is unique within a run.
type Invoice struct {
	ConnectID string

	InvoiceExtID      string
	AccountExtID      string
	OurReference      string
	CustomerReference string
	ContractNumber    string

	AccountingDate time.Time
	InvoicingDate  time.Time
	PeriodStart    time.Time
	PeriodEnd      time.Time

	Rows []InvoiceRow
}

// Total is the full-precision sum of the invoice's row totals.
func (inv Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range inv.Rows {
		total = total.Add(row.LineTotal())
	}
	return total
}
