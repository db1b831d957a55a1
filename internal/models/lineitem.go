package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the unit of measure of a billable line item.
type Unit string

const (
	// UnitHours marks time-based work measured in hours.
	UnitHours Unit = "HOURS"
	// UnitFixed marks a fixed fee or passthrough cost; quantity is a count (usually 1).
	UnitFixed Unit = "FIXED"
)

// BillableLineItem is the normalized form of one raw input row: one unit of
// trackable work or one fixed cost eligible for invoicing. Immutable once
// produced by the normalizer.
type BillableLineItem struct {
	// SourceRow is the 1-based row number in the source data, kept so
	// diagnostics can be traced back to the original record.
	SourceRow int

	ProjectID   string
	ProjectName string
	TaskName    string

	// Quantity is hours for UnitHours, a count for UnitFixed. Never negative.
	Quantity decimal.Decimal
	Unit     Unit

	// EmbeddedRate is the rate carried on the source record itself
	// (e.g. the task hourly price reported by the time-tracking tool).
	// Nil when the source record carries none. Required for UnitFixed.
	EmbeddedRate *decimal.Decimal

	Billable      bool
	SourceCompany string

	PeriodStart time.Time
	PeriodEnd   time.Time

	Description string
}

// HasEmbeddedRate reports whether the source record carried its own rate.
func (li *BillableLineItem) HasEmbeddedRate() bool {
	return li.EmbeddedRate != nil
}
