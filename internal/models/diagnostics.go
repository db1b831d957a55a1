package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissingRateRecord describes one item that could not be priced because no
// rate was found. Carries enough context for manual follow-up against the
// rate table.
type MissingRateRecord struct {
	ProjectID   string
	TaskName    string
	ClientName  string
	ServiceName string
	RateSource  RateSource
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// ErrorRecord describes one item kept out of the priced output, with the
// exact rule or parse failure that rejected it.
type ErrorRecord struct {
	SourceRow int
	ProjectID string
	TaskName  string
	Reason    string
	Detail    string
}

// NotIncludedProject summarizes internal-company billable hours whose project
// produced no invoice, so the hours do not silently go unbilled.
type NotIncludedProject struct {
	CustomerName string
	ProjectName  string
	ProjectID    string
	TotalHours   decimal.Decimal
}
