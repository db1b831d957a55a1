package engine

import (
	"time"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// BillableWindow derives the run window for an hourly-billing run executed at
// now: the previous calendar month is invoiced, the accounting date is the
// first of the current month and the invoicing date is the execution date.
func BillableWindow(now time.Time) models.Window {
	year, month, _ := now.Date()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return models.Window{
		PeriodStart:    firstOfMonth.AddDate(0, -1, 0),
		PeriodEnd:      firstOfMonth.AddDate(0, 0, -1),
		AccountingDate: firstOfMonth,
		InvoicingDate:  now,
	}
}

// FixedFeeWindow derives the run window for a fixed-fee run invoicing the
// given month: the invoiced month is the period and the accounting date is
// the second of the following month.
func FixedFeeWindow(year int, month time.Month, executionDate time.Time) models.Window {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNext := firstOfMonth.AddDate(0, 1, 0)
	return models.Window{
		PeriodStart:    firstOfMonth,
		PeriodEnd:      firstOfNext.AddDate(0, 0, -1),
		AccountingDate: firstOfNext.AddDate(0, 0, 1),
		InvoicingDate:  executionDate,
	}
}
