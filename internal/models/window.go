package models

import "time"

// Window is the run's billing period plus the dates stamped on every invoice
// header. It is derived once per invocation and passed in explicitly; the
// engine never reads the clock itself.
type Window struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	AccountingDate time.Time
	InvoicingDate  time.Time
}
