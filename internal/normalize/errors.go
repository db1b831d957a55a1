package normalize

import "errors"

// Row-level normalization errors. These are collected per row, never raised
// for the whole batch.
var (
	ErrMissingProjectID = errors.New("row has no project id")
	ErrMissingQuantity  = errors.New("row has neither minutes nor hours")
	ErrBadQuantity      = errors.New("quantity is not a valid number")
	ErrNegativeQuantity = errors.New("quantity is negative")
	ErrBadRate          = errors.New("rate is not a valid number")
	ErrBadBoolean       = errors.New("boolean field is not recognizable")
	ErrBadDate          = errors.New("date is not in YYYY-MM-DD format")
	ErrMissingAmount    = errors.New("fixed-fee row has no amount")
)
