package workday

import "errors"

// Format-level errors. These indicate an upstream bug or corrupt value that
// would violate the output grammar; the run fails loudly instead of emitting
// a broken document.
var (
	ErrEmptyInvoice     = errors.New("invoice has no rows")
	ErrMissingConnectID = errors.New("invoice has no connect id")
	ErrDuplicateConnect = errors.New("connect id reused across invoices")
	ErrNegativeQuantity = errors.New("row quantity is negative")
	ErrSemicolonInField = errors.New("field value contains the delimiter")
)
