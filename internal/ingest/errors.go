package ingest

import "errors"

var (
	// ErrMissingColumn indicates a required header column is absent.
	ErrMissingColumn = errors.New("required column missing")
	// ErrNoHeader indicates the file has no header row.
	ErrNoHeader = errors.New("file has no header row")
	// ErrEmptyWorkbook indicates the workbook contains no sheets.
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
	// ErrMonthNotFound indicates the passthrough grid has no row for the
	// requested month.
	ErrMonthNotFound = errors.New("month not found in passthrough grid")
)
