package ingest

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Layout of the passthrough grid. The grid is a spreadsheet export: one row
// per month keyed by "MM/YYYY" in the first column, a fixed band of columns
// holding one amount per fixed-fee config, and the config ids on a fixed
// header row. Descriptions sit a fixed offset to the right of each amount.
const (
	passthroughIDRow       = 3
	passthroughFirstColumn = 35
	passthroughColumns     = 12
	passthroughDescOffset  = 14
)

// PassthroughEntry is one billed-through amount for a month, tied to a
// fixed-fee config by its id column.
type PassthroughEntry struct {
	ConfigID    string
	Amount      string
	Description string
}

// PassthroughAmounts reads the grid at path and returns the entries of the
// given month. Columns with an empty config id or amount are skipped.
func PassthroughAmounts(path string, year int, month time.Month, logger *zap.Logger) ([]PassthroughEntry, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) <= passthroughIDRow {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	idRow := rows[passthroughIDRow]

	wanted := fmt.Sprintf("%02d/%d", month, year)
	var monthRow []string
	for _, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == wanted {
			monthRow = row
			break
		}
	}
	if monthRow == nil {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMonthNotFound, wanted)
	}

	var entries []PassthroughEntry
	for i := 0; i < passthroughColumns; i++ {
		col := passthroughFirstColumn + i
		id := cell(idRow, col)
		amount := cell(monthRow, col)
		if id == "" || amount == "" {
			continue
		}
		entries = append(entries, PassthroughEntry{
			ConfigID:    id,
			Amount:      amount,
			Description: cell(monthRow, col+passthroughDescOffset),
		})
	}

	logger.Info("Loaded passthrough amounts",
		zap.String("path", path),
		zap.String("month", wanted),
		zap.Int("entries", len(entries)))
	return entries, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
