package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/sevendos/invoice-transfer/internal/normalize"
)

// WriteRawHours writes raw rows back out as CSV, so a fetched batch can be
// inspected or replayed as a file input. The header is the sorted union of
// every row's field names.
func WriteRawHours(path string, rows []normalize.RawRow) error {
	names := make(map[string]struct{})
	for _, row := range rows {
		for name := range row.Fields {
			names[name] = struct{}{}
		}
	}
	header := make([]string, 0, len(names))
	for name := range names {
		header = append(header, name)
	}
	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			record[i] = row.Fields[name]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
