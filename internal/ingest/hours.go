package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/normalize"
)

// RawHours reads the hour export CSV at path into raw rows keyed by the
// export's own header names. The row number is the physical line in the
// file, so diagnostics point back at the source.
func RawHours(path string, logger *zap.Logger) ([]normalize.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([]normalize.RawRow, 0, len(records)-1)
	for i, record := range records[1:] {
		fields := make(map[string]string, len(header))
		for j, value := range record {
			if j < len(header) && header[j] != "" {
				fields[header[j]] = value
			}
		}
		rows = append(rows, normalize.RawRow{
			// Line 1 is the header, so the first data row is line 2.
			Number: i + 2,
			Fields: fields,
		})
	}

	logger.Info("Loaded raw hours",
		zap.String("path", path),
		zap.Int("rows", len(rows)))
	return rows, nil
}
