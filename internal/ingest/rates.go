package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// RateEntries reads the headerless internal rate CSV: project id, task name,
// hourly rate per line. Short or unparsable lines are logged and skipped;
// the rate table is advisory data maintained by hand.
func RateEntries(path string, logger *zap.Logger) ([]models.RateTableEntry, error) {
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

	entries := make([]models.RateTableEntry, 0, len(records))
	for i, record := range records {
		if len(record) < 3 {
			logger.Warn("Skipping short rate line",
				zap.Int("line", i+1),
				zap.Strings("fields", record))
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			logger.Warn("Skipping unparsable rate line",
				zap.Int("line", i+1),
				zap.String("rate", record[2]),
				zap.Error(err))
			continue
		}
		entries = append(entries, models.RateTableEntry{
			ProjectID: strings.TrimSpace(record[0]),
			TaskName:  strings.TrimSpace(record[1]),
			Rate:      rate,
		})
	}

	logger.Info("Loaded rate table",
		zap.String("path", path),
		zap.Int("entries", len(entries)))
	return entries, nil
}
