// Package rates resolves unit rates for billable line items, either from the
// internal rate table or from the rate embedded on the item itself.
package rates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// ErrDuplicateRate marks a (project, task) key present twice in the rate
// table with different rates. Fatal to the batch: guessing between negotiated
// rates would misprice invoices.
var ErrDuplicateRate = errors.New("conflicting duplicate entry in rate table")

type tableKey struct {
	projectID string
	taskName  string
}

// normalizeKey makes lookups insensitive to case and surrounding whitespace,
// matching how task names drift between the rate sheet and the tracking tool.
func normalizeKey(projectID, taskName string) tableKey {
	return tableKey{
		projectID: strings.ToLower(strings.TrimSpace(projectID)),
		taskName:  strings.ToLower(strings.TrimSpace(taskName)),
	}
}

// Table is the internal (project, task) → hourly rate lookup.
type Table struct {
	entries map[tableKey]decimal.Decimal
}

// NewTable indexes rate entries. Identical duplicates are tolerated;
// conflicting ones are all collected and returned together.
func NewTable(entries []models.RateTableEntry, logger *zap.Logger) (*Table, error) {
	table := &Table{entries: make(map[tableKey]decimal.Decimal, len(entries))}
	var errs []error

	for _, entry := range entries {
		key := normalizeKey(entry.ProjectID, entry.TaskName)
		if existing, ok := table.entries[key]; ok {
			if existing.Equal(entry.Rate) {
				continue
			}
			errs = append(errs, fmt.Errorf("%w: project %s task %q (%s vs %s)",
				ErrDuplicateRate, entry.ProjectID, entry.TaskName, existing, entry.Rate))
			continue
		}
		table.entries[key] = entry.Rate
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.Info("Loaded internal rate table", zap.Int("entries", len(table.entries)))
	return table, nil
}

// Lookup returns the rate for a (project, task) key. Exact match only; there
// is deliberately no default rate.
func (t *Table) Lookup(projectID, taskName string) (decimal.Decimal, bool) {
	rate, ok := t.entries[normalizeKey(projectID, taskName)]
	return rate, ok
}

// Len reports the number of distinct rate entries.
func (t *Table) Len() int {
	return len(t.entries)
}
