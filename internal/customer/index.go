// Package customer builds the project → billing-configuration lookup used by
// the invoicing engine. The index is built once per run and read-only after.
package customer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// ErrDuplicateProject marks a project id configured twice with conflicting
// values. A silent tie-break here would misprice invoices, so this is fatal
// to the batch.
var ErrDuplicateProject = errors.New("conflicting duplicate project in customer configuration")

// Index maps project ids to their customer billing configuration.
// Inactive projects are kept so the inclusion filter can reject their items
// with a clear reason instead of treating them as unknown.
type Index struct {
	configs map[string]*models.CustomerConfig
	order   []string
}

// BuildIndex indexes configuration rows by project id. Byte-identical
// duplicate rows are tolerated; conflicting duplicates are collected and
// returned together so all of them can be fixed in one pass.
func BuildIndex(rows []models.CustomerConfig, logger *zap.Logger) (*Index, error) {
	idx := &Index{configs: make(map[string]*models.CustomerConfig, len(rows))}
	var errs []error

	for _, row := range rows {
		existing, ok := idx.configs[row.ProjectID]
		if ok {
			if existing.Equal(row) {
				logger.Debug("Ignoring identical duplicate config row",
					zap.String("project_id", row.ProjectID))
				continue
			}
			errs = append(errs, fmt.Errorf("%w: project %s (client %q)",
				ErrDuplicateProject, row.ProjectID, row.ClientName))
			continue
		}
		cfg := row
		idx.configs[row.ProjectID] = &cfg
		idx.order = append(idx.order, row.ProjectID)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.Info("Built customer configuration index",
		zap.Int("projects", len(idx.order)),
		zap.Int("active", idx.activeCount()))
	return idx, nil
}

// Lookup returns the configuration for a project id.
func (idx *Index) Lookup(projectID string) (*models.CustomerConfig, bool) {
	cfg, ok := idx.configs[projectID]
	return cfg, ok
}

// ProjectIDs returns project ids in first-seen configuration order.
func (idx *Index) ProjectIDs() []string {
	return idx.order
}

// Len reports the number of indexed projects, inactive ones included.
func (idx *Index) Len() int {
	return len(idx.configs)
}

func (idx *Index) activeCount() int {
	count := 0
	for _, cfg := range idx.configs {
		if cfg.Active {
			count++
		}
	}
	return count
}
