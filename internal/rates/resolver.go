package rates

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// strategy is one way of pricing a line item. The set is closed: internal
// table lookup or the embedded entry-time rate, selected per customer config.
// The two are never mixed for one customer.
type strategy interface {
	resolve(item models.BillableLineItem) (decimal.Decimal, bool)
}

// internalStrategy prices from the negotiated internal rate table.
type internalStrategy struct {
	table *Table
}

func (s internalStrategy) resolve(item models.BillableLineItem) (decimal.Decimal, bool) {
	return s.table.Lookup(item.ProjectID, item.TaskName)
}

// embeddedStrategy prices at the rate recorded at time of entry.
type embeddedStrategy struct{}

func (s embeddedStrategy) resolve(item models.BillableLineItem) (decimal.Decimal, bool) {
	if !item.HasEmbeddedRate() {
		return decimal.Decimal{}, false
	}
	return *item.EmbeddedRate, true
}

// Resolver determines the unit rate of a line item under a customer's
// rate-source policy and records the misses.
type Resolver struct {
	internal internalStrategy
	embedded embeddedStrategy
	logger   *zap.Logger
}

// NewResolver creates a Resolver backed by the given internal rate table.
func NewResolver(table *Table, logger *zap.Logger) *Resolver {
	return &Resolver{
		internal: internalStrategy{table: table},
		embedded: embeddedStrategy{},
		logger:   logger,
	}
}

// Resolve returns the unit rate for the item, or a MissingRateRecord when no
// rate exists under the customer's policy. A miss never falls back to a
// default rate and never falls through to the other rate source.
func (r *Resolver) Resolve(item models.BillableLineItem, cfg *models.CustomerConfig) (decimal.Decimal, *models.MissingRateRecord) {
	var s strategy
	switch cfg.RateSource {
	case models.RateInternal:
		s = r.internal
	default:
		s = r.embedded
	}

	rate, ok := s.resolve(item)
	if !ok {
		r.logger.Warn("No rate found for item",
			zap.String("project_id", item.ProjectID),
			zap.String("task", item.TaskName),
			zap.String("client", cfg.ClientName),
			zap.String("rate_source", string(cfg.RateSource)))
		return decimal.Decimal{}, &models.MissingRateRecord{
			ProjectID:   item.ProjectID,
			TaskName:    item.TaskName,
			ClientName:  cfg.ClientName,
			ServiceName: cfg.ServiceName,
			RateSource:  cfg.RateSource,
			PeriodStart: item.PeriodStart,
			PeriodEnd:   item.PeriodEnd,
		}
	}
	return rate, nil
}
