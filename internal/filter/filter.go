// Package filter applies per-customer inclusion policy to normalized line
// items. Every exclusion carries the exact rule that rejected the item.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/customer"
	"github.com/sevendos/invoice-transfer/internal/models"
)

// ErrUnknownProject marks an item whose project id has no customer
// configuration at all. The reference data is inconsistent, so this is fatal
// to the batch rather than a silent exclusion.
var ErrUnknownProject = errors.New("project has no customer configuration")

// Exclusion reasons, stated verbatim in the error report.
const (
	ReasonInactiveProject = "inactive project"
	ReasonNonBillable     = "non-billable"
	ReasonExternalCompany = "external company hours"
)

// Decision is the outcome of the inclusion rules for one item.
type Decision struct {
	Include bool
	Reason  string
}

// Filter gates line items on project configuration and company policy.
type Filter struct {
	index           *customer.Index
	internalCompany string
	logger          *zap.Logger
}

// New creates a Filter. internalCompany is the employing company whose hours
// remain billable under the company-only policy.
func New(index *customer.Index, internalCompany string, logger *zap.Logger) *Filter {
	return &Filter{
		index:           index,
		internalCompany: internalCompany,
		logger:          logger,
	}
}

// Check applies the inclusion rules in order and returns the configuration
// together with the decision. The first failing rule decides. An unknown
// project returns an error instead of a decision.
func (f *Filter) Check(item models.BillableLineItem) (*models.CustomerConfig, Decision, error) {
	cfg, ok := f.index.Lookup(item.ProjectID)
	if !ok {
		return nil, Decision{}, fmt.Errorf("%w: %s", ErrUnknownProject, item.ProjectID)
	}

	if !cfg.Active {
		return cfg, f.exclude(item, ReasonInactiveProject), nil
	}
	if !item.Billable {
		return cfg, f.exclude(item, ReasonNonBillable), nil
	}
	if cfg.IncludedHours == models.HoursCompanyOnly &&
		!strings.EqualFold(item.SourceCompany, f.internalCompany) {
		return cfg, f.exclude(item, ReasonExternalCompany), nil
	}

	return cfg, Decision{Include: true}, nil
}

func (f *Filter) exclude(item models.BillableLineItem, reason string) Decision {
	f.logger.Debug("Excluding item",
		zap.String("project_id", item.ProjectID),
		zap.String("task", item.TaskName),
		zap.String("reason", reason))
	return Decision{Include: false, Reason: reason}
}
