package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/customer"
	"github.com/sevendos/invoice-transfer/internal/models"
)

func newTestFilter(t *testing.T, configs []models.CustomerConfig) *Filter {
	t.Helper()
	idx, err := customer.BuildIndex(configs, zap.NewNop())
	require.NoError(t, err)
	return New(idx, "Orangit Oy", zap.NewNop())
}

func TestFilter_Check(t *testing.T) {
	f := newTestFilter(t, []models.CustomerConfig{
		{ProjectID: "p-all", ClientName: "Acme", Active: true, IncludedHours: models.HoursAll},
		{ProjectID: "p-own", ClientName: "Globex", Active: true, IncludedHours: models.HoursCompanyOnly},
		{ProjectID: "p-off", ClientName: "Initech", Active: false, IncludedHours: models.HoursAll},
	})

	billable := func(project, company string) models.BillableLineItem {
		return models.BillableLineItem{
			ProjectID:     project,
			Billable:      true,
			SourceCompany: company,
		}
	}

	t.Run("unknown project is an error, not an exclusion", func(t *testing.T) {
		_, _, err := f.Check(billable("nope", "Orangit Oy"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownProject)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("inactive project excluded with reason", func(t *testing.T) {
		cfg, decision, err := f.Check(billable("p-off", "Orangit Oy"))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.False(t, decision.Include)
		assert.Equal(t, ReasonInactiveProject, decision.Reason)
	})

	t.Run("non-billable excluded before company policy", func(t *testing.T) {
		item := billable("p-own", "Subcontractor Ltd")
		item.Billable = false
		_, decision, err := f.Check(item)
		require.NoError(t, err)
		assert.Equal(t, ReasonNonBillable, decision.Reason)
	})

	t.Run("company-only policy excludes external company hours", func(t *testing.T) {
		_, decision, err := f.Check(billable("p-own", "Subcontractor Ltd"))
		require.NoError(t, err)
		assert.False(t, decision.Include)
		assert.Equal(t, ReasonExternalCompany, decision.Reason)
	})

	t.Run("company comparison is case-insensitive", func(t *testing.T) {
		_, decision, err := f.Check(billable("p-own", "ORANGIT OY"))
		require.NoError(t, err)
		assert.True(t, decision.Include)
	})

	t.Run("ALL policy includes external company hours", func(t *testing.T) {
		_, decision, err := f.Check(billable("p-all", "Subcontractor Ltd"))
		require.NoError(t, err)
		assert.True(t, decision.Include)
	})
}
