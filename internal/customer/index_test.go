package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

func configRow(projectID, client string, active bool) models.CustomerConfig {
	return models.CustomerConfig{
		ProjectID:     projectID,
		ClientName:    client,
		ServiceName:   client + " service",
		Active:        active,
		IncludedHours: models.HoursAll,
		RateSource:    models.RateEmbedded,
	}
}

func TestBuildIndex(t *testing.T) {
	logger := zap.NewNop()

	t.Run("indexes rows by project id keeping inactive ones", func(t *testing.T) {
		idx, err := BuildIndex([]models.CustomerConfig{
			configRow("p1", "Acme", true),
			configRow("p2", "Globex", false),
		}, logger)
		require.NoError(t, err)

		cfg, ok := idx.Lookup("p1")
		require.True(t, ok)
		assert.True(t, cfg.Active)

		cfg, ok = idx.Lookup("p2")
		require.True(t, ok)
		assert.False(t, cfg.Active, "inactive projects stay in the index")

		assert.Equal(t, []string{"p1", "p2"}, idx.ProjectIDs())
	})

	t.Run("tolerates identical duplicate rows", func(t *testing.T) {
		idx, err := BuildIndex([]models.CustomerConfig{
			configRow("p1", "Acme", true),
			configRow("p1", "Acme", true),
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("fails on conflicting duplicates and reports every conflict", func(t *testing.T) {
		_, err := BuildIndex([]models.CustomerConfig{
			configRow("p1", "Acme", true),
			configRow("p1", "Acme", false),
			configRow("p2", "Globex", true),
			configRow("p2", "Globex Oy", true),
		}, logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateProject)
		assert.Contains(t, err.Error(), "p1")
		assert.Contains(t, err.Error(), "p2")
	})
}
