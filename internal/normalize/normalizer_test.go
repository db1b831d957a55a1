package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

func TestNormalizer_Normalize(t *testing.T) {
	logger := zap.NewNop()
	n := New(logger)

	t.Run("converts minutes to hours with rounding", func(t *testing.T) {
		items, failures := n.Normalize([]RawRow{
			{Number: 2, Fields: map[string]string{
				"projectId":     "12345",
				"projectTask":   "Development",
				"actualMinutes": "90",
				"billable":      "True",
				"date":          "2025-02-10",
			}},
			{Number: 3, Fields: map[string]string{
				"projectId":     "12345",
				"projectTask":   "Development",
				"actualMinutes": "5",
				"billable":      "True",
				"date":          "2025-02-11",
			}},
		})

		require.Empty(t, failures)
		require.Len(t, items, 2)
		assert.True(t, items[0].Quantity.Equal(decimal.RequireFromString("1.5")),
			"90 minutes should be 1.5 hours, got %s", items[0].Quantity)
		assert.True(t, items[1].Quantity.Equal(decimal.RequireFromString("0.08")),
			"5 minutes should round to 0.08 hours, got %s", items[1].Quantity)
		assert.Equal(t, models.UnitHours, items[0].Unit)
	})

	t.Run("prefers task rate over opening rate", func(t *testing.T) {
		items, failures := n.Normalize([]RawRow{
			{Number: 2, Fields: map[string]string{
				"projectId":          "12345",
				"actualHours":        "8",
				"taskHourlyPrice":    "120",
				"openingHourlyPrice": "95",
				"billable":           "True",
			}},
			{Number: 3, Fields: map[string]string{
				"projectId":          "12345",
				"actualHours":        "4",
				"openingHourlyPrice": "95",
				"billable":           "True",
			}},
		})

		require.Empty(t, failures)
		require.Len(t, items, 2)
		require.True(t, items[0].HasEmbeddedRate())
		assert.True(t, items[0].EmbeddedRate.Equal(decimal.NewFromInt(120)))
		require.True(t, items[1].HasEmbeddedRate())
		assert.True(t, items[1].EmbeddedRate.Equal(decimal.NewFromInt(95)))
	})

	t.Run("parses boolean spellings case-insensitively", func(t *testing.T) {
		for _, spelling := range []string{"True", "true", "YES", "yes", "1"} {
			items, failures := n.Normalize([]RawRow{
				{Number: 2, Fields: map[string]string{
					"projectId":   "p1",
					"actualHours": "1",
					"billable":    spelling,
				}},
			})
			require.Empty(t, failures, "spelling %q", spelling)
			require.Len(t, items, 1)
			assert.True(t, items[0].Billable, "spelling %q", spelling)
		}
	})

	t.Run("fixed amount row becomes FIXED unit with embedded rate", func(t *testing.T) {
		items, failures := n.Normalize([]RawRow{
			{Number: 5, Fields: map[string]string{
				"projectId":   "p9",
				"fixedAmount": "1 250,50 €",
				"billable":    "yes",
				"description": "AWS usage",
			}},
		})

		require.Empty(t, failures)
		require.Len(t, items, 1)
		assert.Equal(t, models.UnitFixed, items[0].Unit)
		assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(1)))
		require.True(t, items[0].HasEmbeddedRate())
		assert.True(t, items[0].EmbeddedRate.Equal(decimal.RequireFromString("1250.50")))
	})

	t.Run("collects malformed rows without aborting the batch", func(t *testing.T) {
		items, failures := n.Normalize([]RawRow{
			{Number: 2, Fields: map[string]string{
				"projectId":   "ok",
				"actualHours": "2",
				"billable":    "True",
			}},
			{Number: 3, Fields: map[string]string{
				"actualHours": "2",
				"billable":    "True",
			}},
			{Number: 4, Fields: map[string]string{
				"projectId":   "bad-qty",
				"actualHours": "eight",
				"billable":    "True",
			}},
			{Number: 5, Fields: map[string]string{
				"projectId":   "bad-bool",
				"actualHours": "1",
				"billable":    "maybe",
			}},
		})

		require.Len(t, items, 1)
		assert.Equal(t, "ok", items[0].ProjectID)
		require.Len(t, failures, 3)
		assert.Equal(t, 3, failures[0].SourceRow)
		assert.Equal(t, "malformed row", failures[0].Reason)
		assert.Contains(t, failures[1].Detail, "quantity")
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, failures := n.Normalize([]RawRow{
			{Number: 2, Fields: map[string]string{
				"projectId":   "p1",
				"actualHours": "-2",
				"billable":    "True",
			}},
		})
		require.Len(t, failures, 1)
		assert.Contains(t, failures[0].Detail, "negative")
	})
}
