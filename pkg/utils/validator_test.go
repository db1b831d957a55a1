package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("laskutus@barona.fi"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(""))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("28.2.2025")
	assert.Error(t, err)
}

func TestValidateMonth(t *testing.T) {
	assert.NoError(t, ValidateMonth(1))
	assert.NoError(t, ValidateMonth(12))
	assert.Error(t, ValidateMonth(0))
	assert.Error(t, ValidateMonth(13))
}
