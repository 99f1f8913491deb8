package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/orderflow-core/src/models"
)

func TestImportPriceBars(t *testing.T) {
	writeCsv := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "bars.csv")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("loads valid bars", func(t *testing.T) {
		path := writeCsv(t, "symbol,timestamp,open,high,low,close,volume\n"+
			"AAPL,2024-06-03T14:30:00Z,100.00,102.00,99.50,101.25,50000\n"+
			"AAPL,2024-06-03T14:35:00Z,101.25,103.00,101.00,102.75,42000\n")

		bars, err := ImportPriceBars(path)
		require.NoError(t, err)
		require.Len(t, bars, 2)

		assert.Equal(t, "AAPL", bars[0].Symbol)
		assert.True(t, bars[0].Open.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, bars[1].Close.Equal(decimal.RequireFromString("102.75")))
	})

	t.Run("rejects malformed bar", func(t *testing.T) {
		path := writeCsv(t, "symbol,timestamp,open,high,low,close,volume\n"+
			"AAPL,2024-06-03T14:30:00Z,100.00,99.00,99.50,101.25,50000\n")

		_, err := ImportPriceBars(path)
		assert.ErrorIs(t, err, models.InvalidBarErr)
	})

	t.Run("rejects bad timestamp", func(t *testing.T) {
		path := writeCsv(t, "symbol,timestamp,open,high,low,close,volume\n"+
			"AAPL,yesterday,100.00,102.00,99.50,101.25,50000\n")

		_, err := ImportPriceBars(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ImportPriceBars("/nonexistent/bars.csv")
		assert.Error(t, err)
	})
}
