package tape

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/orderflow-core/src/models"
)

var base = time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

func tick(size string, side models.TapeSide, offset time.Duration) models.TimeAndSalesRecord {
	return models.TimeAndSalesRecord{
		Symbol:    "AAPL",
		Price:     decimal.RequireFromString("100.00"),
		Size:      decimal.RequireFromString(size),
		Side:      side,
		Timestamp: base.Add(offset),
	}
}

func seedBaseline(m *Monitor, volumes ...string) {
	for _, v := range volumes {
		m.DetectRedBurst([]models.TimeAndSalesRecord{tick(v, models.TapeSideBuy, 0)})
	}
}

func TestRollingAverage(t *testing.T) {
	t.Run("empty buffer returns zero", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		assert.Equal(t, 0.0, monitor.RollingAverage())
	})

	t.Run("single tick returns zero elapsed", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		monitor.Record(tick("500", models.TapeSideBuy, 0))

		assert.Equal(t, 0.0, monitor.RollingAverage())
	})

	t.Run("size per elapsed minute", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		monitor.Record(tick("600", models.TapeSideBuy, 0))
		monitor.Record(tick("300", models.TapeSideSell, time.Minute))
		monitor.Record(tick("300", models.TapeSideBuy, 2*time.Minute))

		assert.InDelta(t, 600.0, monitor.RollingAverage(), 1e-9)
	})

	t.Run("ticks outside lookback excluded", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		monitor.Record(tick("100000", models.TapeSideBuy, 0))
		monitor.Record(tick("600", models.TapeSideBuy, 10*time.Minute))
		monitor.Record(tick("600", models.TapeSideBuy, 11*time.Minute))

		assert.InDelta(t, 1200.0, monitor.RollingAverage(), 1e-9)
	})
}

func TestDetectRedBurst(t *testing.T) {
	t.Run("critical on 4x volume with 70 percent sell", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000", "1000", "1000", "1000", "1000", "1000", "1000", "1000", "1000", "1000", "1000", "1000")

		current := []models.TimeAndSalesRecord{
			tick("2800", models.TapeSideSell, time.Hour),
			tick("1200", models.TapeSideBuy, time.Hour+time.Second),
		}

		alert := monitor.DetectRedBurst(current)
		require.NotNil(t, alert)
		assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
		assert.Equal(t, models.AlertTypeRedBurst, alert.AlertType)
		assert.InDelta(t, 4.0, alert.VolumeRatio, 1e-9)
		assert.InDelta(t, 0.7, alert.SellFraction, 1e-9)
	})

	t.Run("no alert on 4x volume with 40 percent sell", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000", "1000", "1000")

		current := []models.TimeAndSalesRecord{
			tick("1600", models.TapeSideSell, time.Hour),
			tick("2400", models.TapeSideBuy, time.Hour+time.Second),
		}

		assert.Nil(t, monitor.DetectRedBurst(current))
	})

	t.Run("warning between spike and red burst thresholds", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000", "1000", "1000")

		current := []models.TimeAndSalesRecord{
			tick("2450", models.TapeSideSell, time.Hour),
			tick("1050", models.TapeSideBuy, time.Hour+time.Second),
		}

		alert := monitor.DetectRedBurst(current)
		require.NotNil(t, alert)
		assert.Equal(t, models.AlertSeverityWarning, alert.Severity)
	})

	t.Run("no alert on heavy sell without volume spike", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000", "1000", "1000")

		current := []models.TimeAndSalesRecord{tick("1000", models.TapeSideSell, time.Hour)}
		assert.Nil(t, monitor.DetectRedBurst(current))
	})

	t.Run("empty input produces nothing and leaves baseline alone", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000")

		assert.Nil(t, monitor.DetectRedBurst(nil))
		assert.Equal(t, 1, monitor.volumes.Len())
	})

	t.Run("first period builds baseline without alerting", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		current := []models.TimeAndSalesRecord{tick("99999", models.TapeSideSell, 0)}

		assert.Nil(t, monitor.DetectRedBurst(current))
		assert.Equal(t, 1, monitor.volumes.Len())
	})

	t.Run("baseline evicts oldest bucket when full", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.VolumeBuckets = 2

		monitor := NewMonitor("AAPL", cfg)
		seedBaseline(monitor, "1000", "1000", "1000")

		assert.Equal(t, 2, monitor.volumes.Len())
	})

	t.Run("baseline mean excludes current period", func(t *testing.T) {
		monitor := NewMonitor("AAPL", DefaultConfig())
		seedBaseline(monitor, "1000")

		// if 4000 were appended before the mean, the ratio would be 1.6 and no alert
		current := []models.TimeAndSalesRecord{tick("4000", models.TapeSideSell, time.Hour)}
		alert := monitor.DetectRedBurst(current)
		require.NotNil(t, alert)
		assert.InDelta(t, 4.0, alert.VolumeRatio, 1e-9)
	})
}
