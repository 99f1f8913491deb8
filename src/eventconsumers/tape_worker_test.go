package eventconsumers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/orderflow-core/src/eventpubsub"
	"github.com/quantfold/orderflow-core/src/marketdata"
	"github.com/quantfold/orderflow-core/src/models"
	"github.com/quantfold/orderflow-core/src/tape"
)

func tick(symbol string, size string, side models.TapeSide, at time.Time) models.TimeAndSalesRecord {
	return models.TimeAndSalesRecord{
		Symbol:    symbol,
		Price:     d("100"),
		Size:      d(size),
		Side:      side,
		Timestamp: at,
	}
}

func TestTapeWorkerProcess(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("out of order batch never reaches the monitor", func(t *testing.T) {
		eventpubsub.Init()
		worker := NewTapeWorker(nil, marketdata.NewValidator(), tape.DefaultConfig())

		worker.process(TapeBatch{Symbol: "AAPL", Records: []models.TimeAndSalesRecord{
			tick("AAPL", "100", models.TapeSideBuy, base.Add(time.Second)),
			tick("AAPL", "100", models.TapeSideBuy, base),
		}})

		assert.Empty(t, worker.monitors)
	})

	t.Run("valid batches feed the symbol monitor", func(t *testing.T) {
		eventpubsub.Init()
		worker := NewTapeWorker(nil, marketdata.NewValidator(), tape.DefaultConfig())

		worker.process(TapeBatch{Symbol: "AAPL", Records: []models.TimeAndSalesRecord{
			tick("AAPL", "300", models.TapeSideBuy, base),
			tick("AAPL", "300", models.TapeSideSell, base.Add(time.Minute)),
		}})

		require.Contains(t, worker.monitors, "AAPL")
		assert.Equal(t, 600.0, worker.monitors["AAPL"].RollingAverage())
	})

	t.Run("sell burst over an established baseline publishes an alert", func(t *testing.T) {
		eventpubsub.Init()
		worker := NewTapeWorker(nil, marketdata.NewValidator(), tape.DefaultConfig())

		alerts := make(chan models.OrderFlowAlert, 1)
		eventpubsub.Subscribe("test", eventpubsub.OrderFlowAlertEvent, func(alert models.OrderFlowAlert) {
			alerts <- alert
		})

		for i := 0; i < 4; i++ {
			worker.process(TapeBatch{Symbol: "AAPL", Records: []models.TimeAndSalesRecord{
				tick("AAPL", "1000", models.TapeSideBuy, base.Add(time.Duration(i)*time.Minute)),
			}})
		}

		worker.process(TapeBatch{Symbol: "AAPL", Records: []models.TimeAndSalesRecord{
			tick("AAPL", "4000", models.TapeSideSell, base.Add(5*time.Minute)),
		}})

		select {
		case alert := <-alerts:
			assert.Equal(t, "AAPL", alert.Symbol)
			assert.Equal(t, models.AlertTypeRedBurst, alert.AlertType)
			assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
			assert.InDelta(t, 4.0, alert.VolumeRatio, 1e-9)
			assert.Equal(t, 1.0, alert.SellFraction)
		case <-time.After(2 * time.Second):
			t.Fatal("no alert published")
		}
	})
}
