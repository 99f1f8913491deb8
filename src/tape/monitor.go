package tape

import (
	"time"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/collections"
	"github.com/quantfold/orderflow-core/src/models"
)

const (
	DefaultTickLookback          = 5 * time.Minute
	DefaultTickCapacity          = 2048
	DefaultVolumeBuckets         = 12
	DefaultVolumeSpikeThreshold  = 3.0
	DefaultRedBurstThreshold     = 4.0
	DefaultSellFractionThreshold = 0.6
)

type Config struct {
	TickLookback          time.Duration
	TickCapacity          int
	VolumeBuckets         int
	VolumeSpikeThreshold  float64
	RedBurstThreshold     float64
	SellFractionThreshold float64
}

func DefaultConfig() Config {
	return Config{
		TickLookback:          DefaultTickLookback,
		TickCapacity:          DefaultTickCapacity,
		VolumeBuckets:         DefaultVolumeBuckets,
		VolumeSpikeThreshold:  DefaultVolumeSpikeThreshold,
		RedBurstThreshold:     DefaultRedBurstThreshold,
		SellFractionThreshold: DefaultSellFractionThreshold,
	}
}

// Monitor watches one symbol's tape. Both windows are bounded by count, so
// memory stays fixed no matter how quiet or busy the market is. Single
// writer per symbol: callers serialize access the same way they serialize
// rule evaluation.
type Monitor struct {
	Symbol  string
	cfg     Config
	ticks   *collections.Ring[models.TimeAndSalesRecord]
	volumes *collections.Ring[float64]
}

func NewMonitor(symbol string, cfg Config) *Monitor {
	if cfg.TickCapacity <= 0 {
		cfg.TickCapacity = DefaultTickCapacity
	}
	if cfg.VolumeBuckets <= 0 {
		cfg.VolumeBuckets = DefaultVolumeBuckets
	}
	if cfg.TickLookback <= 0 {
		cfg.TickLookback = DefaultTickLookback
	}

	return &Monitor{
		Symbol:  symbol,
		cfg:     cfg,
		ticks:   collections.NewRing[models.TimeAndSalesRecord](cfg.TickCapacity),
		volumes: collections.NewRing[float64](cfg.VolumeBuckets),
	}
}

func (m *Monitor) Record(tick models.TimeAndSalesRecord) {
	m.ticks.Push(tick)
}

// RollingAverage is traded size per minute over the look-back window. An
// empty buffer or zero elapsed time yields 0.0, not an error.
func (m *Monitor) RollingAverage() float64 {
	ticks := m.ticks.Values()
	if len(ticks) == 0 {
		return 0.0
	}

	newest := ticks[len(ticks)-1].Timestamp
	cutoff := newest.Add(-m.cfg.TickLookback)

	var total float64
	oldest := newest
	for _, tick := range ticks {
		if tick.Timestamp.Before(cutoff) {
			continue
		}

		if tick.Timestamp.Before(oldest) {
			oldest = tick.Timestamp
		}

		total += tick.Size.InexactFloat64()
	}

	elapsed := newest.Sub(oldest).Minutes()
	if elapsed <= 0 {
		return 0.0
	}

	return total / elapsed
}

// DetectRedBurst compares the current period's volume against the rolling
// baseline and checks directional imbalance. Both conditions must hold:
// a high-volume rally is not a sell-off, and a thin all-sell drip is not a
// burst. The baseline mean is taken before the current volume is appended,
// so the current period never dilutes its own comparison.
func (m *Monitor) DetectRedBurst(current []models.TimeAndSalesRecord) *models.OrderFlowAlert {
	if len(current) == 0 {
		return nil
	}

	var totalSize, sellSize float64
	for _, tick := range current {
		size := tick.Size.InexactFloat64()
		totalSize += size
		if tick.Side == models.TapeSideSell {
			sellSize += size
		}
	}

	if totalSize <= 0 {
		return nil
	}

	baselineReady := m.volumes.Len() > 0

	var baseline float64
	if baselineReady {
		baseline, _ = stats.Mean(m.volumes.Values())
	}

	m.volumes.Push(totalSize)

	if !baselineReady || baseline <= 0 {
		return nil
	}

	volumeRatio := totalSize / baseline
	sellFraction := sellSize / totalSize

	if volumeRatio < m.cfg.VolumeSpikeThreshold || sellFraction < m.cfg.SellFractionThreshold {
		return nil
	}

	severity := models.AlertSeverityWarning
	if volumeRatio >= m.cfg.RedBurstThreshold {
		severity = models.AlertSeverityCritical
	}

	log.Warnf("Monitor.DetectRedBurst: %s volume ratio %.2f, sell fraction %.2f (%s)", m.Symbol, volumeRatio, sellFraction, severity)

	return &models.OrderFlowAlert{
		Symbol:       m.Symbol,
		AlertType:    models.AlertTypeRedBurst,
		Severity:     severity,
		VolumeRatio:  volumeRatio,
		SellFraction: sellFraction,
		Timestamp:    current[len(current)-1].Timestamp,
	}
}
