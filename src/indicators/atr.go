package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantfold/orderflow-core/src/models"
)

const DefaultAtrPeriod = 14

func trueRange(bar models.PriceBar, prevClose decimal.Decimal) decimal.Decimal {
	highLow := bar.High.Sub(bar.Low)
	highClose := bar.High.Sub(prevClose).Abs()
	lowClose := bar.Low.Sub(prevClose).Abs()

	tr := highLow
	if highClose.GreaterThan(tr) {
		tr = highClose
	}
	if lowClose.GreaterThan(tr) {
		tr = lowClose
	}

	return tr
}

// CalculateAtr returns the simple mean of the trailing `period` true
// ranges. The first bar has no previous close and contributes no range.
// Fewer than `period` usable bars is an error, never a partial-window
// value: a stop sized off a short window would be silently wrong money.
func CalculateAtr(bars []models.PriceBar, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, fmt.Errorf("CalculateAtr: period must be positive, got %d", period)
	}

	usable := len(bars) - 1
	if usable < period {
		return decimal.Zero, fmt.Errorf("CalculateAtr: need %d usable bars, have %d: %w", period, usable, models.InsufficientBarsErr)
	}

	ranges := make([]decimal.Decimal, 0, usable)
	for i := 1; i < len(bars); i++ {
		ranges = append(ranges, trueRange(bars[i], bars[i-1].Close))
	}

	sum := decimal.Zero
	for _, tr := range ranges[len(ranges)-period:] {
		sum = sum.Add(tr)
	}

	return sum.Div(decimal.NewFromInt(int64(period))), nil
}

// CalculateAtrStop derives a volatility-scaled stop from an entry price.
// The 0.7-10% distance band is deliberately not enforced here: ATR stops
// and manual stops share one safety gate in the position planner.
func CalculateAtrStop(entry, atr, multiplier decimal.Decimal, side models.TradeSide) models.ATRStopData {
	offset := atr.Mul(multiplier)

	stop := entry.Sub(offset)
	if side == models.TradeSideShort {
		stop = entry.Add(offset)
	}

	return models.ATRStopData{
		EntryPrice:    entry,
		AtrValue:      atr,
		AtrMultiplier: multiplier,
		StopPrice:     stop,
		Side:          side,
		Source:        models.AtrStopSource,
	}
}

// Atr is the streaming form for consumers that see bars one at a time.
// Update returns false until the warm-up window has filled.
type Atr struct {
	Period    int
	prevClose *decimal.Decimal
	ranges    []decimal.Decimal
}

func NewAtr(period int) *Atr {
	return &Atr{
		Period: period,
	}
}

func (a *Atr) Update(bar models.PriceBar) (bool, decimal.Decimal) {
	if a.prevClose == nil {
		c := bar.Close
		a.prevClose = &c
		return false, decimal.Zero
	}

	tr := trueRange(bar, *a.prevClose)
	c := bar.Close
	a.prevClose = &c

	if len(a.ranges) < a.Period {
		a.ranges = append(a.ranges, tr)
	} else {
		a.ranges = append(a.ranges[1:], tr)
	}

	if len(a.ranges) < a.Period {
		return false, decimal.Zero
	}

	sum := decimal.Zero
	for _, r := range a.ranges {
		sum = sum.Add(r)
	}

	return true, sum.Div(decimal.NewFromInt(int64(a.Period)))
}
