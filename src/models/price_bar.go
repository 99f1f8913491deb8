package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is a single OHLCV bar. Prices are decimal so downstream risk
// math never accumulates float drift.
type PriceBar struct {
	Symbol    string
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

func (b *PriceBar) Validate() error {
	if b.Symbol == "" {
		return fmt.Errorf("PriceBar.Validate: %w", SymbolNotSetErr)
	}

	if b.Timestamp.IsZero() {
		return fmt.Errorf("PriceBar.Validate: %w", NoTimestampErr)
	}

	for _, p := range []decimal.Decimal{b.Open, b.High, b.Low, b.Close} {
		if p.Sign() <= 0 {
			return fmt.Errorf("PriceBar.Validate: all prices must be positive: %w", InvalidBarErr)
		}
	}

	if b.High.LessThan(b.Open) || b.High.LessThan(b.Low) || b.High.LessThan(b.Close) {
		return fmt.Errorf("PriceBar.Validate: high %v is below another price: %w", b.High, InvalidBarErr)
	}

	if b.Low.GreaterThan(b.Open) || b.Low.GreaterThan(b.Close) {
		return fmt.Errorf("PriceBar.Validate: low %v is above another price: %w", b.Low, InvalidBarErr)
	}

	if b.Volume.Sign() < 0 {
		return fmt.Errorf("PriceBar.Validate: volume must not be negative: %w", InvalidBarErr)
	}

	return nil
}

func NewPriceBar(symbol string, timestamp time.Time, open, high, low, close_, volume decimal.Decimal) (*PriceBar, error) {
	bar := &PriceBar{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close_,
		Volume:    volume,
	}

	if err := bar.Validate(); err != nil {
		return nil, fmt.Errorf("NewPriceBar: %w", err)
	}

	return bar, nil
}
