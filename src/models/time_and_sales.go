package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeAndSalesRecord is one executed trade on the tape.
type TimeAndSalesRecord struct {
	Symbol    string
	Price     decimal.Decimal
	Size      decimal.Decimal
	Side      TapeSide
	Timestamp time.Time
}

func (r *TimeAndSalesRecord) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("TimeAndSalesRecord.Validate: %w", SymbolNotSetErr)
	}

	if r.Price.Sign() <= 0 {
		return fmt.Errorf("TimeAndSalesRecord.Validate: found price %v: %w", r.Price, InvalidTickPriceErr)
	}

	if r.Size.Sign() <= 0 {
		return fmt.Errorf("TimeAndSalesRecord.Validate: found size %v: %w", r.Size, InvalidTickSizeErr)
	}

	if r.Timestamp.IsZero() {
		return fmt.Errorf("TimeAndSalesRecord.Validate: %w", NoTimestampErr)
	}

	return nil
}

func NewTimeAndSalesRecord(symbol string, price, size decimal.Decimal, side TapeSide, timestamp time.Time) (*TimeAndSalesRecord, error) {
	record := &TimeAndSalesRecord{
		Symbol:    symbol,
		Price:     price,
		Size:      size,
		Side:      side,
		Timestamp: timestamp,
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("NewTimeAndSalesRecord: %w", err)
	}

	return record, nil
}
