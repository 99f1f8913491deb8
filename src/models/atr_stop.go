package models

import "github.com/shopspring/decimal"

const AtrStopSource = "atr"

// ATRStopData is a volatility-derived stop. Source is always "atr" so the
// audit trail can distinguish these from pullback or manual stops.
type ATRStopData struct {
	EntryPrice    decimal.Decimal
	AtrValue      decimal.Decimal
	AtrMultiplier decimal.Decimal
	StopPrice     decimal.Decimal
	Side          TradeSide
	Source        string
}
