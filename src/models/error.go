package models

import "fmt"

var StaleQuoteErr = fmt.Errorf("level 2 snapshot is too stale")
var BidsOutOfOrderErr = fmt.Errorf("bids must be strictly descending by price")
var AsksOutOfOrderErr = fmt.Errorf("asks must be strictly ascending by price")
var TapeOutOfOrderErr = fmt.Errorf("tape timestamps must be non-decreasing")
var InvalidTickPriceErr = fmt.Errorf("tick price must be positive")
var InvalidTickSizeErr = fmt.Errorf("tick size must be positive")
var InvalidBarErr = fmt.Errorf("invalid price bar")
var InsufficientBarsErr = fmt.Errorf("not enough bars to calculate atr")
var StopTooTightErr = fmt.Errorf("stop too tight: stop distance is below the minimum")
var StopTooWideErr = fmt.Errorf("stop too wide: stop distance is above the maximum")
var ZeroRiskPerShareErr = fmt.Errorf("entry and stop prices must differ")
var InvalidQuantityErr = fmt.Errorf("calculated quantity must be positive")
var InvalidBalanceErr = fmt.Errorf("account balance must be positive")
var InvalidRiskPercentErr = fmt.Errorf("risk percent must be between 0 and 100")
var SymbolNotSetErr = fmt.Errorf("symbol not set")
var NoTimestampErr = fmt.Errorf("timestamp not set")

type ErrorDTO struct {
	Msg string `json:"msg"`
}
