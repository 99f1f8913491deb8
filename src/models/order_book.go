package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// OrderBookSnapshot is level 2 depth at an instant. Either side may be
// empty; ordering is enforced by the market data validator, not here.
type OrderBookSnapshot struct {
	Symbol    string
	Timestamp time.Time
	Bids      []BookLevel
	Asks      []BookLevel
}

func (s *OrderBookSnapshot) BestBid() (BookLevel, bool) {
	if len(s.Bids) == 0 {
		return BookLevel{}, false
	}

	return s.Bids[0], true
}

func (s *OrderBookSnapshot) BestAsk() (BookLevel, bool) {
	if len(s.Asks) == 0 {
		return BookLevel{}, false
	}

	return s.Asks[0], true
}
