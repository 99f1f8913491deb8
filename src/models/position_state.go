package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxScaleIns = 3

// PositionState is a snapshot of a live position. Rule evaluators treat it
// as a value: they return a new state alongside the activation and the
// caller persists it. A symbol has exactly one owner, so no locking here.
type PositionState struct {
	Symbol             string
	Side               TradeSide
	EntryPrice         decimal.Decimal
	CurrentPrice       decimal.Decimal
	StopPrice          decimal.Decimal
	Quantity           int64
	OriginalQuantity   int64
	ScaleInCount       int
	CurrentAtr         *decimal.Decimal
	AtrAtLastRecalc    decimal.Decimal
	BreakEvenActivated bool
	TrailingEnabled    bool
	OpenedAt           time.Time
}

// FavorableMove is how far price has moved in the position's direction.
// Negative when the position is under water.
func (p PositionState) FavorableMove() decimal.Decimal {
	if p.Side == TradeSideShort {
		return p.EntryPrice.Sub(p.CurrentPrice)
	}

	return p.CurrentPrice.Sub(p.EntryPrice)
}

// AdverseMove is how far price has moved against the position. Negative
// when the position is profitable.
func (p PositionState) AdverseMove() decimal.Decimal {
	return p.FavorableMove().Neg()
}

func (p PositionState) HasAtr() bool {
	return p.CurrentAtr != nil && p.CurrentAtr.Sign() > 0
}

// NewPositionState opens a position from a plan. AtrAtLastRecalc starts at
// the ATR embedded in the plan's stop when one exists.
func NewPositionState(plan *PositionPlan, atrData *ATRStopData, openedAt time.Time) PositionState {
	state := PositionState{
		Symbol:           plan.Symbol,
		Side:             plan.Side,
		EntryPrice:       plan.EntryPrice,
		CurrentPrice:     plan.EntryPrice,
		StopPrice:        plan.StopPrice,
		Quantity:         plan.Quantity,
		OriginalQuantity: plan.Quantity,
		OpenedAt:         openedAt,
	}

	if atrData != nil {
		atr := atrData.AtrValue
		state.CurrentAtr = &atr
		state.AtrAtLastRecalc = atr
	}

	return state
}
