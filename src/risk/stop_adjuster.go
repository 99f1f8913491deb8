package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantfold/orderflow-core/src/indicators"
	"github.com/quantfold/orderflow-core/src/models"
)

// StopAdjuster decides when a position's stop must be recomputed because
// volatility has drifted, and applies tighten-only trailing otherwise.
// Only one adjustment is returned per call: an ATR recalculation takes the
// cycle, trailing runs only when no recalculation fired.
type StopAdjuster struct {
	AtrRecalcThreshold decimal.Decimal
	AtrMultiplier      decimal.Decimal
}

func NewStopAdjuster() *StopAdjuster {
	return &StopAdjuster{
		AtrRecalcThreshold: decimal.RequireFromString("0.20"),
		AtrMultiplier:      decimal.RequireFromString("2.0"),
	}
}

func stopDistancePct(price, stop decimal.Decimal) decimal.Decimal {
	return price.Sub(stop).Abs().Div(price).Mul(oneHundred)
}

func (a *StopAdjuster) favorable(side models.TradeSide, candidate, current decimal.Decimal) bool {
	if side == models.TradeSideShort {
		return candidate.LessThan(current)
	}

	return candidate.GreaterThan(current)
}

// Adjust returns the successor state and at most one stop move. The
// recomputed stop must stay inside the planner's distance band; a
// candidate outside it is discarded. Once break-even has fired the stop
// never returns to the adverse side of the entry price.
func (a *StopAdjuster) Adjust(state models.PositionState) (models.PositionState, models.RuleActivation) {
	if !state.HasAtr() {
		return state, models.Hold("stop adjust: atr unavailable")
	}

	currentAtr := *state.CurrentAtr

	if state.AtrAtLastRecalc.Sign() > 0 {
		drift := currentAtr.Sub(state.AtrAtLastRecalc).Abs().Div(state.AtrAtLastRecalc)

		if drift.GreaterThanOrEqual(a.AtrRecalcThreshold) {
			stopData := indicators.CalculateAtrStop(state.CurrentPrice, currentAtr, a.AtrMultiplier, state.Side)
			candidate := stopData.StopPrice

			distance := stopDistancePct(state.CurrentPrice, candidate)
			if distance.LessThan(MinStopDistancePct) || distance.GreaterThan(MaxStopDistancePct) {
				return state, models.Hold(fmt.Sprintf("stop adjust: ATR recalculation produced stop distance %v%% outside [%v%%, %v%%]", distance, MinStopDistancePct, MaxStopDistancePct))
			}

			if state.BreakEvenActivated && !a.favorable(state.Side, candidate, state.EntryPrice) && !candidate.Equal(state.EntryPrice) {
				return state, models.Hold(fmt.Sprintf("stop adjust: ATR recalculation stop %v would undo break-even at entry %v", candidate, state.EntryPrice))
			}

			state.StopPrice = candidate
			state.AtrAtLastRecalc = currentAtr

			return state, models.RuleActivation{
				Action:       models.RuleActionMoveStop,
				Reason:       fmt.Sprintf("ATR recalculation: atr drift %v reached threshold %v, stop to %v", drift, a.AtrRecalcThreshold, candidate),
				NewStopPrice: &candidate,
			}
		}
	}

	if !state.TrailingEnabled {
		return state, models.Hold("stop adjust: no adjustment required")
	}

	stopData := indicators.CalculateAtrStop(state.CurrentPrice, currentAtr, a.AtrMultiplier, state.Side)
	candidate := stopData.StopPrice

	// trailing only tightens: a candidate that would move the stop against
	// the position is discarded
	if !a.favorable(state.Side, candidate, state.StopPrice) {
		return state, models.Hold(fmt.Sprintf("stop adjust: trailing stop %v would loosen current stop %v", candidate, state.StopPrice))
	}

	state.StopPrice = candidate

	return state, models.RuleActivation{
		Action:       models.RuleActionMoveStop,
		Reason:       fmt.Sprintf("trailing stop: tightened to %v behind price %v", candidate, state.CurrentPrice),
		NewStopPrice: &candidate,
	}
}
