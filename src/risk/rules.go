package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantfold/orderflow-core/src/models"
)

// PortfolioRisk is an optional ceiling on aggregate exposure. When the
// current portfolio risk has reached the ceiling, an otherwise-valid
// scale-in signal is suppressed.
type PortfolioRisk struct {
	CurrentPct decimal.Decimal
	CeilingPct decimal.Decimal
}

// RuleEngine evaluates the three trade management rules. All evaluators
// are pure: they take a position state and return the successor state with
// an activation, leaving persistence to the owning caller. Idempotence
// (break-even fires once, scale-in caps at three) holds only while each
// symbol is evaluated by a single owner at a time.
type RuleEngine struct {
	BreakEvenAtrMultiple    decimal.Decimal
	ScaleInAtrMultiple      decimal.Decimal
	CatastrophicAtrMultiple decimal.Decimal
	ScaleInFraction         decimal.Decimal
}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{
		BreakEvenAtrMultiple:    decimal.RequireFromString("2.0"),
		ScaleInAtrMultiple:      decimal.RequireFromString("1.5"),
		CatastrophicAtrMultiple: decimal.RequireFromString("3.0"),
		ScaleInFraction:         decimal.RequireFromString("0.5"),
	}
}

// EvaluateBreakEven moves the stop to the entry price once the position is
// up by BreakEvenAtrMultiple times ATR. It never fires twice.
func (e *RuleEngine) EvaluateBreakEven(state models.PositionState) (models.PositionState, models.RuleActivation) {
	if state.BreakEvenActivated {
		return state, models.Hold("break-even already activated")
	}

	if !state.HasAtr() {
		return state, models.Hold("break-even: atr unavailable")
	}

	threshold := state.CurrentAtr.Mul(e.BreakEvenAtrMultiple)
	move := state.FavorableMove()

	if move.LessThan(threshold) {
		return state, models.Hold(fmt.Sprintf("break-even: favorable move %v below %vx atr threshold %v", move, e.BreakEvenAtrMultiple, threshold))
	}

	newStop := state.EntryPrice
	state.StopPrice = newStop
	state.BreakEvenActivated = true

	return state, models.RuleActivation{
		Action:       models.RuleActionMoveStop,
		Reason:       fmt.Sprintf("break-even: favorable move %v reached %vx atr threshold %v, stop to entry %v", move, e.BreakEvenAtrMultiple, threshold, newStop),
		NewStopPrice: &newStop,
	}
}

// EvaluateScaleIn adds half the original size after a favorable move of
// ScaleInAtrMultiple times ATR, capped at MaxScaleIns additions and gated
// by the portfolio risk ceiling when one is supplied.
func (e *RuleEngine) EvaluateScaleIn(state models.PositionState, portfolio *PortfolioRisk) (models.PositionState, models.RuleActivation) {
	if state.ScaleInCount >= models.MaxScaleIns {
		return state, models.Hold(fmt.Sprintf("scale-in: cap of %d additions reached", models.MaxScaleIns))
	}

	if !state.HasAtr() {
		return state, models.Hold("scale-in: atr unavailable")
	}

	threshold := state.CurrentAtr.Mul(e.ScaleInAtrMultiple)
	move := state.FavorableMove()

	if move.LessThan(threshold) {
		return state, models.Hold(fmt.Sprintf("scale-in: favorable move %v below %vx atr threshold %v", move, e.ScaleInAtrMultiple, threshold))
	}

	if portfolio != nil && portfolio.CurrentPct.GreaterThanOrEqual(portfolio.CeilingPct) {
		return state, models.Hold(fmt.Sprintf("scale-in: portfolio risk %v%% at or above ceiling %v%%", portfolio.CurrentPct, portfolio.CeilingPct))
	}

	addQuantity := decimal.NewFromInt(state.OriginalQuantity).Mul(e.ScaleInFraction).IntPart()
	if addQuantity <= 0 {
		return state, models.Hold(fmt.Sprintf("scale-in: %v of original quantity %d rounds to zero shares", e.ScaleInFraction, state.OriginalQuantity))
	}

	state.Quantity += addQuantity
	state.ScaleInCount++

	return state, models.RuleActivation{
		Action:   models.RuleActionAddPosition,
		Reason:   fmt.Sprintf("scale-in %d/%d: favorable move %v reached %vx atr threshold %v", state.ScaleInCount, models.MaxScaleIns, move, e.ScaleInAtrMultiple, threshold),
		Quantity: addQuantity,
	}
}

// EvaluateCatastrophicExit closes the full position on an adverse move of
// CatastrophicAtrMultiple times ATR. It overrides every other rule and is
// checked every cycle.
func (e *RuleEngine) EvaluateCatastrophicExit(state models.PositionState) (models.PositionState, models.RuleActivation) {
	if !state.HasAtr() {
		return state, models.Hold("catastrophic exit: atr unavailable")
	}

	threshold := state.CurrentAtr.Mul(e.CatastrophicAtrMultiple)
	move := state.AdverseMove()

	if move.LessThan(threshold) {
		return state, models.Hold(fmt.Sprintf("catastrophic exit: adverse move %v below %vx atr threshold %v", move, e.CatastrophicAtrMultiple, threshold))
	}

	fullQuantity := state.Quantity
	state.Quantity = 0

	return state, models.RuleActivation{
		Action:   models.RuleActionClosePosition,
		Reason:   fmt.Sprintf("catastrophic exit: adverse move %v reached %vx atr threshold %v, closing %d shares", move, e.CatastrophicAtrMultiple, threshold, fullQuantity),
		Quantity: fullQuantity,
	}
}

// EvaluateAll runs the rules in precedence order: catastrophic exit first,
// then break-even, then scale-in. The first non-hold outcome wins the
// cycle.
func (e *RuleEngine) EvaluateAll(state models.PositionState, portfolio *PortfolioRisk) (models.PositionState, models.RuleActivation) {
	next, activation := e.EvaluateCatastrophicExit(state)
	if activation.Action != models.RuleActionHold {
		return next, activation
	}

	next, activation = e.EvaluateBreakEven(state)
	if activation.Action != models.RuleActionHold {
		return next, activation
	}

	return e.EvaluateScaleIn(state, portfolio)
}
