package models

import "github.com/shopspring/decimal"

type RuleAction string

const (
	RuleActionHold          RuleAction = "hold"
	RuleActionMoveStop      RuleAction = "move_stop"
	RuleActionAddPosition   RuleAction = "add_position"
	RuleActionClosePosition RuleAction = "close_position"
)

// RuleActivation is the outcome of one rule evaluation. Reason carries the
// state, threshold and measured value so an audit log entry can be written
// from the activation alone.
type RuleActivation struct {
	Action       RuleAction
	Reason       string
	Quantity     int64
	NewStopPrice *decimal.Decimal
}

func Hold(reason string) RuleActivation {
	return RuleActivation{
		Action: RuleActionHold,
		Reason: reason,
	}
}
