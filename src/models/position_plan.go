package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionPlan is a sized, risk-bounded trade proposal. PullbackSource
// records where the stop came from ("atr", "pullback", "manual") verbatim
// for the audit trail.
type PositionPlan struct {
	ID              uuid.UUID
	Symbol          string
	Side            TradeSide
	EntryPrice      decimal.Decimal
	StopPrice       decimal.Decimal
	TargetPrice     decimal.Decimal
	Quantity        int64
	RiskAmount      decimal.Decimal
	RewardAmount    decimal.Decimal
	RewardRatio     decimal.Decimal
	StopDistancePct decimal.Decimal
	PullbackSource  string
	CreatedAt       time.Time
}

func (p PositionPlan) String() string {
	return fmt.Sprintf("%s %s %d @%v stop %v target %v (%s)", p.Side, p.Symbol, p.Quantity, p.EntryPrice, p.StopPrice, p.TargetPrice, p.PullbackSource)
}
