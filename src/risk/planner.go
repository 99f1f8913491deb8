package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/models"
)

var MinStopDistancePct = decimal.RequireFromString("0.7")
var MaxStopDistancePct = decimal.RequireFromString("10.0")

var oneHundred = decimal.NewFromInt(100)

// PlanRequest carries everything the planner needs to size a trade.
// AtrData is optional: when present it is recorded on the plan, but the
// stop distance bounds apply identically to ATR and manual stops.
type PlanRequest struct {
	Symbol         string
	EntryPrice     decimal.Decimal
	StopPrice      decimal.Decimal
	TargetRR       decimal.Decimal
	Balance        decimal.Decimal
	RiskPct        decimal.Decimal
	PullbackSource string
	AtrData        *models.ATRStopData
}

func (req PlanRequest) side() (models.TradeSide, error) {
	switch req.StopPrice.Cmp(req.EntryPrice) {
	case -1:
		return models.TradeSideLong, nil
	case 1:
		return models.TradeSideShort, nil
	default:
		return models.TradeSideLong, models.ZeroRiskPerShareErr
	}
}

// CalculatePositionPlan turns an entry/stop/target and a risk budget into
// a bounds-checked position size. Every stop, whatever its source, passes
// through the same 0.7-10% distance gate here.
func CalculatePositionPlan(req PlanRequest) (*models.PositionPlan, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("CalculatePositionPlan: %w", models.SymbolNotSetErr)
	}

	if req.Balance.Sign() <= 0 {
		return nil, fmt.Errorf("CalculatePositionPlan: found balance %v: %w", req.Balance, models.InvalidBalanceErr)
	}

	if req.RiskPct.Sign() <= 0 || req.RiskPct.GreaterThan(oneHundred) {
		return nil, fmt.Errorf("CalculatePositionPlan: found risk percent %v: %w", req.RiskPct, models.InvalidRiskPercentErr)
	}

	if req.EntryPrice.Sign() <= 0 || req.StopPrice.Sign() <= 0 {
		return nil, fmt.Errorf("CalculatePositionPlan: entry %v and stop %v must be positive", req.EntryPrice, req.StopPrice)
	}

	if req.TargetRR.Sign() <= 0 {
		return nil, fmt.Errorf("CalculatePositionPlan: target R:R %v must be positive", req.TargetRR)
	}

	side, err := req.side()
	if err != nil {
		return nil, fmt.Errorf("CalculatePositionPlan: %w", err)
	}

	riskAmount := req.Balance.Mul(req.RiskPct).Div(oneHundred)
	riskPerShare := req.EntryPrice.Sub(req.StopPrice).Abs()
	stopDistancePct := riskPerShare.Div(req.EntryPrice).Mul(oneHundred)

	if stopDistancePct.LessThan(MinStopDistancePct) {
		return nil, fmt.Errorf("CalculatePositionPlan: stop distance %v%% from source %q is below %v%%: %w",
			stopDistancePct, req.PullbackSource, MinStopDistancePct, models.StopTooTightErr)
	}

	if stopDistancePct.GreaterThan(MaxStopDistancePct) {
		return nil, fmt.Errorf("CalculatePositionPlan: stop distance %v%% from source %q is above %v%%: %w",
			stopDistancePct, req.PullbackSource, MaxStopDistancePct, models.StopTooWideErr)
	}

	quantity := riskAmount.Div(riskPerShare).IntPart()
	if quantity <= 0 {
		return nil, fmt.Errorf("CalculatePositionPlan: risk amount %v cannot buy a single share at %v risk per share: %w",
			riskAmount, riskPerShare, models.InvalidQuantityErr)
	}

	targetOffset := req.TargetRR.Mul(riskPerShare)
	targetPrice := req.EntryPrice.Add(targetOffset)
	if side == models.TradeSideShort {
		targetPrice = req.EntryPrice.Sub(targetOffset)
	}

	rewardAmount := decimal.NewFromInt(quantity).Mul(targetPrice.Sub(req.EntryPrice).Abs())
	rewardRatio := rewardAmount.Div(riskAmount)

	minRatio := req.TargetRR.Mul(decimal.RequireFromString("0.95"))
	if rewardRatio.LessThan(minRatio) {
		log.Warnf("CalculatePositionPlan: %s reward ratio %v dropped below %v after rounding quantity to %d",
			req.Symbol, rewardRatio, minRatio, quantity)
	}

	return &models.PositionPlan{
		ID:              uuid.New(),
		Symbol:          req.Symbol,
		Side:            side,
		EntryPrice:      req.EntryPrice,
		StopPrice:       req.StopPrice,
		TargetPrice:     targetPrice,
		Quantity:        quantity,
		RiskAmount:      riskAmount,
		RewardAmount:    rewardAmount,
		RewardRatio:     rewardRatio,
		StopDistancePct: stopDistancePct,
		PullbackSource:  req.PullbackSource,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
