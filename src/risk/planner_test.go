package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/orderflow-core/src/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculatePositionPlan(t *testing.T) {
	t.Run("7 percent stop sizes to 14 shares", func(t *testing.T) {
		plan, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("93.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("1"),
			PullbackSource: "manual",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(14), plan.Quantity)
		assert.True(t, plan.RiskAmount.Equal(d("100")), "risk amount %v", plan.RiskAmount)
		assert.True(t, plan.StopDistancePct.Equal(d("7")), "stop distance %v", plan.StopDistancePct)
		assert.Equal(t, models.TradeSideLong, plan.Side)
		assert.True(t, plan.TargetPrice.Equal(d("114.00")), "target %v", plan.TargetPrice)
		assert.Equal(t, "manual", plan.PullbackSource)
	})

	t.Run("0.4 percent stop rejected as too tight", func(t *testing.T) {
		for _, source := range []string{"atr", "pullback", "manual"} {
			_, err := CalculatePositionPlan(PlanRequest{
				Symbol:         "NVDA",
				EntryPrice:     d("250.00"),
				StopPrice:      d("249.00"),
				TargetRR:       d("2.0"),
				Balance:        d("10000"),
				RiskPct:        d("1"),
				PullbackSource: source,
			})
			assert.ErrorIs(t, err, models.StopTooTightErr, "source %s", source)
			assert.Contains(t, err.Error(), "stop too tight")
		}
	})

	t.Run("12 percent stop rejected as too wide", func(t *testing.T) {
		_, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("88.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("1"),
			PullbackSource: "manual",
		})
		assert.ErrorIs(t, err, models.StopTooWideErr)
		assert.Contains(t, err.Error(), "stop too wide")
	})

	t.Run("quantity is exact floor of risk over risk per share", func(t *testing.T) {
		plan, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("97.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("1"),
			PullbackSource: "pullback",
		})
		require.NoError(t, err)

		// 100 / 3 = 33.33 -> 33
		assert.Equal(t, int64(33), plan.Quantity)
	})

	t.Run("reward ratio within rounding tolerance", func(t *testing.T) {
		plan, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("97.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("1"),
			PullbackSource: "pullback",
		})
		require.NoError(t, err)

		minRatio := d("2.0").Mul(d("0.95"))
		assert.True(t, plan.RewardRatio.GreaterThanOrEqual(minRatio), "reward ratio %v", plan.RewardRatio)
	})

	t.Run("short side target below entry", func(t *testing.T) {
		plan, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("105.00"),
			TargetRR:       d("3.0"),
			Balance:        d("10000"),
			RiskPct:        d("2"),
			PullbackSource: "atr",
		})
		require.NoError(t, err)

		assert.Equal(t, models.TradeSideShort, plan.Side)
		assert.True(t, plan.TargetPrice.Equal(d("85.00")), "target %v", plan.TargetPrice)
	})

	t.Run("zero risk per share", func(t *testing.T) {
		_, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("100.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("1"),
			PullbackSource: "manual",
		})
		assert.ErrorIs(t, err, models.ZeroRiskPerShareErr)
	})

	t.Run("risk budget too small for one share", func(t *testing.T) {
		_, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("93.00"),
			TargetRR:       d("2.0"),
			Balance:        d("100"),
			RiskPct:        d("1"),
			PullbackSource: "manual",
		})
		assert.ErrorIs(t, err, models.InvalidQuantityErr)
	})

	t.Run("invalid balance", func(t *testing.T) {
		_, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("93.00"),
			TargetRR:       d("2.0"),
			Balance:        d("0"),
			RiskPct:        d("1"),
			PullbackSource: "manual",
		})
		assert.ErrorIs(t, err, models.InvalidBalanceErr)
	})

	t.Run("invalid risk percent", func(t *testing.T) {
		_, err := CalculatePositionPlan(PlanRequest{
			Symbol:         "AAPL",
			EntryPrice:     d("100.00"),
			StopPrice:      d("93.00"),
			TargetRR:       d("2.0"),
			Balance:        d("10000"),
			RiskPct:        d("101"),
			PullbackSource: "manual",
		})
		assert.ErrorIs(t, err, models.InvalidRiskPercentErr)
	})
}
