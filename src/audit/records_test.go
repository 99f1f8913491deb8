package audit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderRecordValidate(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, status := range []OrderStatus{OrderStatusPending, OrderStatusFilled, OrderStatusPartial, OrderStatusRejected, OrderStatusCancelled} {
			record := OrderRecord{Symbol: "AAPL", Quantity: 10, Status: string(status)}
			assert.NoError(t, record.Validate(), "status %s", status)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		record := OrderRecord{Symbol: "AAPL", Quantity: 10, Status: "WORKING"}
		assert.ErrorIs(t, record.Validate(), InvalidOrderStatusErr)
	})

	t.Run("overfill rejected", func(t *testing.T) {
		record := OrderRecord{Symbol: "AAPL", Quantity: 10, FilledQuantity: 11, Status: string(OrderStatusPartial)}
		assert.ErrorIs(t, record.Validate(), OverfilledErr)
	})
}

func TestFillRecordValidate(t *testing.T) {
	t.Run("valid fill", func(t *testing.T) {
		fill := FillRecord{QuantityFilled: 5, PriceAtFill: decimal.RequireFromString("100.25"), Venue: "ARCA"}
		assert.NoError(t, fill.Validate())
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		fill := FillRecord{QuantityFilled: 0, PriceAtFill: decimal.RequireFromString("100.25")}
		assert.ErrorIs(t, fill.Validate(), InvalidFillErr)
	})

	t.Run("zero price rejected", func(t *testing.T) {
		fill := FillRecord{QuantityFilled: 5}
		assert.ErrorIs(t, fill.Validate(), InvalidFillErr)
	})

	t.Run("negative commission rejected", func(t *testing.T) {
		fill := FillRecord{QuantityFilled: 5, PriceAtFill: decimal.RequireFromString("100.25"), Commission: decimal.RequireFromString("-1")}
		assert.ErrorIs(t, fill.Validate(), InvalidFillErr)
	})

	t.Run("price precision is preserved", func(t *testing.T) {
		fill := FillRecord{QuantityFilled: 5, PriceAtFill: decimal.RequireFromString("100.10")}
		assert.NoError(t, fill.Validate())
		assert.Equal(t, "100.10", fill.PriceAtFill.StringFixed(2))
	})
}

func TestExecutionLogRecord(t *testing.T) {
	t.Run("valid actions", func(t *testing.T) {
		for _, action := range []ExecutionAction{
			ExecutionActionSubmitted, ExecutionActionApproved, ExecutionActionExecuted,
			ExecutionActionFilled, ExecutionActionRejected, ExecutionActionCancelled, ExecutionActionRecovered,
		} {
			entry := ExecutionLogRecord{Symbol: "AAPL", Action: string(action)}
			assert.NoError(t, entry.Validate(), "action %s", action)
		}
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		entry := ExecutionLogRecord{Symbol: "AAPL", Action: "AMENDED"}
		assert.ErrorIs(t, entry.Validate(), InvalidExecutionActionErr)
	})

	t.Run("updates and deletes rejected", func(t *testing.T) {
		entry := ExecutionLogRecord{Symbol: "AAPL", Action: string(ExecutionActionFilled)}
		assert.ErrorIs(t, entry.BeforeUpdate(nil), ImmutableRecordErr)
		assert.ErrorIs(t, entry.BeforeDelete(nil), ImmutableRecordErr)
	})
}
