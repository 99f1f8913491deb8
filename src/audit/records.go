package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusPartial   OrderStatus = "PARTIAL"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type ExecutionAction string

const (
	ExecutionActionSubmitted ExecutionAction = "SUBMITTED"
	ExecutionActionApproved  ExecutionAction = "APPROVED"
	ExecutionActionExecuted  ExecutionAction = "EXECUTED"
	ExecutionActionFilled    ExecutionAction = "FILLED"
	ExecutionActionRejected  ExecutionAction = "REJECTED"
	ExecutionActionCancelled ExecutionAction = "CANCELLED"
	ExecutionActionRecovered ExecutionAction = "RECOVERED"
)

var InvalidOrderStatusErr = fmt.Errorf("invalid order status")
var InvalidExecutionActionErr = fmt.Errorf("invalid execution action")
var OverfilledErr = fmt.Errorf("filled quantity exceeds order quantity")
var InvalidFillErr = fmt.Errorf("invalid fill record")
var ImmutableRecordErr = fmt.Errorf("execution logs are append-only")

// OrderRecord is the audit row for one proposed or working order.
type OrderRecord struct {
	gorm.Model
	PlanID         uuid.UUID        `gorm:"type:uuid;not null"`
	Symbol         string           `gorm:"column:symbol;type:text;not null"`
	Side           string           `gorm:"column:side;type:text;not null"`
	Quantity       int64            `gorm:"column:quantity;type:bigint;not null"`
	OrderType      string           `gorm:"column:order_type;type:text;not null"`
	Status         string           `gorm:"column:status;type:text;not null"`
	FilledQuantity int64            `gorm:"column:filled_quantity;type:bigint;not null;default:0"`
	StopPrice      *decimal.Decimal `gorm:"column:stop_price;type:numeric"`
	TargetPrice    *decimal.Decimal `gorm:"column:target_price;type:numeric"`
	PullbackSource string           `gorm:"column:pullback_source;type:text"`
	CreatedOn      time.Time        `gorm:"column:created_on;type:timestamp;not null"`
	Fills          []FillRecord
}

func (r *OrderRecord) Validate() error {
	switch OrderStatus(r.Status) {
	case OrderStatusPending, OrderStatusFilled, OrderStatusPartial, OrderStatusRejected, OrderStatusCancelled:
	default:
		return fmt.Errorf("OrderRecord.Validate: found %q: %w", r.Status, InvalidOrderStatusErr)
	}

	if r.FilledQuantity > r.Quantity {
		return fmt.Errorf("OrderRecord.Validate: filled %d of %d: %w", r.FilledQuantity, r.Quantity, OverfilledErr)
	}

	return nil
}

func (r *OrderRecord) BeforeSave(*gorm.DB) error {
	return r.Validate()
}

// FillRecord is one execution against an order.
type FillRecord struct {
	gorm.Model
	OrderRecordID  uint            `gorm:"not null"`
	QuantityFilled int64           `gorm:"column:quantity_filled;type:bigint;not null"`
	PriceAtFill    decimal.Decimal `gorm:"column:price_at_fill;type:numeric;not null"`
	Venue          string          `gorm:"column:venue;type:text"`
	Commission     decimal.Decimal `gorm:"column:commission;type:numeric;not null;default:0"`
	FilledOn       time.Time       `gorm:"column:filled_on;type:timestamp;not null"`
}

func (r *FillRecord) Validate() error {
	if r.QuantityFilled <= 0 {
		return fmt.Errorf("FillRecord.Validate: quantity filled must be positive: %w", InvalidFillErr)
	}

	if r.PriceAtFill.Sign() <= 0 {
		return fmt.Errorf("FillRecord.Validate: price at fill must be positive: %w", InvalidFillErr)
	}

	if r.Commission.Sign() < 0 {
		return fmt.Errorf("FillRecord.Validate: commission must not be negative: %w", InvalidFillErr)
	}

	return nil
}

func (r *FillRecord) BeforeSave(*gorm.DB) error {
	return r.Validate()
}

// ExecutionLogRecord is immutable once written: the gorm hooks reject
// updates and deletes so the audit trail can be rebuilt from rows alone.
type ExecutionLogRecord struct {
	gorm.Model
	PlanID       uuid.UUID `gorm:"type:uuid"`
	Symbol       string    `gorm:"column:symbol;type:text;not null"`
	Action       string    `gorm:"column:action;type:text;not null"`
	Detail       string    `gorm:"column:detail;type:text"`
	RetryAttempt *int      `gorm:"column:retry_attempt;type:int"`
	ErrorCode    *string   `gorm:"column:error_code;type:text"`
	LoggedOn     time.Time `gorm:"column:logged_on;type:timestamp;not null"`
}

func (r *ExecutionLogRecord) Validate() error {
	switch ExecutionAction(r.Action) {
	case ExecutionActionSubmitted, ExecutionActionApproved, ExecutionActionExecuted,
		ExecutionActionFilled, ExecutionActionRejected, ExecutionActionCancelled, ExecutionActionRecovered:
	default:
		return fmt.Errorf("ExecutionLogRecord.Validate: found %q: %w", r.Action, InvalidExecutionActionErr)
	}

	return nil
}

func (r *ExecutionLogRecord) BeforeCreate(*gorm.DB) error {
	return r.Validate()
}

func (r *ExecutionLogRecord) BeforeUpdate(*gorm.DB) error {
	return fmt.Errorf("ExecutionLogRecord.BeforeUpdate: %w", ImmutableRecordErr)
}

func (r *ExecutionLogRecord) BeforeDelete(*gorm.DB) error {
	return fmt.Errorf("ExecutionLogRecord.BeforeDelete: %w", ImmutableRecordErr)
}
