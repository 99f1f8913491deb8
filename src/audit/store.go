package audit

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quantfold/orderflow-core/src/models"
)

// Store persists the append-only audit trail. The core only ever writes
// here; reconciliation and reporting read it from outside.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&OrderRecord{}, &FillRecord{}, &ExecutionLogRecord{}); err != nil {
		return nil, fmt.Errorf("NewStore: failed to migrate audit tables: %w", err)
	}

	return &Store{db: db}, nil
}

func NewPostgresStore(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("NewPostgresStore: failed to connect: %w", err)
	}

	return NewStore(db)
}

// RecordPlan writes a PENDING order row for a freshly calculated position
// plan, with a SUBMITTED execution log entry.
func (s *Store) RecordPlan(plan *models.PositionPlan) (*OrderRecord, error) {
	stopPrice := plan.StopPrice
	targetPrice := plan.TargetPrice

	record := &OrderRecord{
		PlanID:         plan.ID,
		Symbol:         plan.Symbol,
		Side:           plan.Side.String(),
		Quantity:       plan.Quantity,
		OrderType:      "limit",
		Status:         string(OrderStatusPending),
		StopPrice:      &stopPrice,
		TargetPrice:    &targetPrice,
		PullbackSource: plan.PullbackSource,
		CreatedOn:      plan.CreatedAt,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("Store.RecordPlan: failed to create order record: %w", err)
	}

	if err := s.AppendExecutionLog(&ExecutionLogRecord{
		PlanID:   plan.ID,
		Symbol:   plan.Symbol,
		Action:   string(ExecutionActionSubmitted),
		Detail:   plan.String(),
		LoggedOn: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	log.Infof("Store.RecordPlan: recorded plan %s for %s", plan.ID, plan.Symbol)

	return record, nil
}

// RecordFill appends a fill and moves the order to PARTIAL or FILLED.
func (s *Store) RecordFill(order *OrderRecord, fill *FillRecord) error {
	fill.OrderRecordID = order.ID

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fill).Error; err != nil {
			return fmt.Errorf("Store.RecordFill: failed to create fill: %w", err)
		}

		order.FilledQuantity += fill.QuantityFilled
		if order.FilledQuantity >= order.Quantity {
			order.Status = string(OrderStatusFilled)
		} else {
			order.Status = string(OrderStatusPartial)
		}

		if err := tx.Save(order).Error; err != nil {
			return fmt.Errorf("Store.RecordFill: failed to update order: %w", err)
		}

		return nil
	})
}

// AppendExecutionLog is the only write path for execution logs.
func (s *Store) AppendExecutionLog(entry *ExecutionLogRecord) error {
	if entry.LoggedOn.IsZero() {
		entry.LoggedOn = time.Now().UTC()
	}

	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("Store.AppendExecutionLog: %w", err)
	}

	return nil
}

// RecordActivation appends an execution log entry for a rule decision.
func (s *Store) RecordActivation(symbol string, activation models.RuleActivation) error {
	action := ExecutionActionApproved
	if activation.Action == models.RuleActionClosePosition {
		action = ExecutionActionExecuted
	}

	return s.AppendExecutionLog(&ExecutionLogRecord{
		Symbol:   symbol,
		Action:   string(action),
		Detail:   fmt.Sprintf("%s: %s", activation.Action, activation.Reason),
		LoggedOn: time.Now().UTC(),
	})
}
