package marketdata

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/models"
)

const (
	DefaultStaleAfter = 30 * time.Second
	DefaultWarnAfter  = 10 * time.Second
)

// Validator gates market data before it reaches any calculation. It has no
// state of its own: a snapshot or tape batch either passes or is rejected
// with a reason the caller can log.
type Validator struct {
	StaleAfter time.Duration
	WarnAfter  time.Duration
	now        func() time.Time
}

func NewValidator() *Validator {
	return &Validator{
		StaleAfter: DefaultStaleAfter,
		WarnAfter:  DefaultWarnAfter,
		now:        time.Now,
	}
}

// NewValidatorWithClock pins the wall clock, which freshness tests need.
func NewValidatorWithClock(now func() time.Time) *Validator {
	v := NewValidator()
	v.now = now
	return v
}

// ValidateLevel2 rejects stale or mis-ordered snapshots. A snapshot aged
// between WarnAfter and StaleAfter passes but returns stale=true so the
// caller can downgrade its confidence in the data.
func (v *Validator) ValidateLevel2(snapshot *models.OrderBookSnapshot) (stale bool, err error) {
	age := v.now().Sub(snapshot.Timestamp)

	if age >= v.StaleAfter {
		return false, fmt.Errorf("Validator.ValidateLevel2: %s snapshot is %v old, too stale: %w", snapshot.Symbol, age.Round(time.Millisecond), models.StaleQuoteErr)
	}

	if age >= v.WarnAfter {
		log.Warnf("Validator.ValidateLevel2: %s snapshot is %v old", snapshot.Symbol, age.Round(time.Millisecond))
		stale = true
	}

	for i := 1; i < len(snapshot.Bids); i++ {
		if snapshot.Bids[i].Price.GreaterThanOrEqual(snapshot.Bids[i-1].Price) {
			return stale, fmt.Errorf("Validator.ValidateLevel2: bid %v at index %d: %w", snapshot.Bids[i].Price, i, models.BidsOutOfOrderErr)
		}
	}

	for i := 1; i < len(snapshot.Asks); i++ {
		if snapshot.Asks[i].Price.LessThanOrEqual(snapshot.Asks[i-1].Price) {
			return stale, fmt.Errorf("Validator.ValidateLevel2: ask %v at index %d: %w", snapshot.Asks[i].Price, i, models.AsksOutOfOrderErr)
		}
	}

	return stale, nil
}

// ValidateTape rejects the whole batch on the first timestamp regression.
// Re-ordering silently would corrupt the volume baseline, so fail fast.
func (v *Validator) ValidateTape(records []models.TimeAndSalesRecord) error {
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("Validator.ValidateTape: record %d: %w", i, err)
		}

		if i > 0 && record.Timestamp.Before(records[i-1].Timestamp) {
			return fmt.Errorf("Validator.ValidateTape: record %d at %v precedes record %d at %v: %w",
				i, record.Timestamp, i-1, records[i-1].Timestamp, models.TapeOutOfOrderErr)
		}
	}

	return nil
}
