package eventconsumers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/eventpubsub"
	"github.com/quantfold/orderflow-core/src/eventservices"
	"github.com/quantfold/orderflow-core/src/indicators"
)

// AtrRefreshScheduler periodically refetches bars and republishes a fresh
// ATR per tracked symbol. It is an explicit start/stop handle: Stop blocks
// until the running job has drained, so shutdown never leaks a timer.
type AtrRefreshScheduler struct {
	fetcher   eventservices.BarFetcher
	symbols   func() []string
	period    int
	interval  time.Duration
	lookback  time.Duration
	scheduler *cron.Cron
}

func NewAtrRefreshScheduler(fetcher eventservices.BarFetcher, symbols func() []string, period int, interval time.Duration) *AtrRefreshScheduler {
	if period <= 0 {
		period = indicators.DefaultAtrPeriod
	}

	return &AtrRefreshScheduler{
		fetcher:  fetcher,
		symbols:  symbols,
		period:   period,
		interval: interval,
		// enough 5-minute bars for the warm-up window plus slack
		lookback: time.Duration(period+6) * 5 * time.Minute,
	}
}

func (s *AtrRefreshScheduler) refresh(ctx context.Context) {
	now := time.Now().UTC()

	for _, symbol := range s.symbols() {
		bars, err := s.fetcher.FetchBars(ctx, symbol, now.Add(-s.lookback), now)
		if err != nil {
			eventpubsub.PublishError("AtrRefreshScheduler.refresh", err)
			continue
		}

		atr, err := indicators.CalculateAtr(bars, s.period)
		if err != nil {
			eventpubsub.PublishError("AtrRefreshScheduler.refresh", fmt.Errorf("AtrRefreshScheduler.refresh: %s: %w", symbol, err))
			continue
		}

		price := bars[len(bars)-1].Close
		atrValue := atr

		eventpubsub.Publish("AtrRefreshScheduler.refresh", eventpubsub.AtrUpdateEvent, PriceUpdate{
			Symbol: symbol,
			Price:  price,
			Atr:    &atrValue,
		})
	}
}

func (s *AtrRefreshScheduler) Start(ctx context.Context) error {
	s.scheduler = cron.New()

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.scheduler.AddFunc(spec, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("AtrRefreshScheduler.Start: failed to schedule %q: %w", spec, err)
	}

	s.scheduler.Start()
	log.Infof("AtrRefreshScheduler: refreshing every %s", s.interval)

	return nil
}

// Stop cancels the schedule and waits for an in-flight refresh to finish.
func (s *AtrRefreshScheduler) Stop() {
	if s.scheduler == nil {
		return
	}

	<-s.scheduler.Stop().Done()
	log.Info("AtrRefreshScheduler: stopped")
}

// RefreshOnce is the on-demand path, used at entry time and by tests.
func (s *AtrRefreshScheduler) RefreshOnce(ctx context.Context, symbol string) (decimal.Decimal, error) {
	now := time.Now().UTC()

	bars, err := s.fetcher.FetchBars(ctx, symbol, now.Add(-s.lookback), now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("AtrRefreshScheduler.RefreshOnce: %w", err)
	}

	atr, err := indicators.CalculateAtr(bars, s.period)
	if err != nil {
		return decimal.Zero, fmt.Errorf("AtrRefreshScheduler.RefreshOnce: %s: %w", symbol, err)
	}

	return atr, nil
}
