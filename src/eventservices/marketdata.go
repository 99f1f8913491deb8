package eventservices

import (
	"context"
	"errors"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygonmodels "github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/models"
	"github.com/quantfold/orderflow-core/src/resilience"
)

// BarFetcher is the market data input the core consumes. The transport
// behind it is a collaborator; this package only adapts and classifies.
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
}

// BalanceFetcher supplies the account balance used to budget risk.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context) (decimal.Decimal, error)
}

// StaticBalanceFetcher pins the balance, for replay runs and tests.
type StaticBalanceFetcher struct {
	Balance decimal.Decimal
}

func (f StaticBalanceFetcher) FetchBalance(context.Context) (decimal.Decimal, error) {
	return f.Balance, nil
}

const rateLimitFallbackDelay = 10 * time.Second

// classifyTransportErr maps a polygon client failure onto the retry
// taxonomy: 429 is rate limited, 5xx is retriable, everything else
// surfaces immediately.
func classifyTransportErr(err error) error {
	var errResp *polygonmodels.ErrorResponse
	if errors.As(err, &errResp) {
		switch {
		case errResp.StatusCode == 429:
			// the client does not surface Retry-After, fall back to a fixed delay
			return resilience.RateLimited(err, rateLimitFallbackDelay)
		case errResp.StatusCode >= 500:
			return resilience.Retryable(err)
		default:
			return err
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// network-level failures without a status code are transient
	return resilience.Retryable(err)
}

type PolygonBarFetcher struct {
	client     *polygon.Client
	policy     *resilience.RetryPolicy
	breaker    *resilience.CircuitBreaker
	multiplier int
	timespan   polygonmodels.Timespan
}

func NewPolygonBarFetcher(apiKey string, policy *resilience.RetryPolicy, breaker *resilience.CircuitBreaker) *PolygonBarFetcher {
	return &PolygonBarFetcher{
		client:     polygon.New(apiKey),
		policy:     policy,
		breaker:    breaker,
		multiplier: 5,
		timespan:   polygonmodels.Minute,
	}
}

func (f *PolygonBarFetcher) fetchOnce(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	params := polygonmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: f.multiplier,
		Timespan:   f.timespan,
		From:       polygonmodels.Millis(from),
		To:         polygonmodels.Millis(to),
	}.WithOrder(polygonmodels.Asc).WithAdjusted(true)

	iter := f.client.ListAggs(ctx, params)

	var bars []models.PriceBar
	for iter.Next() {
		item := iter.Item()

		bar, err := models.NewPriceBar(
			symbol,
			time.Time(item.Timestamp),
			decimal.NewFromFloat(item.Open),
			decimal.NewFromFloat(item.High),
			decimal.NewFromFloat(item.Low),
			decimal.NewFromFloat(item.Close),
			decimal.NewFromFloat(item.Volume),
		)
		if err != nil {
			// malformed upstream data is a validation failure, never retried
			return nil, fmt.Errorf("PolygonBarFetcher.fetchOnce: %w", err)
		}

		bars = append(bars, *bar)
	}

	if err := iter.Err(); err != nil {
		return nil, classifyTransportErr(err)
	}

	return bars, nil
}

// FetchBars runs the fetch through the retry policy and circuit breaker.
// Once the breaker has tripped no further calls reach the wire.
func (f *PolygonBarFetcher) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	var bars []models.PriceBar

	err := f.breaker.Guard("polygon.ListAggs", func() error {
		return f.policy.Execute(ctx, "polygon.ListAggs", func() error {
			var fetchErr error
			bars, fetchErr = f.fetchOnce(ctx, symbol, from, to)
			return fetchErr
		})
	})

	if err != nil {
		return nil, fmt.Errorf("PolygonBarFetcher.FetchBars: %s: %w", symbol, err)
	}

	log.Debugf("PolygonBarFetcher.FetchBars: fetched %d bars for %s", len(bars), symbol)

	return bars, nil
}
