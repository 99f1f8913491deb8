package eventconsumers

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/eventpubsub"
	"github.com/quantfold/orderflow-core/src/models"
	"github.com/quantfold/orderflow-core/src/risk"
)

// PriceUpdate carries a new mark and optionally a fresh ATR for a symbol.
type PriceUpdate struct {
	Symbol string
	Price  decimal.Decimal
	Atr    *decimal.Decimal
}

// ActivationNotice pairs a rule decision with the symbol it applies to.
type ActivationNotice struct {
	Symbol     string
	Activation models.RuleActivation
	State      models.PositionState
}

// RiskManagerWorker owns every open PositionState and evaluates the trade
// management rules on each price update. Each symbol gets its own
// goroutine and channel, so there is never more than one evaluation in
// flight per symbol. The rules' idempotence depends on that discipline.
type RiskManagerWorker struct {
	wg        *sync.WaitGroup
	engine    *risk.RuleEngine
	adjuster  *risk.StopAdjuster
	portfolio func() *risk.PortfolioRisk

	mu      sync.Mutex
	symbols map[string]chan PriceUpdate
	states  map[string]*models.PositionState

	ctx context.Context
}

func NewRiskManagerWorker(wg *sync.WaitGroup, engine *risk.RuleEngine, adjuster *risk.StopAdjuster, portfolio func() *risk.PortfolioRisk) *RiskManagerWorker {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}

	return &RiskManagerWorker{
		wg:        wg,
		engine:    engine,
		adjuster:  adjuster,
		portfolio: portfolio,
		symbols:   make(map[string]chan PriceUpdate),
		states:    make(map[string]*models.PositionState),
	}
}

// Track registers a freshly opened position. Updates for unknown symbols
// are dropped.
func (w *RiskManagerWorker) Track(state models.PositionState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.states[state.Symbol] = &state

	if _, ok := w.symbols[state.Symbol]; !ok {
		ch := make(chan PriceUpdate, 16)
		w.symbols[state.Symbol] = ch
		w.runSymbol(state.Symbol, ch)
	}
}

func (w *RiskManagerWorker) OnPriceUpdate(update PriceUpdate) {
	w.mu.Lock()
	ch, ok := w.symbols[update.Symbol]
	w.mu.Unlock()

	if !ok {
		return
	}

	select {
	case ch <- update:
	default:
		log.Warnf("RiskManagerWorker.OnPriceUpdate: dropping update for %s, channel full", update.Symbol)
	}
}

func (w *RiskManagerWorker) runSymbol(symbol string, ch chan PriceUpdate) {
	w.wg.Add(1)

	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer w.wg.Done()
		for {
			select {
			case update := <-ch:
				w.evaluate(symbol, update)
			case <-ctx.Done():
				log.Infof("stopping risk evaluation for %s", symbol)
				return
			}
		}
	}()
}

// evaluate is the serialized per-symbol cycle: apply the update, run the
// rules in precedence order, then the stop adjuster, and persist the
// returned state. A close terminates tracking.
func (w *RiskManagerWorker) evaluate(symbol string, update PriceUpdate) {
	w.mu.Lock()
	statePtr, ok := w.states[symbol]
	w.mu.Unlock()

	if !ok {
		return
	}

	state := *statePtr
	state.CurrentPrice = update.Price
	if update.Atr != nil {
		state.CurrentAtr = update.Atr
	}

	var portfolio *risk.PortfolioRisk
	if w.portfolio != nil {
		portfolio = w.portfolio()
	}

	next, activation := w.engine.EvaluateAll(state, portfolio)

	if activation.Action == models.RuleActionHold {
		next, activation = w.adjuster.Adjust(state)
	}

	if activation.Action != models.RuleActionHold {
		eventpubsub.Publish("RiskManagerWorker.evaluate", eventpubsub.RuleActivationEvent, ActivationNotice{
			Symbol:     symbol,
			Activation: activation,
			State:      next,
		})
	}

	w.mu.Lock()
	if activation.Action == models.RuleActionClosePosition {
		delete(w.states, symbol)
	} else {
		w.states[symbol] = &next
	}
	w.mu.Unlock()
}

func (w *RiskManagerWorker) Start(ctx context.Context) {
	w.ctx = ctx

	eventpubsub.Subscribe("RiskManagerWorker", eventpubsub.AtrUpdateEvent, w.OnPriceUpdate)
}
