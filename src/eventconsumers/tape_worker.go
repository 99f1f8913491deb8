package eventconsumers

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/eventpubsub"
	"github.com/quantfold/orderflow-core/src/marketdata"
	"github.com/quantfold/orderflow-core/src/models"
	"github.com/quantfold/orderflow-core/src/tape"
)

// TapeBatch is one validated slice of the tape for a symbol, as delivered
// by the market data transport.
type TapeBatch struct {
	Symbol  string
	Records []models.TimeAndSalesRecord
}

// TapeWorker gates incoming tape through the validator, feeds the
// per-symbol monitors and publishes any red burst alerts. Monitors are
// only touched from the worker goroutine, keeping each buffer
// single-writer.
type TapeWorker struct {
	wg        *sync.WaitGroup
	validator *marketdata.Validator
	cfg       tape.Config
	monitors  map[string]*tape.Monitor
	batchCh   chan TapeBatch
}

func NewTapeWorker(wg *sync.WaitGroup, validator *marketdata.Validator, cfg tape.Config) *TapeWorker {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}

	return &TapeWorker{
		wg:        wg,
		validator: validator,
		cfg:       cfg,
		monitors:  make(map[string]*tape.Monitor),
		batchCh:   make(chan TapeBatch, 64),
	}
}

func (w *TapeWorker) monitorFor(symbol string) *tape.Monitor {
	monitor, ok := w.monitors[symbol]
	if !ok {
		monitor = tape.NewMonitor(symbol, w.cfg)
		w.monitors[symbol] = monitor
	}

	return monitor
}

func (w *TapeWorker) enqueue(batch TapeBatch) {
	w.batchCh <- batch
}

func (w *TapeWorker) process(batch TapeBatch) {
	if err := w.validator.ValidateTape(batch.Records); err != nil {
		eventpubsub.PublishError("TapeWorker.process", err)
		return
	}

	monitor := w.monitorFor(batch.Symbol)

	for _, record := range batch.Records {
		monitor.Record(record)
	}

	if alert := monitor.DetectRedBurst(batch.Records); alert != nil {
		eventpubsub.Publish("TapeWorker.process", eventpubsub.OrderFlowAlertEvent, *alert)
	}
}

func (w *TapeWorker) Start(ctx context.Context) {
	w.wg.Add(1)

	eventpubsub.Subscribe("TapeWorker", eventpubsub.NewTapeBatchEvent, w.enqueue)

	go func() {
		defer w.wg.Done()
		for {
			select {
			case batch := <-w.batchCh:
				w.process(batch)
			case <-ctx.Done():
				log.Info("stopping TapeWorker consumer")
				return
			}
		}
	}()
}
