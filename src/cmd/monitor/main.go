package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantfold/orderflow-core/src/config"
	"github.com/quantfold/orderflow-core/src/eventconsumers"
	"github.com/quantfold/orderflow-core/src/eventpubsub"
	"github.com/quantfold/orderflow-core/src/eventservices"
	"github.com/quantfold/orderflow-core/src/marketdata"
	"github.com/quantfold/orderflow-core/src/resilience"
	"github.com/quantfold/orderflow-core/src/risk"
	"github.com/quantfold/orderflow-core/src/tape"
	"github.com/quantfold/orderflow-core/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the order-flow and risk-management core",
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			log.Fatalf("monitor: %v", err)
		}
	},
}

func parseTunable(name, value string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}

	return parsed, nil
}

func buildRuleEngine(cfg config.RulesConfig) (*risk.RuleEngine, error) {
	engine := risk.NewRuleEngine()

	var err error
	if engine.BreakEvenAtrMultiple, err = parseTunable("break_even_atr_multiple", cfg.BreakEvenAtrMultiple); err != nil {
		return nil, err
	}
	if engine.ScaleInAtrMultiple, err = parseTunable("scale_in_atr_multiple", cfg.ScaleInAtrMultiple); err != nil {
		return nil, err
	}
	if engine.CatastrophicAtrMultiple, err = parseTunable("catastrophic_atr_multiple", cfg.CatastrophicAtrMultiple); err != nil {
		return nil, err
	}
	if engine.ScaleInFraction, err = parseTunable("scale_in_fraction", cfg.ScaleInFraction); err != nil {
		return nil, err
	}

	return engine, nil
}

func buildStopAdjuster(cfg config.StopAdjusterConfig) (*risk.StopAdjuster, error) {
	adjuster := risk.NewStopAdjuster()

	var err error
	if adjuster.AtrRecalcThreshold, err = parseTunable("atr_recalc_threshold", cfg.AtrRecalcThreshold); err != nil {
		return nil, err
	}
	if adjuster.AtrMultiplier, err = parseTunable("atr_multiplier", cfg.AtrMultiplier); err != nil {
		return nil, err
	}

	return adjuster, nil
}

func run() error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("monitor: %v", err)
	}

	utils.InitLogger()

	cfg := config.LoadFromEnv()

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		log.Fatal("missing POLYGON_API_KEY environment variable")
	}

	eventpubsub.Init()

	policy := resilience.NewRetryPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay(), cfg.Retry.BackoffMultiplier, cfg.Retry.Jitter)
	breaker := resilience.NewCircuitBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.Window())
	fetcher := eventservices.NewPolygonBarFetcher(apiKey, policy, breaker)

	validator := marketdata.NewValidator()
	validator.StaleAfter = cfg.Validator.StaleAfter()
	validator.WarnAfter = cfg.Validator.WarnAfter()

	tapeCfg := tape.DefaultConfig()
	tapeCfg.VolumeBuckets = cfg.Tape.VolumeBuckets
	tapeCfg.VolumeSpikeThreshold = cfg.Tape.VolumeSpikeThreshold
	tapeCfg.RedBurstThreshold = cfg.Tape.RedBurstThreshold
	tapeCfg.SellFractionThreshold = cfg.Tape.SellFractionThreshold

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}

	tapeWorker := eventconsumers.NewTapeWorker(wg, validator, tapeCfg)
	tapeWorker.Start(ctx)

	engine, err := buildRuleEngine(cfg.Rules)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	adjuster, err := buildStopAdjuster(cfg.StopAdjuster)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	riskWorker := eventconsumers.NewRiskManagerWorker(wg, engine, adjuster, nil)
	riskWorker.Start(ctx)

	scheduler := eventconsumers.NewAtrRefreshScheduler(fetcher, func() []string { return cfg.Symbols }, cfg.Atr.Period, cfg.Atr.RefreshInterval())
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	log.Infof("monitor: watching %d symbols", len(cfg.Symbols))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("monitor: shutting down")
	scheduler.Stop()
	cancel()
	wg.Wait()

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
