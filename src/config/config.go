package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type ValidatorConfig struct {
	StaleAfterSeconds int `yaml:"stale_after_seconds"`
	WarnAfterSeconds  int `yaml:"warn_after_seconds"`
}

type TapeConfig struct {
	TickLookbackMinutes   int     `yaml:"tick_lookback_minutes"`
	VolumeBuckets         int     `yaml:"volume_buckets"`
	VolumeSpikeThreshold  float64 `yaml:"volume_spike_threshold"`
	RedBurstThreshold     float64 `yaml:"red_burst_threshold"`
	SellFractionThreshold float64 `yaml:"sell_fraction_threshold"`
}

type RulesConfig struct {
	BreakEvenAtrMultiple    string `yaml:"break_even_atr_multiple"`
	ScaleInAtrMultiple      string `yaml:"scale_in_atr_multiple"`
	CatastrophicAtrMultiple string `yaml:"catastrophic_atr_multiple"`
	ScaleInFraction         string `yaml:"scale_in_fraction"`
	PortfolioRiskCeilingPct string `yaml:"portfolio_risk_ceiling_pct"`
}

type StopAdjusterConfig struct {
	AtrRecalcThreshold string `yaml:"atr_recalc_threshold"`
	AtrMultiplier      string `yaml:"atr_multiplier"`
}

type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	BaseDelayMillis   int     `yaml:"base_delay_millis"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	Jitter            bool    `yaml:"jitter"`
}

type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold"`
	WindowSeconds    int `yaml:"window_seconds"`
}

type AtrConfig struct {
	Period                 int `yaml:"period"`
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
}

type Config struct {
	Symbols      []string           `yaml:"symbols"`
	RiskPct      string             `yaml:"risk_pct"`
	Validator    ValidatorConfig    `yaml:"validator"`
	Tape         TapeConfig         `yaml:"tape"`
	Rules        RulesConfig        `yaml:"rules"`
	StopAdjuster StopAdjusterConfig `yaml:"stop_adjuster"`
	Retry        RetryConfig        `yaml:"retry"`
	Breaker      BreakerConfig      `yaml:"breaker"`
	Atr          AtrConfig          `yaml:"atr"`
}

func Default() Config {
	return Config{
		RiskPct: "1.0",
		Validator: ValidatorConfig{
			StaleAfterSeconds: 30,
			WarnAfterSeconds:  10,
		},
		Tape: TapeConfig{
			TickLookbackMinutes:   5,
			VolumeBuckets:         12,
			VolumeSpikeThreshold:  3.0,
			RedBurstThreshold:     4.0,
			SellFractionThreshold: 0.6,
		},
		Rules: RulesConfig{
			BreakEvenAtrMultiple:    "2.0",
			ScaleInAtrMultiple:      "1.5",
			CatastrophicAtrMultiple: "3.0",
			ScaleInFraction:         "0.5",
			PortfolioRiskCeilingPct: "6.0",
		},
		StopAdjuster: StopAdjusterConfig{
			AtrRecalcThreshold: "0.20",
			AtrMultiplier:      "2.0",
		},
		Retry: RetryConfig{
			MaxAttempts:       5,
			BaseDelayMillis:   1000,
			BackoffMultiplier: 2.0,
			Jitter:            true,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			WindowSeconds:    60,
		},
		Atr: AtrConfig{
			Period:                 14,
			RefreshIntervalSeconds: 300,
		},
	}
}

// Load reads the YAML config at path over the defaults, so a partial file
// only overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config.Load: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config.Load: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads CONFIG_PATH when set, defaults otherwise.
func LoadFromEnv() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		log.Info("CONFIG_PATH not set, using default configuration")
		return Default()
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	return cfg
}

func (c ValidatorConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSeconds) * time.Second
}

func (c ValidatorConfig) WarnAfter() time.Duration {
	return time.Duration(c.WarnAfterSeconds) * time.Second
}

func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMillis) * time.Millisecond
}

func (c BreakerConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c AtrConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}
