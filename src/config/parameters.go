package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// Parameters is the flat set of engine knobs. Values come from the YAML file
// with environment variable overrides; every field has a documented default.
// Validate is called once at startup and any fault halts the process before
// the decision loop begins.
type Parameters struct {
	Instruments []model.Instrument `yaml:"instruments"`

	// Feature window
	WindowSize           int   `yaml:"window_size"`            // max samples per instrument, default 100
	WindowHorizonSeconds int64 `yaml:"window_horizon_seconds"` // trailing time horizon, default 120
	MinSamples           int   `yaml:"min_samples"`            // below this the vector is "insufficient", default 5

	// Scoring
	MomentumWeight       float64 `yaml:"momentum_weight"`        // default 0.5
	CalmnessWeight       float64 `yaml:"calmness_weight"`        // default 0.3
	ScalarWeight         float64 `yaml:"scalar_weight"`          // default 0.2
	MomentumScale        float64 `yaml:"momentum_scale"`         // tanh scale in percent, default 8.0
	VolatilityFloor      float64 `yaml:"volatility_floor"`       // below this the window is degenerate, default 0.05
	VolatilityCeiling    float64 `yaml:"volatility_ceiling"`     // full calmness penalty at this level, default 2.0
	ScalarGain           float64 `yaml:"scalar_gain"`            // price ratio squash gain, default 4.0
	StrongBuyThreshold   float64 `yaml:"strong_buy_threshold"`   // default +0.40
	BuyThreshold         float64 `yaml:"buy_threshold"`          // default +0.15
	SellThreshold        float64 `yaml:"sell_threshold"`         // default -0.15
	StrongSellThreshold  float64 `yaml:"strong_sell_threshold"`  // default -0.40
	EntryThreshold       float64 `yaml:"entry_threshold"`        // min total for new entries, default 0.15

	// Position lifecycle
	ProfitTargetPercent    float64  `yaml:"profit_target_percent"`    // default 1.5
	StopLossPercent        *float64 `yaml:"stop_loss_percent"`        // nil disables the stop loss entirely
	TrailActivationPercent float64  `yaml:"trail_activation_percent"` // default 0.8
	TrailDistancePercent   float64  `yaml:"trail_distance_percent"`   // default 0.5
	MaxHoldSeconds         int64    `yaml:"max_hold_seconds"`         // default 3600
	MaxConcurrentPositions int      `yaml:"max_concurrent_positions"` // default 3
	BudgetPerPosition      float64  `yaml:"budget_per_position"`      // quote asset spent per entry, default 100.0
	QuoteAsset             string   `yaml:"quote_asset"`              // default USDT

	// Cooldown
	CooldownWindowSeconds int64 `yaml:"cooldown_window_seconds"` // default 300
	LossStreakLimit       int   `yaml:"loss_streak_limit"`       // default 3

	// Cadence
	DecisionIntervalMillis int64 `yaml:"decision_interval_millis"` // default 1000
	GatewayTimeoutSeconds  int64 `yaml:"gateway_timeout_seconds"`  // default 10
	WarmupKlineLimit       int64 `yaml:"warmup_kline_limit"`       // default 100
}

func DefaultParameters() Parameters {
	return Parameters{
		WindowSize:             100,
		WindowHorizonSeconds:   120,
		MinSamples:             5,
		MomentumWeight:         0.5,
		CalmnessWeight:         0.3,
		ScalarWeight:           0.2,
		MomentumScale:          8.0,
		VolatilityFloor:        0.05,
		VolatilityCeiling:      2.0,
		ScalarGain:             4.0,
		StrongBuyThreshold:     0.40,
		BuyThreshold:           0.15,
		SellThreshold:          -0.15,
		StrongSellThreshold:    -0.40,
		EntryThreshold:         0.15,
		ProfitTargetPercent:    1.5,
		StopLossPercent:        nil,
		TrailActivationPercent: 0.8,
		TrailDistancePercent:   0.5,
		MaxHoldSeconds:         3600,
		MaxConcurrentPositions: 3,
		BudgetPerPosition:      100.00,
		QuoteAsset:             "USDT",
		CooldownWindowSeconds:  300,
		LossStreakLimit:        3,
		DecisionIntervalMillis: 1000,
		GatewayTimeoutSeconds:  10,
		WarmupKlineLimit:       100,
	}
}

// LoadParameters reads the YAML parameters file (missing file means pure
// defaults) and applies environment variable overrides.
func LoadParameters(path string) (Parameters, error) {
	parameters := DefaultParameters()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return parameters, fmt.Errorf("read parameters: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &parameters); err != nil {
			return parameters, fmt.Errorf("parse parameters: %w", err)
		}
	}

	// a malformed override is a configuration fault, it halts startup instead
	// of silently degrading to a zero value
	if v := os.Getenv("ENTRY_THRESHOLD"); v != "" {
		parameters.EntryThreshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return parameters, fmt.Errorf("parse ENTRY_THRESHOLD %q: %w", v, err)
		}
	}
	if v := os.Getenv("PROFIT_TARGET_PERCENT"); v != "" {
		parameters.ProfitTargetPercent, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return parameters, fmt.Errorf("parse PROFIT_TARGET_PERCENT %q: %w", v, err)
		}
	}
	if v := os.Getenv("STOP_LOSS_PERCENT"); v != "" {
		stopLoss, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return parameters, fmt.Errorf("parse STOP_LOSS_PERCENT %q: %w", v, err)
		}
		parameters.StopLossPercent = &stopLoss
	}
	if v := os.Getenv("MAX_CONCURRENT_POSITIONS"); v != "" {
		parameters.MaxConcurrentPositions, err = strconv.Atoi(v)
		if err != nil {
			return parameters, fmt.Errorf("parse MAX_CONCURRENT_POSITIONS %q: %w", v, err)
		}
	}
	if v := os.Getenv("DECISION_INTERVAL_MILLIS"); v != "" {
		parameters.DecisionIntervalMillis, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return parameters, fmt.Errorf("parse DECISION_INTERVAL_MILLIS %q: %w", v, err)
		}
	}
	if v := os.Getenv("BUDGET_PER_POSITION"); v != "" {
		parameters.BudgetPerPosition, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return parameters, fmt.Errorf("parse BUDGET_PER_POSITION %q: %w", v, err)
		}
	}

	return parameters, nil
}

func (p Parameters) Validate() error {
	if len(p.Instruments) == 0 {
		return errors.New("parameters: at least one instrument is required")
	}
	for _, instrument := range p.Instruments {
		if instrument.Symbol == "" {
			return errors.New("parameters: instrument symbol can not be empty")
		}
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("parameters: window_size must be positive, got %d", p.WindowSize)
	}
	if p.WindowHorizonSeconds <= 0 {
		return fmt.Errorf("parameters: window_horizon_seconds must be positive, got %d", p.WindowHorizonSeconds)
	}
	if p.MinSamples < 2 {
		return fmt.Errorf("parameters: min_samples must be at least 2, got %d", p.MinSamples)
	}
	if p.MinSamples > p.WindowSize {
		return fmt.Errorf("parameters: min_samples %d exceeds window_size %d", p.MinSamples, p.WindowSize)
	}
	weightSum := p.MomentumWeight + p.CalmnessWeight + p.ScalarWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("parameters: factor weights must sum to 1.0, got %f", weightSum)
	}
	if p.MomentumScale <= 0 || p.VolatilityCeiling <= 0 || p.ScalarGain <= 0 {
		return errors.New("parameters: momentum_scale, volatility_ceiling and scalar_gain must be positive")
	}
	if p.VolatilityFloor < 0 || p.VolatilityFloor >= p.VolatilityCeiling {
		return fmt.Errorf("parameters: volatility_floor must be in [0, volatility_ceiling), got %f", p.VolatilityFloor)
	}
	if !(p.StrongSellThreshold < p.SellThreshold && p.SellThreshold < p.BuyThreshold && p.BuyThreshold < p.StrongBuyThreshold) {
		return errors.New("parameters: recommendation thresholds must be strictly increasing")
	}
	if p.ProfitTargetPercent <= 0 {
		return fmt.Errorf("parameters: profit_target_percent must be positive, got %f", p.ProfitTargetPercent)
	}
	if p.StopLossPercent != nil && *p.StopLossPercent <= 0 {
		return fmt.Errorf("parameters: stop_loss_percent must be positive when set, got %f", *p.StopLossPercent)
	}
	if p.TrailActivationPercent <= 0 || p.TrailDistancePercent <= 0 {
		return errors.New("parameters: trailing stop percents must be positive")
	}
	if p.MaxHoldSeconds <= 0 {
		return fmt.Errorf("parameters: max_hold_seconds must be positive, got %d", p.MaxHoldSeconds)
	}
	if p.MaxConcurrentPositions <= 0 {
		return fmt.Errorf("parameters: max_concurrent_positions must be positive, got %d", p.MaxConcurrentPositions)
	}
	if p.BudgetPerPosition <= 0 {
		return fmt.Errorf("parameters: budget_per_position must be positive, got %f", p.BudgetPerPosition)
	}
	if p.CooldownWindowSeconds < 0 {
		return fmt.Errorf("parameters: cooldown_window_seconds can not be negative, got %d", p.CooldownWindowSeconds)
	}
	if p.LossStreakLimit <= 0 {
		return fmt.Errorf("parameters: loss_streak_limit must be positive, got %d", p.LossStreakLimit)
	}
	if p.DecisionIntervalMillis < 100 {
		return fmt.Errorf("parameters: decision_interval_millis must be at least 100, got %d", p.DecisionIntervalMillis)
	}
	if p.GatewayTimeoutSeconds <= 0 {
		return fmt.Errorf("parameters: gateway_timeout_seconds must be positive, got %d", p.GatewayTimeoutSeconds)
	}

	return nil
}

func (p Parameters) WindowHorizon() time.Duration {
	return time.Duration(p.WindowHorizonSeconds) * time.Second
}

func (p Parameters) MaxHoldDuration() time.Duration {
	return time.Duration(p.MaxHoldSeconds) * time.Second
}

func (p Parameters) CooldownWindow() time.Duration {
	return time.Duration(p.CooldownWindowSeconds) * time.Second
}

func (p Parameters) DecisionInterval() time.Duration {
	return time.Duration(p.DecisionIntervalMillis) * time.Millisecond
}

func (p Parameters) GatewayTimeout() time.Duration {
	return time.Duration(p.GatewayTimeoutSeconds) * time.Second
}
