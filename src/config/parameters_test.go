package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

func validParameters() Parameters {
	parameters := DefaultParameters()
	parameters.Instruments = []model.Instrument{
		{Symbol: "BTCUSDT", Venue: "binance", BaseAsset: "BTC", QuoteAsset: "USDT"},
	}

	return parameters
}

func TestDefaultsWithInstrumentAreValid(t *testing.T) {
	assertion := assert.New(t)

	assertion.NoError(validParameters().Validate())
}

func TestMissingParametersFileFallsBackToDefaults(t *testing.T) {
	assertion := assert.New(t)

	parameters, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	assertion.NoError(err)
	assertion.Equal(100, parameters.WindowSize)
	assertion.Equal(0.15, parameters.EntryThreshold)
	assertion.Nil(parameters.StopLossPercent)
}

func TestLoadParametersFromYaml(t *testing.T) {
	assertion := assert.New(t)

	path := filepath.Join(t.TempDir(), "parameters.yaml")
	content := `
instruments:
  - symbol: BTCUSDT
    venue: binance
    base_asset: BTC
    quote_asset: USDT
  - symbol: ETHUSDT
    venue: binance
    base_asset: ETH
    quote_asset: USDT
window_size: 50
entry_threshold: 0.25
stop_loss_percent: 2.5
`
	assertion.NoError(os.WriteFile(path, []byte(content), 0644))

	parameters, err := LoadParameters(path)
	assertion.NoError(err)

	assertion.Len(parameters.Instruments, 2)
	assertion.Equal("BTCUSDT", parameters.Instruments[0].Symbol)
	assertion.Equal(50, parameters.WindowSize)
	assertion.Equal(0.25, parameters.EntryThreshold)
	assertion.NotNil(parameters.StopLossPercent)
	assertion.Equal(2.5, *parameters.StopLossPercent)

	// untouched knobs keep their defaults
	assertion.Equal(5, parameters.MinSamples)
	assertion.Equal(int64(1000), parameters.DecisionIntervalMillis)
}

func TestEnvironmentOverridesYaml(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv("ENTRY_THRESHOLD", "0.33")
	t.Setenv("STOP_LOSS_PERCENT", "1.25")
	t.Setenv("MAX_CONCURRENT_POSITIONS", "5")
	t.Setenv("BUDGET_PER_POSITION", "250")

	parameters, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	assertion.NoError(err)

	assertion.Equal(0.33, parameters.EntryThreshold)
	assertion.Equal(1.25, *parameters.StopLossPercent)
	assertion.Equal(5, parameters.MaxConcurrentPositions)
	assertion.Equal(250.00, parameters.BudgetPerPosition)
}

func TestMalformedEnvOverrideHaltsStartup(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv("ENTRY_THRESHOLD", "abc")

	_, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	assertion.Error(err)
	assertion.Contains(err.Error(), "ENTRY_THRESHOLD")
}

func TestMalformedStopLossOverrideHaltsStartup(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv("STOP_LOSS_PERCENT", "2%")

	_, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	assertion.Error(err)
	assertion.Contains(err.Error(), "STOP_LOSS_PERCENT")
}

func TestMalformedCapacityOverrideHaltsStartup(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv("MAX_CONCURRENT_POSITIONS", "three")

	_, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	assertion.Error(err)
	assertion.Contains(err.Error(), "MAX_CONCURRENT_POSITIONS")
}

func TestValidateRejectsFaults(t *testing.T) {
	assertion := assert.New(t)

	noInstruments := validParameters()
	noInstruments.Instruments = nil
	assertion.Error(noInstruments.Validate())

	emptySymbol := validParameters()
	emptySymbol.Instruments[0].Symbol = ""
	assertion.Error(emptySymbol.Validate())

	badWindow := validParameters()
	badWindow.WindowSize = 0
	assertion.Error(badWindow.Validate())

	badMinSamples := validParameters()
	badMinSamples.MinSamples = 1
	assertion.Error(badMinSamples.Validate())

	minSamplesOverWindow := validParameters()
	minSamplesOverWindow.WindowSize = 10
	minSamplesOverWindow.MinSamples = 11
	assertion.Error(minSamplesOverWindow.Validate())

	badWeights := validParameters()
	badWeights.MomentumWeight = 0.7
	assertion.Error(badWeights.Validate())

	badThresholds := validParameters()
	badThresholds.BuyThreshold = 0.50
	assertion.Error(badThresholds.Validate())

	badFloor := validParameters()
	badFloor.VolatilityFloor = 3.00
	assertion.Error(badFloor.Validate())

	badProfitTarget := validParameters()
	badProfitTarget.ProfitTargetPercent = 0
	assertion.Error(badProfitTarget.Validate())

	negativeStopLoss := validParameters()
	stopLoss := -1.0
	negativeStopLoss.StopLossPercent = &stopLoss
	assertion.Error(negativeStopLoss.Validate())

	badCapacity := validParameters()
	badCapacity.MaxConcurrentPositions = 0
	assertion.Error(badCapacity.Validate())

	badInterval := validParameters()
	badInterval.DecisionIntervalMillis = 50
	assertion.Error(badInterval.Validate())

	badLossStreak := validParameters()
	badLossStreak.LossStreakLimit = 0
	assertion.Error(badLossStreak.Validate())
}

func TestDurationHelpers(t *testing.T) {
	assertion := assert.New(t)

	parameters := validParameters()

	assertion.Equal("2m0s", parameters.WindowHorizon().String())
	assertion.Equal("1h0m0s", parameters.MaxHoldDuration().String())
	assertion.Equal("5m0s", parameters.CooldownWindow().String())
	assertion.Equal("1s", parameters.DecisionInterval().String())
	assertion.Equal("10s", parameters.GatewayTimeout().String())
}
