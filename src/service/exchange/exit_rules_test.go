package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

func newTestExitRules() ExitRules {
	return ExitRules{
		ProfitTargetPercent:    1.5,
		StopLossPercent:        nil,
		TrailActivationPercent: 0.8,
		TrailDistancePercent:   0.5,
		MaxHoldDuration:        time.Hour,
	}
}

func openPositionAt(entry float64, openedAt time.Time) model.Position {
	return model.Position{
		Symbol:     "BTCUSDT",
		EntryPrice: entry,
		Quantity:   1.00,
		EntryTime:  model.TimestampMilli(openedAt.UnixMilli()),
		PeakPrice:  entry,
		Status:     model.PositionStatusOpen,
	}
}

func TestTakeProfitFiresAtTarget(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	// 100 -> 100.5: below target, trailing not armed yet
	position.PeakPrice = 100.50
	signal := rules.Evaluate(position, 100.50, openedAt.Add(time.Second))
	assertion.False(signal.Exit)

	// 100.5 -> 101.6: target reached; trailing is armed but the price sits on
	// the peak, well above the trail level, so take profit wins
	position.PeakPrice = 101.60
	signal = rules.Evaluate(position, 101.60, openedAt.Add(time.Second*2))
	assertion.True(signal.Exit)
	assertion.Equal(model.ExitReasonTakeProfit, signal.Reason)
	assertion.InDelta(1.60, position.GetProfitPercent(101.60).Value(), 1e-9)
}

func TestTrailingStopArmsAndFires(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	// flat: nothing armed, nothing fires
	signal := rules.Evaluate(position, 100.00, openedAt.Add(time.Second))
	assertion.False(signal.Exit)

	// peak climbs to 100.9: +0.9% arms the trail at 100.9 * 0.995 = 100.3955
	position.PeakPrice = 100.90
	assertion.True(position.IsTrailingArmed(rules.TrailActivationPercent))
	assertion.InDelta(100.3955, position.GetTrailLevel(rules.TrailDistancePercent), 1e-9)

	signal = rules.Evaluate(position, 100.90, openedAt.Add(time.Second*2))
	assertion.False(signal.Exit)

	// pullback through the trail level closes the position in profit
	signal = rules.Evaluate(position, 100.30, openedAt.Add(time.Second*3))
	assertion.True(signal.Exit)
	assertion.Equal(model.ExitReasonTrailingStop, signal.Reason)
	assertion.InDelta(0.30, position.GetProfitPercent(100.30).Value(), 1e-9)
}

func TestTrailingStopNotArmedBelowActivation(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	// +0.7% peak is below the 0.8% activation: a drop back is not a trail hit
	position.PeakPrice = 100.70
	assertion.False(position.IsTrailingArmed(rules.TrailActivationPercent))

	signal := rules.Evaluate(position, 100.10, openedAt.Add(time.Second))
	assertion.False(signal.Exit)
}

func TestDisabledStopLossHoldsThroughDrawdown(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	// -40% and still held: no stop loss is configured
	signal := rules.Evaluate(position, 60.00, openedAt.Add(time.Minute))
	assertion.False(signal.Exit)
}

func TestEnabledStopLossFires(t *testing.T) {
	assertion := assert.New(t)

	stopLoss := 2.0
	rules := newTestExitRules()
	rules.StopLossPercent = &stopLoss

	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	signal := rules.Evaluate(position, 98.50, openedAt.Add(time.Minute))
	assertion.False(signal.Exit)

	signal = rules.Evaluate(position, 98.00, openedAt.Add(time.Minute))
	assertion.True(signal.Exit)
	assertion.Equal(model.ExitReasonStopLoss, signal.Reason)
}

func TestTimeoutFiresAfterMaxHold(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)

	signal := rules.Evaluate(position, 100.10, openedAt.Add(time.Hour-time.Second))
	assertion.False(signal.Exit)

	signal = rules.Evaluate(position, 100.10, openedAt.Add(time.Hour))
	assertion.True(signal.Exit)
	assertion.Equal(model.ExitReasonTimeout, signal.Reason)
}

func TestTrailingStopTakesPriorityOverTimeout(t *testing.T) {
	assertion := assert.New(t)

	rules := newTestExitRules()
	openedAt := time.UnixMilli(1_700_000_000_000)
	position := openPositionAt(100.00, openedAt)
	position.PeakPrice = 100.90

	// both conditions hold at once, the trailing stop reports first
	signal := rules.Evaluate(position, 100.30, openedAt.Add(time.Hour*2))
	assertion.True(signal.Exit)
	assertion.Equal(model.ExitReasonTrailingStop, signal.Reason)
}

func TestTrailLevelRisesWithPeak(t *testing.T) {
	assertion := assert.New(t)

	position := openPositionAt(100.00, time.UnixMilli(1_700_000_000_000))

	position.PeakPrice = 101.00
	lower := position.GetTrailLevel(0.5)

	position.PeakPrice = 102.00
	higher := position.GetTrailLevel(0.5)

	assertion.Greater(higher, lower)
}
