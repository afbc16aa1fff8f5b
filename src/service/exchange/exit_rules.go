package exchange

import (
	"time"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// ExitRules evaluates the exit conditions for an open position against the
// latest price. The priority order is fixed: trailing stop, take profit,
// stop loss, timeout. The first condition that fires wins.
//
// StopLossPercent may be nil. With it disabled a losing position is held
// with unbounded downside until the profit target, the trailing stop or the
// timeout closes it. That is an operator risk choice, not an engine
// guarantee.
type ExitRules struct {
	ProfitTargetPercent    float64
	StopLossPercent        *float64
	TrailActivationPercent float64
	TrailDistancePercent   float64
	MaxHoldDuration        time.Duration
}

func (r ExitRules) Evaluate(position model.Position, price float64, now time.Time) model.ExitSignal {
	if position.IsTrailingArmed(r.TrailActivationPercent) && price <= position.GetTrailLevel(r.TrailDistancePercent) {
		return model.ExitSignal{Exit: true, Reason: model.ExitReasonTrailingStop}
	}

	profit := position.GetProfitPercent(price)

	if profit.Gte(model.Percent(r.ProfitTargetPercent)) {
		return model.ExitSignal{Exit: true, Reason: model.ExitReasonTakeProfit}
	}

	if r.StopLossPercent != nil && profit.Lte(model.Percent(-*r.StopLossPercent)) {
		return model.ExitSignal{Exit: true, Reason: model.ExitReasonStopLoss}
	}

	if position.GetHoldDuration(now) >= r.MaxHoldDuration {
		return model.ExitSignal{Exit: true, Reason: model.ExitReasonTimeout}
	}

	return model.ExitSignal{}
}
