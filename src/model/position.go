package model

import "time"

const PositionStatusOpen = "OPEN"
const PositionStatusClosed = "CLOSED"

const ExitReasonTrailingStop = "TRAILING_STOP"
const ExitReasonTakeProfit = "TAKE_PROFIT"
const ExitReasonStopLoss = "STOP_LOSS"
const ExitReasonTimeout = "TIMEOUT"

// Position is an open tracked holding. Created only by the decision loop on
// an approved entry, mutated only by the decision loop.
type Position struct {
	Symbol     string         `json:"symbol"`
	EntryPrice float64        `json:"entryPrice"`
	Quantity   float64        `json:"quantity"`
	EntryTime  TimestampMilli `json:"entryTime"`
	PeakPrice  float64        `json:"peakPrice"`
	Status     string         `json:"status"`
}

func (p Position) GetProfitPercent(price float64) Percent {
	return Percent((price - p.EntryPrice) / p.EntryPrice * 100)
}

// IsTrailingArmed reports whether the peak gained enough over entry to arm
// the trailing stop.
func (p Position) IsTrailingArmed(activationPercent float64) bool {
	return (p.PeakPrice-p.EntryPrice)/p.EntryPrice*100 >= activationPercent
}

// GetTrailLevel is the stop level below the current peak. It only rises,
// because PeakPrice only rises.
func (p Position) GetTrailLevel(trailDistancePercent float64) float64 {
	return p.PeakPrice * (1 - trailDistancePercent/100)
}

func (p Position) GetHoldDuration(now time.Time) time.Duration {
	return now.Sub(p.EntryTime.Time())
}

type ExitSignal struct {
	Exit   bool   `json:"exit"`
	Reason string `json:"reason"`
}

type ClosedSummary struct {
	Symbol       string         `json:"symbol"`
	EntryPrice   float64        `json:"entryPrice"`
	ExitPrice    float64        `json:"exitPrice"`
	Quantity     float64        `json:"quantity"`
	PnlPercent   Percent        `json:"pnlPercent"`
	PnlAbs       float64        `json:"pnlAbs"`
	HoldDuration time.Duration  `json:"holdDuration"`
	ExitReason   string         `json:"exitReason"`
	ClosedAt     TimestampMilli `json:"closedAt"`
}
