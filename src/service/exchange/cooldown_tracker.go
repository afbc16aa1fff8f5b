package exchange

import (
	"sort"
	"sync"
	"time"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// CooldownTracker remembers recent trade outcomes per instrument and
// suppresses re-entry after repeated losses or too-recent trades. Pure
// bookkeeping, no I/O.
type CooldownTracker struct {
	Window          time.Duration
	LossStreakLimit int

	mu      sync.RWMutex
	records map[string]model.CooldownRecord
}

func NewCooldownTracker(window time.Duration, lossStreakLimit int) *CooldownTracker {
	return &CooldownTracker{
		Window:          window,
		LossStreakLimit: lossStreakLimit,
		records:         make(map[string]model.CooldownRecord),
	}
}

// Record updates the per-instrument outcome counters after a position
// closed. Any non-negative PnL resets the loss streak.
func (c *CooldownTracker) Record(symbol string, pnl model.Percent, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := c.records[symbol]
	record.Symbol = symbol
	record.TradeCount++
	record.LastTradeTime = model.TimestampMilli(at.UnixMilli())

	if pnl.Lt(0) {
		record.LossStreak++
	} else {
		record.WinCount++
		record.LossStreak = 0
	}

	c.records[symbol] = record
}

func (c *CooldownTracker) ShouldAvoid(symbol string, now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, exists := c.records[symbol]
	if !exists {
		return false
	}

	if record.LossStreak >= c.LossStreakLimit {
		return true
	}

	return now.Sub(record.LastTradeTime.Time()) < c.Window
}

// Warm replays persisted close outcomes, oldest first, so a restart does not
// forget loss streaks.
func (c *CooldownTracker) Warm(summaries []model.ClosedSummary) {
	for _, summary := range summaries {
		c.Record(summary.Symbol, summary.PnlPercent, summary.ClosedAt.Time())
	}
}

func (c *CooldownTracker) Records() []model.CooldownRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]model.CooldownRecord, 0, len(c.records))
	for _, record := range c.records {
		list = append(list, record)
	}

	sort.Slice(list, func(i int, j int) bool {
		return list[i].Symbol < list[j].Symbol
	})

	return list
}
