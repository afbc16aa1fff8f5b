package exchange

import (
	"errors"
	"sort"
	"sync"
	"time"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

var ErrAlreadyOpen = errors.New("position is already open for instrument")
var ErrNotOpen = errors.New("no open position for instrument")
var ErrCapacity = errors.New("max concurrent positions reached")

// PositionLedger is the authoritative state machine for open positions:
// NONE -> OPEN -> CLOSED (removed). Mutations are serialized through the
// decision loop; the internal lock only protects concurrent readers
// (controllers, snapshots).
type PositionLedger struct {
	MaxOpen int

	mu        sync.RWMutex
	positions map[string]model.Position
}

func NewPositionLedger(maxOpen int) *PositionLedger {
	return &PositionLedger{
		MaxOpen:   maxOpen,
		positions: make(map[string]model.Position),
	}
}

func (l *PositionLedger) Open(symbol string, price float64, quantity float64, at time.Time) (model.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.positions[symbol]; exists {
		return model.Position{}, ErrAlreadyOpen
	}

	if len(l.positions) >= l.MaxOpen {
		return model.Position{}, ErrCapacity
	}

	position := model.Position{
		Symbol:     symbol,
		EntryPrice: price,
		Quantity:   quantity,
		EntryTime:  model.TimestampMilli(at.UnixMilli()),
		PeakPrice:  price,
		Status:     model.PositionStatusOpen,
	}

	l.positions[symbol] = position

	return position, nil
}

// UpdatePeak raises the peak price, never lowers it. No-op for instruments
// without an open position.
func (l *PositionLedger) UpdatePeak(symbol string, price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	position, exists := l.positions[symbol]
	if !exists {
		return
	}

	if price > position.PeakPrice {
		position.PeakPrice = price
		l.positions[symbol] = position
	}
}

func (l *PositionLedger) Close(symbol string, exitPrice float64, reason string, at time.Time) (model.ClosedSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	position, exists := l.positions[symbol]
	if !exists {
		return model.ClosedSummary{}, ErrNotOpen
	}

	delete(l.positions, symbol)

	return model.ClosedSummary{
		Symbol:       symbol,
		EntryPrice:   position.EntryPrice,
		ExitPrice:    exitPrice,
		Quantity:     position.Quantity,
		PnlPercent:   position.GetProfitPercent(exitPrice),
		PnlAbs:       (exitPrice - position.EntryPrice) * position.Quantity,
		HoldDuration: position.GetHoldDuration(at),
		ExitReason:   reason,
		ClosedAt:     model.TimestampMilli(at.UnixMilli()),
	}, nil
}

func (l *PositionLedger) Get(symbol string) *model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	position, exists := l.positions[symbol]
	if !exists {
		return nil
	}

	return &position
}

func (l *PositionLedger) OpenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.positions)
}

// OpenPositions returns open positions sorted by symbol for deterministic
// iteration.
func (l *PositionLedger) OpenPositions() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := make([]model.Position, 0, len(l.positions))
	for _, position := range l.positions {
		list = append(list, position)
	}

	sort.Slice(list, func(i int, j int) bool {
		return list[i].Symbol < list[j].Symbol
	})

	return list
}
