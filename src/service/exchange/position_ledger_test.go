package exchange

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

func TestOpenRejectsSecondPositionForSameInstrument(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(3)
	openedAt := time.UnixMilli(1_700_000_000_000)

	position, err := ledger.Open("BTCUSDT", 100.00, 1.00, openedAt)
	assertion.NoError(err)
	assertion.Equal("BTCUSDT", position.Symbol)
	assertion.Equal(100.00, position.EntryPrice)
	assertion.Equal(100.00, position.PeakPrice)
	assertion.Equal(model.PositionStatusOpen, position.Status)

	_, err = ledger.Open("BTCUSDT", 101.00, 1.00, openedAt)
	assertion.ErrorIs(err, ErrAlreadyOpen)
	assertion.Equal(1, ledger.OpenCount())
}

func TestOpenRejectsBeyondCapacity(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(2)
	openedAt := time.UnixMilli(1_700_000_000_000)

	_, err := ledger.Open("BTCUSDT", 100.00, 1.00, openedAt)
	assertion.NoError(err)
	_, err = ledger.Open("ETHUSDT", 100.00, 1.00, openedAt)
	assertion.NoError(err)

	_, err = ledger.Open("SOLUSDT", 100.00, 1.00, openedAt)
	assertion.ErrorIs(err, ErrCapacity)
	assertion.Equal(2, ledger.OpenCount())
}

func TestCloseWithoutOpenPosition(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(3)

	_, err := ledger.Close("BTCUSDT", 100.00, model.ExitReasonTimeout, time.Now())
	assertion.ErrorIs(err, ErrNotOpen)
}

func TestCloseProducesSummaryAndFreesSlot(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(1)
	openedAt := time.UnixMilli(1_700_000_000_000)
	closedAt := openedAt.Add(time.Minute * 10)

	_, err := ledger.Open("BTCUSDT", 100.00, 2.00, openedAt)
	assertion.NoError(err)

	summary, err := ledger.Close("BTCUSDT", 101.60, model.ExitReasonTakeProfit, closedAt)
	assertion.NoError(err)
	assertion.Equal("BTCUSDT", summary.Symbol)
	assertion.Equal(100.00, summary.EntryPrice)
	assertion.Equal(101.60, summary.ExitPrice)
	assertion.InDelta(1.60, summary.PnlPercent.Value(), 1e-9)
	assertion.InDelta(3.20, summary.PnlAbs, 1e-9)
	assertion.Equal(time.Minute*10, summary.HoldDuration)
	assertion.Equal(model.ExitReasonTakeProfit, summary.ExitReason)

	assertion.Equal(0, ledger.OpenCount())
	assertion.Nil(ledger.Get("BTCUSDT"))

	// the slot is reusable after close
	_, err = ledger.Open("BTCUSDT", 102.00, 1.00, closedAt)
	assertion.NoError(err)
}

func TestUpdatePeakNeverLowers(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(1)
	_, _ = ledger.Open("BTCUSDT", 100.00, 1.00, time.UnixMilli(1_700_000_000_000))

	ledger.UpdatePeak("BTCUSDT", 100.90)
	assertion.Equal(100.90, ledger.Get("BTCUSDT").PeakPrice)

	ledger.UpdatePeak("BTCUSDT", 100.30)
	assertion.Equal(100.90, ledger.Get("BTCUSDT").PeakPrice)

	// no-op for unknown instruments
	ledger.UpdatePeak("ETHUSDT", 500.00)
	assertion.Nil(ledger.Get("ETHUSDT"))
}

func TestOpenPositionsAreSortedBySymbol(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(3)
	openedAt := time.UnixMilli(1_700_000_000_000)

	_, _ = ledger.Open("SOLUSDT", 100.00, 1.00, openedAt)
	_, _ = ledger.Open("BTCUSDT", 100.00, 1.00, openedAt)
	_, _ = ledger.Open("ETHUSDT", 100.00, 1.00, openedAt)

	list := ledger.OpenPositions()
	assertion.Len(list, 3)
	assertion.Equal("BTCUSDT", list[0].Symbol)
	assertion.Equal("ETHUSDT", list[1].Symbol)
	assertion.Equal("SOLUSDT", list[2].Symbol)
}

func TestConcurrentOpenKeepsAtMostOnePerInstrument(t *testing.T) {
	assertion := assert.New(t)

	ledger := NewPositionLedger(10)
	openedAt := time.UnixMilli(1_700_000_000_000)

	var wg sync.WaitGroup
	opened := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Open("BTCUSDT", 100.00, 1.00, openedAt)
			opened <- err
		}()
	}

	wg.Wait()
	close(opened)

	succeeded := 0
	for err := range opened {
		if err == nil {
			succeeded++
		} else {
			assertion.ErrorIs(err, ErrAlreadyOpen)
		}
	}

	assertion.Equal(1, succeeded)
	assertion.Equal(1, ledger.OpenCount())
}
