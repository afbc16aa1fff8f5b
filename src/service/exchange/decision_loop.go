package exchange

import (
	"context"
	"log"
	"sort"
	"time"

	"gitlab.com/open-soft/go-signal-bot/src/model"
	"gitlab.com/open-soft/go-signal-bot/src/service/strategy"
	"gitlab.com/open-soft/go-signal-bot/src/utils"
)

// DecisionLoop is the single orchestrator goroutine. Every tick it first
// evaluates exits for open positions, then considers one new entry, then
// emits a state snapshot. The ledger is mutated here and nowhere else, and
// only after the gateway confirmed the order, so the ledger never claims a
// position the venue does not hold.
type DecisionLoop struct {
	Features        FeatureSourceInterface
	Scorer          strategy.ScoringEngineInterface
	Ledger          *PositionLedger
	Cooldown        *CooldownTracker
	Gateway         ExecutionGatewayInterface
	TradeRepository ClosedTradeStorageInterface
	SnapshotSink    SnapshotSinkInterface
	TimeService     utils.TimeServiceInterface
	Formatter       *utils.Formatter

	Instruments       []model.Instrument
	ExitRules         ExitRules
	EntryThreshold    float64
	BudgetPerPosition float64
	QuoteAsset        string
	Interval          time.Duration
	GatewayTimeout    time.Duration

	// last score per symbol, written only by the loop goroutine
	recentScores map[string]model.Score
}

// Run ticks on the configured cadence until the context is cancelled. A tick
// in progress always runs to completion, so shutdown never leaves a position
// half-opened.
func (d *DecisionLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	log.Printf("Decision loop started, interval %s, %d instruments", d.Interval, len(d.Instruments))

	for {
		select {
		case <-ctx.Done():
			log.Printf("Decision loop stopped")
			return
		case <-ticker.C:
			d.Tick(d.TimeService.GetNow())
		}
	}
}

func (d *DecisionLoop) Tick(now time.Time) {
	d.processExits(now)
	d.processEntries(now)
	d.publishSnapshot(now)
}

func (d *DecisionLoop) processExits(now time.Time) {
	for _, position := range d.Ledger.OpenPositions() {
		price, ok := d.Features.LastPrice(position.Symbol)
		if !ok {
			log.Printf("[%s] Exit check skipped: no price in window", position.Symbol)
			continue
		}

		d.Ledger.UpdatePeak(position.Symbol, price)

		current := d.Ledger.Get(position.Symbol)
		if current == nil {
			continue
		}

		signal := d.ExitRules.Evaluate(*current, price, now)
		if signal.Exit {
			d.closePosition(*current, price, signal.Reason, now)
		}
	}
}

func (d *DecisionLoop) closePosition(position model.Position, price float64, reason string, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), d.GatewayTimeout)
	defer cancel()

	result, err := d.Gateway.PlaceOrder(ctx, position.Symbol, model.OrderSideSell, position.Quantity)
	if err != nil {
		log.Printf("[%s] Close intent (%s) failed: %s, retry on next tick", position.Symbol, reason, err.Error())
		return
	}
	if result.Rejected {
		log.Printf("[%s] Close intent (%s) rejected by venue, retry on next tick", position.Symbol, reason)
		return
	}

	exitPrice := result.FilledPrice
	if exitPrice <= 0 {
		exitPrice = price
	}

	summary, err := d.Ledger.Close(position.Symbol, exitPrice, reason, now)
	if err != nil {
		log.Printf("[%s] Ledger close rejected: %s", position.Symbol, err.Error())
		return
	}

	d.Cooldown.Record(summary.Symbol, summary.PnlPercent, now)

	log.Printf(
		"[%s] Position closed (%s): pnl %.4f%%, held %s",
		summary.Symbol,
		summary.ExitReason,
		summary.PnlPercent.Value(),
		summary.HoldDuration,
	)

	if d.TradeRepository != nil {
		if _, err := d.TradeRepository.Create(summary); err != nil {
			log.Printf("[%s] Closed trade save error: %s", summary.Symbol, err.Error())
		}
	}
}

func (d *DecisionLoop) processEntries(now time.Time) {
	if d.Ledger.OpenCount() >= d.Ledger.MaxOpen {
		return
	}

	candidates := make([]model.Score, 0)

	for _, instrument := range d.Instruments {
		symbol := instrument.GetSymbol()

		if d.Ledger.Get(symbol) != nil {
			continue
		}

		if d.Cooldown.ShouldAvoid(symbol, now) {
			continue
		}

		score := d.Scorer.Score(d.Features.Features(symbol))
		score.Symbol = symbol
		score.Timestamp = model.TimestampMilli(now.UnixMilli())
		d.rememberScore(score)

		if score.IsBuy() && score.Total >= d.EntryThreshold {
			candidates = append(candidates, score)
		}
	}

	if len(candidates) == 0 {
		return
	}

	// rank by score descending, tie-break by symbol for determinism
	sort.Slice(candidates, func(i int, j int) bool {
		if candidates[i].Total != candidates[j].Total {
			return candidates[i].Total > candidates[j].Total
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})

	d.openPosition(candidates[0], now)
}

func (d *DecisionLoop) openPosition(score model.Score, now time.Time) {
	price, ok := d.Features.LastPrice(score.Symbol)
	if !ok || price <= 0 {
		log.Printf("[%s] Entry skipped: no price in window", score.Symbol)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.GatewayTimeout)
	defer cancel()

	balance, err := d.Gateway.GetBalance(ctx, d.QuoteAsset)
	if err != nil {
		log.Printf("[%s] Entry skipped: balance check failed: %s", score.Symbol, err.Error())
		return
	}
	if balance < d.BudgetPerPosition {
		log.Printf("[%s] Entry skipped: %s balance %.2f below budget %.2f", score.Symbol, d.QuoteAsset, balance, d.BudgetPerPosition)
		return
	}

	quantity := d.Formatter.FormatQuantity(d.stepSize(score.Symbol), d.BudgetPerPosition/price)
	if quantity <= 0 {
		log.Printf("[%s] Entry skipped: budget %.2f buys less than one lot at %.8f", score.Symbol, d.BudgetPerPosition, price)
		return
	}

	result, err := d.Gateway.PlaceOrder(ctx, score.Symbol, model.OrderSideBuy, quantity)
	if err != nil {
		log.Printf("[%s] Open intent failed: %s, retry on next tick", score.Symbol, err.Error())
		return
	}
	if result.Rejected {
		log.Printf("[%s] Open intent rejected by venue", score.Symbol)
		return
	}

	entryPrice := result.FilledPrice
	if entryPrice <= 0 {
		entryPrice = price
	}
	filledQty := result.FilledQty
	if filledQty <= 0 {
		filledQty = quantity
	}

	position, err := d.Ledger.Open(score.Symbol, entryPrice, filledQty, now)
	if err != nil {
		// Order is confirmed but the ledger refused: an invariant violation
		// that needs operator attention, not a crash.
		log.Printf("[%s] ALERT: venue confirmed order %d but ledger rejected it: %s", score.Symbol, result.OrderId, err.Error())
		return
	}

	log.Printf(
		"[%s] Position opened: score %.4f, entry %.8f, quantity %.8f",
		position.Symbol,
		score.Total,
		position.EntryPrice,
		position.Quantity,
	)
}

func (d *DecisionLoop) stepSize(symbol string) float64 {
	for _, instrument := range d.Instruments {
		if instrument.Symbol == symbol {
			return instrument.StepSize
		}
	}

	return 0
}

func (d *DecisionLoop) rememberScore(score model.Score) {
	if d.recentScores == nil {
		d.recentScores = make(map[string]model.Score)
	}
	d.recentScores[score.Symbol] = score
}

func (d *DecisionLoop) publishSnapshot(now time.Time) {
	if d.SnapshotSink == nil {
		return
	}

	scores := make([]model.Score, 0, len(d.recentScores))
	for _, score := range d.recentScores {
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i int, j int) bool {
		return scores[i].Symbol < scores[j].Symbol
	})

	d.SnapshotSink.Publish(model.StateSnapshot{
		GeneratedAt:   model.TimestampMilli(now.UnixMilli()),
		OpenPositions: d.Ledger.OpenPositions(),
		RecentScores:  scores,
		Cooldowns:     d.Cooldown.Records(),
	})
}
