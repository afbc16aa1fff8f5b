package exchange

import (
	"context"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// ExecutionGatewayInterface is the narrow venue boundary the core depends
// on. Calls are synchronous and must be idempotent-safe to retry; the
// implementation de-duplicates via a client order id.
type ExecutionGatewayInterface interface {
	GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error)
	PlaceOrder(ctx context.Context, symbol string, side string, quantity float64) (model.OrderResult, error)
	GetBalance(ctx context.Context, asset string) (float64, error)
}

// FeatureSourceInterface is what the decision loop reads market state from.
type FeatureSourceInterface interface {
	Features(symbol string) model.FeatureVector
	LastPrice(symbol string) (float64, bool)
}

// SnapshotSinkInterface receives the periodic state snapshot. Publish must
// never block the caller.
type SnapshotSinkInterface interface {
	Publish(snapshot model.StateSnapshot)
}

// ClosedTradeStorageInterface persists closed position summaries.
type ClosedTradeStorageInterface interface {
	Create(summary model.ClosedSummary) (*int64, error)
}
