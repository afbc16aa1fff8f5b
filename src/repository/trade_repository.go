package repository

import (
	"context"
	"database/sql"
	"log"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// TradeRepository persists closed position summaries to MySQL. Closures are
// the engine's durable history: reporting reads them, and the cooldown
// tracker replays the most recent ones at startup.
type TradeRepository struct {
	DB  *sql.DB
	RDB *redis.Client
	Ctx *context.Context
}

func (repo *TradeRepository) Create(summary model.ClosedSummary) (*int64, error) {
	res, err := repo.DB.Exec(`
		INSERT INTO closed_trades SET
			symbol = ?,
			entry_price = ?,
			exit_price = ?,
			quantity = ?,
			pnl_percent = ?,
			pnl_abs = ?,
			hold_duration_ms = ?,
			exit_reason = ?,
			closed_at = ?
	`,
		summary.Symbol,
		summary.EntryPrice,
		summary.ExitPrice,
		summary.Quantity,
		summary.PnlPercent.Value(),
		summary.PnlAbs,
		summary.HoldDuration.Milliseconds(),
		summary.ExitReason,
		summary.ClosedAt.Value(),
	)

	if err != nil {
		return nil, err
	}

	lastId, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &lastId, nil
}

// GetRecentClosures returns the latest closures ordered oldest-first, so a
// caller can replay them and rebuild streak state.
func (repo *TradeRepository) GetRecentClosures(limit int64) []model.ClosedSummary {
	list := make([]model.ClosedSummary, 0)

	rows, err := repo.DB.Query(`
		SELECT
			ct.symbol as Symbol,
			ct.entry_price as EntryPrice,
			ct.exit_price as ExitPrice,
			ct.quantity as Quantity,
			ct.pnl_percent as PnlPercent,
			ct.pnl_abs as PnlAbs,
			ct.hold_duration_ms as HoldDurationMs,
			ct.exit_reason as ExitReason,
			ct.closed_at as ClosedAt
		FROM closed_trades ct
		ORDER BY ct.closed_at DESC
		LIMIT ?
	`, limit)

	if err != nil {
		log.Printf("Closed trades query error: %s", err.Error())
		return list
	}

	defer rows.Close()

	for rows.Next() {
		var summary model.ClosedSummary
		var pnlPercent float64
		var holdDurationMs int64
		var closedAt int64

		err := rows.Scan(
			&summary.Symbol,
			&summary.EntryPrice,
			&summary.ExitPrice,
			&summary.Quantity,
			&pnlPercent,
			&summary.PnlAbs,
			&holdDurationMs,
			&summary.ExitReason,
			&closedAt,
		)

		if err != nil {
			log.Printf("Closed trades scan error: %s", err.Error())
			continue
		}

		summary.PnlPercent = model.Percent(pnlPercent)
		summary.HoldDuration = time.Duration(holdDurationMs) * time.Millisecond
		summary.ClosedAt = model.TimestampMilli(closedAt)
		list = append(list, summary)
	}

	slices.Reverse(list)

	return list
}
