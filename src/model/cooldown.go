package model

// CooldownRecord is per-instrument memory of recent trade outcomes, updated
// only after a position closes.
type CooldownRecord struct {
	Symbol        string         `json:"symbol"`
	TradeCount    int            `json:"tradeCount"`
	WinCount      int            `json:"winCount"`
	LossStreak    int            `json:"lossStreak"`
	LastTradeTime TimestampMilli `json:"lastTradeTime"`
}
