package model

// StateSnapshot is the periodic observability payload. It is a full replace,
// so publishing it twice is idempotent.
type StateSnapshot struct {
	GeneratedAt   TimestampMilli   `json:"generatedAt"`
	OpenPositions []Position       `json:"openPositions"`
	RecentScores  []Score          `json:"recentScores"`
	Cooldowns     []CooldownRecord `json:"cooldowns"`
}
