package model

const RecommendationStrongBuy = "STRONG_BUY"
const RecommendationBuy = "BUY"
const RecommendationHold = "HOLD"
const RecommendationSell = "SELL"
const RecommendationStrongSell = "STRONG_SELL"

const FactorMomentum = "momentum"
const FactorCalmness = "calmness"
const FactorDominantScalar = "dominant_scalar"
const FactorInsufficientData = "insufficient_data"
const FactorZeroVariance = "zero_variance"

type Score struct {
	Symbol         string             `json:"symbol"`
	Total          float64            `json:"total"`
	Recommendation string             `json:"recommendation"`
	Factors        map[string]float64 `json:"factors"`
	Timestamp      TimestampMilli     `json:"timestamp"`
}

func (s Score) IsBuy() bool {
	return s.Recommendation == RecommendationBuy || s.Recommendation == RecommendationStrongBuy
}

func (s Score) IsSell() bool {
	return s.Recommendation == RecommendationSell || s.Recommendation == RecommendationStrongSell
}
