package strategy

import (
	"math"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

type ScoringEngineInterface interface {
	Score(features model.FeatureVector) model.Score
}

// ScoringEngine combines bounded sub-factors into a weighted total and maps
// the total onto a discrete recommendation. It is a pure function of its
// input: no I/O, no shared mutable state, identical input gives identical
// output.
//
// Factors:
//   - momentum: tanh(momentumPct / MomentumScale), in [-1, 1]
//   - calmness: a degenerate zero-variance window scores -1 (one-sided data
//     penalty), otherwise 1 - 2*min(volatilityPct/VolatilityCeiling, 1),
//     in [-1, 1]
//   - dominant scalar: externally bounded [0, 1] feature, recentred to
//     [-1, 1] when combined
//
// Weights must sum to 1.0 (enforced by config.Parameters.Validate).
type ScoringEngine struct {
	MomentumWeight    float64
	CalmnessWeight    float64
	ScalarWeight      float64
	MomentumScale     float64
	VolatilityFloor   float64
	VolatilityCeiling float64

	StrongBuyThreshold  float64
	BuyThreshold        float64
	SellThreshold       float64
	StrongSellThreshold float64
}

func (s *ScoringEngine) Score(features model.FeatureVector) model.Score {
	if features.Insufficient {
		return model.Score{
			Symbol:         features.Symbol,
			Total:          0.00,
			Recommendation: model.RecommendationHold,
			Factors: map[string]float64{
				model.FactorInsufficientData: 1.00,
			},
		}
	}

	momentum := math.Tanh(features.MomentumPct / s.MomentumScale)
	calmness := s.calmness(features.VolatilityPct)
	scalar := clamp(features.DominantScalar, 0.00, 1.00)

	total := s.MomentumWeight*momentum +
		s.CalmnessWeight*calmness +
		s.ScalarWeight*(2*scalar-1)

	factors := map[string]float64{
		model.FactorMomentum:       momentum,
		model.FactorCalmness:       calmness,
		model.FactorDominantScalar: scalar,
	}

	if features.VolatilityPct < s.VolatilityFloor {
		factors[model.FactorZeroVariance] = 1.00
	}

	return model.Score{
		Symbol:         features.Symbol,
		Total:          total,
		Recommendation: s.recommendation(total),
		Factors:        factors,
	}
}

// calmness inverse-maps volatility: a quiet market is worth more than a
// stormy one, but a window with no variance at all carries no two-sided
// information and is penalized hardest.
func (s *ScoringEngine) calmness(volatilityPct float64) float64 {
	if volatilityPct < s.VolatilityFloor {
		return -1.00
	}

	return 1 - 2*math.Min(volatilityPct/s.VolatilityCeiling, 1.00)
}

func (s *ScoringEngine) recommendation(total float64) string {
	switch {
	case total >= s.StrongBuyThreshold:
		return model.RecommendationStrongBuy
	case total >= s.BuyThreshold:
		return model.RecommendationBuy
	case total > s.SellThreshold:
		return model.RecommendationHold
	case total >= s.StrongSellThreshold:
		return model.RecommendationSell
	default:
		return model.RecommendationStrongSell
	}
}

func clamp(value float64, low float64, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
