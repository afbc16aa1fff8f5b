package model

// FeatureVector is recomputed per scoring call from the current window.
// Insufficient is the sentinel state for windows below the minimum sample
// count: momentum/volatility are meaningless and must not be scored.
type FeatureVector struct {
	Symbol         string  `json:"symbol"`
	MomentumPct    float64 `json:"momentumPct"`
	VolatilityPct  float64 `json:"volatilityPct"`
	DominantScalar float64 `json:"dominantScalar"`
	SampleCount    int     `json:"sampleCount"`
	Insufficient   bool    `json:"insufficient"`
}

func InsufficientFeatureVector(symbol string, sampleCount int) FeatureVector {
	return FeatureVector{
		Symbol:       symbol,
		SampleCount:  sampleCount,
		Insufficient: true,
	}
}
