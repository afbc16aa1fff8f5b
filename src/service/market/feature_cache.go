package market

import (
	"math"
	"sync"
	"time"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// FeatureCache holds a bounded rolling window of price samples per instrument
// and computes derived features on demand. Updates come from the stream
// ingestor goroutines, reads come from the decision loop; each instrument has
// its own lock and reads work on a copied slice, so a half-written sample is
// never observed.
type FeatureCache struct {
	WindowSize int
	Horizon    time.Duration
	MinSamples int
	ScalarGain float64

	mu      sync.RWMutex
	windows map[string]*sampleWindow
}

type sampleWindow struct {
	mu      sync.RWMutex
	samples []model.PriceSample
}

func NewFeatureCache(windowSize int, horizon time.Duration, minSamples int, scalarGain float64) *FeatureCache {
	return &FeatureCache{
		WindowSize: windowSize,
		Horizon:    horizon,
		MinSamples: minSamples,
		ScalarGain: scalarGain,
		windows:    make(map[string]*sampleWindow),
	}
}

func (f *FeatureCache) window(symbol string) *sampleWindow {
	f.mu.RLock()
	w, ok := f.windows[symbol]
	f.mu.RUnlock()

	if ok {
		return w
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok = f.windows[symbol]; ok {
		return w
	}

	w = &sampleWindow{samples: make([]model.PriceSample, 0, f.WindowSize)}
	f.windows[symbol] = w

	return w
}

// Update appends the sample and evicts oldest-first down to the window size
// and trailing horizon. Samples older than the newest stored one are dropped
// to keep the non-decreasing timestamp invariant.
func (f *FeatureCache) Update(symbol string, sample model.PriceSample) {
	if !sample.IsValid() {
		return
	}

	w := f.window(symbol)

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.samples) > 0 && sample.Timestamp.Lt(w.samples[len(w.samples)-1].Timestamp) {
		return
	}

	w.samples = append(w.samples, sample)

	for len(w.samples) > f.WindowSize {
		w.samples = w.samples[1:]
	}

	horizonEdge := sample.Timestamp.Value() - f.Horizon.Milliseconds()
	firstKept := 0
	for firstKept < len(w.samples)-1 && w.samples[firstKept].Timestamp.Value() < horizonEdge {
		firstKept++
	}
	w.samples = w.samples[firstKept:]
}

// Samples returns a copy of the current window.
func (f *FeatureCache) Samples(symbol string) []model.PriceSample {
	w := f.window(symbol)

	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]model.PriceSample, len(w.samples))
	copy(out, w.samples)

	return out
}

// LastPrice returns the most recent sample price, or false when the window
// is empty.
func (f *FeatureCache) LastPrice(symbol string) (float64, bool) {
	w := f.window(symbol)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.samples) == 0 {
		return 0, false
	}

	return w.samples[len(w.samples)-1].Price, true
}

// Features computes the derived vector from the current window. A window
// below MinSamples yields the insufficient sentinel, which is a normal state
// and not an error.
func (f *FeatureCache) Features(symbol string) model.FeatureVector {
	samples := f.Samples(symbol)

	if len(samples) < f.MinSamples {
		return model.InsufficientFeatureVector(symbol, len(samples))
	}

	first := samples[0].Price
	last := samples[len(samples)-1].Price

	momentum := (last - first) / first * 100

	returns := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		returns = append(returns, (samples[i].Price-samples[i-1].Price)/samples[i-1].Price*100)
	}

	mean := 0.00
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.00
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	volatility := math.Sqrt(variance)

	// Price ratio squashed into [0, 1]; 0.5 means flat.
	scalar := 0.5 * (1 + math.Tanh(f.ScalarGain*(last/first-1)))

	return model.FeatureVector{
		Symbol:         symbol,
		MomentumPct:    momentum,
		VolatilityPct:  volatility,
		DominantScalar: scalar,
		SampleCount:    len(samples),
	}
}
