package model

type SymbolInterface interface {
	GetSymbol() string
}

// Instrument is a tradable symbol on a venue, immutable once registered.
// StepSize is the venue lot size; zero means no lot constraint.
type Instrument struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Venue      string  `json:"venue" yaml:"venue"`
	BaseAsset  string  `json:"baseAsset" yaml:"base_asset"`
	QuoteAsset string  `json:"quoteAsset" yaml:"quote_asset"`
	StepSize   float64 `json:"stepSize" yaml:"step_size"`
}

func (i Instrument) GetSymbol() string {
	return i.Symbol
}
