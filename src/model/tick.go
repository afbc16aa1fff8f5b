package model

// PriceSample is one normalized point of the per-instrument rolling window.
type PriceSample struct {
	Timestamp TimestampMilli `json:"timestamp"`
	Price     float64        `json:"price"`
	Volume    float64        `json:"volume"`
}

func (s PriceSample) IsValid() bool {
	return s.Price > 0 && s.Volume >= 0 && s.Timestamp > 0
}

// Tick is a single trade message from the venue stream.
// Extra fields sent by the venue are ignored on unmarshal.
type Tick struct {
	Symbol    string         `json:"s"`
	Price     Price          `json:"p"`
	Quantity  Volume         `json:"q"`
	Timestamp TimestampMilli `json:"T"`
}

func (t Tick) ToPriceSample() PriceSample {
	return PriceSample{
		Timestamp: t.Timestamp,
		Price:     t.Price.Value(),
		Volume:    t.Quantity.Value(),
	}
}

// TickEvent is the multiplexed stream envelope: {"stream": "...", "data": {...}}
type TickEvent struct {
	Stream string `json:"stream"`
	Tick   Tick   `json:"data"`
}

type SocketStreamsRequest struct {
	Id     int64    `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}
