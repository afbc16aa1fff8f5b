package model

const OrderSideBuy = "BUY"
const OrderSideSell = "SELL"

type OrderResult struct {
	OrderId       int64   `json:"orderId"`
	ClientOrderId string  `json:"clientOrderId"`
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	FilledQty     float64 `json:"filledQty"`
	FilledPrice   float64 `json:"filledPrice"`
	Rejected      bool    `json:"rejected"`
}

type PriceQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}
