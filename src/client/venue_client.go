package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

// VenueClient is the REST side of the execution venue: price quotes, market
// orders, balances and the kline history used to warm the feature cache.
// Every order carries a fresh client order id, so a retried request is
// de-duplicated by the venue instead of filled twice.
type VenueClient struct {
	ApiKey         string
	ApiSecret      string
	DestinationURI string
	HttpClient     *HttpClient
}

type bookTickerResponse struct {
	Symbol   string      `json:"symbol"`
	BidPrice model.Price `json:"bidPrice"`
	AskPrice model.Price `json:"askPrice"`
}

type venueOrderResponse struct {
	OrderId             int64        `json:"orderId"`
	ClientOrderId       string       `json:"clientOrderId"`
	Symbol              string       `json:"symbol"`
	Status              string       `json:"status"`
	ExecutedQty         model.Volume `json:"executedQty"`
	CummulativeQuoteQty model.Volume `json:"cummulativeQuoteQty"`
}

type accountBalance struct {
	Asset string       `json:"asset"`
	Free  model.Volume `json:"free"`
}

type accountResponse struct {
	Balances []accountBalance `json:"balances"`
}

func (v *VenueClient) GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/bookTicker?symbol=%s", v.DestinationURI, symbol)

	body, err := v.HttpClient.Get(ctx, url, map[string]string{})
	if err != nil {
		return model.PriceQuote{}, err
	}

	var response bookTickerResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.PriceQuote{}, err
	}

	bid := response.BidPrice.Value()
	ask := response.AskPrice.Value()

	if bid <= 0 || ask <= 0 {
		return model.PriceQuote{}, errors.New(fmt.Sprintf("[%s] Venue returned empty book ticker", symbol))
	}

	return model.PriceQuote{
		Symbol: symbol,
		Price:  (bid + ask) / 2,
		Bid:    bid,
		Ask:    ask,
	}, nil
}

// GetRecentSamples fetches closed 1m klines and normalizes them into price
// samples for cache warmup.
func (v *VenueClient) GetRecentSamples(ctx context.Context, symbol string, limit int64) ([]model.PriceSample, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1m&limit=%d", v.DestinationURI, symbol, limit)

	body, err := v.HttpClient.Get(ctx, url, map[string]string{})
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}

	samples := make([]model.PriceSample, 0, len(rows))
	nowMilli := time.Now().UnixMilli()

	for _, row := range rows {
		// [openTime, open, high, low, close, volume, closeTime, ...]
		if len(row) < 7 {
			continue
		}

		closePrice, okClose := parseFloatField(row[4])
		volume, okVolume := parseFloatField(row[5])
		closeTime, okTime := parseIntField(row[6])

		if !okClose || !okVolume || !okTime {
			continue
		}

		// the venue includes the in-progress candle, stamped with a close
		// time up to a full interval ahead of the clock. Seeding the window
		// with a future timestamp would make it reject live ticks as
		// out-of-order, so unclosed candles are skipped.
		if closeTime > nowMilli {
			continue
		}

		samples = append(samples, model.PriceSample{
			Timestamp: model.TimestampMilli(closeTime),
			Price:     closePrice,
			Volume:    volume,
		})
	}

	return samples, nil
}

func (v *VenueClient) PlaceOrder(ctx context.Context, symbol string, side string, quantity float64) (model.OrderResult, error) {
	clientOrderId := uuid.New().String()

	query := fmt.Sprintf(
		"symbol=%s&side=%s&type=MARKET&quantity=%s&newClientOrderId=%s&timestamp=%d",
		symbol,
		side,
		strconv.FormatFloat(quantity, 'f', -1, 64),
		clientOrderId,
		time.Now().UnixMilli(),
	)

	url := fmt.Sprintf("%s/api/v3/order?%s&signature=%s", v.DestinationURI, query, v.sign(query))

	body, err := v.HttpClient.Post(ctx, url, []byte{}, map[string]string{
		"X-MBX-APIKEY": v.ApiKey,
	})
	if err != nil {
		return model.OrderResult{}, err
	}

	var response venueOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.OrderResult{}, err
	}

	result := model.OrderResult{
		OrderId:       response.OrderId,
		ClientOrderId: response.ClientOrderId,
		Symbol:        response.Symbol,
		Side:          side,
		FilledQty:     response.ExecutedQty.Value(),
		Rejected:      response.Status == "REJECTED" || response.Status == "EXPIRED",
	}

	if result.FilledQty > 0 {
		result.FilledPrice = response.CummulativeQuoteQty.Value() / result.FilledQty
	}

	return result, nil
}

func (v *VenueClient) GetBalance(ctx context.Context, asset string) (float64, error) {
	query := fmt.Sprintf("timestamp=%d", time.Now().UnixMilli())
	url := fmt.Sprintf("%s/api/v3/account?%s&signature=%s", v.DestinationURI, query, v.sign(query))

	body, err := v.HttpClient.Get(ctx, url, map[string]string{
		"X-MBX-APIKEY": v.ApiKey,
	})
	if err != nil {
		return 0.00, err
	}

	var response accountResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0.00, err
	}

	for _, balance := range response.Balances {
		if balance.Asset == asset {
			return balance.Free.Value(), nil
		}
	}

	return 0.00, errors.New(fmt.Sprintf("Venue account has no %s balance", asset))
}

func (v *VenueClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(v.ApiSecret))
	mac.Write([]byte(query))

	return fmt.Sprintf("%x", mac.Sum(nil))
}

func parseFloatField(field interface{}) (float64, bool) {
	switch value := field.(type) {
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	case float64:
		return value, true
	default:
		return 0.00, false
	}
}

func parseIntField(field interface{}) (int64, bool) {
	switch value := field.(type) {
	case float64:
		return int64(value), true
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
