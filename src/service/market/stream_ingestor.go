package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"gitlab.com/open-soft/go-signal-bot/src/client"
	"gitlab.com/open-soft/go-signal-bot/src/model"
)

type HistoryProviderInterface interface {
	GetRecentSamples(ctx context.Context, symbol string, limit int64) ([]model.PriceSample, error)
}

// StreamIngestor owns the live feed: it warms the cache from a one-shot REST
// snapshot, keeps the multiplexed subscriptions alive and normalizes every
// tick into a FeatureCache update. A malformed message is logged and
// skipped; it never stops the stream.
type StreamIngestor struct {
	Cache       *FeatureCache
	History     HistoryProviderInterface
	Instruments []model.Instrument
	StreamDSN   string
	WarmupLimit int64
	Channel     chan []byte
}

// Warmup seeds the cache with recent history so the first scoring ticks are
// not starved of data. A failed symbol degrades to an insufficient feature
// vector instead of aborting startup.
func (s *StreamIngestor) Warmup(ctx context.Context) {
	for _, instrument := range s.Instruments {
		symbol := instrument.GetSymbol()

		samples, err := s.History.GetRecentSamples(ctx, symbol, s.WarmupLimit)
		if err != nil {
			log.Printf("[%s] Warmup fetch failed: %s", symbol, err.Error())
			continue
		}

		for _, sample := range samples {
			s.Cache.Update(symbol, sample)
		}

		log.Printf("[%s] Warmup loaded %d samples", symbol, len(samples))
	}
}

// Connect opens one websocket connection per stream batch. Reconnects and
// resubscription are handled inside client.Listen.
func (s *StreamIngestor) Connect(ctx context.Context) {
	instruments := make([]model.SymbolInterface, 0, len(s.Instruments))
	for _, instrument := range s.Instruments {
		instruments = append(instruments, instrument)
	}

	for index, streamBatchItem := range client.GetStreamBatch(instruments, []string{"@aggTrade"}) {
		address := fmt.Sprintf("%s/stream?streams=%s", s.StreamDSN, strings.Join(streamBatchItem, "/"))
		client.Listen(ctx, address, s.Channel, []string{}, int64(index))

		// Listen dials in the background and reports its own dial outcome
		log.Printf("Stream batch %d subscribing: %s", index, strings.Join(streamBatchItem, ", "))
	}
}

// Run consumes raw stream messages until the context is cancelled.
func (s *StreamIngestor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("Stream ingestor stopped")
			return
		case message := <-s.Channel:
			s.handleMessage(message)
		}
	}
}

func (s *StreamIngestor) handleMessage(message []byte) {
	if !strings.Contains(string(message), "aggTrade") {
		// subscription acks and unknown event types are expected noise
		return
	}

	var event model.TickEvent
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Stream message skipped, unmarshal error: %s", err.Error())
		return
	}

	sample := event.Tick.ToPriceSample()

	if event.Tick.Symbol == "" || !sample.IsValid() {
		log.Printf("Stream message skipped, invalid tick: %s", string(message))
		return
	}

	s.Cache.Update(event.Tick.Symbol, sample)
}
