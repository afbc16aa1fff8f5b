package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

const backoffBase = time.Second
const backoffCap = time.Minute

// GetStreamBatch splits the instrument set into subscription batches the
// venue accepts on a single connection.
func GetStreamBatch(instruments []model.SymbolInterface, events []string) [][]string {
	streamBatch := make([][]string, 0)

	streams := make([]string, 0)

	for _, instrument := range instruments {
		for i := 0; i < len(events); i++ {
			event := events[i]
			streams = append(streams, fmt.Sprintf("%s%s", strings.ToLower(instrument.GetSymbol()), event))
		}

		if len(streams) >= 24 {
			streamBatch = append(streamBatch, streams)
			streams = make([]string, 0)
		}
	}

	if len(streams) > 0 {
		streamBatch = append(streamBatch, streams)
	}

	return streamBatch
}

// Listen keeps one multiplexed stream connection alive until the context is
// cancelled. Reconnects use exponential backoff (1s base, 60s cap, jitter)
// and resubscribe the full stream set, so a reconnect storm never loses an
// instrument.
func Listen(ctx context.Context, address string, tradeChannel chan<- []byte, streams []string, connectionId int64) {
	go func() {
		backoff := backoffBase

		for {
			if ctx.Err() != nil {
				return
			}

			connection, _, err := websocket.DefaultDialer.Dial(address, nil)
			if err != nil {
				log.Printf("WS [%s] dial error: %s, reconnect in ~%s", address, err.Error(), backoff)
				if !sleepContext(ctx, withJitter(backoff)) {
					return
				}
				backoff = nextBackoff(backoff)
				continue
			}

			log.Printf("WS [%s] connected", address)

			if len(streams) > 0 {
				socketRequest := model.SocketStreamsRequest{
					Id:     connectionId,
					Method: "SUBSCRIBE",
					Params: streams,
				}
				serialized, _ := json.Marshal(socketRequest)
				_ = connection.WriteMessage(websocket.TextMessage, serialized)
			}

			// unblock ReadMessage on shutdown
			watcherDone := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = connection.Close()
				case <-watcherDone:
				}
			}()

			backoff = backoffBase

			for {
				_, message, err := connection.ReadMessage()
				if err != nil {
					_ = connection.Close()
					close(watcherDone)

					if ctx.Err() != nil {
						return
					}

					log.Printf("WS [%s] read error: %s, reconnect in ~%s", address, err.Error(), backoff)
					break
				}

				select {
				case tradeChannel <- message:
				case <-ctx.Done():
					_ = connection.Close()
					close(watcherDone)
					return
				}
			}

			connectionId++

			if !sleepContext(ctx, withJitter(backoff)) {
				return
			}
			backoff = nextBackoff(backoff)
		}
	}()
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > backoffCap {
		return backoffCap
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
