package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PriceHandler maintains the live mid-price map from the allMids stream.
// Mids for ARBITRUM_ETH mirror ETH since the venue lists a single ETH perp.
type PriceHandler struct {
	url string
	log *slog.Logger

	mu   sync.RWMutex
	mids map[string]float64
}

func NewPriceHandler(wsURL string, log *slog.Logger) *PriceHandler {
	return &PriceHandler{
		url:  wsURL,
		log:  log.With("component", "hyperliquid_prices"),
		mids: make(map[string]float64),
	}
}

func (h *PriceHandler) GetURL() string { return h.url }
func (h *PriceHandler) ID() string     { return "hyperliquid-prices" }

func (h *PriceHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := wsSubscribe{Method: "subscribe", Subscription: wsSubscription{Type: "allMids"}}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to subscribe to allMids: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read subscription ack: %w", err)
	}

	var ack wsFrame
	if err := json.Unmarshal(msg, &ack); err != nil {
		return fmt.Errorf("malformed subscription ack: %w", err)
	}
	if ack.Channel != "subscriptionResponse" {
		// Some gateways push the first data frame before the ack; accept
		// an allMids frame as implicit confirmation.
		if ack.Channel != "allMids" {
			return fmt.Errorf("unexpected ack channel %q", ack.Channel)
		}
		h.OnMessage(ctx, msg)
	}

	h.log.Info("subscribed to allMids")
	return nil
}

func (h *PriceHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteJSON(map[string]string{"method": "ping"})
}

func (h *PriceHandler) OnMessage(ctx context.Context, msg []byte) {
	var frame wsFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		h.log.Warn("dropping undecodable frame", "err", err)
		return
	}
	if frame.Channel != "allMids" {
		return
	}

	var data allMidsData
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		h.log.Warn("dropping malformed allMids payload", "err", err)
		return
	}

	h.mu.Lock()
	for coin, raw := range data.Mids {
		mid, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		h.mids[coin] = mid
	}
	h.mu.Unlock()
}

// Mid returns the latest mid price for an asset. ARBITRUM_ETH resolves to the
// ETH perp price.
func (h *PriceHandler) Mid(asset string) (float64, bool) {
	if asset == "ARBITRUM_ETH" {
		asset = "ETH"
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	mid, ok := h.mids[asset]
	return mid, ok
}
