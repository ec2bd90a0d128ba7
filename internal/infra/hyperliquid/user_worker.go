package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"maker_hedge/internal/notify"
)

// UserHandler streams the account's own activity for observability: order
// lifecycle updates, execution fills, funding payments and venue
// notifications. Nothing here drives trading decisions; PnL accounting stays
// on the submitted hedge price.
type UserHandler struct {
	url      string
	user     string
	notifier notify.Notifier
	log      *slog.Logger
}

func NewUserHandler(wsURL, userAddress string, notifier notify.Notifier, log *slog.Logger) *UserHandler {
	return &UserHandler{
		url:      wsURL,
		user:     userAddress,
		notifier: notifier,
		log:      log.With("component", "hyperliquid_user"),
	}
}

func (h *UserHandler) GetURL() string { return h.url }
func (h *UserHandler) ID() string     { return "hyperliquid-user" }

func (h *UserHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	channels := []string{"orderUpdates", "userFills", "userEvents", "notification", "webData2"}

	for _, channel := range channels {
		sub := wsSubscribe{
			Method:       "subscribe",
			Subscription: wsSubscription{Type: channel, User: h.user},
		}
		if err := conn.WriteJSON(sub); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}

		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			return fmt.Errorf("failed to read %s subscription ack: %w", channel, err)
		}
	}

	h.log.Info("subscribed to user streams", "channels", len(channels))
	return nil
}

func (h *UserHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteJSON(map[string]string{"method": "ping"})
}

func (h *UserHandler) OnMessage(ctx context.Context, msg []byte) {
	var frame wsFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		h.log.Warn("dropping undecodable frame", "err", err)
		return
	}

	switch frame.Channel {
	case "orderUpdates":
		h.handleOrderUpdates(ctx, frame.Data)
	case "userFills":
		h.handleUserFills(frame.Data)
	case "userEvents":
		h.handleUserEvents(ctx, frame.Data)
	case "notification":
		h.log.Info("venue notification", "payload", string(frame.Data))
	}
}

func (h *UserHandler) handleOrderUpdates(ctx context.Context, data json.RawMessage) {
	var updates []orderUpdate
	if err := json.Unmarshal(data, &updates); err != nil {
		h.log.Warn("dropping malformed order updates", "err", err)
		return
	}

	for _, update := range updates {
		h.log.Info("order update",
			"coin", update.Order.Coin, "status", update.Status,
			"size", update.Order.Sz, "oid", update.Order.Oid)
		if update.Status == "filled" {
			h.notifier.Notify(ctx, fmt.Sprintf("📝 Order update: %s - Status: %s, Size: %s",
				update.Order.Coin, update.Status, update.Order.Sz))
		}
	}
}

func (h *UserHandler) handleUserFills(data json.RawMessage) {
	var fills userFillsData
	if err := json.Unmarshal(data, &fills); err != nil {
		h.log.Warn("dropping malformed user fills", "err", err)
		return
	}

	for _, fill := range fills.Fills {
		h.log.Info("fill",
			"coin", fill.Coin, "price", fill.Px, "size", fill.Sz,
			"side", strings.ToUpper(fill.Side))
	}
}

func (h *UserHandler) handleUserEvents(ctx context.Context, data json.RawMessage) {
	var events []userEvent
	if err := json.Unmarshal(data, &events); err != nil {
		// userEvents may also arrive as a single object.
		var single userEvent
		if err := json.Unmarshal(data, &single); err != nil {
			h.log.Warn("dropping malformed user events", "err", err)
			return
		}
		events = []userEvent{single}
	}

	for _, event := range events {
		for _, fill := range event.Fills {
			h.log.Info("fill event",
				"coin", fill.Coin, "price", fill.Px, "size", fill.Sz,
				"side", strings.ToUpper(fill.Side))
		}
		if event.Funding != nil {
			msg := fmt.Sprintf("💰 Funding payment: %s - Amount: %s, Rate: %s",
				event.Funding.Coin, event.Funding.Usdc, event.Funding.FundingRate)
			h.log.Info("funding payment",
				"coin", event.Funding.Coin, "usdc", event.Funding.Usdc,
				"rate", event.Funding.FundingRate)
			h.notifier.Notify(ctx, msg)
		}
	}
}
