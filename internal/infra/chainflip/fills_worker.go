package chainflip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/notify"
	"maker_hedge/internal/relay"
	"maker_hedge/pkg/precision"
)

// feeRate is the pool fee credited to the maker, 5 basis points of the
// fill's quote notional.
var feeRate = decimal.NewFromFloat(0.0005)

// FillsHandler subscribes to the pool's order-fill stream, extracts fills
// that belong to our LP account and appends them to the relay file. Fills by
// other LPs and range-order fills are logged for market visibility only.
type FillsHandler struct {
	url       string
	lpAddress string
	writer    *relay.Writer
	notifier  notify.Notifier
	log       *slog.Logger

	now func() int64
}

func NewFillsHandler(wsURL, lpAddress string, writer *relay.Writer, notifier notify.Notifier, log *slog.Logger) *FillsHandler {
	return &FillsHandler{
		url:       wsURL,
		lpAddress: lpAddress,
		writer:    writer,
		notifier:  notifier,
		log:       log.With("component", "chainflip_fills"),
		now:       func() int64 { return time.Now().Unix() },
	}
}

func (h *FillsHandler) GetURL() string { return h.url }
func (h *FillsHandler) ID() string     { return "chainflip-fills" }

// OnConnect sends the subscription request and blocks until the node
// acknowledges it with a subscription id.
func (h *FillsHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := rpcRequest{ID: 1, JSONRPC: "2.0", Method: "lp_subscribe_order_fills"}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read subscription ack: %w", err)
	}

	var ack rpcResponse
	if err := json.Unmarshal(msg, &ack); err != nil {
		return fmt.Errorf("malformed subscription ack: %w", err)
	}
	if ack.Error != nil {
		return fmt.Errorf("subscription rejected: %s", ack.Error.Message)
	}
	if len(ack.Result) == 0 {
		return fmt.Errorf("subscription ack carries no result")
	}

	h.log.Info("subscribed to order fills")
	return nil
}

func (h *FillsHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// OnMessage handles one fill notification. A frame that fails to decode is
// logged and dropped; the subscription stays up.
func (h *FillsHandler) OnMessage(ctx context.Context, msg []byte) {
	var note fillNotification
	if err := json.Unmarshal(msg, &note); err != nil {
		h.log.Warn("dropping undecodable frame", "err", err)
		return
	}
	if note.Method != "lp_subscribe_order_fills" {
		return
	}

	result := note.Params.Result
	if len(result.Fills) == 0 {
		return
	}
	h.log.Info("received order fills", "count", len(result.Fills), "block", result.BlockNumber)

	for _, fill := range result.Fills {
		switch {
		case fill.LimitOrder != nil:
			h.handleLimitOrderFill(ctx, fill.LimitOrder)
		case fill.RangeOrder != nil:
			h.logRangeOrderFill(fill.RangeOrder)
		default:
			h.log.Warn("unexpected fill structure", "raw", string(msg))
		}
	}
}

func (h *FillsHandler) handleLimitOrderFill(ctx context.Context, order *limitOrderFill) {
	event, err := h.decodeLimitOrderFill(order)
	if err != nil {
		h.log.Warn("dropping undecodable limit order fill", "err", err)
		return
	}
	if event == nil {
		// Pair outside our quoting universe.
		return
	}

	if order.LP != h.lpAddress {
		h.log.Info("other LP order filled",
			"lp", order.LP, "asset", event.Asset, "side", event.Side,
			"amount", event.Amount, "price", event.Price)
		return
	}

	if err := h.writer.Append(*event); err != nil {
		h.log.Error("failed to persist fill", "err", err, "key", event.Key())
		return
	}

	msg := fmt.Sprintf("💰 Our order filled: swapped %.8f %s ($%.2f) at an average price of $%.2f. Fees earned: %.8f %s ($%.4f USDC)",
		event.Amount, event.Asset, event.Total, event.Price,
		event.FeesEarnedAsset, event.Asset, event.FeesEarnedQuote)
	h.log.Info("own order filled",
		"asset", event.Asset, "side", event.Side, "amount", event.Amount,
		"price", event.Price, "total", event.Total, "feesQuote", event.FeesEarnedQuote)
	h.notifier.Notify(ctx, msg)
}

// decodeLimitOrderFill converts the hex smallest-unit deltas into a FillEvent.
// Returns nil for pairs we do not quote.
func (h *FillsHandler) decodeLimitOrderFill(order *limitOrderFill) (*domain.FillEvent, error) {
	base := order.BaseAsset.Asset
	if order.BaseAsset.Chain == "Arbitrum" && base == "ETH" {
		base = "ARBITRUM_ETH"
	}

	switch base {
	case "ETH", "BTC", "DOT", "ARBITRUM_ETH":
	default:
		return nil, nil
	}
	if order.QuoteAsset.Asset != "USDC" {
		return nil, nil
	}

	sold, err := parseHexAmount(order.Sold)
	if err != nil {
		return nil, fmt.Errorf("bad sold amount %q: %w", order.Sold, err)
	}
	bought, err := parseHexAmount(order.Bought)
	if err != nil {
		return nil, fmt.Errorf("bad bought amount %q: %w", order.Bought, err)
	}

	baseScale := precision.UnitScale(base)
	quoteScale := precision.QuoteScale()

	// For a sell order the base asset left our book and USDC came in;
	// for a buy the directions flip.
	var assetChange, quoteChange decimal.Decimal
	if order.Side == domain.SideSell {
		assetChange = sold.Div(baseScale).Neg()
		quoteChange = bought.Div(quoteScale)
	} else {
		assetChange = bought.Div(baseScale)
		quoteChange = sold.Div(quoteScale).Neg()
	}

	// A fill can move only the quote side; report it with price 0 rather
	// than dropping it.
	price := decimal.Zero
	if !assetChange.IsZero() {
		price = quoteChange.Div(assetChange).Abs()
	}
	feesQuote := quoteChange.Abs().Mul(feeRate)
	feesAsset := decimal.Zero
	if !price.IsZero() {
		feesAsset = feesQuote.Div(price)
	}

	amount, _ := assetChange.Abs().Float64()
	priceF, _ := price.Float64()
	total, _ := quoteChange.Abs().Float64()
	feesAssetF, _ := feesAsset.Float64()
	feesQuoteF, _ := feesQuote.Float64()

	return &domain.FillEvent{
		Timestamp:       h.now(),
		Asset:           base,
		QuoteAsset:      order.QuoteAsset.Asset,
		Side:            order.Side,
		Amount:          amount,
		Price:           priceF,
		Total:           total,
		FeesEarnedAsset: feesAssetF,
		FeesEarnedQuote: feesQuoteF,
		FeesAsset:       base,
	}, nil
}

func (h *FillsHandler) logRangeOrderFill(order *rangeOrderFill) {
	feesBase, err := parseHexAmount(order.Fees.Base)
	if err != nil {
		h.log.Warn("dropping range order fill with bad base fees", "err", err)
		return
	}
	feesQuote, err := parseHexAmount(order.Fees.Quote)
	if err != nil {
		h.log.Warn("dropping range order fill with bad quote fees", "err", err)
		return
	}

	h.log.Info("range order fill",
		"lp", order.LP,
		"pair", order.BaseAsset.Asset+"/"+order.QuoteAsset.Asset,
		"rangeStart", order.Range.Start, "rangeEnd", order.Range.End,
		"feesBase", feesBase.String(), "feesQuote", feesQuote.String(),
		"liquidity", order.Liquidity)
}

func parseHexAmount(s string) (decimal.Decimal, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("not a hex integer")
	}
	return decimal.NewFromBigInt(v, 0), nil
}
