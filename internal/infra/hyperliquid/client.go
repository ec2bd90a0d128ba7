package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/infra"
)

// Client wraps the venue's info and exchange HTTP endpoints. Info polling
// runs behind a circuit breaker, so a degraded venue stops being hammered
// for account state. Order placement NEVER goes through the breaker: a hedge
// is mandatory once a fill is committed, and the per-attempt outcome is
// reported through the HedgeOrder status instead.
type Client struct {
	apiURL  string
	http    *http.Client
	signer  *Signer
	user    string
	breaker *infra.CircuitBreaker
	log     *slog.Logger

	metaMu     sync.RWMutex
	assetIndex map[string]int
	szDecimals map[string]int

	nonce func() uint64
}

func NewClient(apiURL, userAddress string, signer *Signer, log *slog.Logger) *Client {
	return &Client{
		apiURL:     apiURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		signer:     signer,
		user:       userAddress,
		breaker:    infra.NewCircuitBreaker("hyperliquid-info", 5, 2, 30*time.Second),
		log:        log.With("component", "hyperliquid"),
		assetIndex: make(map[string]int),
		szDecimals: make(map[string]int),
		nonce:      func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// LoadMeta fetches the perp universe and caches asset indices and size
// decimals. Must succeed once before any order can be placed.
func (c *Client) LoadMeta(ctx context.Context) error {
	var meta metaResponse
	if err := c.info(ctx, infoRequest{Type: "meta"}, &meta); err != nil {
		return fmt.Errorf("failed to fetch meta: %w", err)
	}

	c.metaMu.Lock()
	defer c.metaMu.Unlock()
	for i, asset := range meta.Universe {
		c.assetIndex[asset.Name] = i
		c.szDecimals[asset.Name] = asset.SzDecimals
	}
	c.log.Info("loaded venue metadata", "assets", len(meta.Universe))
	return nil
}

// SzDecimals returns the size precision for a symbol, if known.
func (c *Client) SzDecimals(symbol string) (int, bool) {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	d, ok := c.szDecimals[symbol]
	return d, ok
}

// SetSzDecimals seeds size precision from configuration, overriding or
// supplementing the fetched metadata.
func (c *Client) SetSzDecimals(overrides map[string]int) {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()
	for symbol, d := range overrides {
		c.szDecimals[symbol] = d
	}
}

// UserState fetches the account value, withdrawable balance and open
// positions.
func (c *Client) UserState(ctx context.Context) (domain.AccountState, error) {
	var resp userStateResponse
	if err := c.info(ctx, infoRequest{Type: "clearinghouseState", User: c.user}, &resp); err != nil {
		return domain.AccountState{}, fmt.Errorf("failed to fetch user state: %w", err)
	}

	state := domain.AccountState{
		AccountValue: parseFloat(resp.MarginSummary.AccountValue),
		Withdrawable: parseFloat(resp.Withdrawable),
		Positions:    make(map[string]domain.Position),
	}
	for _, ap := range resp.AssetPositions {
		size := parseFloat(ap.Position.Szi)
		if size == 0 {
			continue
		}
		state.Positions[ap.Position.Coin] = domain.Position{
			Symbol:     ap.Position.Coin,
			NetSize:    size,
			EntryPrice: parseFloat(ap.Position.EntryPx),
		}
	}
	return state, nil
}

// OpenOrders lists the account's resting orders.
func (c *Client) OpenOrders(ctx context.Context) ([]OpenOrder, error) {
	var orders []OpenOrder
	if err := c.info(ctx, infoRequest{Type: "frontendOpenOrders", User: c.user}, &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch open orders: %w", err)
	}
	return orders, nil
}

// UpdateLeverage sets isolated leverage for a symbol. Failures are reported
// but the caller proceeds with the hedge regardless.
func (c *Client) UpdateLeverage(ctx context.Context, symbol string, leverage int) error {
	idx, ok := c.lookupAsset(symbol)
	if !ok {
		return fmt.Errorf("unknown asset %s", symbol)
	}

	action := leverageAction{Type: "updateLeverage", Asset: idx, IsCross: false, Leverage: leverage}
	var resp exchangeResponse
	if err := c.exchange(ctx, action, &resp); err != nil {
		return fmt.Errorf("failed to update leverage for %s: %w", symbol, err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("leverage update rejected for %s: %s", symbol, resp.Error)
	}

	c.log.Info("updated leverage", "symbol", symbol, "leverage", leverage)
	return nil
}

// PlaceOrder submits one GTC limit order and classifies the outcome. The
// returned order always carries a terminal-or-resting status; transport
// problems surface as HedgeTransportFailed with Err set, meaning the order
// may or may not exist on the venue.
func (c *Client) PlaceOrder(ctx context.Context, symbol, side string, size, price float64) domain.HedgeOrder {
	order := domain.HedgeOrder{
		Symbol: symbol,
		Side:   side,
		Amount: size,
		Price:  price,
	}

	idx, ok := c.lookupAsset(symbol)
	if !ok {
		order.Status = domain.HedgeRejected
		order.Err = fmt.Errorf("unknown asset %s", symbol)
		return order
	}

	action := orderAction{
		Type: "order",
		Orders: []orderWire{{
			Asset:      idx,
			IsBuy:      side == domain.SideBuy,
			Price:      formatFloat(price),
			Size:       formatFloat(size),
			ReduceOnly: false,
			Type:       orderTypeWire{Limit: &limitWire{Tif: "Gtc"}},
			Cloid:      "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		}},
		Grouping: "na",
	}

	var resp exchangeResponse
	if err := c.exchange(ctx, action, &resp); err != nil {
		order.Status = domain.HedgeTransportFailed
		order.Err = err
		return order
	}

	if resp.Status != "ok" {
		order.Status = domain.HedgeRejected
		order.Err = fmt.Errorf("order rejected: %s", resp.Error)
		return order
	}

	for _, status := range resp.Response.Data.Statuses {
		switch {
		case status.Resting != nil:
			order.Status = domain.HedgeResting
			order.VenueOrderID = status.Resting.Oid
			return order
		case status.Filled != nil:
			order.Status = domain.HedgeFilled
			order.VenueOrderID = status.Filled.Oid
			order.FilledAmount = parseFloat(status.Filled.TotalSz)
			order.FilledPrice = parseFloat(status.Filled.AvgPx)
			return order
		case status.Error != "":
			order.Status = domain.HedgeRejected
			order.Err = fmt.Errorf("order error: %s", status.Error)
			return order
		}
	}

	order.Status = domain.HedgeRejected
	order.Err = fmt.Errorf("response carries no order status")
	return order
}

func (c *Client) lookupAsset(symbol string) (int, bool) {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	idx, ok := c.assetIndex[symbol]
	return idx, ok
}

func (c *Client) info(ctx context.Context, req infoRequest, out interface{}) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("info circuit open")
	}

	err := c.post(ctx, "/info", req, out)
	if err != nil {
		c.breaker.RecordFailure()
		return err
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) exchange(ctx context.Context, action interface{}, out interface{}) error {
	nonce := c.nonce()
	sig, err := c.signer.SignAction(action, nonce)
	if err != nil {
		return fmt.Errorf("failed to sign action: %w", err)
	}

	return c.post(ctx, "/exchange", exchangeRequest{Action: action, Nonce: nonce, Signature: sig}, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
