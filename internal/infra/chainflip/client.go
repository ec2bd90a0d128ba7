package chainflip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"maker_hedge/internal/infra"
	"maker_hedge/pkg/precision"
)

// Client talks to the LP API over JSON-RPC. Order placement is throttled by
// a shared rate limiter so a requote burst across assets cannot flood the node.
type Client struct {
	apiURL  string
	http    *http.Client
	limiter *infra.RateLimiter
	log     *slog.Logger
}

func NewClient(apiURL string, limiter *infra.RateLimiter, log *slog.Logger) *Client {
	return &Client{
		apiURL:  apiURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		log:     log.With("component", "chainflip"),
	}
}

// SetLimitOrder places (or replaces) the resting limit order occupying the
// given venue-side order slot. The quoted price is converted to a pool tick
// and the offered amount to the smallest-unit hex encoding the RPC expects.
// A submission that the venue rejects returns an error; the caller decides
// whether the slot keeps its previous order.
func (c *Client) SetLimitOrder(ctx context.Context, baseSymbol string, side string, orderID int, price, amount float64) error {
	tick := precision.TickForAsset(price, baseSymbol)
	sellAmount := precision.SellAmount(side, amount, price, baseSymbol)
	if sellAmount.Sign() <= 0 {
		return fmt.Errorf("sell amount for %s %s rounded to zero", side, baseSymbol)
	}

	params := setLimitOrderParams{
		BaseAsset:  AssetRefFor(baseSymbol),
		QuoteAsset: AssetRefFor("USDC"),
		Side:       side,
		ID:         orderID,
		Tick:       tick,
		SellAmount: fmt.Sprintf("0x%x", sellAmount.BigInt()),
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.call(ctx, "lp_set_limit_order", params)
	if err != nil {
		return fmt.Errorf("lp_set_limit_order %s %s: %w", side, baseSymbol, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("lp_set_limit_order %s %s rejected: %s (code %d)",
			side, baseSymbol, resp.Error.Message, resp.Error.Code)
	}

	c.log.Info("order placed",
		"side", side, "asset", baseSymbol, "amount", amount, "price", price, "tick", tick, "slot", orderID)
	return nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	body, err := json.Marshal(rpcRequest{ID: 1, JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}
