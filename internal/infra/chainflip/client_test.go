package chainflip

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"maker_hedge/internal/infra"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, infra.NewRateLimiter(10, 10), testLogger())
}

func TestClient_SetLimitOrder_Payload(t *testing.T) {
	var captured setLimitOrderParams
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string              `json:"method"`
			Params setLimitOrderParams `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "lp_set_limit_order" {
			t.Errorf("method = %q", req.Method)
		}
		captured = req.Params
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "jsonrpc": "2.0", "result": nil})
	})

	// Selling 2 ETH at 2000: offered amount is 2e18 wei.
	if err := client.SetLimitOrder(context.Background(), "ETH", "sell", 1, 2000, 2); err != nil {
		t.Fatalf("SetLimitOrder: %v", err)
	}

	if captured.BaseAsset != (AssetRef{Chain: "Ethereum", Asset: "ETH"}) {
		t.Errorf("base asset = %+v", captured.BaseAsset)
	}
	if captured.QuoteAsset != (AssetRef{Chain: "Ethereum", Asset: "USDC"}) {
		t.Errorf("quote asset = %+v", captured.QuoteAsset)
	}
	if captured.Side != "sell" || captured.ID != 1 {
		t.Errorf("side/id = %q/%d", captured.Side, captured.ID)
	}
	if captured.SellAmount != "0x1bc16d674ec80000" { // 2e18
		t.Errorf("sell amount = %q", captured.SellAmount)
	}
	// tick = floor(ln(2000 * 1e6/1e18) / ln(1.0001))
	if captured.Tick != -200312 {
		t.Errorf("tick = %d", captured.Tick)
	}
}

func TestClient_SetLimitOrder_BuySellAmountInQuote(t *testing.T) {
	var captured setLimitOrderParams
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params setLimitOrderParams `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		captured = req.Params
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "jsonrpc": "2.0", "result": nil})
	})

	// Buying 1 ETH at 2000: the offered side is 2000 USDC = 2e9 micro-USDC.
	if err := client.SetLimitOrder(context.Background(), "ETH", "buy", 2, 2000, 1); err != nil {
		t.Fatalf("SetLimitOrder: %v", err)
	}
	if captured.SellAmount != "0x77359400" {
		t.Errorf("sell amount = %q", captured.SellAmount)
	}
}

func TestClient_SetLimitOrder_VenueError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 1, "jsonrpc": "2.0",
			"error": map[string]interface{}{"code": -32000, "message": "insufficient balance"},
		})
	})

	err := client.SetLimitOrder(context.Background(), "BTC", "sell", 3, 60000, 0.1)
	if err == nil {
		t.Fatal("expected error for venue rejection")
	}
}

func TestClient_SetLimitOrder_ZeroAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for zero-size order")
	})

	if err := client.SetLimitOrder(context.Background(), "ETH", "sell", 1, 2000, 0); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestAssetRefFor(t *testing.T) {
	cases := map[string]AssetRef{
		"ETH":          {Chain: "Ethereum", Asset: "ETH"},
		"ARBITRUM_ETH": {Chain: "Arbitrum", Asset: "ETH"},
		"BTC":          {Chain: "Bitcoin", Asset: "BTC"},
		"DOT":          {Chain: "Polkadot", Asset: "DOT"},
		"USDC":         {Chain: "Ethereum", Asset: "USDC"},
	}
	for symbol, want := range cases {
		if got := AssetRefFor(symbol); got != want {
			t.Errorf("AssetRefFor(%q) = %+v, want %+v", symbol, got, want)
		}
	}
}
