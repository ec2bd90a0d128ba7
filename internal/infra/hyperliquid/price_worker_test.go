package hyperliquid

import (
	"context"
	"testing"
)

func TestPriceHandler_MidsUpdate(t *testing.T) {
	h := NewPriceHandler("ws://unused", testLogger())

	h.OnMessage(context.Background(),
		[]byte(`{"channel":"allMids","data":{"mids":{"ETH":"2001.5","BTC":"60120","DOT":"7.25"}}}`))

	if mid, ok := h.Mid("ETH"); !ok || mid != 2001.5 {
		t.Errorf("Mid(ETH) = %v, %v", mid, ok)
	}
	if mid, ok := h.Mid("DOT"); !ok || mid != 7.25 {
		t.Errorf("Mid(DOT) = %v, %v", mid, ok)
	}
}

func TestPriceHandler_ArbitrumEthMirrorsEth(t *testing.T) {
	h := NewPriceHandler("ws://unused", testLogger())
	h.OnMessage(context.Background(),
		[]byte(`{"channel":"allMids","data":{"mids":{"ETH":"2001.5"}}}`))

	if mid, ok := h.Mid("ARBITRUM_ETH"); !ok || mid != 2001.5 {
		t.Errorf("Mid(ARBITRUM_ETH) = %v, %v", mid, ok)
	}
}

func TestPriceHandler_UnknownAsset(t *testing.T) {
	h := NewPriceHandler("ws://unused", testLogger())
	if _, ok := h.Mid("SOL"); ok {
		t.Error("expected no mid for unknown asset")
	}
}

func TestPriceHandler_IgnoresOtherChannelsAndGarbage(t *testing.T) {
	h := NewPriceHandler("ws://unused", testLogger())

	h.OnMessage(context.Background(), []byte(`{"channel":"pong"}`))
	h.OnMessage(context.Background(), []byte(`not json`))
	h.OnMessage(context.Background(),
		[]byte(`{"channel":"allMids","data":{"mids":{"ETH":"garbage","BTC":"60000"}}}`))

	if _, ok := h.Mid("ETH"); ok {
		t.Error("unparsable mid should be dropped")
	}
	if mid, ok := h.Mid("BTC"); !ok || mid != 60000 {
		t.Errorf("Mid(BTC) = %v, %v", mid, ok)
	}
}

func TestPriceHandler_LastValueWins(t *testing.T) {
	h := NewPriceHandler("ws://unused", testLogger())
	h.OnMessage(context.Background(), []byte(`{"channel":"allMids","data":{"mids":{"ETH":"2000"}}}`))
	h.OnMessage(context.Background(), []byte(`{"channel":"allMids","data":{"mids":{"ETH":"2010"}}}`))

	if mid, _ := h.Mid("ETH"); mid != 2010 {
		t.Errorf("Mid(ETH) = %v, want 2010", mid)
	}
}
