package storage

import (
	"context"
	"path/filepath"
	"testing"

	"maker_hedge/internal/domain"
)

func newTestStore(t *testing.T) *TradeStore {
	t.Helper()
	store, err := NewTradeStore(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("NewTradeStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.InsertTrade(ctx, domain.TradeRecord{
		Timestamp:  1700000000,
		Venue:      domain.VenueAMM,
		Asset:      "ETH",
		Side:       domain.SideBuy,
		Amount:     1.5,
		Price:      2000.25,
		FeesEarned: 1.2,
		FeesAsset:  "USDC",
	})
	if err != nil {
		t.Fatalf("InsertTrade: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero trade id")
	}

	got, err := store.GetTrade(ctx, id)
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.Asset != "ETH" || got.Side != domain.SideBuy || got.Amount != 1.5 {
		t.Errorf("unexpected trade: %+v", got)
	}
	if got.Matched {
		t.Error("fresh trade should not be matched")
	}
	if got.FeesEarned != 1.2 || got.FeesAsset != "USDC" {
		t.Errorf("fees not round-tripped: %+v", got)
	}
}

func TestTradeStore_PairFlagsBothLegs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	originID, err := store.InsertTrade(ctx, domain.TradeRecord{
		Timestamp: 1700000000, Venue: domain.VenueAMM, Asset: "ETH",
		Side: domain.SideBuy, Amount: 1, Price: 2000,
	})
	if err != nil {
		t.Fatalf("insert origin: %v", err)
	}
	hedgeID, err := store.InsertTrade(ctx, domain.TradeRecord{
		Timestamp: 1700000001, Venue: domain.VenueHedge, Asset: "ETH",
		Side: domain.SideSell, Amount: 1, Price: 1999,
	})
	if err != nil {
		t.Fatalf("insert hedge: %v", err)
	}

	pairID, err := store.InsertTradePair(ctx, domain.TradePair{
		Timestamp:     1700000001,
		Asset:         "ETH",
		OriginTradeID: originID,
		HedgeTradeID:  hedgeID,
		OriginAmount:  1, OriginPrice: 2000,
		HedgeAmount: 1, HedgePrice: 1999,
		FeesEarnedQuote: 1.0,
		PnL:             0.0,
		PnLPercentage:   0.0,
	})
	if err != nil {
		t.Fatalf("InsertTradePair: %v", err)
	}

	pair, err := store.GetTradePair(ctx, pairID)
	if err != nil {
		t.Fatalf("GetTradePair: %v", err)
	}
	if pair.OriginTradeID != originID || pair.HedgeTradeID != hedgeID {
		t.Errorf("pair ids mismatch: %+v", pair)
	}

	for _, id := range []int64{originID, hedgeID} {
		trade, err := store.GetTrade(ctx, id)
		if err != nil {
			t.Fatalf("GetTrade(%d): %v", id, err)
		}
		if !trade.Matched {
			t.Errorf("trade %d should be matched after pairing", id)
		}
	}
}

func TestTradeStore_UnmatchedTrades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertTrade(ctx, domain.TradeRecord{
		Timestamp: 1, Venue: domain.VenueAMM, Asset: "BTC", Side: domain.SideSell, Amount: 0.1, Price: 60000,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.InsertTrade(ctx, domain.TradeRecord{
		Timestamp: 2, Venue: domain.VenueHedge, Asset: "BTC", Side: domain.SideBuy, Amount: 0.1, Price: 60010,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	unmatched, err := store.UnmatchedTrades(ctx, domain.VenueAMM)
	if err != nil {
		t.Fatalf("UnmatchedTrades: %v", err)
	}
	if len(unmatched) != 1 {
		t.Fatalf("expected 1 unmatched AMM trade, got %d", len(unmatched))
	}
	if unmatched[0].Asset != "BTC" || unmatched[0].Venue != domain.VenueAMM {
		t.Errorf("unexpected unmatched trade: %+v", unmatched[0])
	}
}
