package engine

import (
	"context"
	"log/slog"
	"math"
	"time"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/infra"
)

// PriceSource provides the reference mid price for an asset.
type PriceSource interface {
	Mid(asset string) (float64, bool)
}

// OrderPlacer places a resting limit order into a venue-side order slot.
type OrderPlacer interface {
	SetLimitOrder(ctx context.Context, baseSymbol, side string, orderID int, price, amount float64) error
}

// QuoteEngine keeps two-sided quotes resting on the AMM, repricing them off
// the derivatives mid whenever it drifts past the configured threshold.
// Placement is set-and-forget: a failed submission is logged and the slot
// keeps whatever order it held, to be replaced on the next requote.
type QuoteEngine struct {
	prices    PriceSource
	orders    OrderPlacer
	assets    []infra.AssetConfig
	threshold float64
	interval  time.Duration
	log       *slog.Logger

	lastQuotedMid map[string]float64
}

func NewQuoteEngine(prices PriceSource, orders OrderPlacer, cfg infra.TradingConfig, log *slog.Logger) *QuoteEngine {
	return &QuoteEngine{
		prices:        prices,
		orders:        orders,
		assets:        cfg.Assets,
		threshold:     cfg.PriceChangeThreshold,
		interval:      time.Duration(cfg.QuoteIntervalSec) * time.Second,
		log:           log.With("component", "quote_engine"),
		lastQuotedMid: make(map[string]float64),
	}
}

// Run evaluates quotes once per interval until the context is cancelled.
func (e *QuoteEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick evaluates every configured asset once.
func (e *QuoteEngine) Tick(ctx context.Context) {
	for _, asset := range e.assets {
		e.evaluate(ctx, asset)
	}
}

func (e *QuoteEngine) evaluate(ctx context.Context, asset infra.AssetConfig) {
	mid, ok := e.prices.Mid(asset.Name)
	if !ok || mid == 0 {
		return
	}

	last := e.lastQuotedMid[asset.Name]
	change := math.Inf(1)
	if last != 0 {
		change = math.Abs(mid-last) / last
	}
	if change <= e.threshold {
		return
	}

	attempted := false

	if asset.SellAmount > 0 {
		sellPrice := mid * asset.SellFactor
		attempted = true
		if err := e.orders.SetLimitOrder(ctx, asset.Name, domain.SideSell, asset.SellOrderID, sellPrice, asset.SellAmount); err != nil {
			e.log.Error("failed to place sell quote", "asset", asset.Name, "price", sellPrice, "err", err)
		}
	}

	if asset.BuyAmount > 0 {
		buyPrice := mid * asset.BuyFactor
		attempted = true
		if err := e.orders.SetLimitOrder(ctx, asset.Name, domain.SideBuy, asset.BuyOrderID, buyPrice, asset.BuyAmount); err != nil {
			e.log.Error("failed to place buy quote", "asset", asset.Name, "price", buyPrice, "err", err)
		}
	}

	if attempted {
		// The reference mid moves forward even when a submission failed;
		// the slot is retried on the next threshold crossing, not sooner.
		e.lastQuotedMid[asset.Name] = mid
		e.log.Info("updated quotes",
			"asset", asset.Name, "mid", mid,
			"sell", mid*asset.SellFactor, "buy", mid*asset.BuyFactor)
	}
}
