package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/notify"
	"maker_hedge/pkg/precision"
)

// HedgeVenue is the derivatives venue surface the hedger needs.
type HedgeVenue interface {
	SzDecimals(symbol string) (int, bool)
	UpdateLeverage(ctx context.Context, symbol string, leverage int) error
	PlaceOrder(ctx context.Context, symbol, side string, size, price float64) domain.HedgeOrder
}

// TradeLog persists trade legs and matched pairs.
type TradeLog interface {
	InsertTrade(ctx context.Context, t domain.TradeRecord) (int64, error)
	InsertTradePair(ctx context.Context, p domain.TradePair) (int64, error)
}

// HedgeEngine turns AMM fills into offsetting derivatives orders. One fill is
// processed start to finish before the next; the origin trade is recorded
// unconditionally, before any hedge precondition can skip the order, so the
// books never lose a leg.
type HedgeEngine struct {
	venue    HedgeVenue
	trades   TradeLog
	notifier notify.Notifier
	skews    domain.SkewTable
	aliases  map[string]string // AMM asset -> derivatives symbol
	log      *slog.Logger

	now func() int64
}

func NewHedgeEngine(venue HedgeVenue, trades TradeLog, notifier notify.Notifier, skews domain.SkewTable, aliases map[string]string, log *slog.Logger) *HedgeEngine {
	return &HedgeEngine{
		venue:    venue,
		trades:   trades,
		notifier: notifier,
		skews:    skews,
		aliases:  aliases,
		log:      log.With("component", "hedge_engine"),
		now:      func() int64 { return time.Now().Unix() },
	}
}

func (e *HedgeEngine) hedgeSymbol(asset string) string {
	if alias, ok := e.aliases[asset]; ok && alias != "" {
		return alias
	}
	return asset
}

// ProcessFill records the origin trade, places the offsetting order and, when
// the hedge was accepted, books the matched pair with its PnL. A skipped or
// failed hedge leaves the origin trade unmatched; the fill still counts as
// processed so the reader's checkpoint can advance past it.
func (e *HedgeEngine) ProcessFill(ctx context.Context, fill domain.FillEvent) error {
	e.log.Info("processing origin fill",
		"asset", fill.Asset, "side", fill.Side, "amount", fill.Amount, "price", fill.Price)
	e.notifier.Notify(ctx, fmt.Sprintf("🔄 Processing %s order: %v %s at %v",
		strings.ToUpper(fill.Side), fill.Amount, fill.Asset, fill.Price))

	originID, err := e.trades.InsertTrade(ctx, domain.TradeRecord{
		Timestamp:  fill.Timestamp,
		Venue:      domain.VenueAMM,
		Asset:      fill.Asset,
		Side:       fill.Side,
		Amount:     fill.Amount,
		Price:      fill.Price,
		FeesEarned: fill.FeesEarnedAsset,
		FeesAsset:  fill.FeesAsset,
	})
	if err != nil {
		return fmt.Errorf("failed to record origin trade: %w", err)
	}

	symbol := e.hedgeSymbol(fill.Asset)

	szDecimals, ok := e.venue.SzDecimals(symbol)
	if !ok {
		msg := fmt.Sprintf("No size decimal information for %s. Skipping order.", symbol)
		e.log.Error("skipping hedge", "reason", msg)
		e.notifier.Notify(ctx, "❌ Skipped order: "+msg)
		return nil
	}

	size := precision.RoundSize(fill.Amount, szDecimals)
	hedgeSide := domain.FlipSide(fill.Side)
	skewBps := e.skews.Lookup(symbol, hedgeSide)

	adjusted := precision.RoundPrice(fill.Price * (1 + skewBps/10000))
	e.log.Info("hedge price adjustment",
		"symbol", symbol, "side", hedgeSide, "skewBps", skewBps,
		"originPrice", fill.Price, "adjustedPrice", adjusted)

	expected := fill.Price * skewBps / 10000
	actual := adjusted - fill.Price
	if math.Abs(expected-actual) > 0.01 {
		e.log.Warn("large rounding discrepancy in hedge price",
			"expected", expected, "actual", actual)
	}

	if size == 0 {
		e.log.Info("hedge size rounded to zero, skipping order", "symbol", symbol)
		return nil
	}

	// Isolated 1x, reset before every order so manual changes on the venue
	// cannot leak leverage into the hedge book.
	if err := e.venue.UpdateLeverage(ctx, symbol, 1); err != nil {
		e.log.Error("failed to reset leverage", "symbol", symbol, "err", err)
	}

	e.notifier.Notify(ctx, fmt.Sprintf("🚀 Placing limit %s order: %v %s at %v",
		strings.ToUpper(hedgeSide), size, symbol, adjusted))

	order := e.venue.PlaceOrder(ctx, symbol, hedgeSide, size, adjusted)
	switch order.Status {
	case domain.HedgeResting:
		e.log.Info("hedge order resting", "symbol", symbol, "oid", order.VenueOrderID)
		e.notifier.Notify(ctx, fmt.Sprintf("📝 Limit order placed: ID %d", order.VenueOrderID))
	case domain.HedgeFilled:
		e.log.Info("hedge order filled immediately",
			"symbol", symbol, "amount", order.FilledAmount, "price", order.FilledPrice)
		e.notifier.Notify(ctx, fmt.Sprintf("✅ Order immediately filled: %v %s at %v",
			order.FilledAmount, symbol, order.FilledPrice))
	case domain.HedgeRejected:
		e.log.Error("hedge order rejected", "symbol", symbol, "err", order.Err)
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Order failed: %s %v %s - %v",
			strings.ToUpper(hedgeSide), size, symbol, order.Err))
		return nil
	case domain.HedgeTransportFailed:
		e.log.Error("hedge order submission failed in transport, venue state unknown",
			"symbol", symbol, "err", order.Err)
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Error: order %s %v %s may or may not exist: %v",
			strings.ToUpper(hedgeSide), size, symbol, order.Err))
		return nil
	}

	hedgeAmount, hedgePrice := size, adjusted
	if order.Status == domain.HedgeFilled {
		hedgeAmount, hedgePrice = order.FilledAmount, order.FilledPrice
	}

	hedgeID, err := e.trades.InsertTrade(ctx, domain.TradeRecord{
		Timestamp: e.now(),
		Venue:     domain.VenueHedge,
		Asset:     symbol,
		Side:      hedgeSide,
		Amount:    hedgeAmount,
		Price:     hedgePrice,
	})
	if err != nil {
		return fmt.Errorf("failed to record hedge trade: %w", err)
	}

	// PnL is taken against the submitted price, not the eventual execution:
	// a resting hedge is assumed to fill where it was placed.
	var pnl float64
	if fill.Side == domain.SideBuy {
		pnl = (adjusted - fill.Price) * fill.Amount
	} else {
		pnl = (fill.Price - adjusted) * fill.Amount
	}

	feesQuote := fill.FeesEarnedAsset
	if fill.FeesAsset == fill.Asset {
		feesQuote = fill.FeesEarnedAsset * fill.Price
	}
	pnl += feesQuote

	tradeValue := fill.Price * fill.Amount
	pnlPct := 0.0
	if tradeValue != 0 {
		pnlPct = pnl / tradeValue * 100
	}

	if _, err := e.trades.InsertTradePair(ctx, domain.TradePair{
		Timestamp:       e.now(),
		Asset:           fill.Asset,
		OriginTradeID:   originID,
		HedgeTradeID:    hedgeID,
		OriginAmount:    fill.Amount,
		OriginPrice:     fill.Price,
		HedgeAmount:     size,
		HedgePrice:      adjusted,
		FeesEarnedQuote: feesQuote,
		PnL:             pnl,
		PnLPercentage:   pnlPct,
	}); err != nil {
		return fmt.Errorf("failed to record trade pair: %w", err)
	}

	e.log.Info("hedge booked",
		"asset", fill.Asset, "symbol", symbol, "pnl", pnl, "pnlPct", pnlPct, "feesQuote", feesQuote)
	return nil
}
