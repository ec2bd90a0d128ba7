package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/infra/hyperliquid"
)

// AccountInfo is the read-only venue surface the monitor polls.
type AccountInfo interface {
	UserState(ctx context.Context) (domain.AccountState, error)
	OpenOrders(ctx context.Context) ([]hyperliquid.OpenOrder, error)
}

// MonitorIntervals configures the polling cadences.
type MonitorIntervals struct {
	Balance    time.Duration
	OpenOrders time.Duration
	SummaryLog time.Duration
}

// Monitor periodically refreshes account state from the derivatives venue and
// logs a periodic summary. Each refresh replaces the cached positions
// wholesale, so positions closed on the venue disappear from the cache.
type Monitor struct {
	venue     AccountInfo
	symbols   []string
	intervals MonitorIntervals
	log       *slog.Logger

	mu    sync.RWMutex
	state domain.AccountState
}

func NewMonitor(venue AccountInfo, symbols []string, intervals MonitorIntervals, log *slog.Logger) *Monitor {
	return &Monitor{
		venue:     venue,
		symbols:   symbols,
		intervals: intervals,
		log:       log.With("component", "monitor"),
	}
}

// Run drives all polling loops until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	loops := []struct {
		interval time.Duration
		fn       func(context.Context)
	}{
		{m.intervals.Balance, m.refreshBalance},
		{m.intervals.OpenOrders, m.checkOpenOrders},
		{m.intervals.SummaryLog, m.logSummary},
	}

	for _, loop := range loops {
		wg.Add(1)
		go func(interval time.Duration, fn func(context.Context)) {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					fn(ctx)
				}
			}
		}(loop.interval, loop.fn)
	}
	wg.Wait()
}

// State returns the last fetched account snapshot.
func (m *Monitor) State() domain.AccountState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Monitor) tracked(symbol string) bool {
	for _, s := range m.symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

func (m *Monitor) refreshBalance(ctx context.Context) {
	state, err := m.venue.UserState(ctx)
	if err != nil {
		m.log.Error("failed to refresh account state", "err", err)
		return
	}

	for symbol := range state.Positions {
		if !m.tracked(symbol) {
			delete(state.Positions, symbol)
		}
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	m.log.Info("account summary",
		"accountValue", state.AccountValue, "withdrawable", state.Withdrawable)
	if len(state.Positions) == 0 {
		m.log.Info("no open positions")
		return
	}
	for _, pos := range state.Positions {
		m.log.Info("position",
			"symbol", pos.Symbol, "size", pos.NetSize, "entryPrice", pos.EntryPrice)
	}
}

func (m *Monitor) checkOpenOrders(ctx context.Context) {
	orders, err := m.venue.OpenOrders(ctx)
	if err != nil {
		m.log.Error("failed to fetch open orders", "err", err)
		return
	}

	shown := 0
	for _, order := range orders {
		if !m.tracked(order.Coin) {
			continue
		}
		shown++
		m.log.Info("open order",
			"coin", order.Coin, "side", strings.ToUpper(order.Side),
			"size", order.Sz, "price", order.LimitPx)
	}
	if shown == 0 {
		m.log.Info("no open orders")
	}
}

func (m *Monitor) logSummary(ctx context.Context) {
	state := m.State()
	m.log.Info("periodic summary",
		"accountValue", state.AccountValue,
		"withdrawable", state.Withdrawable,
		"openPositions", len(state.Positions))
}
