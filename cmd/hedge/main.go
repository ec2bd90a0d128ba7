package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"maker_hedge/internal/engine"
	"maker_hedge/internal/infra"
	"maker_hedge/internal/infra/hyperliquid"
	"maker_hedge/internal/notify"
	"maker_hedge/internal/relay"
	"maker_hedge/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Configuration (secrets may come from .env / environment)
	_ = godotenv.Load()
	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		slog.Error("❌ Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := infra.NewLogger(cfg.Logging.Level)
	slog.SetDefault(log)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
	}

	// 2. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Trade persistence
	store, err := storage.NewTradeStore(cfg.Database.Path)
	if err != nil {
		slog.Error("❌ Failed to open trade store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	// 4. Derivatives venue client
	signer, err := hyperliquid.NewSigner(cfg.Hyperliquid.PrivateKey)
	if err != nil {
		slog.Error("❌ Failed to initialize signer", slog.Any("error", err))
		os.Exit(1)
	}
	venue := hyperliquid.NewClient(cfg.Hyperliquid.APIURL, cfg.Hyperliquid.UserAddress, signer, log)
	if err := venue.LoadMeta(ctx); err != nil {
		slog.Error("❌ Failed to load venue metadata", slog.Any("error", err))
		os.Exit(1)
	}
	venue.SetSzDecimals(cfg.Hedge.SzDecimals)

	// 5. Observability stream for our own account activity
	user := hyperliquid.NewUserHandler(cfg.Hyperliquid.WSURL, cfg.Hyperliquid.UserAddress, notifier, log)
	userWorker := infra.NewBaseWSWorker(user)
	userWorker.Start(ctx)
	defer userWorker.Stop()

	// 6. Hedge engine fed by the relay file
	aliases := make(map[string]string)
	symbols := make([]string, 0, len(cfg.Trading.Assets))
	for _, asset := range cfg.Trading.Assets {
		aliases[asset.Name] = asset.HedgeSymbol
		symbols = append(symbols, asset.HedgeSymbol)
	}

	hedger := engine.NewHedgeEngine(venue, store, notifier, cfg.SkewTable(), aliases, log)
	reader := relay.NewReader(cfg.Relay.FillFile,
		relay.NewCheckpoint(cfg.Relay.CheckpointFile), time.Now())
	pump := engine.NewFillPump(reader, hedger,
		time.Duration(cfg.Hedge.CheckIntervals.OrderFillSec)*time.Second, log)
	pumpDone := make(chan struct{})
	go func() {
		pump.Run(ctx)
		close(pumpDone)
	}()

	// 7. Account state pollers
	monitor := engine.NewMonitor(venue, symbols, engine.MonitorIntervals{
		Balance:    time.Duration(cfg.Hedge.CheckIntervals.BalanceSec) * time.Second,
		OpenOrders: time.Duration(cfg.Hedge.CheckIntervals.OpenOrdersSec) * time.Second,
		SummaryLog: time.Duration(cfg.Hedge.CheckIntervals.SummaryLogSec) * time.Second,
	}, log)
	go monitor.Run(ctx)

	slog.InfoContext(ctx, "✨ Hedger operational",
		slog.String("fillFile", cfg.Relay.FillFile),
		slog.String("checkpoint", cfg.Relay.CheckpointFile))

	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")

	// Let an in-flight hedge submission finish before the process exits.
	select {
	case <-pumpDone:
	case <-time.After(10 * time.Second):
		slog.Warn("⚠️ Timed out waiting for fill pump to finish")
	}
}
