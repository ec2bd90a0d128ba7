package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"maker_hedge/internal/engine"
	"maker_hedge/internal/infra"
	"maker_hedge/internal/infra/chainflip"
	"maker_hedge/internal/infra/hyperliquid"
	"maker_hedge/internal/notify"
	"maker_hedge/internal/relay"
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

	// 3. Reference price feed (derivatives mids)
	prices := hyperliquid.NewPriceHandler(cfg.Hyperliquid.WSURL, log)
	priceWorker := infra.NewBaseWSWorker(prices)
	priceWorker.Start(ctx)
	defer priceWorker.Stop()
	slog.InfoContext(ctx, "✅ Price feed started", slog.String("url", cfg.Hyperliquid.WSURL))

	// 4. Fill listener: own fills go to the relay file for the hedge process
	fillWriter := relay.NewWriter(cfg.Relay.FillFile)
	fills := chainflip.NewFillsHandler(cfg.Chainflip.WSURL, cfg.Chainflip.LPAddress, fillWriter, notifier, log)
	fillsWorker := infra.NewBaseWSWorker(fills)
	fillsWorker.Start(ctx)
	defer fillsWorker.Stop()
	slog.InfoContext(ctx, "✅ Fill listener started", slog.String("fillFile", cfg.Relay.FillFile))

	// 5. Quote engine
	limiter := infra.NewRateLimiter(10, 5)
	orders := chainflip.NewClient(cfg.Chainflip.APIURL, limiter, log)
	quoter := engine.NewQuoteEngine(prices, orders, cfg.Trading, log)
	go quoter.Run(ctx)
	slog.InfoContext(ctx, "✨ Maker operational", slog.Int("assets", len(cfg.Trading.Assets)))

	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")
}
