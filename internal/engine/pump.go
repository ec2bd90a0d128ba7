package engine

import (
	"context"
	"log/slog"
	"time"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/relay"
)

// FillPump drains the relay file on an interval and feeds every delivered
// fill through the hedge engine. Delivery order inside the pump matches the
// reader's batch order, one fill at a time.
type FillPump struct {
	reader   *relay.Reader
	hedger   *HedgeEngine
	interval time.Duration
	log      *slog.Logger
}

func NewFillPump(reader *relay.Reader, hedger *HedgeEngine, interval time.Duration, log *slog.Logger) *FillPump {
	return &FillPump{
		reader:   reader,
		hedger:   hedger,
		interval: interval,
		log:      log.With("component", "fill_pump"),
	}
}

// Run polls until the context is cancelled.
func (p *FillPump) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *FillPump) drain(ctx context.Context) {
	delivered, err := p.reader.Poll(func(fill domain.FillEvent) {
		if err := p.hedger.ProcessFill(ctx, fill); err != nil {
			// The fill stays consumed; a persistence failure here needs an
			// operator, not a replayed hedge.
			p.log.Error("failed to process fill", "key", fill.Key(), "err", err)
		}
	})
	if err != nil {
		p.log.Error("relay poll failed", "err", err)
		return
	}
	if delivered > 0 {
		p.log.Info("processed new fills", "count", delivered)
	}
}
