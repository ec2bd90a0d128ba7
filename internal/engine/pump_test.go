package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"maker_hedge/internal/domain"
	"maker_hedge/internal/relay"
)

func TestFillPump_DrainFeedsHedger(t *testing.T) {
	dir := t.TempDir()
	fillFile := filepath.Join(dir, "fills.jsonl")
	writer := relay.NewWriter(fillFile)

	fill := buyFill()
	fill.Timestamp = time.Now().Unix() + 10
	if err := writer.Append(fill); err != nil {
		t.Fatalf("Append: %v", err)
	}

	venue := &fakeVenue{
		szDecimals: map[string]int{"ETH": 4},
		result:     domain.HedgeOrder{Status: domain.HedgeResting, VenueOrderID: 1},
	}
	trades := &fakeTradeLog{}
	hedger := newHedgeEngine(venue, trades, &recordingNotifier{}, domain.SkewTable{})

	reader := relay.NewReader(fillFile,
		relay.NewCheckpoint(filepath.Join(dir, "checkpoint")), time.Now().Add(-time.Minute))
	pump := NewFillPump(reader, hedger, time.Second, testLogger())

	pump.drain(context.Background())

	if len(venue.placed) != 1 {
		t.Fatalf("expected 1 hedge order, got %d", len(venue.placed))
	}
	if len(trades.pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(trades.pairs))
	}

	// A second drain must not reprocess the same fill.
	pump.drain(context.Background())
	if len(venue.placed) != 1 {
		t.Fatalf("fill reprocessed, got %d orders", len(venue.placed))
	}
}

func TestFillPump_RunAwaitsInFlightDrain(t *testing.T) {
	dir := t.TempDir()
	fillFile := filepath.Join(dir, "fills.jsonl")
	writer := relay.NewWriter(fillFile)

	fill := buyFill()
	fill.Timestamp = time.Now().Unix() + 10
	if err := writer.Append(fill); err != nil {
		t.Fatalf("Append: %v", err)
	}

	venue := &fakeVenue{
		szDecimals:   map[string]int{"ETH": 4},
		result:       domain.HedgeOrder{Status: domain.HedgeResting, VenueOrderID: 1},
		placeStarted: make(chan struct{}),
		blockPlace:   make(chan struct{}),
	}
	hedger := newHedgeEngine(venue, &fakeTradeLog{}, &recordingNotifier{}, domain.SkewTable{})

	reader := relay.NewReader(fillFile,
		relay.NewCheckpoint(filepath.Join(dir, "checkpoint")), time.Now().Add(-time.Minute))
	pump := NewFillPump(reader, hedger, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		pump.Run(ctx)
		close(done)
	}()

	// Cancel while a hedge submission is in flight.
	<-venue.placeStarted
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a fill was still being processed")
	case <-time.After(50 * time.Millisecond):
	}

	close(venue.blockPlace)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the drain finished")
	}
}
