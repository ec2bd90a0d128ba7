package relay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"maker_hedge/internal/domain"
)

func tempRelay(t *testing.T) (string, *Checkpoint) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "fills.jsonl"), NewCheckpoint(filepath.Join(dir, "checkpoint.txt"))
}

func fill(ts int64, asset string, amount, price float64) domain.FillEvent {
	return domain.FillEvent{
		Timestamp:  ts,
		Asset:      asset,
		QuoteAsset: "USDC",
		Side:       "buy",
		Amount:     amount,
		Price:      price,
	}
}

func TestRelay_WriteThenRead(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	if err := w.Append(fill(100, "ETH", 0.5, 2000)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(path, cp, time.Unix(50, 0))
	var got []domain.FillEvent
	n, err := r.Poll(func(ev domain.FillEvent) { got = append(got, ev) })
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(got) != 1 {
		t.Fatalf("delivered %d records, want 1", n)
	}
	if got[0].Asset != "ETH" || got[0].Price != 2000 {
		t.Errorf("unexpected record: %+v", got[0])
	}
}

func TestRelay_IdempotentConsumption(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	ev := fill(100, "ETH", 0.5, 2000)
	if err := w.Append(ev); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(ev); err != nil {
		t.Fatal(err)
	}

	r := NewReader(path, cp, time.Unix(50, 0))
	calls := 0
	if _, err := r.Poll(func(domain.FillEvent) { calls++ }); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("identical record delivered %d times, want exactly 1", calls)
	}
}

func TestRelay_BatchOrdering(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	// Reverse file order: 101 first, then the two 100s.
	if err := w.Append(fill(101, "ETH", 1, 2010)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(fill(100, "ETH", 2, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(fill(100, "ETH", 3, 2005)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(path, cp, time.Unix(50, 0))
	var order [][2]float64
	if _, err := r.Poll(func(ev domain.FillEvent) {
		order = append(order, [2]float64{float64(ev.Timestamp), ev.Amount})
	}); err != nil {
		t.Fatal(err)
	}

	want := [][2]float64{{100, 2}, {100, 3}, {101, 1}}
	if len(order) != len(want) {
		t.Fatalf("delivered %d records, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: got ts=%v amount=%v, want ts=%v amount=%v",
				i, order[i][0], order[i][1], want[i][0], want[i][1])
		}
	}
}

func TestRelay_CheckpointAdvancesPerBatch(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	for _, ev := range []domain.FillEvent{
		fill(100, "ETH", 1, 2000),
		fill(100, "BTC", 2, 67000),
		fill(105, "ETH", 3, 2010),
	} {
		if err := w.Append(ev); err != nil {
			t.Fatal(err)
		}
	}

	r := NewReader(path, cp, time.Unix(50, 0))
	if _, err := r.Poll(func(domain.FillEvent) {}); err != nil {
		t.Fatal(err)
	}

	if got := cp.Load(); got != 105 {
		t.Errorf("checkpoint = %v, want 105", got)
	}
}

func TestRelay_ResumesFromCheckpoint(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	if err := w.Append(fill(100, "ETH", 1, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(fill(200, "ETH", 2, 2100)); err != nil {
		t.Fatal(err)
	}
	if err := cp.Save(100); err != nil {
		t.Fatal(err)
	}

	// Fresh reader, process start well in the past: only ts=200 is new.
	r := NewReader(path, cp, time.Unix(10, 0))
	var got []int64
	if _, err := r.Poll(func(ev domain.FillEvent) { got = append(got, ev.Timestamp) }); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0] != 200 {
		t.Errorf("delivered %v, want just [200]", got)
	}
}

func TestRelay_IgnoresRecordsBeforeProcessStart(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	if err := w.Append(fill(100, "ETH", 1, 2000)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(path, cp, time.Unix(150, 0))
	n, err := r.Poll(func(domain.FillEvent) {})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("delivered %d stale records, want 0", n)
	}
}

func TestRelay_MalformedLineDropped(t *testing.T) {
	path, cp := tempRelay(t)
	w := NewWriter(path)

	if err := w.Append(fill(100, "ETH", 1, 2000)); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := w.Append(fill(101, "ETH", 2, 2010)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(path, cp, time.Unix(50, 0))
	var got []int64
	if _, err := r.Poll(func(ev domain.FillEvent) { got = append(got, ev.Timestamp) }); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0] != 100 || got[1] != 101 {
		t.Errorf("delivered %v, want [100 101]", got)
	}
}

func TestRelay_MissingFileIsNotAnError(t *testing.T) {
	path, cp := tempRelay(t)

	r := NewReader(path, cp, time.Unix(50, 0))
	n, err := r.Poll(func(domain.FillEvent) {})
	if err != nil {
		t.Fatalf("missing relay file should not error: %v", err)
	}
	if n != 0 {
		t.Errorf("delivered %d from missing file", n)
	}
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	cp := NewCheckpoint(filepath.Join(t.TempDir(), "cp.txt"))

	if got := cp.Load(); got != 0 {
		t.Errorf("empty checkpoint = %v, want 0", got)
	}
	if err := cp.Save(1712345678); err != nil {
		t.Fatal(err)
	}
	if got := cp.Load(); got != 1712345678 {
		t.Errorf("checkpoint = %v, want 1712345678", got)
	}
}
