// Package relay is the durable handoff between the quoting process and the
// hedging process: an append-only file of one JSON fill record per line with
// exactly one writer and one reader. Delivery is at-least-once across
// restarts; the reader makes it once-effective with a per-run identity set
// and a checkpoint that only advances after a whole same-timestamp batch has
// been handed over.
package relay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"maker_hedge/internal/domain"
)

// Writer appends fill records to the relay file. Single writer per file.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter creates a writer for the given relay file.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one record and closes the file again, so a crash never holds
// the relay hostage to a dangling descriptor.
func (w *Writer) Append(ev domain.FillEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open relay file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal fill: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append fill: %w", err)
	}
	return nil
}

// Reader scans the relay file for records newer than its cutoff and delivers
// them batched by timestamp. Because timestamps have one-second resolution,
// several fills can share one tick; a batch holds every record with the same
// timestamp and is flushed in original relay order.
type Reader struct {
	path       string
	checkpoint *Checkpoint

	startTime     float64
	lastProcessed float64
	seen          map[string]struct{}
}

// NewReader builds a reader resuming from the stored checkpoint. Records at
// or before max(checkpoint, startTime) are never delivered.
func NewReader(path string, cp *Checkpoint, startTime time.Time) *Reader {
	last := cp.Load()
	slog.Info("Relay reader resuming",
		slog.String("path", path),
		slog.Float64("checkpoint", last))

	return &Reader{
		path:          path,
		checkpoint:    cp,
		startTime:     float64(startTime.Unix()),
		lastProcessed: last,
		seen:          make(map[string]struct{}),
	}
}

func (r *Reader) cutoff() float64 {
	if r.lastProcessed > r.startTime {
		return r.lastProcessed
	}
	return r.startTime
}

// Poll scans for new records and hands them to handler, one batch at a time,
// in non-decreasing timestamp order with same-timestamp entries in original
// relay order. A record whose identity key was already flushed this run is
// skipped. The checkpoint advances to a batch's timestamp only once every
// record in it has been handed over or skipped. Returns the number of records
// delivered.
func (r *Reader) Poll(handler func(domain.FillEvent)) (int, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil // writer has not produced anything yet
		}
		return 0, fmt.Errorf("failed to open relay file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read relay file: %w", err)
	}

	cutoff := r.cutoff()

	// Scan backward from the newest record until we hit the cutoff. A record
	// that fails to decode is dropped on its own; it never aborts the scan.
	type entry struct {
		ev  domain.FillEvent
		pos int
	}
	var fresh []entry
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == "" {
			continue
		}
		var ev domain.FillEvent
		if err := json.Unmarshal([]byte(lines[i]), &ev); err != nil {
			slog.Warn("Dropping malformed relay record",
				slog.Int("line", i+1), slog.Any("error", err))
			continue
		}
		if float64(ev.Timestamp) <= cutoff {
			break
		}
		fresh = append(fresh, entry{ev: ev, pos: i})
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	// Deliver batches oldest first, preserving relay order inside a batch.
	sort.SliceStable(fresh, func(a, b int) bool {
		if fresh[a].ev.Timestamp != fresh[b].ev.Timestamp {
			return fresh[a].ev.Timestamp < fresh[b].ev.Timestamp
		}
		return fresh[a].pos < fresh[b].pos
	})

	delivered := 0
	batchStart := 0
	for batchStart < len(fresh) {
		ts := fresh[batchStart].ev.Timestamp
		batchEnd := batchStart
		for batchEnd < len(fresh) && fresh[batchEnd].ev.Timestamp == ts {
			batchEnd++
		}

		for _, e := range fresh[batchStart:batchEnd] {
			key := e.ev.Key()
			if _, dup := r.seen[key]; dup {
				slog.Info("Skipping already processed fill", slog.String("key", key))
				continue
			}
			handler(e.ev)
			r.seen[key] = struct{}{}
			delivered++
		}

		// Whole batch drained: only now may the checkpoint move.
		r.lastProcessed = float64(ts)
		if err := r.checkpoint.Save(r.lastProcessed); err != nil {
			slog.Error("Failed to persist checkpoint", slog.Any("error", err))
		}

		batchStart = batchEnd
	}

	return delivered, nil
}

// LastProcessed returns the current checkpoint position.
func (r *Reader) LastProcessed() float64 {
	return r.lastProcessed
}
