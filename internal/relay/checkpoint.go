package relay

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Checkpoint persists the timestamp of the last fully processed batch as a
// single scalar in a text file. It is read once at startup and rewritten
// after each flushed batch, never mid-batch.
type Checkpoint struct {
	path string
}

// NewCheckpoint creates a checkpoint backed by the given file.
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{path: path}
}

// Load returns the stored timestamp, or 0 when no checkpoint exists yet.
func (c *Checkpoint) Load() float64 {
	data, err := os.ReadFile(c.path)
	if err != nil {
		slog.Info("No checkpoint found, starting from 0", slog.String("path", c.path))
		return 0
	}

	ts, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		slog.Warn("Unreadable checkpoint, starting from 0",
			slog.String("path", c.path), slog.Any("error", err))
		return 0
	}
	return ts
}

// Save rewrites the checkpoint. Callers invoke it only after a batch has been
// fully drained.
func (c *Checkpoint) Save(ts float64) error {
	s := strconv.FormatFloat(ts, 'f', -1, 64)
	if err := os.WriteFile(c.path, []byte(s), 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}
