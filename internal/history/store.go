// Package history persists the durable per-instrument prediction sample log.
package history

import (
	"encoding/json"
	"fmt"
	"math"

	"predtrack-go/internal/sample"
)

// Store is a bounded, per-instrument durable log of prediction samples.
// Load never fails: missing or malformed payloads come back as an empty
// sequence. Append persists best-effort; a failed write is logged and
// swallowed so the in-memory copy stays authoritative for the session.
type Store interface {
	// Load returns the stored history for the topic, oldest first.
	Load(topicID int64) []sample.Sample
	// Append adds one sample, truncates to the retention bound, persists,
	// and returns the truncated sequence.
	Append(topicID int64, s sample.Sample) []sample.Sample
	// Clear removes all stored history for the topic. Idempotent.
	Clear(topicID int64) error
	Close() error
}

// Key is the storage key for one instrument's history record.
func Key(topicID int64) string {
	return fmt.Sprintf("history:%d", topicID)
}

// decodeSamples parses a stored JSON payload, silently dropping malformed
// entries and non-finite values, and truncates to the bound.
func decodeSamples(data []byte, limit int) []sample.Sample {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]sample.Sample, 0, len(raw))
	for _, entry := range raw {
		var wire struct {
			T any `json:"t"`
			V any `json:"v"`
		}
		if err := json.Unmarshal(entry, &wire); err != nil {
			continue
		}
		t, ok := wire.T.(float64)
		if !ok || t <= 0 || t != math.Trunc(t) {
			continue
		}
		v, ok := wire.V.(float64)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, sample.Sample{T: int64(t), V: v})
	}
	return truncate(out, limit)
}

func truncate(samples []sample.Sample, limit int) []sample.Sample {
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples
}
