package sample

// DefaultLimit is the retention bound applied to every history unless the
// configuration overrides it.
const DefaultLimit = 1000

// History is a bounded, insertion-ordered log of samples. When the bound is
// exceeded the oldest entries are evicted first. History is not safe for
// concurrent use; the owning engine serializes access.
type History struct {
	limit   int
	samples []Sample
}

// NewHistory creates an empty history retaining at most limit samples.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Append adds one sample, evicting the oldest entry if at capacity.
func (h *History) Append(s Sample) {
	h.samples = append(h.samples, s)
	if len(h.samples) > h.limit {
		h.samples = h.samples[len(h.samples)-h.limit:]
	}
}

// Replace swaps the contents for the given samples, keeping only the most
// recent entries within the bound.
func (h *History) Replace(samples []Sample) {
	if len(samples) > h.limit {
		samples = samples[len(samples)-h.limit:]
	}
	h.samples = append(h.samples[:0], samples...)
}

// Snapshot returns a copy of the stored samples.
func (h *History) Snapshot() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Len reports the number of stored samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Reset discards all stored samples.
func (h *History) Reset() {
	h.samples = h.samples[:0]
}

// Limit reports the retention bound.
func (h *History) Limit() int {
	return h.limit
}
