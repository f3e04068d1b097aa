package sample

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestChangePct(t *testing.T) {
	if got := ChangePct(fp(100), fp(110)); got == nil || math.Abs(*got-10) > 1e-9 {
		t.Fatalf("expected ~10, got %v", got)
	}
	if got := ChangePct(fp(100), fp(90)); got == nil || math.Abs(*got+10) > 1e-9 {
		t.Fatalf("expected ~-10, got %v", got)
	}
	if got := ChangePct(fp(0), fp(100)); got != nil {
		t.Fatalf("expected nil for zero live, got %v", *got)
	}
	if got := ChangePct(nil, fp(100)); got != nil {
		t.Fatalf("expected nil for nil live")
	}
	if got := ChangePct(fp(100), nil); got != nil {
		t.Fatalf("expected nil for nil prediction")
	}
	if got := ChangePct(fp(math.NaN()), fp(100)); got != nil {
		t.Fatalf("expected nil for NaN live")
	}
	if got := ChangePct(fp(100), fp(math.Inf(1))); got != nil {
		t.Fatalf("expected nil for infinite prediction")
	}
}

func TestHistoryBound(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(Sample{T: int64(i), V: float64(i)})
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", h.Len())
	}
	got := h.Snapshot()
	if got[0].T != 2 || got[2].T != 4 {
		t.Fatalf("expected oldest evicted first, got %+v", got)
	}

	// At capacity a further append evicts exactly one.
	h.Append(Sample{T: 5})
	if h.Len() != 3 {
		t.Fatalf("expected bound held, got %d", h.Len())
	}
	if h.Snapshot()[0].T != 3 {
		t.Fatalf("expected sample 2 evicted")
	}
}

func TestHistoryReplaceTruncates(t *testing.T) {
	h := NewHistory(2)
	h.Replace([]Sample{{T: 1}, {T: 2}, {T: 3}})
	if h.Len() != 2 {
		t.Fatalf("expected truncation to bound, got %d", h.Len())
	}
	if h.Snapshot()[0].T != 2 {
		t.Fatalf("expected most recent entries kept")
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewHistory(4)
	h.Append(Sample{T: 1, V: 1})
	snap := h.Snapshot()
	snap[0].V = 99
	if h.Snapshot()[0].V != 1 {
		t.Fatalf("snapshot mutation leaked into history")
	}
}

func TestCombine(t *testing.T) {
	live := []Sample{{T: 10, V: 100}, {T: 20, V: 101}, {T: 30, V: 102}}
	pred := []Sample{{T: 11, V: 110}, {T: 21, V: 111}}

	points := Combine(live, pred)
	if len(points) != 2 {
		t.Fatalf("expected min-length series, got %d", len(points))
	}
	if points[0].T != 10 {
		t.Fatalf("expected live timestamp, got %d", points[0].T)
	}
	if *points[1].Live != 101 || *points[1].Prediction != 111 {
		t.Fatalf("unexpected pairing: %+v", points[1])
	}

	if got := Combine(nil, pred); len(got) != 0 {
		t.Fatalf("expected empty series when one side empty")
	}
}
