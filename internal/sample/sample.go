// Package sample standardizes payloads shared between the fetch, history, and
// reconciliation layers.
package sample

import "math"

// Sample is a single scalar observation at a point in time.
// T is a millisecond epoch timestamp, matching the stored wire format.
type Sample struct {
	T int64   `json:"t"`
	V float64 `json:"v"`
}

// Point pairs the i-th live observation with the i-th prediction for charting.
// Either side may be nil when the source yielded no usable value.
type Point struct {
	T          int64    `json:"t"`
	Live       *float64 `json:"live"`
	Prediction *float64 `json:"prediction"`
}

// State tags the outcome of the most recent refresh cycle.
type State string

const (
	StateLoading State = "loading"
	StateOK      State = "ok"
	StateError   State = "error"
)

// Status carries the cycle state plus a human-readable message.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message"`
}

// ChangePct returns the signed percentage distance of prediction from live,
// or nil when either side is missing, live is zero, or either is non-finite.
func ChangePct(live, prediction *float64) *float64 {
	if live == nil || prediction == nil {
		return nil
	}
	l, p := *live, *prediction
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) || math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	pct := (p - l) / l * 100
	return &pct
}

// Combine aligns two histories index-by-index into a combined series. Both
// histories grow one element per cycle, so the series length is the shorter
// of the two; timestamps come from the live side when present.
func Combine(live, prediction []Sample) []Point {
	n := len(live)
	if len(prediction) < n {
		n = len(prediction)
	}
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		l, p := live[i], prediction[i]
		t := l.T
		if t == 0 {
			t = p.T
		}
		lv, pv := l.V, p.V
		points = append(points, Point{T: t, Live: &lv, Prediction: &pv})
	}
	return points
}
