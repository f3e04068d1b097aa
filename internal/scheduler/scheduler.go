// Package scheduler drives repeated refresh cycles on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner is the unit of work the scheduler drives once per interval.
type Runner interface {
	RunCycle(ctx context.Context)
}

const (
	DefaultInterval = 30 * time.Second
	defaultMin      = 5 * time.Second
	defaultMax      = 5 * time.Minute
)

// Scheduler invokes the runner once per interval while enabled. Cycles are
// started unconditionally when the timer fires; an outstanding cycle is
// neither awaited nor cancelled, so overlapping cycles are permitted and the
// last completion wins.
type Scheduler struct {
	mu       sync.Mutex
	runner   Runner
	log      zerolog.Logger
	interval time.Duration
	min, max time.Duration
	enabled  bool
	kick     chan struct{}
}

// Option configures Scheduler construction parameters.
type Option func(*Scheduler)

// WithInterval sets the starting cadence, clamped to the configured bounds.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithBounds overrides the interval clamp range.
func WithBounds(min, max time.Duration) Option {
	return func(s *Scheduler) {
		if min > 0 {
			s.min = min
		}
		if max >= s.min {
			s.max = max
		}
	}
}

// WithEnabled sets whether scheduled cycles run from the start.
func WithEnabled(enabled bool) Option {
	return func(s *Scheduler) { s.enabled = enabled }
}

// New constructs a scheduler for the runner.
func New(runner Runner, log zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		log:      log,
		interval: DefaultInterval,
		min:      defaultMin,
		max:      defaultMax,
		enabled:  true,
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.interval = s.clamp(s.interval)
	return s
}

// Run blocks until the context is cancelled, firing cycles on the cadence.
// Disabling halts future scheduled cycles but does not cancel one in flight.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
			ticker.Reset(s.Interval())
		case <-ticker.C:
			if !s.Enabled() {
				continue
			}
			go s.runner.RunCycle(ctx)
		}
	}
}

// FetchOnce runs a single cycle immediately, independent of the schedule.
func (s *Scheduler) FetchOnce(ctx context.Context) {
	s.runner.RunCycle(ctx)
}

// SetEnabled toggles scheduled cycles.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	s.log.Info().Bool("enabled", enabled).Msg("auto refresh toggled")
}

// Enabled reports whether scheduled cycles run.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetInterval applies a new cadence, clamped to the bounds, and returns the
// value actually applied. The running loop picks it up immediately.
func (s *Scheduler) SetInterval(d time.Duration) time.Duration {
	s.mu.Lock()
	s.interval = s.clamp(d)
	applied := s.interval
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
	s.log.Info().Dur("interval", applied).Msg("refresh interval updated")
	return applied
}

// Interval reports the current cadence.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) clamp(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultInterval
	}
	if d < s.min {
		return s.min
	}
	if d > s.max {
		return s.max
	}
	return d
}
