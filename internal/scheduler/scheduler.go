package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// minCycleInterval is the floor applied to the configured cycle interval.
const minCycleInterval = 5 * time.Second

// CycleFunc runs one full pass over all enabled sources.
type CycleFunc func(ctx context.Context) error

// Options tune scheduler behaviour.
type Options struct {
	CycleInterval time.Duration
	SourceDelay   time.Duration
	StartupDelay  time.Duration
}

// Scheduler drives the sequential polling loop: one cycle, a rest, the next
// cycle, until the context is cancelled.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.CycleInterval <= 0 {
		panic("scheduler cycle interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the cycle function repeatedly until ctx is
// cancelled. A failed cycle is logged and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context, cycle CycleFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := Sleep(ctx, s.opts.StartupDelay); err != nil {
			return err
		}
	}

	interval := s.opts.CycleInterval
	if interval < minCycleInterval {
		interval = minCycleInterval
	}

	for {
		started := time.Now()
		s.logger.Debug().Msg("starting poll cycle")

		if err := cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Msg("poll cycle failed")
		}

		s.logger.Debug().Dur("elapsed", time.Since(started)).Msg("poll cycle finished")

		if err := Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// SourceDelay is the pause between two sources within one cycle.
func (s *Scheduler) SourceDelay() time.Duration {
	return s.opts.SourceDelay
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
