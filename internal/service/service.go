package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"buyorder-alerts/internal/alerting"
	"buyorder-alerts/internal/book"
	"buyorder-alerts/internal/detect"
	"buyorder-alerts/internal/scheduler"
	"buyorder-alerts/internal/store"
)

// PayloadSource supplies raw JSON texts captured while loading a source's
// page. Zero payloads is a valid outcome.
type PayloadSource interface {
	Capture(ctx context.Context, url string) ([]string, error)
}

// Event describes one emitted alert, for live subscribers.
type Event struct {
	SourceID   string    `json:"source_id"`
	SourceName string    `json:"source_name"`
	URL        string    `json:"url"`
	Faction    string    `json:"faction,omitempty"`
	PrevCount  int       `json:"prev_count"`
	BuyCount   int       `json:"buy_count"`
	Diff       int       `json:"diff"`
	At         time.Time `json:"at"`
}

// Service orchestrates capture, change detection, and alerting.
type Service struct {
	store    *store.Store
	payloads PayloadSource
	notifier alerting.Notifier
	sched    *scheduler.Scheduler
	logger   zerolog.Logger

	cooldown time.Duration
	events   chan Event
	now      func() time.Time
}

// New constructs the monitoring service. A nil notifier disables outbound
// delivery; alert bookkeeping still runs.
func New(st *store.Store, payloads PayloadSource, notifier alerting.Notifier, sched *scheduler.Scheduler, cooldown time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		store:    st,
		payloads: payloads,
		notifier: notifier,
		sched:    sched,
		logger:   logger.With().Str("component", "service").Logger(),
		cooldown: cooldown,
		events:   make(chan Event, 64),
		now:      time.Now,
	}
}

// Events exposes emitted alerts to live subscribers. Slow subscribers drop
// events rather than blocking a check.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Run begins the sequential polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.sched == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.sched.Run(ctx, s.Cycle)
}

// Cycle checks every enabled source once, in order, with a short pause
// between sources. A failing source never halts the rest of the cycle.
func (s *Service) Cycle(ctx context.Context) error {
	for _, src := range s.store.Enabled() {
		if err := s.CheckSource(ctx, src.ID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Str("source", src.Name).Msg("source check failed")
		}
		if err := scheduler.Sleep(ctx, s.sched.SourceDelay()); err != nil {
			return err
		}
	}
	return nil
}

// CheckSource performs one full check of a single source under its check
// lock, so a scheduled poll and an ad-hoc trigger never race on baseline
// state.
func (s *Service) CheckSource(ctx context.Context, id string) error {
	release, ok := s.store.AcquireCheck(id)
	if !ok {
		return store.ErrSourceNotFound
	}
	defer release()

	src, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if !src.Enabled {
		return nil
	}

	payloads, captureErr := s.payloads.Capture(ctx, src.URL)

	// The check attempt completed, conclusive or not.
	s.store.MarkChecked(id, s.now().UTC())

	if captureErr != nil {
		return fmt.Errorf("capture %s: %w", src.URL, captureErr)
	}

	sigs, buyCount := book.ExtractFromPayloads(payloads)
	res := detect.Evaluate(src.Baseline, sigs, buyCount)
	if !res.Conclusive {
		s.logger.Debug().Str("source", src.Name).Msg("inconclusive poll, state untouched")
		return nil
	}

	nowSec := s.now().Unix()
	if detect.Admit(res.Changed, src.LastAlertAt, nowSec, s.cooldown) {
		diff := res.BuyCount - src.LastBuyCount
		s.store.RecordAlert(id, nowSec)
		s.dispatch(ctx, src, res.BuyCount, diff)
	} else if res.Changed {
		s.logger.Debug().Str("source", src.Name).Msg("change suppressed by cooldown")
	}

	// Baseline tracks the latest conclusive poll whether or not an alert
	// went out.
	s.store.CommitPoll(id, res.Combined, res.BuyCount)

	s.logger.Info().Str("source", src.Name).
		Bool("changed", res.Changed).
		Int("buy_count", res.BuyCount).
		Msg("source checked")
	return nil
}

// dispatch delivers the alert and publishes the event. Delivery failures
// are logged and never roll back bookkeeping.
func (s *Service) dispatch(ctx context.Context, src store.Source, buyCount, diff int) {
	ev := Event{
		SourceID:   src.ID,
		SourceName: src.Name,
		URL:        src.URL,
		Faction:    src.Faction,
		PrevCount:  src.LastBuyCount,
		BuyCount:   buyCount,
		Diff:       diff,
		At:         s.now().UTC(),
	}

	select {
	case s.events <- ev:
	default:
	}

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, alerting.Notification{
		SourceName: src.Name,
		SourceURL:  src.URL,
		Faction:    src.Faction,
		PrevCount:  src.LastBuyCount,
		BuyCount:   buyCount,
		Diff:       diff,
	}); err != nil {
		s.logger.Error().Err(err).Str("source", src.Name).Msg("failed to dispatch alert")
	}
}
