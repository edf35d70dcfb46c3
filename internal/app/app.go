package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"buyorder-alerts/internal/alerting"
	"buyorder-alerts/internal/capture"
	"buyorder-alerts/internal/config"
	"buyorder-alerts/internal/scheduler"
	"buyorder-alerts/internal/server"
	"buyorder-alerts/internal/service"
	"buyorder-alerts/internal/store"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newStore() *store.Store {
	st := store.New()
	for _, seed := range a.Config.Sources {
		enabled := true
		if seed.Enabled != nil {
			enabled = *seed.Enabled
		}
		if _, err := st.Add(seed.Name, seed.URL, seed.Faction, enabled); err != nil {
			a.Logger.Warn().Err(err).Str("name", seed.Name).Msg("skipping invalid seed source")
		}
	}
	return st
}

func (a *App) newNotifier() alerting.Notifier {
	cfg := a.Config.Alerting
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return nil
	}
	return alerting.NewDiscordNotifier(cfg.WebhookURL, cfg.Timeout, a.Logger)
}

// Run executes the long-running monitoring service together with the
// management HTTP server.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := a.newStore()
	a.Logger.Info().Int("sources", len(st.List())).Msg("source store seeded")

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("webhook not configured; alerts will be tracked but not delivered")
	}

	capturer := capture.New(capture.Options{
		Headless:    a.Config.Capture.Headless,
		PageTimeout: a.Config.Capture.PageTimeout,
		SettleDelay: a.Config.Capture.SettleDelay,
	}, a.Logger)

	sched := scheduler.New(scheduler.Options{
		CycleInterval: a.Config.Scheduler.CycleInterval,
		SourceDelay:   a.Config.Scheduler.SourceDelay,
		StartupDelay:  a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc := service.New(st, capturer, notifier, sched, a.Config.Alerting.Cooldown, a.Logger)
	srv := server.New(a.Config.Server, st, svc, a.Logger)

	a.Logger.Info().Msg("starting monitoring service")

	runErr := make(chan error, 2)
	go func() { runErr <- svc.Run(ctx) }()
	go func() { runErr <- srv.Run(ctx) }()

	err := <-runErr
	cancel()
	<-runErr

	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}
