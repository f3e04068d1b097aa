package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"predtrack-go/internal/catalog"
	"predtrack-go/internal/config"
	"predtrack-go/internal/engine"
	"predtrack-go/internal/history"
	"predtrack-go/internal/metrics"
	"predtrack-go/internal/provider"
	"predtrack-go/internal/scheduler"
	"predtrack-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	instrumentKey := flag.String("instrument", "", "instrument key, e.g. ETH/10min (overrides config default)")
	once := flag.Bool("once", false, "run a single refresh cycle and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	cat, err := catalog.New(append(catalog.Defaults(), cfg.Instruments.Extra...)...)
	if err != nil {
		log.Fatal().Err(err).Msg("build catalog")
	}

	store, err := history.Open(cfg.History, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open history store")
	}
	defer store.Close()

	policy := provider.Policy{
		MaxRetries:   cfg.Fetch.MaxRetries,
		InitialDelay: time.Duration(cfg.Fetch.InitialDelayMs) * time.Millisecond,
		BackoffCap:   time.Duration(cfg.Fetch.BackoffCapMs) * time.Millisecond,
		Timeout:      time.Duration(cfg.Fetch.TimeoutMs) * time.Millisecond,
	}
	predictions := provider.NewAllora(cfg.Allora.BaseURL, cfg.Allora.APIKey, policy, cfg.Fetch.RatePerMin, log)
	prices := provider.NewCoinGecko(cfg.CoinGecko.BaseURL, policy, cfg.Fetch.RatePerMin, log)

	eng := engine.New(cat, predictions, prices, store, cfg.History.Limit, log)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	key := *instrumentKey
	if key == "" {
		key = cfg.Instruments.Default
	}
	if key == "" {
		key = cat.Keys()[0]
	}
	if err := eng.SelectInstrument(ctx, key); err != nil {
		log.Fatal().Err(err).Msg("select instrument")
	}

	if *once {
		snap := eng.Snapshot()
		log.Info().
			Str("instrument", snap.Instrument.Key()).
			Str("status", string(snap.Status.State)).
			Int("samples", snap.SampleCount).
			Msg("single cycle done")
		return
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	sched := scheduler.New(eng, log,
		scheduler.WithInterval(time.Duration(cfg.Schedule.IntervalMs)*time.Millisecond),
		scheduler.WithBounds(
			time.Duration(cfg.Schedule.MinIntervalMs)*time.Millisecond,
			time.Duration(cfg.Schedule.MaxIntervalMs)*time.Millisecond,
		),
		scheduler.WithEnabled(cfg.Schedule.AutoStart),
	)

	log.Info().
		Str("instrument", key).
		Dur("interval", sched.Interval()).
		Msg("tracker started")
	sched.Run(ctx)
	log.Info().Msg("shutting down")
}
