package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"predtrack-go/internal/catalog"
	"predtrack-go/internal/config"
	"predtrack-go/internal/history"
	"predtrack-go/internal/sample"
	"predtrack-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	instrumentKey := flag.String("instrument", "", "instrument key, e.g. ETH/10min (overrides config default)")
	out := flag.String("out", "", "output file (default stdout)")
	clear := flag.Bool("clear", false, "clear the stored history instead of exporting")
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
	key := *instrumentKey
	if key == "" {
		key = cfg.Instruments.Default
	}
	inst, ok := cat.Get(key)
	if !ok {
		log.Fatal().Str("instrument", key).Msg("unknown instrument")
	}

	store, err := history.Open(cfg.History, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open history store")
	}
	defer store.Close()

	if *clear {
		if err := store.Clear(inst.TopicID); err != nil {
			log.Fatal().Err(err).Msg("clear history")
		}
		log.Info().Str("instrument", inst.Key()).Msg("history cleared")
		return
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("create output file")
		}
		defer f.Close()
		w = f
	}

	samples := store.Load(inst.TopicID)
	if err := sample.WriteCSV(w, samples); err != nil {
		log.Fatal().Err(err).Msg("write csv")
	}
	log.Info().Str("instrument", inst.Key()).Int("samples", len(samples)).Msg("history exported")
}
